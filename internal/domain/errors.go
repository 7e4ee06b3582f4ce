package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument — базовая ошибка некорректного ввода вызывающей стороны.
	ErrInvalidArgument = errors.New("invalid argument")
	// Ошибка отсутствующего имени клиента.
	ErrCustomerRequired = fmt.Errorf("%w: customer name is required", ErrInvalidArgument)
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = fmt.Errorf("%w: order must contain at least one item", ErrInvalidArgument)
	// Ошибка отсутствующего номера столика у заказа в зале.
	ErrTableNumberRequired = fmt.Errorf("%w: table number is required for dine-in orders", ErrInvalidArgument)
	// Ошибка неизвестного статуса заказа.
	ErrStatusUnknown = fmt.Errorf("%w: unknown order status", ErrInvalidArgument)

	// Замечания инвариантов напитка.
	ErrDrinkIDRequired     = fmt.Errorf("%w: drink id is required", ErrInvalidArgument)
	ErrDrinkNameRequired   = fmt.Errorf("%w: drink name is required", ErrInvalidArgument)
	ErrDrinkPriceNegative  = fmt.Errorf("%w: drink price must be non-negative", ErrInvalidArgument)
	ErrTeaTypeRequired     = fmt.Errorf("%w: tea type is required", ErrInvalidArgument)
	ErrJuiceFruitsRequired = fmt.Errorf("%w: juice must list at least one fruit", ErrInvalidArgument)
	ErrDrinkVariantUnknown = fmt.Errorf("%w: unknown drink variant", ErrInvalidArgument)

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDrinkNotFound возвращается, если напитка нет в каталоге.
	ErrDrinkNotFound = errors.New("drink not found")

	// ErrStorage оборачивает ошибки чтения/записи/разбора долговременного хранилища.
	ErrStorage = errors.New("storage failure")

	// ErrNotImplemented — операция сознательно не поддерживается
	// (каталог фиксирован, create/update/delete по нему отсутствуют).
	ErrNotImplemented = errors.New("not implemented yet")
)

// IsInvalidArgument проверяет, относится ли ошибка к некорректному вводу.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsNotFound проверяет, является ли ошибка отсутствием заказа или напитка.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrDrinkNotFound)
}

// IsStorageFailure проверяет, является ли ошибка сбоем хранилища.
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorage)
}
