package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ принят, приготовление ещё не началось.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusInProgress — заказ готовится.
	OrderStatusInProgress OrderStatus = "inProgress"
	// OrderStatusCompleted — заказ выдан; фиксируется completedAt.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён; в выручке не участвует.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// AllOrderStatuses перечисляет статусы в порядке жизненного цикла.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusInProgress,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid сообщает, известен ли статус.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem представляет одну позицию заказа. Напиток встраивается целиком
// (снимок каталога на момент заказа), а не по ссылке.
type OrderItem struct {
	ID                  string    `json:"id"`
	Drink               Drink     `json:"drink"`
	Quantity            int       `json:"quantity"`
	SpecialInstructions string    `json:"specialInstructions,omitempty"`
	AddedAt             time.Time `json:"addedAt"`
}

// NewOrderItem создаёт позицию с новым идентификатором и текущим временем.
func NewOrderItem(drink Drink, quantity int, instructions string) OrderItem {
	return OrderItem{
		ID:                  uuid.NewString(),
		Drink:               drink,
		Quantity:            quantity,
		SpecialInstructions: instructions,
		AddedAt:             time.Now().UTC(),
	}
}

// LineTotal возвращает стоимость позиции: цена напитка × количество.
func (i OrderItem) LineTotal() float64 {
	return i.Drink.Price * float64(i.Quantity)
}

// WithQuantity возвращает копию позиции с другим количеством.
func (i OrderItem) WithQuantity(quantity int) OrderItem {
	i.Quantity = quantity
	return i
}

// Order агрегирует позиции заказа и его статус.
type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customerName"`
	Status       OrderStatus `json:"status"`
	Items        []OrderItem `json:"items"`
	Notes        string      `json:"notes,omitempty"`
	TableNumber  string      `json:"tableNumber,omitempty"`
	IsTakeAway   bool        `json:"isTakeAway"`
	CreatedAt    time.Time   `json:"createdAt"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
}

// NewOrder создаёт заказ в статусе pending.
//
// Заказ навынос не может иметь номера столика: сервис обязан очистить
// tableNumber до вызова, нарушение — ошибка программирования, поэтому panic.
func NewOrder(customerName string, items []OrderItem, notes, tableNumber string, takeAway bool, createdAt time.Time) Order {
	if takeAway && tableNumber != "" {
		panic("domain: take-away order must not carry a table number")
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return Order{
		ID:           uuid.NewString(),
		CustomerName: customerName,
		Status:       OrderStatusPending,
		Items:        items,
		Notes:        notes,
		TableNumber:  tableNumber,
		IsTakeAway:   takeAway,
		CreatedAt:    createdAt,
	}
}

// TotalPrice возвращает сумму заказа по позициям.
func (o Order) TotalPrice() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.LineTotal()
	}
	return total
}

// ItemCount возвращает суммарное количество напитков в заказе.
func (o Order) ItemCount() int {
	var count int
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// Summary собирает краткое описание: имя клиента и позиции через запятую.
func (o Order) Summary() string {
	parts := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		parts = append(parts, fmt.Sprintf("%d x %s", item.Quantity, item.Drink.Name))
	}
	return fmt.Sprintf("%s: %s", o.CustomerName, strings.Join(parts, ", "))
}

// WithStatus возвращает копию заказа с новым статусом. Переход в completed
// фиксирует completedAt; любой другой статус сбрасывает его.
func (o Order) WithStatus(status OrderStatus, at time.Time) Order {
	o.Status = status
	if status == OrderStatusCompleted {
		completed := at
		o.CompletedAt = &completed
	} else {
		o.CompletedAt = nil
	}
	return o
}

// WithItems возвращает копию заказа с заменённым списком позиций.
func (o Order) WithItems(items []OrderItem) Order {
	o.Items = items
	return o
}

// IsPending сообщает, что заказ ещё не взят в работу.
func (o Order) IsPending() bool { return o.Status == OrderStatusPending }

// IsInProgress сообщает, что заказ готовится.
func (o Order) IsInProgress() bool { return o.Status == OrderStatusInProgress }

// IsCompleted сообщает, что заказ выдан.
func (o Order) IsCompleted() bool { return o.Status == OrderStatusCompleted }

// IsCancelled сообщает, что заказ отменён.
func (o Order) IsCancelled() bool { return o.Status == OrderStatusCancelled }
