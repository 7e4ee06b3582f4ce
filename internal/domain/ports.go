package domain

import "time"

// DefaultPopularDrinksLimit используется, когда вызывающая сторона не задала лимит.
const DefaultPopularDrinksLimit = 5

// OrderRepository — контракт хранилища заказов. Его выполняют
// transient-реализация в памяти, файловая и PostgreSQL-реализации.
type OrderRepository interface {
	// List возвращает все заказы.
	List() ([]Order, error)
	// Get возвращает заказ или ErrOrderNotFound.
	Get(id string) (Order, error)
	// Create выдаёт заказу новый идентификатор (входной затирается),
	// сохраняет его и рассылает уведомление подписчикам.
	Create(order Order) (Order, error)
	// Update целиком заменяет заказ (last-write-wins) или возвращает
	// ErrOrderNotFound; рассылает уведомление.
	Update(order Order) (Order, error)
	// Delete удаляет заказ; отсутствующий id — не ошибка.
	// Уведомление рассылается в любом случае.
	Delete(id string) error
	// Subscribe возвращает канал полных снимков списка заказов и функцию
	// отписки. Последний известный снимок доставляется сразу при подписке.
	Subscribe() (<-chan []Order, func())
	// ByStatus возвращает заказы с указанным статусом.
	ByStatus(status OrderStatus) ([]Order, error)
	// TotalSales суммирует totalPrice неотменённых заказов, созданных
	// строго после start и строго до end (обе границы исключаются).
	TotalSales(start, end time.Time) (float64, error)
	// PopularDrinks возвращает напитки по убыванию заказанного количества.
	PopularDrinks(limit int) ([]DrinkPopularity, error)
}

// DrinkPopularity — напиток и суммарное заказанное количество.
type DrinkPopularity struct {
	Drink    Drink
	Quantity int
}

// TimelineEvent фиксирует смену статуса заказа.
type TimelineEvent struct {
	OrderID  string
	From     OrderStatus
	To       OrderStatus
	Occurred time.Time
}

// TimelineRepository хранит историю смен статусов.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// DataDirProvider выдаёт каталог для файлов долговременного хранилища.
// Реализацию внедряет хост-окружение, ядро её не определяет.
type DataDirProvider interface {
	DataDir() (string, error)
}

// DataDirFunc адаптирует функцию к DataDirProvider.
type DataDirFunc func() (string, error)

// DataDir вызывает функцию-адаптер.
func (f DataDirFunc) DataDir() (string, error) { return f() }
