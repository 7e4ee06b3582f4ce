package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/storage/stream"
)

// orderRepositoryInMemory — transient-реализация OrderRepository.
// Содержимое теряется при перезапуске процесса.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
	hub   *stream.Hub
}

// NewOrderRepository возвращает in-memory репозиторий для разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	r := &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
		hub:   stream.NewHub(),
	}
	// Пустой начальный снимок: подписчики всегда получают текущее
	// состояние сразу при подписке.
	r.hub.Publish(nil)
	return r
}

// List возвращает все заказы, отсортированные по времени создания.
func (r *orderRepositoryInMemory) List() ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(), nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// Create выдаёт заказу новый идентификатор и сохраняет его.
// Идентификатор, пришедший от вызывающей стороны, затирается: за выдачу
// идентификаторов отвечает репозиторий.
func (r *orderRepositoryInMemory) Create(order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = uuid.NewString()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	r.items[order.ID] = order

	r.hub.Publish(r.snapshotLocked())
	return order, nil
}

// Update целиком заменяет заказ (last-write-wins) или возвращает ErrOrderNotFound.
func (r *orderRepositoryInMemory) Update(order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[order.ID]; !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	r.items[order.ID] = order

	r.hub.Publish(r.snapshotLocked())
	return order, nil
}

// Delete удаляет заказ; отсутствующий id — тихий no-op.
// Уведомление рассылается в любом случае.
func (r *orderRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	r.hub.Publish(r.snapshotLocked())
	return nil
}

// Subscribe подключает подписчика к потоку полных снимков.
func (r *orderRepositoryInMemory) Subscribe() (<-chan []domain.Order, func()) {
	return r.hub.Subscribe()
}

// ByStatus возвращает заказы с указанным статусом.
func (r *orderRepositoryInMemory) ByStatus(status domain.OrderStatus) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.snapshotLocked() {
		if order.Status == status {
			result = append(result, order)
		}
	}
	return result, nil
}

// TotalSales суммирует выручку в открытом интервале (start, end).
func (r *orderRepositoryInMemory) TotalSales(start, end time.Time) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.TotalSalesBetween(r.snapshotLocked(), start, end), nil
}

// PopularDrinks возвращает напитки по убыванию заказанного количества.
func (r *orderRepositoryInMemory) PopularDrinks(limit int) ([]domain.DrinkPopularity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.RankPopularDrinks(r.snapshotLocked(), limit), nil
}

// snapshotLocked собирает копию всех заказов; вызывать под блокировкой.
func (r *orderRepositoryInMemory) snapshotLocked() []domain.Order {
	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
