// Package file реализует долговременное хранилище заказов в одном JSON-файле.
// Карта в памяти служит кэшем чтения; каждая мутация сериализует весь набор
// заказов и атомарно (tmp + rename) перезаписывает файл.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/metrics"
	"github.com/vladislavdragonenkov/barista/internal/storage/stream"
)

// OrdersFileName — имя файла с заказами внутри каталога данных.
const OrdersFileName = "orders.json"

type orderRepositoryFile struct {
	mu      sync.Mutex
	path    string
	items   map[string]domain.Order
	hub     *stream.Hub
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// NewOrderRepository загружает существующий файл (если он есть) и возвращает
// готовый репозиторий. Повреждённый файл — ошибка конструирования: молча
// выбросить историю заказов хуже, чем упасть на старте.
func NewOrderRepository(dirs domain.DataDirProvider, logger *log.Entry) (domain.OrderRepository, error) {
	return newOrderRepository(dirs, logger, metrics.NewOrderMetrics())
}

// NewOrderRepositoryWithoutMetrics — вариант без метрик (для тестов).
func NewOrderRepositoryWithoutMetrics(dirs domain.DataDirProvider, logger *log.Entry) (domain.OrderRepository, error) {
	return newOrderRepository(dirs, logger, nil)
}

func newOrderRepository(dirs domain.DataDirProvider, logger *log.Entry, m *metrics.OrderMetrics) (domain.OrderRepository, error) {
	if logger == nil {
		logger = log.New().WithField("component", "file-storage")
	}

	dir, err := dirs.DataDir()
	if err != nil {
		return nil, fmt.Errorf("%w: resolve data dir: %v", domain.ErrStorage, err)
	}

	r := &orderRepositoryFile{
		path:    filepath.Join(dir, OrdersFileName),
		items:   make(map[string]domain.Order),
		hub:     stream.NewHub(),
		logger:  logger,
		metrics: m,
	}

	if err := r.load(); err != nil {
		return nil, err
	}

	// Начальный снимок: поздние подписчики получат его при подписке.
	r.hub.Publish(r.snapshotLocked())
	return r, nil
}

// load читает файл в кэш. Отсутствующий файл означает пустое хранилище.
func (r *orderRepositoryFile) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.WithField("path", r.path).Info("orders file absent, starting empty")
			return nil
		}
		return fmt.Errorf("%w: read %s: %v", domain.ErrStorage, r.path, err)
	}

	var orders []domain.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, r.path, err)
	}

	for _, order := range orders {
		r.items[order.ID] = order
	}
	r.logger.WithFields(log.Fields{"path": r.path, "orders": len(orders)}).Info("orders loaded")
	return nil
}

// persistLocked сериализует все заказы и атомарно заменяет файл.
// Вызывать под блокировкой.
func (r *orderRepositoryFile) persistLocked() error {
	start := time.Now()

	data, err := json.MarshalIndent(r.snapshotLocked(), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode orders: %v", domain.ErrStorage, err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %v", domain.ErrStorage, tmp, err)
	}

	if r.metrics != nil {
		r.metrics.RecordPersistDuration(time.Since(start))
	}
	return nil
}

// List возвращает все заказы, отсортированные по времени создания.
func (r *orderRepositoryFile) List() ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(), nil
}

// Get возвращает заказ или ErrOrderNotFound.
func (r *orderRepositoryFile) Get(id string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// Create выдаёт заказу новый идентификатор, сохраняет набор на диск и
// рассылает уведомление. При сбое записи кэш откатывается.
func (r *orderRepositoryFile) Create(order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = uuid.NewString()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	r.items[order.ID] = order
	if err := r.persistLocked(); err != nil {
		delete(r.items, order.ID)
		return domain.Order{}, err
	}

	r.hub.Publish(r.snapshotLocked())
	return order, nil
}

// Update целиком заменяет заказ или возвращает ErrOrderNotFound.
func (r *orderRepositoryFile) Update(order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, ok := r.items[order.ID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	r.items[order.ID] = order
	if err := r.persistLocked(); err != nil {
		r.items[order.ID] = previous
		return domain.Order{}, err
	}

	r.hub.Publish(r.snapshotLocked())
	return order, nil
}

// Delete удаляет заказ; отсутствующий id — тихий no-op, но уведомление
// рассылается в любом случае.
func (r *orderRepositoryFile) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, ok := r.items[id]
	if ok {
		delete(r.items, id)
		if err := r.persistLocked(); err != nil {
			r.items[id] = previous
			return err
		}
	}

	r.hub.Publish(r.snapshotLocked())
	return nil
}

// Subscribe подключает подписчика; последний снимок доставляется сразу.
func (r *orderRepositoryFile) Subscribe() (<-chan []domain.Order, func()) {
	return r.hub.Subscribe()
}

// ByStatus возвращает заказы с указанным статусом.
func (r *orderRepositoryFile) ByStatus(status domain.OrderStatus) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Order, 0)
	for _, order := range r.snapshotLocked() {
		if order.Status == status {
			result = append(result, order)
		}
	}
	return result, nil
}

// TotalSales суммирует выручку в открытом интервале (start, end).
func (r *orderRepositoryFile) TotalSales(start, end time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.TotalSalesBetween(r.snapshotLocked(), start, end), nil
}

// PopularDrinks возвращает напитки по убыванию заказанного количества.
func (r *orderRepositoryFile) PopularDrinks(limit int) ([]domain.DrinkPopularity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.RankPopularDrinks(r.snapshotLocked(), limit), nil
}

func (r *orderRepositoryFile) snapshotLocked() []domain.Order {
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

var _ domain.OrderRepository = (*orderRepositoryFile)(nil)
