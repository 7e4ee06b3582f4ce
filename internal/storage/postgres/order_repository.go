package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/storage/stream"
)

const queryTimeout = 5 * time.Second

// orderRepositoryPostgres — долговременная реализация OrderRepository поверх
// PostgreSQL. Позиции заказа лежат в JSONB-колонке: заказ читается и пишется
// целиком, как и в файловом хранилище.
type orderRepositoryPostgres struct {
	mu     sync.Mutex
	store  *Store
	hub    *stream.Hub
	logger *log.Entry
}

// NewOrderRepository читает текущее содержимое таблицы и возвращает готовый
// репозиторий; начальный снимок публикуется для будущих подписчиков.
func NewOrderRepository(store *Store, logger *log.Entry) (domain.OrderRepository, error) {
	if logger == nil {
		logger = log.New().WithField("component", "postgres-storage")
	}

	r := &orderRepositoryPostgres{
		store:  store,
		hub:    stream.NewHub(),
		logger: logger,
	}

	orders, err := r.loadAll()
	if err != nil {
		return nil, err
	}
	r.logger.WithField("orders", len(orders)).Info("orders loaded")
	r.hub.Publish(orders)
	return r, nil
}

// List возвращает все заказы, отсортированные по времени создания.
func (r *orderRepositoryPostgres) List() ([]domain.Order, error) {
	return r.loadAll()
}

// Get возвращает заказ или ErrOrderNotFound.
func (r *orderRepositoryPostgres) Get(id string) (domain.Order, error) {
	ctx, cancel := queryContext()
	defer cancel()

	row := r.store.DB().QueryRowContext(ctx, `
		SELECT id, customer_name, status, notes, table_number, is_take_away, created_at, completed_at, items
		FROM orders WHERE id = $1`, id)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: get order: %v", domain.ErrStorage, err)
	}
	return order, nil
}

// Create выдаёт заказу новый идентификатор, вставляет строку и рассылает
// уведомление со свежим снимком.
func (r *orderRepositoryPostgres) Create(order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = uuid.NewString()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	items, err := json.Marshal(order.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: encode items: %v", domain.ErrStorage, err)
	}

	ctx, cancel := queryContext()
	defer cancel()

	_, err = r.store.DB().ExecContext(ctx, `
		INSERT INTO orders (id, customer_name, status, notes, table_number, is_take_away, created_at, completed_at, items)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)`,
		order.ID, order.CustomerName, string(order.Status), order.Notes, order.TableNumber,
		order.IsTakeAway, order.CreatedAt, order.CompletedAt, items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: insert order: %v", domain.ErrStorage, err)
	}

	r.publishSnapshot()
	return order, nil
}

// Update целиком заменяет строку заказа или возвращает ErrOrderNotFound.
func (r *orderRepositoryPostgres) Update(order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := json.Marshal(order.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: encode items: %v", domain.ErrStorage, err)
	}

	ctx, cancel := queryContext()
	defer cancel()

	res, err := r.store.DB().ExecContext(ctx, `
		UPDATE orders
		SET customer_name = $2, status = $3, notes = NULLIF($4, ''), table_number = NULLIF($5, ''),
		    is_take_away = $6, created_at = $7, completed_at = $8, items = $9
		WHERE id = $1`,
		order.ID, order.CustomerName, string(order.Status), order.Notes, order.TableNumber,
		order.IsTakeAway, order.CreatedAt, order.CompletedAt, items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: update order: %v", domain.ErrStorage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: update order: %v", domain.ErrStorage, err)
	}
	if affected == 0 {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	r.publishSnapshot()
	return order, nil
}

// Delete удаляет строку; отсутствующий id — тихий no-op.
// Уведомление рассылается в любом случае.
func (r *orderRepositoryPostgres) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := queryContext()
	defer cancel()

	if _, err := r.store.DB().ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%w: delete order: %v", domain.ErrStorage, err)
	}

	r.publishSnapshot()
	return nil
}

// Subscribe подключает подписчика; последний снимок доставляется сразу.
func (r *orderRepositoryPostgres) Subscribe() (<-chan []domain.Order, func()) {
	return r.hub.Subscribe()
}

// ByStatus возвращает заказы с указанным статусом.
func (r *orderRepositoryPostgres) ByStatus(status domain.OrderStatus) ([]domain.Order, error) {
	ctx, cancel := queryContext()
	defer cancel()

	rows, err := r.store.DB().QueryContext(ctx, `
		SELECT id, customer_name, status, notes, table_number, is_take_away, created_at, completed_at, items
		FROM orders WHERE status = $1 ORDER BY created_at, id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("%w: list orders by status: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// TotalSales считается в Go поверх полного снимка, чтобы семантика открытого
// интервала и исключения отменённых заказов совпадала со всеми хранилищами.
func (r *orderRepositoryPostgres) TotalSales(start, end time.Time) (float64, error) {
	orders, err := r.loadAll()
	if err != nil {
		return 0, err
	}
	return domain.TotalSalesBetween(orders, start, end), nil
}

// PopularDrinks возвращает напитки по убыванию заказанного количества.
func (r *orderRepositoryPostgres) PopularDrinks(limit int) ([]domain.DrinkPopularity, error) {
	orders, err := r.loadAll()
	if err != nil {
		return nil, err
	}
	return domain.RankPopularDrinks(orders, limit), nil
}

func (r *orderRepositoryPostgres) loadAll() ([]domain.Order, error) {
	ctx, cancel := queryContext()
	defer cancel()

	rows, err := r.store.DB().QueryContext(ctx, `
		SELECT id, customer_name, status, notes, table_number, is_take_away, created_at, completed_at, items
		FROM orders ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *orderRepositoryPostgres) publishSnapshot() {
	orders, err := r.loadAll()
	if err != nil {
		r.logger.WithError(err).Warn("snapshot reload for broadcast failed")
		return
	}
	r.hub.Publish(orders)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order       domain.Order
		status      string
		notes       sql.NullString
		tableNumber sql.NullString
		completedAt sql.NullTime
		items       []byte
	)

	err := row.Scan(&order.ID, &order.CustomerName, &status, &notes, &tableNumber,
		&order.IsTakeAway, &order.CreatedAt, &completedAt, &items)
	if err != nil {
		return domain.Order{}, err
	}

	order.Status = domain.OrderStatus(status)
	order.Notes = notes.String
	order.TableNumber = tableNumber.String
	if completedAt.Valid {
		t := completedAt.Time
		order.CompletedAt = &t
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return domain.Order{}, fmt.Errorf("decode items: %w", err)
	}
	return order, nil
}

func collectOrders(rows *sql.Rows) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan order: %v", domain.ErrStorage, err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate orders: %v", domain.ErrStorage, err)
	}
	return orders, nil
}

func queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), queryTimeout)
}

var _ domain.OrderRepository = (*orderRepositoryPostgres)(nil)
