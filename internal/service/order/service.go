// Package order реализует оркестрацию заказов: валидацию создания, смену
// статусов с побочными эффектами и оконные запросы выручки поверх репозитория.
package order

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/metrics"
)

// CreateOrderInput — параметры создания заказа.
type CreateOrderInput struct {
	CustomerName string
	Items        []domain.OrderItem
	Notes        string
	TableNumber  string
	IsTakeAway   bool
}

// Service — единственная поверхность, через которую презентационный слой
// работает с заказами (помимо подписки на поток репозитория).
type Service struct {
	orders   domain.OrderRepository
	timeline domain.TimelineRepository
	logger   *log.Entry
	metrics  *metrics.OrderMetrics
	now      func() time.Time
}

// NewService создаёт рабочий экземпляр сервиса.
func NewService(orders domain.OrderRepository, timeline domain.TimelineRepository, logger *log.Entry) *Service {
	return newService(orders, timeline, logger, metrics.NewOrderMetrics(), time.Now)
}

// NewServiceWithClock создаёт сервис с подменяемыми часами и без метрик (для тестов).
func NewServiceWithClock(orders domain.OrderRepository, timeline domain.TimelineRepository, logger *log.Entry, now func() time.Time) *Service {
	return newService(orders, timeline, logger, nil, now)
}

func newService(orders domain.OrderRepository, timeline domain.TimelineRepository, logger *log.Entry, m *metrics.OrderMetrics, now func() time.Time) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		orders:   orders,
		timeline: timeline,
		logger:   logger,
		metrics:  m,
		now:      now,
	}
}

// CreateOrder проверяет инварианты создания и делегирует репозиторию.
// Ошибки валидации возвращаются до какой-либо записи. Для заказа навынос
// номер столика принудительно очищается, даже если вызывающая сторона его передала.
func (s *Service) CreateOrder(in CreateOrderInput) (domain.Order, error) {
	if in.CustomerName == "" {
		return domain.Order{}, domain.ErrCustomerRequired
	}
	if len(in.Items) == 0 {
		return domain.Order{}, domain.ErrItemsRequired
	}
	if !in.IsTakeAway && in.TableNumber == "" {
		return domain.Order{}, domain.ErrTableNumberRequired
	}

	tableNumber := in.TableNumber
	if in.IsTakeAway {
		tableNumber = ""
	}

	order := domain.NewOrder(in.CustomerName, in.Items, in.Notes, tableNumber, in.IsTakeAway, s.now().UTC())
	created, err := s.orders.Create(order)
	if err != nil {
		s.logger.WithError(err).Warn("create order failed")
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}
	s.logger.WithFields(log.Fields{
		"order_id": created.ID,
		"summary":  created.Summary(),
		"total":    created.TotalPrice(),
	}).Info("order created")
	return created, nil
}

// UpdateOrderStatus переводит заказ в новый статус. Переход в completed
// фиксирует completedAt; любой другой целевой статус сбрасывает его.
// Таблицы допустимых переходов нет: любой статус может смениться любым.
func (s *Service) UpdateOrderStatus(orderID string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.ErrStatusUnknown
	}

	current, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	updated, err := s.orders.Update(current.WithStatus(status, s.now().UTC()))
	if err != nil {
		return domain.Order{}, err
	}

	s.appendTimeline(orderID, current.Status, status)
	if s.metrics != nil {
		s.metrics.RecordStatusUpdate(string(status))
	}
	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"from":     current.Status,
		"to":       status,
	}).Info("order status updated")
	return updated, nil
}

// DeleteOrder удаляет заказ; отсутствующий id — не ошибка.
func (s *Service) DeleteOrder(orderID string) error {
	if err := s.orders.Delete(orderID); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordOrderDeleted()
	}
	return nil
}

// ListOrders возвращает все заказы.
func (s *Service) ListOrders() ([]domain.Order, error) {
	return s.orders.List()
}

// GetOrder возвращает заказ или ErrOrderNotFound.
func (s *Service) GetOrder(orderID string) (domain.Order, error) {
	return s.orders.Get(orderID)
}

// OrdersByStatus возвращает заказы с указанным статусом.
func (s *Service) OrdersByStatus(status domain.OrderStatus) ([]domain.Order, error) {
	if !status.Valid() {
		return nil, domain.ErrStatusUnknown
	}
	return s.orders.ByStatus(status)
}

// PopularDrinks возвращает рейтинг напитков по заказанному количеству.
func (s *Service) PopularDrinks(limit int) ([]domain.DrinkPopularity, error) {
	return s.orders.PopularDrinks(limit)
}

// Timeline возвращает историю смен статусов заказа.
func (s *Service) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	if s.timeline == nil {
		return nil, nil
	}
	return s.timeline.List(orderID)
}

// TodaysSales считает выручку с местной полуночи до текущего момента.
func (s *Service) TodaysSales() (float64, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.SalesBetween(midnight, now)
}

// WeeklySales считает выручку с полуночи последнего понедельника.
func (s *Service) WeeklySales() (float64, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	monday := midnight.AddDate(0, 0, -daysSinceMonday)
	return s.SalesBetween(monday, now)
}

// MonthlySales считает выручку с полуночи первого числа текущего месяца.
func (s *Service) MonthlySales() (float64, error) {
	now := s.now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.SalesBetween(firstOfMonth, now)
}

// SalesBetween делегирует репозиторию запрос выручки в произвольном окне.
func (s *Service) SalesBetween(start, end time.Time) (float64, error) {
	total, err := s.orders.TotalSales(start, end)
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.RecordSalesQuery()
	}
	return total, nil
}

// appendTimeline фиксирует смену статуса; сбой истории не должен ломать мутацию.
func (s *Service) appendTimeline(orderID string, from, to domain.OrderStatus) {
	if s.timeline == nil {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  orderID,
		From:     from,
		To:       to,
		Occurred: s.now().UTC(),
	}
	if err := s.timeline.Append(event); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("append timeline event failed")
	}
}

// CalculateTotalRevenue — чистая функция: сумма totalPrice без отменённых
// заказов. Применима к любому внешнему снимку, репозиторий не нужен.
func CalculateTotalRevenue(orders []domain.Order) float64 {
	var total float64
	for _, order := range orders {
		if order.IsCancelled() {
			continue
		}
		total += order.TotalPrice()
	}
	return total
}

// GroupOrdersByStatus — чистая функция: группировка по статусу.
// Все четыре ключа присутствуют всегда, даже с пустыми списками.
func GroupOrdersByStatus(orders []domain.Order) map[domain.OrderStatus][]domain.Order {
	grouped := make(map[domain.OrderStatus][]domain.Order, len(domain.AllOrderStatuses))
	for _, status := range domain.AllOrderStatuses {
		grouped[status] = []domain.Order{}
	}
	for _, order := range orders {
		grouped[order.Status] = append(grouped[order.Status], order)
	}
	return grouped
}
