package order_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/barista/internal/domain"
	"github.com/vladislavdragonenkov/barista/internal/service/order"
	"github.com/vladislavdragonenkov/barista/internal/storage/memory"
)

func cappuccino() domain.Drink {
	return domain.Drink{
		ID:      "cappuccino",
		Name:    "Cappuccino",
		Price:   15.0,
		Variant: domain.CoffeeVariant{RoastLevel: "medium", HasMilk: true},
	}
}

// Среда, 26 августа 2026: полночь — 26.08 00:00, понедельник — 24.08 00:00.
var testNow = time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*order.Service, domain.OrderRepository) {
	t.Helper()
	repo := memory.NewOrderRepository()
	svc := order.NewServiceWithClock(repo, memory.NewTimelineRepository(), nil, func() time.Time { return testNow })
	return svc, repo
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, repo := newService(t)
	items := []domain.OrderItem{domain.NewOrderItem(cappuccino(), 1, "")}

	tests := []struct {
		name string
		in   order.CreateOrderInput
		want error
	}{
		{"empty customer", order.CreateOrderInput{Items: items, TableNumber: "5"}, domain.ErrCustomerRequired},
		{"empty items", order.CreateOrderInput{CustomerName: "Ali", TableNumber: "5"}, domain.ErrItemsRequired},
		{"dine-in without table", order.CreateOrderInput{CustomerName: "Ali", Items: items}, domain.ErrTableNumberRequired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(tc.in)
			require.ErrorIs(t, err, tc.want)
			require.True(t, domain.IsInvalidArgument(err))
		})
	}

	// Ни одна неудачная попытка не записала в репозиторий.
	orders, err := repo.List()
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCreateOrder_Scenario(t *testing.T) {
	svc, _ := newService(t)

	created, err := svc.CreateOrder(order.CreateOrderInput{
		CustomerName: "Ali",
		Items:        []domain.OrderItem{domain.NewOrderItem(cappuccino(), 2, "")},
		TableNumber:  "5",
	})
	require.NoError(t, err)

	require.Equal(t, 30.0, created.TotalPrice())
	require.Equal(t, domain.OrderStatusPending, created.Status)
	require.Nil(t, created.CompletedAt)
	require.Equal(t, "5", created.TableNumber)
	require.Equal(t, "Ali: 2 x Cappuccino", created.Summary())
}

func TestCreateOrder_TakeAwayDropsTableNumber(t *testing.T) {
	svc, _ := newService(t)

	created, err := svc.CreateOrder(order.CreateOrderInput{
		CustomerName: "Ali",
		Items:        []domain.OrderItem{domain.NewOrderItem(cappuccino(), 1, "")},
		TableNumber:  "5",
		IsTakeAway:   true,
	})
	require.NoError(t, err)
	require.True(t, created.IsTakeAway)
	require.Empty(t, created.TableNumber, "take-away order must not keep the table number")
}

func TestUpdateOrderStatus(t *testing.T) {
	svc, _ := newService(t)

	created, err := svc.CreateOrder(order.CreateOrderInput{
		CustomerName: "Ali",
		Items:        []domain.OrderItem{domain.NewOrderItem(cappuccino(), 1, "")},
		TableNumber:  "5",
	})
	require.NoError(t, err)

	completed, err := svc.UpdateOrderStatus(created.ID, domain.OrderStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)
	require.True(t, completed.CompletedAt.Equal(testNow))

	// Любой другой статус сбрасывает completedAt.
	cancelled, err := svc.UpdateOrderStatus(created.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	require.Nil(t, cancelled.CompletedAt)

	events, err := svc.Timeline(created.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, domain.OrderStatusPending, events[0].From)
	require.Equal(t, domain.OrderStatusCompleted, events[0].To)
	require.Equal(t, domain.OrderStatusCancelled, events[1].To)
}

func TestUpdateOrderStatus_Errors(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.UpdateOrderStatus("missing", domain.OrderStatusCompleted)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = svc.UpdateOrderStatus("missing", domain.OrderStatus("shipped"))
	require.ErrorIs(t, err, domain.ErrStatusUnknown)
}

func TestDeleteOrder(t *testing.T) {
	svc, repo := newService(t)

	created, err := svc.CreateOrder(order.CreateOrderInput{
		CustomerName: "Ali",
		Items:        []domain.OrderItem{domain.NewOrderItem(cappuccino(), 1, "")},
		IsTakeAway:   true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(created.ID))
	// Повторное удаление — не ошибка.
	require.NoError(t, svc.DeleteOrder(created.ID))

	orders, err := repo.List()
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestOrdersByStatus_UnknownStatus(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.OrdersByStatus(domain.OrderStatus("shipped"))
	require.ErrorIs(t, err, domain.ErrStatusUnknown)
}

func seedSalesOrders(t *testing.T, repo domain.OrderRepository) {
	t.Helper()

	seed := func(createdAt time.Time, qty int, status domain.OrderStatus) {
		o := domain.NewOrder("guest",
			[]domain.OrderItem{domain.NewOrderItem(cappuccino(), qty, "")}, "", "", true, createdAt)
		o.Status = status
		_, err := repo.Create(o)
		require.NoError(t, err)
	}

	// Сегодня днём: во всех окнах.
	seed(time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC), 2, domain.OrderStatusCompleted)
	// Ровно местная полночь: граница открытая, в "сегодня" не входит.
	seed(time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), 1, domain.OrderStatusPending)
	// Вчера: неделя и месяц.
	seed(time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC), 1, domain.OrderStatusCompleted)
	// Прошлый месяц и прошлая неделя: нигде.
	seed(time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC), 1, domain.OrderStatusCompleted)
	// Отменён: нигде.
	seed(time.Date(2026, 8, 26, 11, 0, 0, 0, time.UTC), 4, domain.OrderStatusCancelled)
}

func TestSalesWindows(t *testing.T) {
	svc, repo := newService(t)
	seedSalesOrders(t, repo)

	today, err := svc.TodaysSales()
	require.NoError(t, err)
	require.Equal(t, 30.0, today)

	weekly, err := svc.WeeklySales()
	require.NoError(t, err)
	require.Equal(t, 60.0, weekly)

	monthly, err := svc.MonthlySales()
	require.NoError(t, err)
	require.Equal(t, 60.0, monthly)
}

func TestSalesBetween(t *testing.T) {
	svc, repo := newService(t)
	seedSalesOrders(t, repo)

	total, err := svc.SalesBetween(
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 15.0, total)
}

func TestCalculateTotalRevenue(t *testing.T) {
	item := domain.NewOrderItem(cappuccino(), 2, "")
	active := domain.NewOrder("a", []domain.OrderItem{item}, "", "1", false, testNow)
	cancelled := domain.NewOrder("b", []domain.OrderItem{item}, "", "2", false, testNow)
	cancelled.Status = domain.OrderStatusCancelled

	require.Equal(t, 30.0, order.CalculateTotalRevenue([]domain.Order{active, cancelled}))
	require.Equal(t, 0.0, order.CalculateTotalRevenue(nil))
}

func TestGroupOrdersByStatus(t *testing.T) {
	item := domain.NewOrderItem(cappuccino(), 1, "")
	pending := domain.NewOrder("a", []domain.OrderItem{item}, "", "1", false, testNow)
	completed := domain.NewOrder("b", []domain.OrderItem{item}, "", "2", false, testNow).
		WithStatus(domain.OrderStatusCompleted, testNow)

	grouped := order.GroupOrdersByStatus([]domain.Order{pending, completed})

	// Все четыре ключа присутствуют всегда.
	require.Len(t, grouped, len(domain.AllOrderStatuses))
	for _, status := range domain.AllOrderStatuses {
		require.Contains(t, grouped, status)
	}
	require.Len(t, grouped[domain.OrderStatusPending], 1)
	require.Len(t, grouped[domain.OrderStatusCompleted], 1)
	require.Empty(t, grouped[domain.OrderStatusInProgress])
	require.Empty(t, grouped[domain.OrderStatusCancelled])
}
