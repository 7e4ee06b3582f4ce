package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

func orderAt(createdAt time.Time, status domain.OrderStatus, items ...domain.OrderItem) domain.Order {
	order := domain.NewOrder("guest", items, "", "1", false, createdAt)
	order.Status = status
	return order
}

func item(drink domain.Drink, qty int) domain.OrderItem {
	return domain.NewOrderItem(drink, qty, "")
}

func TestTotalSalesBetween_OpenInterval(t *testing.T) {
	start := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

	orders := []domain.Order{
		// Ровно на границе start — исключается.
		orderAt(start, domain.OrderStatusPending, item(coffee(), 1)),
		// Ровно на границе end — исключается.
		orderAt(end, domain.OrderStatusPending, item(coffee(), 1)),
		// Внутри интервала.
		orderAt(start.Add(time.Hour), domain.OrderStatusCompleted, item(coffee(), 2)),
		// Внутри, но отменён.
		orderAt(start.Add(2*time.Hour), domain.OrderStatusCancelled, item(coffee(), 4)),
	}

	if got := domain.TotalSalesBetween(orders, start, end); got != 30.0 {
		t.Fatalf("expected 30.0, got %v", got)
	}
}

func TestRankPopularDrinks_AggregatesAcrossOrders(t *testing.T) {
	espresso := domain.Drink{ID: "espresso", Name: "Espresso", Price: 12, Variant: domain.CoffeeVariant{RoastLevel: "dark"}}
	now := time.Now().UTC()

	orders := []domain.Order{
		orderAt(now, domain.OrderStatusCompleted, item(espresso, 2), item(tea(), 1)),
		orderAt(now, domain.OrderStatusPending, item(espresso, 1)),
	}

	ranked := domain.RankPopularDrinks(orders, 5)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ranked))
	}
	if ranked[0].Drink.ID != "espresso" || ranked[0].Quantity != 3 {
		t.Fatalf("expected espresso x3 first, got %s x%d", ranked[0].Drink.ID, ranked[0].Quantity)
	}
	if ranked[1].Quantity != 1 {
		t.Fatalf("expected runner-up quantity 1, got %d", ranked[1].Quantity)
	}
}

func TestRankPopularDrinks_KeyIncludesVariant(t *testing.T) {
	coffeeSpecial := domain.Drink{ID: "special", Name: "Special", Price: 10, Variant: domain.CoffeeVariant{}}
	teaSpecial := domain.Drink{ID: "special", Name: "Special", Price: 10, Variant: domain.TeaVariant{TeaType: "green"}}
	now := time.Now().UTC()

	orders := []domain.Order{
		orderAt(now, domain.OrderStatusPending, item(coffeeSpecial, 2), item(teaSpecial, 2)),
	}

	ranked := domain.RankPopularDrinks(orders, 5)
	if len(ranked) != 2 {
		t.Fatalf("drinks with same id but different variants must not merge, got %d entries", len(ranked))
	}
}

func TestRankPopularDrinks_LimitAndTieBreak(t *testing.T) {
	now := time.Now().UTC()
	orders := []domain.Order{
		orderAt(now, domain.OrderStatusPending,
			item(coffee(), 1), item(tea(), 1), item(juice(), 1)),
	}

	ranked := domain.RankPopularDrinks(orders, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected limit 2, got %d", len(ranked))
	}
	// Равные количества сохраняют порядок первого появления.
	if ranked[0].Drink.ID != "cappuccino" || ranked[1].Drink.ID != "earl-grey" {
		t.Fatalf("expected first-seen tie break, got %s, %s", ranked[0].Drink.ID, ranked[1].Drink.ID)
	}
}

func TestRankPopularDrinks_DefaultLimit(t *testing.T) {
	now := time.Now().UTC()
	drinks := []domain.Drink{coffee(), tea(), juice(),
		{ID: "a", Name: "A", Price: 1, Variant: domain.CoffeeVariant{}},
		{ID: "b", Name: "B", Price: 1, Variant: domain.CoffeeVariant{}},
		{ID: "c", Name: "C", Price: 1, Variant: domain.CoffeeVariant{}},
	}

	items := make([]domain.OrderItem, 0, len(drinks))
	for _, d := range drinks {
		items = append(items, item(d, 1))
	}
	orders := []domain.Order{orderAt(now, domain.OrderStatusPending, items...)}

	ranked := domain.RankPopularDrinks(orders, 0)
	if len(ranked) != domain.DefaultPopularDrinksLimit {
		t.Fatalf("expected default limit %d, got %d", domain.DefaultPopularDrinksLimit, len(ranked))
	}
}
