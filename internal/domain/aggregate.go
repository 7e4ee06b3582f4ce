package domain

import (
	"sort"
	"time"
)

// TotalSalesBetween суммирует totalPrice заказов, созданных внутри открытого
// интервала (start, end). Отменённые заказы не учитываются. Заказ, созданный
// ровно в start или в end, в сумму не попадает; вызывающей стороне с
// включающими границами нужно сдвинуть аргументы самостоятельно.
func TotalSalesBetween(orders []Order, start, end time.Time) float64 {
	var total float64
	for _, order := range orders {
		if order.IsCancelled() {
			continue
		}
		if order.CreatedAt.After(start) && order.CreatedAt.Before(end) {
			total += order.TotalPrice()
		}
	}
	return total
}

// RankPopularDrinks агрегирует количество по всем заказам и позициям.
// Ключ — (вариант, id), поэтому одноимённые напитки разных вариантов не
// сливаются. Сортировка по убыванию количества, при равенстве — порядок
// первого появления. limit <= 0 трактуется как DefaultPopularDrinksLimit.
func RankPopularDrinks(orders []Order, limit int) []DrinkPopularity {
	if limit <= 0 {
		limit = DefaultPopularDrinksLimit
	}

	totals := make(map[DrinkKey]int)
	firstSeen := make(map[DrinkKey]int)
	drinks := make(map[DrinkKey]Drink)

	for _, order := range orders {
		for _, item := range order.Items {
			key := item.Drink.Key()
			if _, ok := totals[key]; !ok {
				firstSeen[key] = len(firstSeen)
				drinks[key] = item.Drink
			}
			totals[key] += item.Quantity
		}
	}

	ranked := make([]DrinkPopularity, 0, len(totals))
	for key, qty := range totals {
		ranked = append(ranked, DrinkPopularity{Drink: drinks[key], Quantity: qty})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return firstSeen[ranked[i].Drink.Key()] < firstSeen[ranked[j].Drink.Key()]
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
