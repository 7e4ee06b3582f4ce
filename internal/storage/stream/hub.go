// Package stream реализует внутрипроцессную рассылку полных снимков списка
// заказов. Подписчики получают независимые копии; отстающий подписчик никогда
// не блокирует мутацию — старый снимок вытесняется новым.
package stream

import (
	"sync"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

// Hub — широковещательный канал снимков. Нулевое значение непригодно,
// используйте NewHub.
type Hub struct {
	mu      sync.Mutex
	subs    map[int]chan []domain.Order
	nextID  int
	last    []domain.Order
	hasLast bool
}

// NewHub создаёт пустой hub без подписчиков.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan []domain.Order)}
}

// Subscribe регистрирует подписчика и возвращает канал снимков вместе с
// функцией отписки. Последний опубликованный снимок доставляется сразу.
func (h *Hub) Subscribe() (<-chan []domain.Order, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan []domain.Order, 1)
	h.subs[id] = ch
	if h.hasLast {
		ch <- copySnapshot(h.last)
	}

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish запоминает снимок и рассылает его всем подписчикам.
// Доставка fire-and-forget: если подписчик не успел прочитать предыдущий
// снимок, тот заменяется свежим.
func (h *Hub) Publish(snapshot []domain.Order) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = copySnapshot(snapshot)
	h.hasLast = true

	for _, ch := range h.subs {
		send(ch, copySnapshot(snapshot))
	}
}

// SubscriberCount возвращает число активных подписчиков.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func send(ch chan []domain.Order, snapshot []domain.Order) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
			// Вытесняем непрочитанный снимок.
			select {
			case <-ch:
			default:
			}
		}
	}
}

func copySnapshot(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	return out
}
