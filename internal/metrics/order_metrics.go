package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики операций над заказами.
type OrderMetrics struct {
	// Счётчики мутаций
	ordersCreated prometheus.Counter
	ordersDeleted prometheus.Counter
	statusUpdates *prometheus.CounterVec

	// Гистограмма времени записи на диск
	persistDuration prometheus.Histogram

	// Счётчик запросов выручки
	salesQueries prometheus.Counter

	// Gauge активных подписчиков на поток заказов
	subscribers prometheus.Gauge
}

// NewOrderMetrics создаёт метрики и регистрирует их в реестре по умолчанию.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "barista_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "barista_orders_deleted_total",
			Help: "Total number of orders deleted",
		}),
		statusUpdates: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "barista_order_status_updates_total",
			Help: "Total number of order status transitions by target status",
		}, []string{"status"}),
		persistDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "barista_storage_persist_duration_seconds",
			Help:    "Duration of durable storage writes in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		salesQueries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "barista_sales_queries_total",
			Help: "Total number of sales aggregation queries",
		}),
		subscribers: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "barista_order_feed_subscribers",
			Help: "Number of active order feed subscribers",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderDeleted увеличивает счётчик удалённых заказов.
func (m *OrderMetrics) RecordOrderDeleted() {
	m.ordersDeleted.Inc()
}

// RecordStatusUpdate увеличивает счётчик переходов в указанный статус.
func (m *OrderMetrics) RecordStatusUpdate(status string) {
	m.statusUpdates.WithLabelValues(status).Inc()
}

// RecordPersistDuration записывает время записи в долговременное хранилище.
func (m *OrderMetrics) RecordPersistDuration(duration time.Duration) {
	m.persistDuration.Observe(duration.Seconds())
}

// RecordSalesQuery увеличивает счётчик агрегационных запросов выручки.
func (m *OrderMetrics) RecordSalesQuery() {
	m.salesQueries.Inc()
}

// SetSubscribers выставляет текущее число подписчиков потока заказов.
func (m *OrderMetrics) SetSubscribers(n int) {
	m.subscribers.Set(float64(n))
}
