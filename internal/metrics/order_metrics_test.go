package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, registry *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, family := range families {
		byName[family.GetName()] = family
	}
	return byName
}

func counterValue(t *testing.T, families map[string]*dto.MetricFamily, name string) float64 {
	t.Helper()
	family, ok := families[name]
	if !ok {
		t.Fatalf("metric %q not registered", name)
	}
	return family.GetMetric()[0].GetCounter().GetValue()
}

func TestOrderMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOrderMetricsWithRegisterer(registry)

	m.RecordOrderCreated()
	m.RecordOrderCreated()
	m.RecordOrderDeleted()
	m.RecordSalesQuery()

	families := gather(t, registry)
	if got := counterValue(t, families, "barista_orders_created_total"); got != 2 {
		t.Fatalf("expected 2 created, got %v", got)
	}
	if got := counterValue(t, families, "barista_orders_deleted_total"); got != 1 {
		t.Fatalf("expected 1 deleted, got %v", got)
	}
	if got := counterValue(t, families, "barista_sales_queries_total"); got != 1 {
		t.Fatalf("expected 1 sales query, got %v", got)
	}
}

func TestOrderMetrics_StatusUpdatesByLabel(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOrderMetricsWithRegisterer(registry)

	m.RecordStatusUpdate("completed")
	m.RecordStatusUpdate("completed")
	m.RecordStatusUpdate("cancelled")

	families := gather(t, registry)
	family, ok := families["barista_order_status_updates_total"]
	if !ok {
		t.Fatal("status updates metric not registered")
	}

	byStatus := make(map[string]float64)
	for _, metric := range family.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "status" {
				byStatus[label.GetValue()] = metric.GetCounter().GetValue()
			}
		}
	}
	if byStatus["completed"] != 2 || byStatus["cancelled"] != 1 {
		t.Fatalf("unexpected label values: %+v", byStatus)
	}
}

func TestOrderMetrics_PersistDurationAndSubscribers(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOrderMetricsWithRegisterer(registry)

	m.RecordPersistDuration(3 * time.Millisecond)
	m.RecordPersistDuration(7 * time.Millisecond)
	m.SetSubscribers(4)

	families := gather(t, registry)

	histogram := families["barista_storage_persist_duration_seconds"].GetMetric()[0].GetHistogram()
	if histogram.GetSampleCount() != 2 {
		t.Fatalf("expected 2 observations, got %d", histogram.GetSampleCount())
	}
	if got := histogram.GetSampleSum(); got < 0.009 || got > 0.011 {
		t.Fatalf("expected sum around 0.010, got %v", got)
	}

	gauge := families["barista_order_feed_subscribers"].GetMetric()[0].GetGauge()
	if gauge.GetValue() != 4 {
		t.Fatalf("expected 4 subscribers, got %v", gauge.GetValue())
	}
}

// Повторная регистрация тех же метрик переиспользует существующие коллекторы.
func TestOrderMetrics_ReuseOnDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newOrderMetricsWithRegisterer(registry)
	second := newOrderMetricsWithRegisterer(registry)

	first.RecordOrderCreated()
	second.RecordOrderCreated()

	families := gather(t, registry)
	if got := counterValue(t, families, "barista_orders_created_total"); got != 2 {
		t.Fatalf("expected shared counter with value 2, got %v", got)
	}
}
