package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/barista/internal/health"
	"github.com/vladislavdragonenkov/barista/internal/service/catalog"
	ordersvc "github.com/vladislavdragonenkov/barista/internal/service/order"
	"github.com/vladislavdragonenkov/barista/internal/storage/file"
	"github.com/vladislavdragonenkov/barista/internal/storage/memory"
	"github.com/vladislavdragonenkov/barista/internal/storage/postgres"
	"github.com/vladislavdragonenkov/barista/internal/version"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

// Run собирает зависимости и работает до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, cleanup, err := buildOrderRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	timelineRepo := memory.NewTimelineRepository()

	drinks, err := catalog.DefaultCatalog()
	if err != nil {
		return err
	}
	catalogSvc, err := catalog.NewService(drinks, logger.WithField("layer", "catalog"))
	if err != nil {
		return err
	}

	orderService := ordersvc.NewService(repo, timelineRepo, logger.WithField("layer", "service"))

	byCategory := catalogSvc.ByCategory()
	logger.WithFields(log.Fields{
		"drinks":  len(catalogSvc.ListAvailable()),
		"coffee":  len(byCategory["Coffee"]),
		"tea":     len(byCategory["Tea"]),
		"juice":   len(byCategory["Juice"]),
		"version": version.String(),
	}).Info("catalog ready")

	healthHandler := healthcheck.NewHandler(version.String())
	registerStorageCheck(healthHandler, cfg, repo)

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	// Эталонный потребитель широковещательного потока: логирует каждый снимок.
	feed, unsubscribe := repo.Subscribe()
	defer unsubscribe()
	go watchOrderFeed(feed, logger.WithField("layer", "feed"))

	if today, err := orderService.TodaysSales(); err != nil {
		logger.WithError(err).Warn("todays sales unavailable")
	} else {
		logger.WithField("total", today).Info("todays sales")
	}

	<-ctx.Done()
	logger.Info("получен сигнал остановки")
	shutdownHTTP(metricsSrv, logger)
	return ctx.Err()
}

// buildOrderRepository выбирает реализацию хранилища по конфигурации.
func buildOrderRepository(ctx context.Context, cfg Config, logger *log.Entry) (domain.OrderRepository, func(), error) {
	noop := func() {}

	switch cfg.Storage {
	case StorageMemory:
		return memory.NewOrderRepository(), noop, nil

	case StorageFile:
		repo, err := file.NewOrderRepository(cfg.DataDirProvider(), logger.WithField("layer", "storage"))
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil

	case StoragePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		repo, err := postgres.NewOrderRepository(store, logger.WithField("layer", "storage"))
		if err != nil {
			_ = store.Close()
			return nil, noop, err
		}
		return repo, func() { _ = store.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

// registerStorageCheck подключает проверку хранилища к health handler.
func registerStorageCheck(h *healthcheck.Handler, cfg Config, repo domain.OrderRepository) {
	switch cfg.Storage {
	case StorageFile:
		h.Register("storage", func() error {
			_, err := os.Stat(cfg.DataDir)
			return err
		})
	default:
		h.Register("storage", func() error {
			_, err := repo.List()
			return err
		})
	}
}

// watchOrderFeed читает поток снимков до закрытия канала.
func watchOrderFeed(feed <-chan []domain.Order, logger *log.Entry) {
	for snapshot := range feed {
		logger.WithFields(log.Fields{
			"orders":  len(snapshot),
			"revenue": ordersvc.CalculateTotalRevenue(snapshot),
		}).Info("order feed snapshot")
	}
}

// startMetricsServer запускает HTTP-обработчики /metrics, /healthz и /livez.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
