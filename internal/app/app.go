package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/adosoftyazilim/blrb2b/internal/health"
	"github.com/adosoftyazilim/blrb2b/internal/messaging/kafka"
	ordersvc "github.com/adosoftyazilim/blrb2b/internal/service/order"
	outboxsvc "github.com/adosoftyazilim/blrb2b/internal/service/outbox"
	"github.com/adosoftyazilim/blrb2b/internal/service/rest"
	"github.com/adosoftyazilim/blrb2b/internal/version"
)

// Run поднимает приложение: хранилище, workflow engine заказов, Kafka outbox
// worker (опционально), REST API и ops-сервер, и блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	// Kafka опционален: без брокеров события копятся в outbox как pending.
	kafkaProducer, kafkaErr := initKafkaProducer(cfg, logger)
	if kafkaErr != nil {
		logger.WithError(kafkaErr).Warn("starting without kafka")
	}
	defer closeKafka(kafkaProducer, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	if kafkaProducer != nil {
		publisher := kafka.NewOutboxEventPublisher(kafkaProducer)
		dlqPublisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEventsDLQ)
		worker := outboxsvc.NewWorker(
			deps.outbox,
			publisher,
			outboxsvc.WithDLQPublisher(dlqPublisher),
			outboxsvc.WithLogger(logger.WithField("component", "outbox-worker")),
			outboxsvc.WithPollInterval(cfg.OutboxPollInterval),
			outboxsvc.WithBatchSize(cfg.OutboxBatchSize),
			outboxsvc.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outboxsvc.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		go worker.Run(workerCtx)
		logger.Info("outbox worker started")

		retention := outboxsvc.NewRetentionWorker(
			deps.outbox,
			outboxsvc.WithRetentionLogger(logger.WithField("component", "outbox-retention-worker")),
			outboxsvc.WithRetentionPeriod(cfg.OutboxRetention),
		)
		go retention.Run(workerCtx)
	}

	orderService := ordersvc.NewService(
		deps.orders,
		deps.products,
		deps.customers,
		deps.movements,
		deps.outbox,
		nil,
		logger.WithField("component", "order-service"),
	)

	router := rest.NewRouter(orderService, deps.products, deps.customers,
		logger.WithField("component", "rest"))

	healthHandler := healthcheck.NewHandler(version.String())
	if deps.store != nil {
		healthHandler.RegisterChecker("postgres",
			healthcheck.NewPingChecker("postgres", 2*time.Second, deps.store.Ping))
	}

	opsSrv := startOpsServer(ctx, cfg.OpsAddr, logger, healthHandler)
	apiSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("REST API listening on %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping servers")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(opsSrv, logger)
		stopWorker()
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(opsSrv, logger)
		stopWorker()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startOpsServer запускает HTTP-обработчики /metrics и health-проб.
func startOpsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("metrics available at %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
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
		logger.WithError(err).Warn("http shutdown with error")
	}
}
