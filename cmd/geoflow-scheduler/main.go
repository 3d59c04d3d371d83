// GeoFlow Scheduler — превращает триггеры в запросы на выполнение.
//
// Scheduler:
//   - Опрашивает due SCHEDULED-триггеры и публикует execution.requested
//   - Слушает события платформы и сопоставляет их EVENT-триггерам
//   - Работает с leader election: тикает только один инстанс
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fedibbm/geoflow/internal/config"
	"github.com/fedibbm/geoflow/internal/mq"
	"github.com/fedibbm/geoflow/internal/repo"
	"github.com/fedibbm/geoflow/internal/scheduler"
	"github.com/fedibbm/geoflow/internal/telemetry"
)

const schedLockKey int64 = 910842

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting geoflow-scheduler")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx, cfg.DB.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	triggerRepo := repo.NewTriggerRepo(pool)

	// RabbitMQ обязателен: без него триггерам некуда публиковать запросы
	mqConn, err := mq.NewConnection(cfg.MQ.URL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Warn("failed to setup topology", "error", err)
	}

	publisher := mq.NewPublisher(mqConn, logger)

	sched := scheduler.New(scheduler.Config{
		Triggers:  triggerRepo,
		Requester: publisher,
		Logger:    logger,
		BatchSize: cfg.Scheduler.BatchSize,
	})

	// EVENT-триггеры: слушаем события платформы
	listener := scheduler.NewEventListener(triggerRepo, publisher, logger)
	consumer := mq.NewConsumer(mqConn, logger, mq.ConsumerConfig{
		Queue:   mq.QueueTriggerEvents,
		Handler: listener.Handle,
	})
	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event consumer stopped", "error", err)
		}
	}()

	// scheduler loop
	go func() {
		interval := time.Duration(cfg.Scheduler.TickIntervalMs) * time.Millisecond
		if interval <= 0 {
			interval = time.Second
		}
		tk := time.NewTicker(interval)
		defer tk.Stop()

		var hasLock bool
		defer func() {
			if hasLock {
				_, _ = pool.Exec(context.Background(), "select pg_advisory_unlock($1)", schedLockKey)
			}
		}()

		for {
			select {
			case <-tk.C:
				// пытаемся стать лидером (или подтвердить лидерство)
				if !hasLock {
					var ok bool
					if err := pool.QueryRow(ctx, "select pg_try_advisory_lock($1)", schedLockKey).Scan(&ok); err != nil {
						logger.Error("leader lock failed", "error", err)
						continue
					}
					hasLock = ok
				}

				if !hasLock {
					// не лидер — пропускаем тик
					continue
				}

				if err := sched.Tick(ctx); err != nil {
					logger.Error("tick failed", "error", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("geoflow-scheduler stopped")
}
