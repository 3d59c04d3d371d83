// GeoFlow Engine — выполняет workflows платформы.
//
// Engine:
//   - Принимает запросы на выполнение через HTTP API и RabbitMQ
//   - Строит порядок обхода графа и выполняет узлы через registry
//   - Реализует retry с exponential backoff и компенсации
//   - Публикует события завершения executions
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fedibbm/geoflow/internal/api"
	"github.com/fedibbm/geoflow/internal/config"
	"github.com/fedibbm/geoflow/internal/coordinator"
	"github.com/fedibbm/geoflow/internal/mq"
	"github.com/fedibbm/geoflow/internal/nodes"
	"github.com/fedibbm/geoflow/internal/repo"
	"github.com/fedibbm/geoflow/internal/taskworker"
	"github.com/fedibbm/geoflow/internal/telemetry"
)

const workflowCacheSize = 1000

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting geoflow-engine")

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

	// Создаём репозитории
	workflowRepo := repo.NewWorkflowRepo(pool)
	executionRepo := repo.NewExecutionRepo(pool)
	triggerRepo := repo.NewTriggerRepo(pool)

	// Определения workflow читаются на каждый запуск — кешируем
	workflowStore, err := repo.NewCachedWorkflowStore(workflowRepo, workflowCacheSize)
	if err != nil {
		logger.Error("failed to create workflow cache", "error", err)
		os.Exit(1)
	}
	defer workflowStore.Close()

	// Реестр исполнителей узлов
	catalog := nodes.NewCatalogClient(cfg.Services.CatalogURL, 30*time.Second)
	processing := nodes.NewProcessingClient(cfg.Services.ProcessingURL, 30*time.Second)
	registry := nodes.DefaultRegistry(catalog, processing)

	// Retry-политики: конфигурация поверх значений по умолчанию
	policies := taskworker.DefaultPolicySet()
	for nodeType, policy := range cfg.Retry {
		policies.Set(nodeType, policy)
	}

	worker := taskworker.New(taskworker.Config{
		Registry: registry,
		Policies: policies,
		Logger:   logger,
	})

	// RabbitMQ
	var publisher *mq.Publisher
	var mqConn *mq.Connection
	if cfg.MQ.Enabled {
		mqConn, err = mq.NewConnection(cfg.MQ.URL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, running in API-only mode", "error", err)
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			// Создаём топологию
			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}

			publisher = mq.NewPublisher(mqConn, logger)
		}
	}

	// Создаём coordinator
	coord := coordinator.New(coordinator.Config{
		Workflows:  workflowStore,
		Executions: executionRepo,
		Registry:   registry,
		Worker:     worker,
		Publisher:  eventPublisher(publisher),
		Logger:     logger,
	})

	// Consumer запросов на выполнение (от scheduler и event-триггеров)
	if mqConn != nil {
		consumer := mq.NewConsumer(mqConn, logger, mq.ConsumerConfig{
			Queue:   mq.QueueExecutionsRequested,
			Handler: requestHandler(coord, logger),
		})
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("consumer stopped", "error", err)
			}
		}()
	}

	// HTTP: API + healthz + metrics
	handler := api.NewHandler(api.Config{
		Workflows:   workflowRepo,
		Triggers:    triggerRepo,
		Coordinator: coord,
		Invalidator: workflowStore,
		Logger:      logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)

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

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("geoflow-engine stopped")
}

// eventPublisher оборачивает nil *mq.Publisher в nil интерфейс.
// Типизированный nil в интерфейсе не равен nil.
func eventPublisher(p *mq.Publisher) coordinator.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

// requestHandler обрабатывает сообщения execution.requested.
//
// Ошибки, которые не исправит повтор (битый payload, неизвестный
// workflow), логируются и подтверждаются — иначе сообщение будет
// крутиться в очереди вечно.
func requestHandler(coord *coordinator.Coordinator, logger *slog.Logger) mq.Handler {
	return func(ctx context.Context, msg *mq.Delivery) error {
		payload, err := mq.ParsePayload[mq.ExecutionRequestedPayload](&msg.Message)
		if err != nil {
			logger.Error("invalid execution request payload", "error", err)
			return nil
		}

		exec, err := coord.StartExecutionAsync(ctx, coordinator.StartRequest{
			WorkflowID:  payload.WorkflowID,
			Version:     payload.Version,
			TriggeredBy: payload.TriggeredBy,
			Input:       payload.Input,
		})
		if err != nil {
			if errors.Is(err, coordinator.ErrWorkflowNotFound) || errors.Is(err, coordinator.ErrVersionNotFound) {
				logger.Error("execution request for unknown workflow", "workflow_id", payload.WorkflowID, "error", err)
				return nil
			}
			return err
		}

		logger.Info("execution requested via queue",
			"execution_id", exec.ID,
			"workflow_id", payload.WorkflowID,
			"triggered_by", payload.TriggeredBy,
		)
		return nil
	}
}
