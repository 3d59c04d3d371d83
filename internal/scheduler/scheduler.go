package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fedibbm/geoflow/internal/domain"
	"github.com/fedibbm/geoflow/internal/mq"
)

// TriggerStore — хранилище триггеров, которое обходит планировщик.
type TriggerStore interface {
	ListDue(ctx context.Context, now time.Time) ([]domain.WorkflowTrigger, error)
	ListEnabled(ctx context.Context, triggerType domain.TriggerType) ([]domain.WorkflowTrigger, error)
	Update(ctx context.Context, t *domain.WorkflowTrigger) error
}

// Requester публикует запросы на выполнение workflow.
// Реализуется mq.Publisher.
type Requester interface {
	PublishExecutionRequested(ctx context.Context, payload mq.ExecutionRequestedPayload) error
}

// Scheduler обрабатывает due SCHEDULED-триггеры.
type Scheduler struct {
	triggers  TriggerStore
	requester Requester
	logger    *slog.Logger
	batchSize int
}

// Config — конфигурация Scheduler.
type Config struct {
	// Triggers — хранилище триггеров.
	Triggers TriggerStore

	// Requester — публикация запросов на выполнение.
	Requester Requester

	// Logger — structured logger.
	Logger *slog.Logger

	// BatchSize — количество триггеров за один тик (default: 100).
	BatchSize int
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		triggers:  cfg.Triggers,
		requester: cfg.Requester,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Находит due триггеры (enabled=true, next_due_at <= now)
// 2. Публикует execution.requested для каждого
// 3. Сдвигает next_due_at по cron-выражению
//
// Ошибки одного триггера не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	due, err := s.triggers.ListDue(ctx, now)
	if err != nil {
		return fmt.Errorf("list due triggers: %w", err)
	}
	if len(due) == 0 {
		return nil
	}
	if len(due) > s.batchSize {
		due = due[:s.batchSize]
	}

	s.logger.Debug("found due triggers", "count", len(due))

	var fired int
	for i := range due {
		trigger := &due[i]

		if err := s.fire(ctx, trigger, now); err != nil {
			s.logger.Error("failed to fire trigger",
				"trigger_id", trigger.ID,
				"trigger_name", trigger.Name,
				"workflow_id", trigger.WorkflowID,
				"error", err,
			)
			continue
		}
		fired++
	}

	s.logger.Info("scheduler tick completed", "due", len(due), "fired", fired)
	return nil
}

// fire публикует запрос на выполнение и сдвигает расписание триггера.
func (s *Scheduler) fire(ctx context.Context, trigger *domain.WorkflowTrigger, now time.Time) error {
	err := s.requester.PublishExecutionRequested(ctx, mq.ExecutionRequestedPayload{
		WorkflowID:  trigger.WorkflowID,
		TriggeredBy: "trigger:" + trigger.ID.String(),
		Input:       trigger.DefaultInput,
	})
	if err != nil {
		return fmt.Errorf("publish execution request: %w", err)
	}

	s.logger.Info("trigger fired",
		"trigger_id", trigger.ID,
		"trigger_name", trigger.Name,
		"workflow_id", trigger.WorkflowID,
	)

	next, err := NextRun(trigger.CronExpr, now)
	if err != nil {
		// Невалидное выражение: next_due_at сбрасывается в nil,
		// триггер выпадает из расписания вместо зацикливания на
		// каждом тике
		s.logger.Error("failed to calculate next run, trigger will not reschedule",
			"trigger_id", trigger.ID,
			"cron_expr", trigger.CronExpr,
			"error", err,
		)
		trigger.MarkFired("REQUESTED", nil)
	} else {
		trigger.MarkFired("REQUESTED", &next)
	}

	if err := s.triggers.Update(ctx, trigger); err != nil {
		return fmt.Errorf("update trigger: %w", err)
	}
	return nil
}
