package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fedibbm/geoflow/internal/domain"
	"github.com/fedibbm/geoflow/internal/mq"
)

// EventListener запускает workflow по событиям платформы.
//
// Слушает очередь events.triggers; routing key сообщения — это event key
// (например, "catalog.image.uploaded"). Для каждого события срабатывают
// все включённые EVENT-триггеры с совпадающим event_key.
type EventListener struct {
	triggers  TriggerStore
	requester Requester
	logger    *slog.Logger
}

// NewEventListener создаёт новый EventListener.
func NewEventListener(triggers TriggerStore, requester Requester, logger *slog.Logger) *EventListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventListener{
		triggers:  triggers,
		requester: requester,
		logger:    logger,
	}
}

// Handle обрабатывает одно событие платформы.
// Используется как mq.Handler для очереди events.triggers.
func (l *EventListener) Handle(ctx context.Context, delivery *mq.Delivery) error {
	eventKey := delivery.Raw.RoutingKey
	if eventKey == "" {
		l.logger.Warn("event without routing key, ignoring")
		return nil
	}

	triggers, err := l.triggers.ListEnabled(ctx, domain.TriggerEvent)
	if err != nil {
		return fmt.Errorf("list event triggers: %w", err)
	}

	var fired int
	for i := range triggers {
		trigger := &triggers[i]
		if trigger.EventKey != eventKey {
			continue
		}

		input := mergeInput(trigger.DefaultInput, delivery.Message.Payload)

		err := l.requester.PublishExecutionRequested(ctx, mq.ExecutionRequestedPayload{
			WorkflowID:  trigger.WorkflowID,
			TriggeredBy: "event:" + eventKey,
			Input:       input,
		})
		if err != nil {
			l.logger.Error("failed to fire event trigger",
				"trigger_id", trigger.ID,
				"event_key", eventKey,
				"error", err,
			)
			continue
		}

		trigger.MarkFired("REQUESTED", nil)
		if err := l.triggers.Update(ctx, trigger); err != nil {
			l.logger.Warn("failed to update event trigger bookkeeping",
				"trigger_id", trigger.ID,
				"error", err,
			)
		}
		fired++
	}

	if fired > 0 {
		l.logger.Info("event processed", "event_key", eventKey, "triggers_fired", fired)
	}
	return nil
}

// mergeInput накладывает payload события на default_input триггера.
// Ключи события имеют приоритет.
func mergeInput(defaults map[string]any, payload any) map[string]any {
	event, _ := payload.(map[string]any)
	return domain.MergeInput(defaults, event)
}
