package nodes

import (
	"context"
	"time"

	"github.com/fedibbm/geoflow/internal/domain"
)

// TriggerExecutor — исполнитель trigger-узлов.
//
// Триггеры бывают ручные, по расписанию и событийные. Узел не выполняет
// работы сам: он фиксирует факт запуска и публикует его метаданные для
// последующих узлов.
type TriggerExecutor struct{}

// NewTriggerExecutor создаёт новый TriggerExecutor.
func NewTriggerExecutor() *TriggerExecutor {
	return &TriggerExecutor{}
}

// Type возвращает тип узла.
func (e *TriggerExecutor) Type() string {
	return domain.NodeTypeTrigger
}

// Validate проверяет конфигурацию узла.
// У trigger-узлов нет обязательных параметров.
func (e *TriggerExecutor) Validate(node domain.WorkflowNode) error {
	return nil
}

// Execute фиксирует запуск workflow.
func (e *TriggerExecutor) Execute(ctx context.Context, node domain.WorkflowNode, ec *Context) (*Result, error) {
	triggerType := GetConfigStringDefault(node.Config, "triggerType", "manual")

	return Successf(map[string]any{
		"triggered":   true,
		"triggerType": triggerType,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"triggeredBy": ec.TriggeredBy,
	}), nil
}
