package nodes

import (
	"strings"

	"github.com/google/uuid"
)

// Context — контекст выполнения узлов одного запуска workflow.
//
// Накапливает выходы завершённых узлов и глобальные переменные.
// Не потокобезопасен: узлы выполняются последовательно в порядке
// топологической сортировки.
type Context struct {
	// WorkflowID — идентификатор workflow.
	WorkflowID uuid.UUID

	// ExecutionID — идентификатор запуска.
	ExecutionID uuid.UUID

	// TriggeredBy — кто инициировал запуск (пользователь или система).
	TriggeredBy string

	// ProjectID — проект платформы, к которому относится запуск.
	ProjectID string

	// Input — входные данные запуска.
	Input map[string]any

	outputs map[string]map[string]any
	order   []string
	globals map[string]any
}

// NewContext создаёт контекст выполнения для запуска workflow.
func NewContext(workflowID, executionID uuid.UUID, triggeredBy, projectID string, input map[string]any) *Context {
	if input == nil {
		input = make(map[string]any)
	}
	return &Context{
		WorkflowID:  workflowID,
		ExecutionID: executionID,
		TriggeredBy: triggeredBy,
		ProjectID:   projectID,
		Input:       input,
		outputs:     make(map[string]map[string]any),
		globals:     make(map[string]any),
	}
}

// SetNodeOutput сохраняет выходные данные завершённого узла.
func (c *Context) SetNodeOutput(nodeID string, outputs map[string]any) {
	if outputs == nil {
		outputs = make(map[string]any)
	}
	if _, seen := c.outputs[nodeID]; !seen {
		c.order = append(c.order, nodeID)
	}
	c.outputs[nodeID] = outputs
}

// LastOutput возвращает выход последнего завершённого узла.
func (c *Context) LastOutput() (map[string]any, bool) {
	if len(c.order) == 0 {
		return nil, false
	}
	out := c.outputs[c.order[len(c.order)-1]]
	return out, true
}

// NodeOutput возвращает выходные данные узла по его ID.
func (c *Context) NodeOutput(nodeID string) (map[string]any, bool) {
	out, ok := c.outputs[nodeID]
	return out, ok
}

// NodeOutputs возвращает выходы всех завершённых узлов.
func (c *Context) NodeOutputs() map[string]map[string]any {
	return c.outputs
}

// SetGlobal устанавливает глобальную переменную запуска.
func (c *Context) SetGlobal(key string, value any) {
	c.globals[key] = value
}

// Global возвращает глобальную переменную по ключу.
func (c *Context) Global(key string) (any, bool) {
	v, ok := c.globals[key]
	return v, ok
}

// Globals возвращает все глобальные переменные запуска.
func (c *Context) Globals() map[string]any {
	return c.globals
}

// Resolve разрешает ссылку на значение.
//
// Ключ вида "nodeID.field" читается из выходов узла nodeID. Простой ключ
// сначала ищется в глобальных переменных, затем во входных данных запуска.
func (c *Context) Resolve(key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	if nodeID, field, found := strings.Cut(key, "."); found {
		if out, ok := c.outputs[nodeID]; ok {
			v, ok := out[field]
			return v, ok
		}
		// "nodeID.field" может быть и глобальным ключом (decision-узлы
		// публикуют "<nodeID>.decision")
	}

	if v, ok := c.globals[key]; ok {
		return v, true
	}
	v, ok := c.Input[key]
	return v, ok
}
