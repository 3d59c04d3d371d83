package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/fedibbm/geoflow/internal/domain"
)

// Ключи конфигурации output-узла.
const (
	configOutputType = "outputType"
	configFormat     = "format"
	configSourceNode = "sourceNodeId"
)

// outputTypes — поддерживаемые назначения результатов.
var outputTypes = map[string]bool{
	"project": true,
	"storage": true,
	"export":  true,
}

// ResultSink — назначение для сохранения результатов output-узла.
//
// Реализации: хранилище платформы, публикация в очередь сообщений.
type ResultSink interface {
	// Save сохраняет данные и возвращает ссылку на сохранённый результат.
	Save(ctx context.Context, ec *Context, outputType, format string, data map[string]any) (location string, err error)
}

// OutputExecutor — исполнитель output-узлов.
//
// Собирает данные предыдущих узлов и сохраняет их в указанное назначение.
// Без настроенного sink узел фиксирует результат локально, возвращая
// условную ссылку: полезно в тестах и при прогонах без хранилища.
//
// Конфигурация:
//
//	{
//	    "outputType": "project" | "storage" | "export",
//	    "format": "geotiff" | "png" | "json",
//	    "sourceNodeId": "ndvi"   // узел-источник данных, иначе последний
//	}
type OutputExecutor struct {
	sink ResultSink
}

// NewOutputExecutor создаёт новый OutputExecutor.
// sink может быть nil.
func NewOutputExecutor(sink ResultSink) *OutputExecutor {
	return &OutputExecutor{sink: sink}
}

// Type возвращает тип узла.
func (e *OutputExecutor) Type() string {
	return domain.NodeTypeOutput
}

// Validate проверяет конфигурацию узла.
func (e *OutputExecutor) Validate(node domain.WorkflowNode) error {
	if node.Config == nil {
		return fmt.Errorf("%w: %s: config is required", ErrInvalidNodeConfig, e.Type())
	}

	outputType := strings.ToLower(GetConfigStringDefault(node.Config, configOutputType, "project"))
	if !outputTypes[outputType] {
		return fmt.Errorf("%w: %s: unknown output type: %s",
			ErrInvalidNodeConfig, e.Type(), outputType)
	}

	return nil
}

// Execute сохраняет результаты workflow.
func (e *OutputExecutor) Execute(ctx context.Context, node domain.WorkflowNode, ec *Context) (*Result, error) {
	outputType := strings.ToLower(GetConfigStringDefault(node.Config, configOutputType, "project"))
	format := GetConfigStringDefault(node.Config, configFormat, "json")

	data := e.collectData(node.Config, ec)

	location := "/output/" + node.ID
	if e.sink != nil {
		loc, err := e.sink.Save(ctx, ec, outputType, format, data)
		if err != nil {
			return nil, fmt.Errorf("save output %s: %w", node.ID, err)
		}
		location = loc
	}

	return Successf(map[string]any{
		"saved":      true,
		"outputType": outputType,
		"format":     format,
		"location":   location,
	}), nil
}

// collectData выбирает данные для сохранения.
func (e *OutputExecutor) collectData(config map[string]any, ec *Context) map[string]any {
	if sourceID := GetConfigString(config, configSourceNode); sourceID != "" {
		if out, ok := ec.NodeOutput(sourceID); ok {
			return out
		}
		return nil
	}
	last, _ := ec.LastOutput()
	return last
}
