package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/fedibbm/geoflow/internal/domain"
)

// Ключи конфигурации processing-узла.
const (
	configProcessingType = "processingType"
	configInputNodeID    = "inputNodeId"
	configImageURL       = "imageUrl"
	configBands          = "bands"
	configThreshold      = "threshold"
)

// processingTypes — поддерживаемые операции обработки снимков.
var processingTypes = map[string]bool{
	"ndvi":             true,
	"evi":              true,
	"savi":             true,
	"ndwi":             true,
	"water-bodies":     true,
	"change-detection": true,
}

// ProcessingExecutor — исполнитель processing-узлов.
//
// Передаёт операцию сервису обработки снимков: вегетационные индексы
// (NDVI, EVI, SAVI, NDWI), поиск водоёмов, детекцию изменений. Ошибки
// сервиса возвращаются как error: транспортные сбои и 5xx повторяемы
// на уровне retry-политики.
//
// Конфигурация:
//
//	{
//	    "processingType": "ndvi",
//	    "inputNodeId": "fetch",       // узел-источник входных данных
//	    "imageUrl": "s3://...",       // или явная ссылка на снимок
//	    "bands": ["B04", "B08"],
//	    "threshold": 0.3
//	}
type ProcessingExecutor struct {
	processing *ProcessingClient
}

// NewProcessingExecutor создаёт новый ProcessingExecutor.
func NewProcessingExecutor(processing *ProcessingClient) *ProcessingExecutor {
	return &ProcessingExecutor{processing: processing}
}

// Type возвращает тип узла.
func (e *ProcessingExecutor) Type() string {
	return domain.NodeTypeProcessing
}

// Validate проверяет конфигурацию узла.
func (e *ProcessingExecutor) Validate(node domain.WorkflowNode) error {
	if len(node.Config) == 0 {
		return fmt.Errorf("%w: %s: config is required", ErrInvalidNodeConfig, e.Type())
	}

	procType := GetConfigString(node.Config, configProcessingType)
	if procType == "" {
		return fmt.Errorf("%w: %s: processingType is required", ErrInvalidNodeConfig, e.Type())
	}
	if !processingTypes[strings.ToLower(procType)] {
		return fmt.Errorf("%w: %s: unknown processing type: %s",
			ErrInvalidNodeConfig, e.Type(), procType)
	}

	return nil
}

// Execute выполняет операцию обработки через внешний сервис.
func (e *ProcessingExecutor) Execute(ctx context.Context, node domain.WorkflowNode, ec *Context) (*Result, error) {
	procType := strings.ToLower(GetConfigString(node.Config, configProcessingType))

	request := map[string]any{
		"operation":   procType,
		"executionId": ec.ExecutionID.String(),
		"projectId":   ec.ProjectID,
	}

	// Входные данные: явно указанный узел или последний завершённый
	if input := e.extractInput(node.Config, ec); len(input) > 0 {
		request["input"] = input
	}
	if url := GetConfigString(node.Config, configImageURL); url != "" {
		request["imageUrl"] = url
	}
	if bands, ok := node.Config[configBands]; ok {
		request["bands"] = bands
	}
	if threshold, ok := GetConfigFloat(node.Config, configThreshold); ok {
		request["threshold"] = threshold
	}

	response, err := e.processing.Process(ctx, procType, request)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", procType, err)
	}

	outputs := map[string]any{
		"processingType": procType,
		"status":         "success",
	}
	for k, v := range response {
		outputs[k] = v
	}

	return Successf(outputs), nil
}

// extractInput собирает входные данные для операции.
func (e *ProcessingExecutor) extractInput(config map[string]any, ec *Context) map[string]any {
	if inputNodeID := GetConfigString(config, configInputNodeID); inputNodeID != "" {
		if out, ok := ec.NodeOutput(inputNodeID); ok {
			return out
		}
		return nil
	}

	// Без явной ссылки берём выход последнего завершённого узла
	last, _ := ec.LastOutput()
	return last
}
