package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/fedibbm/geoflow/internal/domain"
)

// Ошибки исполнителей узлов.
var (
	// ErrNoExecutor — тип узла не найден в реестре.
	ErrNoExecutor = errors.New("node executor not found")

	// ErrInvalidNodeConfig — невалидная конфигурация узла.
	ErrInvalidNodeConfig = errors.New("invalid node config")

	// ErrNodeCancelled — выполнение узла отменено.
	ErrNodeCancelled = errors.New("node execution cancelled")
)

// Executor — интерфейс исполнителя узла workflow.
//
// Каждый тип узла реализует этот интерфейс. Validate проверяет конфигурацию
// узла до выполнения; ошибка валидации терминальна и не участвует в retry.
type Executor interface {
	// Type возвращает тип узла, который обрабатывает исполнитель.
	Type() string

	// Validate проверяет конфигурацию узла.
	Validate(node domain.WorkflowNode) error

	// Execute выполняет узел и возвращает результат.
	// Исполнитель должен проверять ctx.Done() для graceful shutdown.
	Execute(ctx context.Context, node domain.WorkflowNode, ec *Context) (*Result, error)
}

// Result — результат выполнения узла.
type Result struct {
	// Success — завершился ли узел успешно.
	Success bool

	// Outputs — выходные данные узла. Доступны следующим узлам
	// через Context.NodeOutput.
	Outputs map[string]any

	// Error — текст ошибки при Success == false.
	Error string
}

// Successf создаёт успешный Result с outputs.
func Successf(outputs map[string]any) *Result {
	if outputs == nil {
		outputs = make(map[string]any)
	}
	return &Result{Success: true, Outputs: outputs}
}

// Failuref создаёт неуспешный Result с форматированным сообщением.
func Failuref(format string, args ...any) *Result {
	return &Result{
		Success: false,
		Outputs: make(map[string]any),
		Error:   fmt.Sprintf(format, args...),
	}
}

// GetConfigString извлекает строковое значение из конфига узла.
func GetConfigString(config map[string]any, key string) string {
	if v, ok := config[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetConfigStringDefault извлекает строку с запасным значением.
func GetConfigStringDefault(config map[string]any, key, defaultVal string) string {
	if s := GetConfigString(config, key); s != "" {
		return s
	}
	return defaultVal
}

// GetConfigInt извлекает числовое значение из конфига узла.
func GetConfigInt(config map[string]any, key string) int {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}

// GetConfigFloat извлекает число с плавающей точкой из конфига узла.
func GetConfigFloat(config map[string]any, key string) (float64, bool) {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		}
	}
	return 0, false
}

// GetConfigBool извлекает булево значение из конфига узла.
func GetConfigBool(config map[string]any, key string, defaultVal bool) bool {
	if v, ok := config[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// GetConfigMap извлекает map из конфига узла.
func GetConfigMap(config map[string]any, key string) map[string]any {
	if v, ok := config[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}
