package nodes

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/fedibbm/geoflow/internal/domain"
)

// Ключи конфигурации decision-узла.
const (
	configConditionType = "conditionType"
	configLeftOperand   = "leftOperand"
	configOperator      = "operator"
	configRightValue    = "rightValue"
	configInputKey      = "inputKey"
	configComparison    = "comparison"
	configCheckType     = "checkType"
)

// GlobalDecisionSuffix — суффикс глобальной переменной с результатом
// decision-узла: "<nodeID>.decision". По ней координатор оценивает
// условные рёбра.
const GlobalDecisionSuffix = ".decision"

const floatEpsilon = 0.0001

// DecisionExecutor — исполнитель decision-узлов.
//
// Оценивает условие и публикует булев результат как глобальную переменную
// "<nodeID>.decision". Условные рёбра графа читают эту переменную, чтобы
// выбрать ветку.
//
// Типы условий:
//   - comparison: leftOperand op rightValue, операторы ==, !=, >, >=, <, <=,
//     contains, starts-with, ends-with
//   - threshold: сравнение числового значения inputKey с порогом
//   - data-check: exists, not-empty, is-success для значения inputKey
//
// Ссылки вида "nodeID.field" разрешаются в выходы узлов.
type DecisionExecutor struct{}

// NewDecisionExecutor создаёт новый DecisionExecutor.
func NewDecisionExecutor() *DecisionExecutor {
	return &DecisionExecutor{}
}

// Type возвращает тип узла.
func (e *DecisionExecutor) Type() string {
	return domain.NodeTypeDecision
}

// Validate проверяет конфигурацию узла.
func (e *DecisionExecutor) Validate(node domain.WorkflowNode) error {
	if len(node.Config) == 0 {
		return fmt.Errorf("%w: %s: config is required", ErrInvalidNodeConfig, e.Type())
	}

	condType := strings.ToLower(GetConfigStringDefault(node.Config, configConditionType, "comparison"))
	switch condType {
	case "comparison":
		if GetConfigString(node.Config, configOperator) == "" {
			return fmt.Errorf("%w: %s: operator is required for comparison",
				ErrInvalidNodeConfig, e.Type())
		}
	case "threshold":
		if _, ok := GetConfigFloat(node.Config, configThreshold); !ok {
			return fmt.Errorf("%w: %s: threshold is required",
				ErrInvalidNodeConfig, e.Type())
		}
	case "data-check":
		if GetConfigString(node.Config, configInputKey) == "" {
			return fmt.Errorf("%w: %s: inputKey is required for data-check",
				ErrInvalidNodeConfig, e.Type())
		}
	default:
		return fmt.Errorf("%w: %s: unknown condition type: %s",
			ErrInvalidNodeConfig, e.Type(), condType)
	}

	return nil
}

// Execute оценивает условие и публикует результат.
func (e *DecisionExecutor) Execute(ctx context.Context, node domain.WorkflowNode, ec *Context) (*Result, error) {
	condType := strings.ToLower(GetConfigStringDefault(node.Config, configConditionType, "comparison"))

	var decision bool
	switch condType {
	case "comparison":
		decision = e.evaluateComparison(node.Config, ec)
	case "threshold":
		decision = e.evaluateThreshold(node.Config, ec)
	case "data-check":
		decision = e.evaluateDataCheck(node.Config, ec)
	default:
		return Failuref("unknown condition type: %s", condType), nil
	}

	// Результат публикуется до оценки исходящих рёбер
	ec.SetGlobal(node.ID+GlobalDecisionSuffix, decision)

	path := "false"
	if decision {
		path = "true"
	}

	return Successf(map[string]any{
		"conditionType": condType,
		"decision":      decision,
		"path":          path,
		"status":        "success",
	}), nil
}

func (e *DecisionExecutor) evaluateComparison(config map[string]any, ec *Context) bool {
	left, _ := ec.Resolve(GetConfigString(config, configLeftOperand))
	operator := GetConfigString(config, configOperator)
	right := config[configRightValue]

	if left == nil {
		return false
	}

	switch operator {
	case "==", "equals":
		return valuesEqual(left, right)
	case "!=", "not-equals":
		return !valuesEqual(left, right)
	case ">", ">=", "<", "<=":
		cmp, ok := compareNumbers(left, right)
		if !ok {
			return false
		}
		switch operator {
		case ">":
			return cmp > 0
		case ">=":
			return cmp >= 0
		case "<":
			return cmp < 0
		default:
			return cmp <= 0
		}
	case "contains":
		return strings.Contains(fmt.Sprintf("%v", left), fmt.Sprintf("%v", right))
	case "starts-with":
		return strings.HasPrefix(fmt.Sprintf("%v", left), fmt.Sprintf("%v", right))
	case "ends-with":
		return strings.HasSuffix(fmt.Sprintf("%v", left), fmt.Sprintf("%v", right))
	default:
		return false
	}
}

func (e *DecisionExecutor) evaluateThreshold(config map[string]any, ec *Context) bool {
	value, _ := ec.Resolve(GetConfigString(config, configInputKey))
	threshold, _ := GetConfigFloat(config, configThreshold)
	comparison := GetConfigStringDefault(config, configComparison, ">")

	num, ok := asFloat(value)
	if !ok {
		return false
	}

	switch comparison {
	case ">":
		return num > threshold
	case ">=":
		return num >= threshold
	case "<":
		return num < threshold
	case "<=":
		return num <= threshold
	case "==":
		return math.Abs(num-threshold) < floatEpsilon
	case "!=":
		return math.Abs(num-threshold) >= floatEpsilon
	default:
		return false
	}
}

func (e *DecisionExecutor) evaluateDataCheck(config map[string]any, ec *Context) bool {
	checkType := strings.ToLower(GetConfigStringDefault(config, configCheckType, "exists"))
	value, found := ec.Resolve(GetConfigString(config, configInputKey))

	switch checkType {
	case "exists":
		return found && value != nil
	case "not-empty":
		if !found || value == nil {
			return false
		}
		switch v := value.(type) {
		case string:
			return strings.TrimSpace(v) != ""
		case map[string]any:
			return len(v) > 0
		case []any:
			return len(v) > 0
		}
		return true
	case "is-success":
		if m, ok := value.(map[string]any); ok {
			return strings.EqualFold(fmt.Sprintf("%v", m["status"]), "success")
		}
		return false
	default:
		return false
	}
}

// valuesEqual сравнивает значения с числовой толерантностью.
func valuesEqual(left, right any) bool {
	if left == nil && right == nil {
		return true
	}
	if left == nil || right == nil {
		return false
	}
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if lok && rok {
		return math.Abs(lf-rf) < floatEpsilon
	}
	return fmt.Sprintf("%v", left) == fmt.Sprintf("%v", right)
}

// compareNumbers сравнивает значения как числа.
func compareNumbers(left, right any) (int, bool) {
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return 0, false
	}
	switch {
	case lf < rf:
		return -1, true
	case lf > rf:
		return 1, true
	default:
		return 0, true
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
