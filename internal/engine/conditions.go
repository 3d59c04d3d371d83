package engine

import (
	"fmt"

	"github.com/fedibbm/geoflow/internal/domain"
)

// EdgeActive сообщает, активно ли ребро при текущих глобальных переменных.
//
// Безусловное ребро активно всегда. Условное ребро активно, когда значение
// globals[Condition.Key] равно Condition.Equals. Отсутствующий ключ означает
// неактивное ребро: узлы решений публикуют свой результат до того, как
// координатор оценивает исходящие рёбра.
func EdgeActive(edge domain.WorkflowEdge, globals map[string]any) bool {
	if edge.Condition == nil {
		return true
	}
	value, ok := globals[edge.Condition.Key]
	if !ok {
		return false
	}
	return conditionEquals(value, edge.Condition.Equals)
}

// ShouldSkip сообщает, должен ли узел быть пропущен.
//
// Узел пропускается, когда у него есть хотя бы одно входящее ребро и каждое
// входящее ребро неактивно: либо его условие ложно, либо узел-источник сам
// был пропущен. Узлы без входящих рёбер выполняются всегда.
func ShouldSkip(nodeID string, edges []domain.WorkflowEdge, globals map[string]any, skipped map[string]bool) bool {
	hasInbound := false
	for _, edge := range edges {
		if edge.Target != nodeID {
			continue
		}
		hasInbound = true
		if skipped[edge.Source] {
			continue
		}
		if EdgeActive(edge, globals) {
			return false
		}
	}
	return hasInbound
}

// conditionEquals сравнивает значение переменной со значением условия.
// Числовые значения сравниваются через float64: JSON-декодирование
// превращает все числа в float64, а условия могут задаваться как int.
func conditionEquals(value, expected any) bool {
	if value == expected {
		return true
	}
	vf, vok := toFloat(value)
	ef, eok := toFloat(expected)
	if vok && eok {
		return vf == ef
	}
	return fmt.Sprintf("%v", value) == fmt.Sprintf("%v", expected)
}

func toFloat(v any) (float64, bool) {
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
