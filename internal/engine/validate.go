package engine

import (
	"fmt"

	"github.com/fedibbm/geoflow/internal/domain"
)

// Validate выполняет полную валидацию графа версии workflow.
//
// Проверяет:
//   - Непустые и уникальные ID узлов
//   - Известность типов узлов (knownType — обычно registry.Has)
//   - Корректность рёбер (оба конца существуют, нет петель)
//   - Отсутствие циклов (делегируется BuildOrder)
//
// Пустой список узлов валиден: координатор завершает такой запуск
// сразу со статусом COMPLETED.
func Validate(version *domain.WorkflowVersion, knownType func(string) bool) error {
	if version == nil {
		return NewValidationError("", "", "workflow version is nil", ErrUnknownEdgeEndpoint)
	}

	nodeIDs := make(map[string]bool, len(version.Nodes))

	for i := range version.Nodes {
		node := &version.Nodes[i]

		if node.ID == "" {
			return NewValidationError("", "id", "node has empty ID", ErrEmptyNodeID)
		}

		if nodeIDs[node.ID] {
			return NewValidationError(node.ID, "id",
				fmt.Sprintf("duplicate node ID: %s", node.ID), ErrDuplicateNodeID)
		}
		nodeIDs[node.ID] = true

		if node.Type == "" {
			return NewValidationError(node.ID, "type",
				"node has empty type", ErrUnknownNodeType)
		}
		if knownType != nil && !knownType(node.Type) {
			return NewValidationError(node.ID, "type",
				fmt.Sprintf("unknown node type: %s", node.Type), ErrUnknownNodeType)
		}
	}

	for _, edge := range version.Edges {
		if !nodeIDs[edge.Source] {
			return NewValidationError(edge.Source, "source",
				fmt.Sprintf("edge source references unknown node: %s", edge.Source), ErrUnknownEdgeEndpoint)
		}
		if !nodeIDs[edge.Target] {
			return NewValidationError(edge.Target, "target",
				fmt.Sprintf("edge target references unknown node: %s", edge.Target), ErrUnknownEdgeEndpoint)
		}
		if edge.Source == edge.Target {
			return NewValidationError(edge.Source, "target",
				"edge connects node to itself", ErrSelfEdge)
		}
	}

	if _, err := BuildOrder(version.Nodes, version.Edges); err != nil {
		return err
	}

	return nil
}
