package engine

import (
	"github.com/fedibbm/geoflow/internal/domain"
)

// BuildOrder строит линейный порядок выполнения узлов (алгоритм Кана).
//
// Возвращает перестановку всех узлов, в которой для каждого ребра (u → v)
// узел u предшествует v. Разрешение ничьих среди одновременно готовых
// узлов стабильно относительно порядка объявления узлов в версии —
// именно в этом порядке зависят и изолированные узлы.
//
// Если после обхода обработаны не все узлы, граф содержит цикл —
// возвращается ErrCyclicGraph. Это структурная, неповторяемая ошибка:
// координатор прерывает запуск до выполнения первого узла.
func BuildOrder(nodes []domain.WorkflowNode, edges []domain.WorkflowEdge) ([]domain.WorkflowNode, error) {
	nodeByID := make(map[string]*domain.WorkflowNode, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	successors := make(map[string][]string, len(nodes))

	for i := range nodes {
		node := &nodes[i]
		nodeByID[node.ID] = node
		inDegree[node.ID] = 0
	}

	for _, edge := range edges {
		successors[edge.Source] = append(successors[edge.Source], edge.Target)
		inDegree[edge.Target]++
	}

	// Очередь узлов с inDegree = 0, в порядке объявления.
	queue := make([]string, 0, len(nodes))
	for i := range nodes {
		if inDegree[nodes[i].ID] == 0 {
			queue = append(queue, nodes[i].ID)
		}
	}

	order := make([]domain.WorkflowNode, 0, len(nodes))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, *nodeByID[id])

		for _, succ := range successors[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	// Не все узлы обработаны — есть цикл.
	if len(order) != len(nodes) {
		return nil, ErrCyclicGraph
	}

	return order, nil
}
