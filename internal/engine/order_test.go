package engine

import (
	"errors"
	"testing"

	"github.com/fedibbm/geoflow/internal/domain"
)

func TestBuildOrder_SimpleChain(t *testing.T) {
	nodes := []domain.WorkflowNode{
		{ID: "A", Type: domain.NodeTypeTrigger},
		{ID: "B", Type: domain.NodeTypeDataInput},
		{ID: "C", Type: domain.NodeTypeProcessing},
		{ID: "D", Type: domain.NodeTypeOutput},
	}
	edges := []domain.WorkflowEdge{
		{Source: "A", Target: "B"},
		{Source: "B", Target: "C"},
		{Source: "C", Target: "D"},
	}

	order, err := BuildOrder(nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(order) != 4 {
		t.Fatalf("expected 4 nodes in order, got %d", len(order))
	}
	want := []string{"A", "B", "C", "D"}
	for i, id := range want {
		if order[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, order[i].ID)
		}
	}
}

func TestBuildOrder_Diamond(t *testing.T) {
	// A → B → D
	// A → C → D
	nodes := []domain.WorkflowNode{
		{ID: "A", Type: domain.NodeTypeTrigger},
		{ID: "B", Type: domain.NodeTypeProcessing},
		{ID: "C", Type: domain.NodeTypeProcessing},
		{ID: "D", Type: domain.NodeTypeOutput},
	}
	edges := []domain.WorkflowEdge{
		{Source: "A", Target: "B"},
		{Source: "A", Target: "C"},
		{Source: "B", Target: "D"},
		{Source: "C", Target: "D"},
	}

	order, err := BuildOrder(nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	positions := make(map[string]int)
	for i, node := range order {
		positions[node.ID] = i
	}

	if positions["A"] > positions["B"] {
		t.Error("A should come before B")
	}
	if positions["A"] > positions["C"] {
		t.Error("A should come before C")
	}
	if positions["B"] > positions["D"] {
		t.Error("B should come before D")
	}
	if positions["C"] > positions["D"] {
		t.Error("C should come before D")
	}
}

func TestBuildOrder_Cycle(t *testing.T) {
	nodes := []domain.WorkflowNode{
		{ID: "A", Type: domain.NodeTypeProcessing},
		{ID: "B", Type: domain.NodeTypeProcessing},
		{ID: "C", Type: domain.NodeTypeProcessing},
	}
	edges := []domain.WorkflowEdge{
		{Source: "A", Target: "B"},
		{Source: "B", Target: "C"},
		{Source: "C", Target: "A"},
	}

	_, err := BuildOrder(nodes, edges)
	if !errors.Is(err, ErrCyclicGraph) {
		t.Errorf("expected ErrCyclicGraph, got %v", err)
	}
}

func TestBuildOrder_PartialCycle(t *testing.T) {
	// A валиден, но B ↔ C образуют цикл: весь граф отклоняется.
	nodes := []domain.WorkflowNode{
		{ID: "A", Type: domain.NodeTypeTrigger},
		{ID: "B", Type: domain.NodeTypeProcessing},
		{ID: "C", Type: domain.NodeTypeProcessing},
	}
	edges := []domain.WorkflowEdge{
		{Source: "B", Target: "C"},
		{Source: "C", Target: "B"},
	}

	_, err := BuildOrder(nodes, edges)
	if !errors.Is(err, ErrCyclicGraph) {
		t.Errorf("expected ErrCyclicGraph, got %v", err)
	}
}

func TestBuildOrder_IsolatedNodes(t *testing.T) {
	nodes := []domain.WorkflowNode{
		{ID: "A", Type: domain.NodeTypeTrigger},
		{ID: "B", Type: domain.NodeTypeProcessing},
		{ID: "C", Type: domain.NodeTypeOutput},
	}

	order, err := BuildOrder(nodes, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Узлы без рёбер сохраняют порядок определения
	if len(order) != 3 {
		t.Fatalf("expected 3 nodes in order, got %d", len(order))
	}
	for i, id := range []string{"A", "B", "C"} {
		if order[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, order[i].ID)
		}
	}
}

func TestBuildOrder_Empty(t *testing.T) {
	order, err := BuildOrder(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected empty order, got %d nodes", len(order))
	}
}

func TestBuildOrder_Deterministic(t *testing.T) {
	nodes := []domain.WorkflowNode{
		{ID: "A", Type: domain.NodeTypeTrigger},
		{ID: "B", Type: domain.NodeTypeProcessing},
		{ID: "C", Type: domain.NodeTypeProcessing},
		{ID: "D", Type: domain.NodeTypeOutput},
	}
	edges := []domain.WorkflowEdge{
		{Source: "A", Target: "D"},
	}

	first, err := BuildOrder(nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Повторные вызовы возвращают тот же порядок
	for i := 0; i < 10; i++ {
		order, err := BuildOrder(nodes, edges)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for j := range order {
			if order[j].ID != first[j].ID {
				t.Fatalf("run %d: order differs at position %d: %s vs %s",
					i, j, order[j].ID, first[j].ID)
			}
		}
	}
}
