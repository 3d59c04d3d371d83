package engine

import (
	"testing"

	"github.com/fedibbm/geoflow/internal/domain"
)

func TestEdgeActive_Unconditional(t *testing.T) {
	edge := domain.WorkflowEdge{Source: "A", Target: "B"}
	if !EdgeActive(edge, nil) {
		t.Error("unconditional edge should always be active")
	}
}

func TestEdgeActive_ConditionTrue(t *testing.T) {
	edge := domain.WorkflowEdge{
		Source:    "check",
		Target:    "alert",
		Condition: &domain.EdgeCondition{Key: "check.decision", Equals: true},
	}
	globals := map[string]any{"check.decision": true}

	if !EdgeActive(edge, globals) {
		t.Error("edge should be active when condition matches")
	}
}

func TestEdgeActive_ConditionFalse(t *testing.T) {
	edge := domain.WorkflowEdge{
		Source:    "check",
		Target:    "alert",
		Condition: &domain.EdgeCondition{Key: "check.decision", Equals: true},
	}
	globals := map[string]any{"check.decision": false}

	if EdgeActive(edge, globals) {
		t.Error("edge should be inactive when condition does not match")
	}
}

func TestEdgeActive_MissingKey(t *testing.T) {
	edge := domain.WorkflowEdge{
		Source:    "check",
		Target:    "alert",
		Condition: &domain.EdgeCondition{Key: "check.decision", Equals: true},
	}

	if EdgeActive(edge, map[string]any{}) {
		t.Error("edge should be inactive when key is missing")
	}
}

func TestEdgeActive_NumericComparison(t *testing.T) {
	// После JSON-декодирования числа становятся float64
	edge := domain.WorkflowEdge{
		Source:    "A",
		Target:    "B",
		Condition: &domain.EdgeCondition{Key: "count", Equals: 3},
	}
	globals := map[string]any{"count": float64(3)}

	if !EdgeActive(edge, globals) {
		t.Error("int condition should match float64 value")
	}
}

func TestShouldSkip_NoInbound(t *testing.T) {
	edges := []domain.WorkflowEdge{
		{Source: "A", Target: "B"},
	}

	if ShouldSkip("A", edges, nil, nil) {
		t.Error("node without inbound edges should never be skipped")
	}
}

func TestShouldSkip_ActiveInbound(t *testing.T) {
	edges := []domain.WorkflowEdge{
		{Source: "A", Target: "B"},
	}

	if ShouldSkip("B", edges, nil, map[string]bool{}) {
		t.Error("node with active inbound edge should run")
	}
}

func TestShouldSkip_AllInboundInactive(t *testing.T) {
	edges := []domain.WorkflowEdge{
		{
			Source:    "check",
			Target:    "alert",
			Condition: &domain.EdgeCondition{Key: "check.decision", Equals: true},
		},
	}
	globals := map[string]any{"check.decision": false}

	if !ShouldSkip("alert", edges, globals, nil) {
		t.Error("node should be skipped when every inbound edge is inactive")
	}
}

func TestShouldSkip_SourceSkipped(t *testing.T) {
	// check пропущен → его безусловное ребро к notify неактивно
	edges := []domain.WorkflowEdge{
		{Source: "check", Target: "notify"},
	}
	skipped := map[string]bool{"check": true}

	if !ShouldSkip("notify", edges, nil, skipped) {
		t.Error("skip should propagate through skipped source")
	}
}

func TestShouldSkip_MixedInbound(t *testing.T) {
	// Одно ребро неактивно, второе активно: узел выполняется
	edges := []domain.WorkflowEdge{
		{
			Source:    "check",
			Target:    "store",
			Condition: &domain.EdgeCondition{Key: "check.decision", Equals: true},
		},
		{Source: "fetch", Target: "store"},
	}
	globals := map[string]any{"check.decision": false}

	if ShouldSkip("store", edges, globals, nil) {
		t.Error("node with at least one active inbound edge should run")
	}
}
