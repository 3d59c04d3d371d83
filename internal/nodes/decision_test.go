package nodes

import (
	"context"
	"errors"
	"testing"

	"github.com/fedibbm/geoflow/internal/domain"
)

func TestDecisionExecutor_Threshold(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		threshold float64
		cmp       string
		want      bool
	}{
		{"above", 0.55, 0.3, ">", true},
		{"below", 0.12, 0.3, ">", false},
		{"equal_gte", 0.3, 0.3, ">=", true},
		{"less", 0.1, 0.3, "<", true},
		{"non_numeric", "oops", 0.3, ">", false},
	}

	executor := NewDecisionExecutor()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec := newTestContext(nil)
			ec.SetNodeOutput("ndvi", map[string]any{"meanValue": tt.value})

			node := domain.WorkflowNode{
				ID:   "check",
				Type: domain.NodeTypeDecision,
				Config: map[string]any{
					"conditionType": "threshold",
					"inputKey":      "ndvi.meanValue",
					"threshold":     tt.threshold,
					"comparison":    tt.cmp,
				},
			}

			result, err := executor.Execute(context.Background(), node, ec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.Success {
				t.Fatalf("expected success, got failure: %s", result.Error)
			}
			if result.Outputs["decision"] != tt.want {
				t.Errorf("expected decision %v, got %v", tt.want, result.Outputs["decision"])
			}
		})
	}
}

func TestDecisionExecutor_PublishesGlobal(t *testing.T) {
	executor := NewDecisionExecutor()
	ec := newTestContext(nil)
	ec.SetNodeOutput("ndvi", map[string]any{"meanValue": 0.8})

	node := domain.WorkflowNode{
		ID:   "vegetation-check",
		Type: domain.NodeTypeDecision,
		Config: map[string]any{
			"conditionType": "threshold",
			"inputKey":      "ndvi.meanValue",
			"threshold":     0.5,
		},
	}

	result, err := executor.Execute(context.Background(), node, ec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outputs["path"] != "true" {
		t.Errorf("expected path true, got %v", result.Outputs["path"])
	}

	// Результат опубликован как глобальная переменная для условных рёбер
	v, ok := ec.Global("vegetation-check.decision")
	if !ok {
		t.Fatal("expected decision global to be published")
	}
	if v != true {
		t.Errorf("expected decision true, got %v", v)
	}
}

func TestDecisionExecutor_Comparison(t *testing.T) {
	tests := []struct {
		name     string
		left     any
		operator string
		right    any
		want     bool
	}{
		{"equals_string", "success", "==", "success", true},
		{"equals_numeric", float64(3), "==", 3, true},
		{"not_equals", "error", "!=", "success", true},
		{"greater", float64(10), ">", 5, true},
		{"contains", "sentinel-2-l2a", "contains", "sentinel", true},
		{"starts_with", "ndvi-result", "starts-with", "ndvi", true},
		{"unknown_operator", "x", "~=", "x", false},
	}

	executor := NewDecisionExecutor()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec := newTestContext(nil)
			ec.SetNodeOutput("prev", map[string]any{"value": tt.left})

			node := domain.WorkflowNode{
				ID:   "check",
				Type: domain.NodeTypeDecision,
				Config: map[string]any{
					"conditionType": "comparison",
					"leftOperand":   "prev.value",
					"operator":      tt.operator,
					"rightValue":    tt.right,
				},
			}

			result, err := executor.Execute(context.Background(), node, ec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Outputs["decision"] != tt.want {
				t.Errorf("expected decision %v, got %v", tt.want, result.Outputs["decision"])
			}
		})
	}
}

func TestDecisionExecutor_DataCheck(t *testing.T) {
	executor := NewDecisionExecutor()
	ec := newTestContext(nil)
	ec.SetNodeOutput("fetch", map[string]any{
		"images": []any{"img-1"},
		"status": "success",
	})

	tests := []struct {
		name      string
		checkType string
		inputKey  string
		want      bool
	}{
		{"exists", "exists", "fetch.images", true},
		{"exists_missing", "exists", "fetch.missing", false},
		{"not_empty", "not-empty", "fetch.images", true},
		{"is_success", "is-success", "fetch", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := domain.WorkflowNode{
				ID:   "check",
				Type: domain.NodeTypeDecision,
				Config: map[string]any{
					"conditionType": "data-check",
					"checkType":     tt.checkType,
					"inputKey":      tt.inputKey,
				},
			}

			result, err := executor.Execute(context.Background(), node, ec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Outputs["decision"] != tt.want {
				t.Errorf("expected decision %v, got %v", tt.want, result.Outputs["decision"])
			}
		})
	}
}

func TestDecisionExecutor_Validate(t *testing.T) {
	executor := NewDecisionExecutor()

	tests := []struct {
		name    string
		config  map[string]any
		wantErr bool
	}{
		{"empty_config", nil, true},
		{"comparison_ok", map[string]any{"conditionType": "comparison", "operator": "=="}, false},
		{"comparison_no_operator", map[string]any{"conditionType": "comparison"}, true},
		{"threshold_ok", map[string]any{"conditionType": "threshold", "threshold": 0.5}, false},
		{"threshold_missing", map[string]any{"conditionType": "threshold"}, true},
		{"data_check_ok", map[string]any{"conditionType": "data-check", "inputKey": "a.b"}, false},
		{"unknown_type", map[string]any{"conditionType": "oracle"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := domain.WorkflowNode{ID: "check", Type: domain.NodeTypeDecision, Config: tt.config}
			err := executor.Validate(node)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr && err != nil && !errors.Is(err, ErrInvalidNodeConfig) {
				t.Errorf("expected ErrInvalidNodeConfig, got %v", err)
			}
		})
	}
}
