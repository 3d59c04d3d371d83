package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestExecutionStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   ExecutionStatus
		terminal bool
	}{
		{ExecutionPending, false},
		{ExecutionRunning, false},
		{ExecutionCompleted, true},
		{ExecutionFailed, true},
		{ExecutionCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s: expected terminal=%v, got %v", tt.status, tt.terminal, got)
		}
	}
}

func TestWorkflowExecution_Lifecycle(t *testing.T) {
	exec := &WorkflowExecution{
		ID:         uuid.New(),
		WorkflowID: uuid.New(),
		Version:    1,
		Status:     ExecutionPending,
	}

	if exec.IsFinished() {
		t.Error("pending execution should not be finished")
	}

	exec.MarkRunning()
	if exec.Status != ExecutionRunning {
		t.Errorf("expected RUNNING, got %s", exec.Status)
	}
	if exec.StartedAt == nil {
		t.Error("expected StartedAt to be set")
	}

	results := map[string]map[string]any{
		"ndvi": {"meanValue": 0.47},
	}
	exec.MarkCompleted(results)

	if exec.Status != ExecutionCompleted {
		t.Errorf("expected COMPLETED, got %s", exec.Status)
	}
	if exec.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
	if !exec.IsFinished() {
		t.Error("completed execution should be finished")
	}
	if exec.Results["ndvi"]["meanValue"] != 0.47 {
		t.Errorf("expected results to be stored, got %v", exec.Results)
	}
	if exec.Duration() <= 0 && exec.CompletedAt.Sub(*exec.StartedAt) > 0 {
		t.Error("expected positive duration")
	}
}

func TestWorkflowExecution_MarkFailed(t *testing.T) {
	exec := &WorkflowExecution{Status: ExecutionRunning}

	exec.MarkFailed("node ndvi failed terminally")

	if exec.Status != ExecutionFailed {
		t.Errorf("expected FAILED, got %s", exec.Status)
	}
	if exec.Error != "node ndvi failed terminally" {
		t.Errorf("expected error message, got %q", exec.Error)
	}
	if exec.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
}

func TestWorkflowExecution_MarkCancelled(t *testing.T) {
	exec := &WorkflowExecution{Status: ExecutionRunning}

	exec.MarkCancelled("terminated by operator")

	if exec.Status != ExecutionCancelled {
		t.Errorf("expected CANCELLED, got %s", exec.Status)
	}
	if exec.Error != "terminated by operator" {
		t.Errorf("expected reason, got %q", exec.Error)
	}
}

func TestWorkflowExecution_AppendLog(t *testing.T) {
	exec := &WorkflowExecution{}

	exec.AppendLog(SystemNode, LogInfo, "execution started")
	exec.AppendLog("fetch", LogInfo, "node started")
	exec.AppendLog("fetch", LogError, "node failed")

	if len(exec.Logs) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(exec.Logs))
	}
	if exec.Logs[0].NodeID != SystemNode {
		t.Errorf("expected system node entry first, got %s", exec.Logs[0].NodeID)
	}
	if exec.Logs[2].Level != LogError {
		t.Errorf("expected ERROR level, got %s", exec.Logs[2].Level)
	}
	// Порядок записей сохраняется
	if exec.Logs[1].Message != "node started" {
		t.Errorf("unexpected log order: %v", exec.Logs)
	}
}

func TestWorkflowDefinition_Version(t *testing.T) {
	wf := &WorkflowDefinition{
		ID:             uuid.New(),
		Name:           "ndvi-monitor",
		CurrentVersion: 2,
		Versions: []WorkflowVersion{
			{Version: 1},
			{Version: 2},
		},
	}

	v := wf.Version(1)
	if v == nil || v.Version != 1 {
		t.Errorf("expected version 1, got %+v", v)
	}

	current := wf.Current()
	if current == nil || current.Version != 2 {
		t.Errorf("expected current version 2, got %+v", current)
	}

	if wf.Version(9) != nil {
		t.Error("expected no version 9")
	}
}
