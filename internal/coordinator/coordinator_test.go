package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fedibbm/geoflow/internal/domain"
	"github.com/fedibbm/geoflow/internal/nodes"
	"github.com/fedibbm/geoflow/internal/repo"
)

// stubExecutor — исполнитель для тестов с подменяемым Execute.
type stubExecutor struct {
	nodeType string
	execute  func(ctx context.Context, node domain.WorkflowNode, ec *nodes.Context) (*nodes.Result, error)

	mu    sync.Mutex
	calls []string
}

func (s *stubExecutor) Type() string { return s.nodeType }

func (s *stubExecutor) Validate(domain.WorkflowNode) error { return nil }

func (s *stubExecutor) Execute(ctx context.Context, node domain.WorkflowNode, ec *nodes.Context) (*nodes.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, node.ID)
	s.mu.Unlock()
	if s.execute != nil {
		return s.execute(ctx, node, ec)
	}
	return nodes.Successf(map[string]any{"node": node.ID}), nil
}

func (s *stubExecutor) executed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// recordingPublisher запоминает опубликованные события.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.WorkflowExecution
	err    error
}

func (p *recordingPublisher) PublishExecutionFinished(_ context.Context, exec *domain.WorkflowExecution) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, exec)
	return p.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(t *testing.T, store *repo.MemoryStore, execs ...*stubExecutor) *Coordinator {
	t.Helper()
	registry := nodes.NewRegistry()
	for _, e := range execs {
		registry.Register(e)
	}
	return New(Config{
		Workflows:  store,
		Executions: store,
		Registry:   registry,
		Logger:     quietLogger(),
	})
}

func putWorkflow(store *repo.MemoryStore, ns []domain.WorkflowNode, es []domain.WorkflowEdge) *domain.WorkflowDefinition {
	wf := &domain.WorkflowDefinition{
		ID:             uuid.New(),
		Name:           "ndvi-monitoring",
		ProjectID:      "project-1",
		CurrentVersion: 1,
		Versions: []domain.WorkflowVersion{
			{Version: 1, Nodes: ns, Edges: es},
		},
		CreatedAt: time.Now(),
	}
	store.PutWorkflow(wf)
	return wf
}

func node(id, nodeType string) domain.WorkflowNode {
	return domain.WorkflowNode{ID: id, Type: nodeType}
}

func edge(source, target string) domain.WorkflowEdge {
	return domain.WorkflowEdge{Source: source, Target: target}
}

func TestStartExecution_LinearChainCompletes(t *testing.T) {
	store := repo.NewMemoryStore()
	step := &stubExecutor{nodeType: "step"}
	coord := newTestCoordinator(t, store, step)

	wf := putWorkflow(store,
		[]domain.WorkflowNode{node("A", "step"), node("B", "step"), node("C", "step"), node("D", "step")},
		[]domain.WorkflowEdge{edge("A", "B"), edge("B", "C"), edge("C", "D")},
	)

	exec, err := coord.StartExecution(context.Background(), StartRequest{
		WorkflowID:  wf.ID,
		TriggeredBy: "tester@geoflow.io",
	})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}

	if exec.Status != domain.ExecutionCompleted {
		t.Fatalf("status = %s, want %s", exec.Status, domain.ExecutionCompleted)
	}
	if len(exec.Results) != 4 {
		t.Fatalf("results count = %d, want 4", len(exec.Results))
	}
	if exec.StartedAt == nil || exec.CompletedAt == nil {
		t.Error("terminal execution must have started_at and completed_at")
	}

	wantOrder := []string{"A", "B", "C", "D"}
	got := step.executed()
	if len(got) != len(wantOrder) {
		t.Fatalf("executed %v, want %v", got, wantOrder)
	}
	for i, id := range wantOrder {
		if got[i] != id {
			t.Errorf("executed[%d] = %s, want %s", i, got[i], id)
		}
	}

	// Терминальный статус должен быть сохранён
	stored, err := store.GetExecution(context.Background(), exec.ID)
	if err != nil {
		t.Fatalf("GetExecution: %v", err)
	}
	if stored.Status != domain.ExecutionCompleted {
		t.Errorf("stored status = %s, want %s", stored.Status, domain.ExecutionCompleted)
	}
}

func TestStartExecution_CyclicGraphFailsBeforeAnyNode(t *testing.T) {
	store := repo.NewMemoryStore()
	step := &stubExecutor{nodeType: "step"}
	coord := newTestCoordinator(t, store, step)

	wf := putWorkflow(store,
		[]domain.WorkflowNode{node("A", "step"), node("B", "step")},
		[]domain.WorkflowEdge{edge("A", "B"), edge("B", "A")},
	)

	exec, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: wf.ID})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}

	if exec.Status != domain.ExecutionFailed {
		t.Fatalf("status = %s, want %s", exec.Status, domain.ExecutionFailed)
	}
	if len(step.executed()) != 0 {
		t.Errorf("no node should execute on a cyclic graph, got %v", step.executed())
	}
	if !strings.Contains(exec.Error, "cycle") {
		t.Errorf("error %q should mention the cycle", exec.Error)
	}
}

func TestStartExecution_UnknownNodeTypeFails(t *testing.T) {
	store := repo.NewMemoryStore()
	coord := newTestCoordinator(t, store, &stubExecutor{nodeType: "step"})

	wf := putWorkflow(store,
		[]domain.WorkflowNode{node("A", "step"), node("B", "mystery")},
		[]domain.WorkflowEdge{edge("A", "B")},
	)

	exec, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: wf.ID})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}
	if exec.Status != domain.ExecutionFailed {
		t.Fatalf("status = %s, want %s", exec.Status, domain.ExecutionFailed)
	}
}

func TestStartExecution_NodeFailureStopsChainAndCompensates(t *testing.T) {
	store := repo.NewMemoryStore()

	var compensated []string
	var mu sync.Mutex

	fetch := &stubExecutor{nodeType: "fetch"}
	process := &stubExecutor{
		nodeType: "process",
		execute: func(_ context.Context, node domain.WorkflowNode, _ *nodes.Context) (*nodes.Result, error) {
			return nil, errors.New("processing service timeout")
		},
	}
	coord := newTestCoordinator(t, store, fetch, process)

	wf := putWorkflow(store,
		[]domain.WorkflowNode{node("A", "fetch"), node("B", "process"), node("C", "fetch"), node("D", "fetch")},
		[]domain.WorkflowEdge{edge("A", "B"), edge("B", "C"), edge("C", "D")},
	)

	exec, _, err := coord.CreateExecution(context.Background(), StartRequest{WorkflowID: wf.ID})
	if err != nil {
		t.Fatalf("CreateExecution: %v", err)
	}

	coord.worker.Compensations().Register(exec.ID, "A", func(context.Context) error {
		mu.Lock()
		compensated = append(compensated, "A")
		mu.Unlock()
		return nil
	})

	version := wf.Current()
	finished, err := coord.run(context.Background(), exec, version)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if finished.Status != domain.ExecutionFailed {
		t.Fatalf("status = %s, want %s", finished.Status, domain.ExecutionFailed)
	}
	if !strings.Contains(finished.Error, "node B failed") {
		t.Errorf("error %q should name the failed node", finished.Error)
	}
	if got := fetch.executed(); len(got) != 1 || got[0] != "A" {
		t.Errorf("downstream nodes must not run after failure, fetch executed %v", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(compensated) != 1 || compensated[0] != "A" {
		t.Errorf("compensations = %v, want [A]", compensated)
	}
}

func TestStartExecution_DecisionSkipsInactiveBranch(t *testing.T) {
	store := repo.NewMemoryStore()

	fetch := &stubExecutor{nodeType: "fetch"}
	decide := &stubExecutor{
		nodeType: "decision",
		execute: func(_ context.Context, node domain.WorkflowNode, ec *nodes.Context) (*nodes.Result, error) {
			ec.SetGlobal(node.ID+nodes.GlobalDecisionSuffix, false)
			return nodes.Successf(map[string]any{"decision": false}), nil
		},
	}
	coord := newTestCoordinator(t, store, fetch, decide)

	cond := func(key string, equals any) *domain.EdgeCondition {
		return &domain.EdgeCondition{Key: key, Equals: equals}
	}
	wf := putWorkflow(store,
		[]domain.WorkflowNode{
			node("fetch", "fetch"),
			node("check", "decision"),
			node("alert", "fetch"),
			node("archive", "fetch"),
		},
		[]domain.WorkflowEdge{
			edge("fetch", "check"),
			{Source: "check", Target: "alert", Condition: cond("check.decision", true)},
			{Source: "check", Target: "archive", Condition: cond("check.decision", false)},
		},
	)

	exec, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: wf.ID})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}

	if exec.Status != domain.ExecutionCompleted {
		t.Fatalf("status = %s, want %s (error: %s)", exec.Status, domain.ExecutionCompleted, exec.Error)
	}

	got := fetch.executed()
	ran := map[string]bool{}
	for _, id := range got {
		ran[id] = true
	}
	if ran["alert"] {
		t.Error("alert is on the false-condition branch and must be skipped")
	}
	if !ran["archive"] {
		t.Error("archive is on the active branch and must run")
	}
	if _, ok := exec.Results["alert"]; ok {
		t.Error("skipped node must not appear in results")
	}

	var skipLogged bool
	for _, l := range exec.Logs {
		if l.NodeID == "alert" && strings.Contains(l.Message, "skipped") {
			skipLogged = true
		}
	}
	if !skipLogged {
		t.Error("skip must be visible in the execution log")
	}
}

func TestStartExecution_EmptyGraphCompletes(t *testing.T) {
	store := repo.NewMemoryStore()
	coord := newTestCoordinator(t, store)

	wf := putWorkflow(store, nil, nil)

	exec, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: wf.ID})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}
	if exec.Status != domain.ExecutionCompleted {
		t.Fatalf("status = %s, want %s", exec.Status, domain.ExecutionCompleted)
	}
	if len(exec.Results) != 0 {
		t.Errorf("results = %v, want empty", exec.Results)
	}
}

func TestStartExecution_UnknownWorkflow(t *testing.T) {
	store := repo.NewMemoryStore()
	coord := newTestCoordinator(t, store)

	_, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: uuid.New()})
	if !errors.Is(err, ErrWorkflowNotFound) {
		t.Fatalf("err = %v, want ErrWorkflowNotFound", err)
	}
}

func TestStartExecution_UnknownVersion(t *testing.T) {
	store := repo.NewMemoryStore()
	coord := newTestCoordinator(t, store, &stubExecutor{nodeType: "step"})

	wf := putWorkflow(store, []domain.WorkflowNode{node("A", "step")}, nil)

	_, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: wf.ID, Version: 7})
	if !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("err = %v, want ErrVersionNotFound", err)
	}
}

func TestTerminate_StopsBetweenNodes(t *testing.T) {
	store := repo.NewMemoryStore()

	started := make(chan struct{})
	proceed := make(chan struct{})
	slow := &stubExecutor{
		nodeType: "slow",
		execute: func(ctx context.Context, node domain.WorkflowNode, _ *nodes.Context) (*nodes.Result, error) {
			if node.ID == "A" {
				close(started)
				<-proceed
			}
			return nodes.Successf(map[string]any{"node": node.ID}), nil
		},
	}
	coord := newTestCoordinator(t, store, slow)

	wf := putWorkflow(store,
		[]domain.WorkflowNode{node("A", "slow"), node("B", "slow")},
		[]domain.WorkflowEdge{edge("A", "B")},
	)

	done := make(chan *domain.WorkflowExecution, 1)
	go func() {
		exec, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: wf.ID})
		if err != nil {
			t.Errorf("StartExecution: %v", err)
		}
		done <- exec
	}()

	<-started
	if err := coord.Terminate(getActiveExecutionID(t, coord, store, wf.ID), "operator request"); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	close(proceed)

	exec := <-done
	if exec.Status != domain.ExecutionCancelled {
		t.Fatalf("status = %s, want %s", exec.Status, domain.ExecutionCancelled)
	}
	if !strings.Contains(exec.Error, "operator request") {
		t.Errorf("error %q should carry the termination reason", exec.Error)
	}

	ran := slow.executed()
	for _, id := range ran {
		if id == "B" {
			t.Error("node after termination point must not run")
		}
	}
}

func TestTerminate_InactiveExecution(t *testing.T) {
	store := repo.NewMemoryStore()
	coord := newTestCoordinator(t, store)

	err := coord.Terminate(uuid.New(), "")
	if !errors.Is(err, ErrExecutionNotActive) {
		t.Fatalf("err = %v, want ErrExecutionNotActive", err)
	}
}

func TestPauseResume(t *testing.T) {
	store := repo.NewMemoryStore()

	bRan := make(chan struct{}, 1)
	var coord *Coordinator
	step := &stubExecutor{nodeType: "step"}
	step.execute = func(_ context.Context, node domain.WorkflowNode, ec *nodes.Context) (*nodes.Result, error) {
		switch node.ID {
		case "A":
			// Пауза взводится до проверки флагов перед следующим узлом
			if err := coord.Pause(ec.ExecutionID); err != nil {
				t.Errorf("Pause: %v", err)
			}
		case "B":
			bRan <- struct{}{}
		}
		return nodes.Successf(map[string]any{"node": node.ID}), nil
	}
	coord = newTestCoordinator(t, store, step)

	wf := putWorkflow(store,
		[]domain.WorkflowNode{node("A", "step"), node("B", "step")},
		[]domain.WorkflowEdge{edge("A", "B")},
	)

	done := make(chan *domain.WorkflowExecution, 1)
	go func() {
		exec, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: wf.ID})
		if err != nil {
			t.Errorf("StartExecution: %v", err)
		}
		done <- exec
	}()

	select {
	case <-bRan:
		t.Fatal("node B ran while execution was paused")
	case <-time.After(100 * time.Millisecond):
	}

	execID := getActiveExecutionID(t, coord, store, wf.ID)
	if err := coord.Resume(execID); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	select {
	case <-bRan:
	case <-time.After(2 * time.Second):
		t.Fatal("node B never ran after resume")
	}

	exec := <-done
	if exec.Status != domain.ExecutionCompleted {
		t.Fatalf("status = %s, want %s", exec.Status, domain.ExecutionCompleted)
	}
}

func TestResume_NotPaused(t *testing.T) {
	store := repo.NewMemoryStore()

	started := make(chan struct{})
	proceed := make(chan struct{})
	slow := &stubExecutor{
		nodeType: "slow",
		execute: func(_ context.Context, _ domain.WorkflowNode, _ *nodes.Context) (*nodes.Result, error) {
			close(started)
			<-proceed
			return nodes.Successf(nil), nil
		},
	}
	coord := newTestCoordinator(t, store, slow)
	wf := putWorkflow(store, []domain.WorkflowNode{node("A", "slow")}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: wf.ID}); err != nil {
			t.Errorf("StartExecution: %v", err)
		}
	}()

	<-started
	err := coord.Resume(getActiveExecutionID(t, coord, store, wf.ID))
	if !errors.Is(err, ErrExecutionNotPaused) {
		t.Errorf("err = %v, want ErrExecutionNotPaused", err)
	}
	close(proceed)
	<-done
}

func TestRestart_CreatesLinkedExecution(t *testing.T) {
	store := repo.NewMemoryStore()
	coord := newTestCoordinator(t, store, &stubExecutor{nodeType: "step"})

	wf := putWorkflow(store, []domain.WorkflowNode{node("A", "step")}, nil)

	first, err := coord.StartExecution(context.Background(), StartRequest{
		WorkflowID: wf.ID,
		Input:      map[string]any{"projectId": "project-1"},
	})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}

	second, err := coord.Restart(context.Background(), first.ID, "tester@geoflow.io")
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}

	if second.ID == first.ID {
		t.Error("restart must create a new execution")
	}
	if second.RestartOf == nil || *second.RestartOf != first.ID {
		t.Errorf("restart_of = %v, want %s", second.RestartOf, first.ID)
	}
	if second.Input["projectId"] != "project-1" {
		t.Error("restart must reuse the original input")
	}
	if second.Status != domain.ExecutionCompleted {
		t.Errorf("status = %s, want %s", second.Status, domain.ExecutionCompleted)
	}
}

func TestRestart_UnfinishedExecution(t *testing.T) {
	store := repo.NewMemoryStore()
	coord := newTestCoordinator(t, store, &stubExecutor{nodeType: "step"})

	wf := putWorkflow(store, []domain.WorkflowNode{node("A", "step")}, nil)
	exec, _, err := coord.CreateExecution(context.Background(), StartRequest{WorkflowID: wf.ID})
	if err != nil {
		t.Fatalf("CreateExecution: %v", err)
	}

	if _, err := coord.Restart(context.Background(), exec.ID, "tester"); err == nil {
		t.Fatal("restart of a PENDING execution must fail")
	}
}

func TestFinish_PublishesEvent(t *testing.T) {
	store := repo.NewMemoryStore()
	pub := &recordingPublisher{}
	registry := nodes.NewRegistry()
	registry.Register(&stubExecutor{nodeType: "step"})
	coord := New(Config{
		Workflows:  store,
		Executions: store,
		Registry:   registry,
		Publisher:  pub,
		Logger:     quietLogger(),
	})

	wf := putWorkflow(store, []domain.WorkflowNode{node("A", "step")}, nil)
	exec, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: wf.ID})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(pub.events))
	}
	if pub.events[0].ID != exec.ID {
		t.Errorf("published execution %s, want %s", pub.events[0].ID, exec.ID)
	}
}

func TestFinish_PublishFailureDoesNotFailExecution(t *testing.T) {
	store := repo.NewMemoryStore()
	pub := &recordingPublisher{err: errors.New("broker unavailable")}
	registry := nodes.NewRegistry()
	registry.Register(&stubExecutor{nodeType: "step"})
	coord := New(Config{
		Workflows:  store,
		Executions: store,
		Registry:   registry,
		Publisher:  pub,
		Logger:     quietLogger(),
	})

	wf := putWorkflow(store, []domain.WorkflowNode{node("A", "step")}, nil)
	exec, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: wf.ID})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}
	if exec.Status != domain.ExecutionCompleted {
		t.Fatalf("status = %s, want %s", exec.Status, domain.ExecutionCompleted)
	}
}

func TestListExecutions_Filter(t *testing.T) {
	store := repo.NewMemoryStore()
	coord := newTestCoordinator(t, store, &stubExecutor{nodeType: "step"})

	wf := putWorkflow(store, []domain.WorkflowNode{node("A", "step")}, nil)
	other := putWorkflow(store, []domain.WorkflowNode{node("A", "step")}, nil)

	for i := 0; i < 3; i++ {
		if _, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: wf.ID}); err != nil {
			t.Fatalf("StartExecution: %v", err)
		}
	}
	if _, err := coord.StartExecution(context.Background(), StartRequest{WorkflowID: other.ID}); err != nil {
		t.Fatalf("StartExecution: %v", err)
	}

	got, err := coord.ListExecutions(context.Background(), domain.ExecutionFilter{WorkflowID: wf.ID})
	if err != nil {
		t.Fatalf("ListExecutions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("filtered executions = %d, want 3", len(got))
	}

	got, err = coord.ListExecutions(context.Background(), domain.ExecutionFilter{Status: domain.ExecutionCompleted, Limit: 2})
	if err != nil {
		t.Fatalf("ListExecutions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("limited executions = %d, want 2", len(got))
	}
}

// getActiveExecutionID ждёт появления RUNNING execution указанного workflow.
func getActiveExecutionID(t *testing.T, coord *Coordinator, store *repo.MemoryStore, workflowID uuid.UUID) uuid.UUID {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		execs, err := store.ListExecutions(context.Background(), domain.ExecutionFilter{
			WorkflowID: workflowID,
			Status:     domain.ExecutionRunning,
		})
		if err != nil {
			t.Fatalf("ListExecutions: %v", err)
		}
		if len(execs) > 0 {
			return execs[0].ID
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no running execution appeared")
	return uuid.Nil
}
