package nodes

import (
	"context"
	"errors"
	"testing"

	"github.com/fedibbm/geoflow/internal/domain"
)

// fakeExecutor — исполнитель для тестов реестра.
type fakeExecutor struct {
	nodeType string
	marker   string
}

func (f *fakeExecutor) Type() string { return f.nodeType }

func (f *fakeExecutor) Validate(node domain.WorkflowNode) error { return nil }

func (f *fakeExecutor) Execute(ctx context.Context, node domain.WorkflowNode, ec *Context) (*Result, error) {
	return Successf(map[string]any{"marker": f.marker}), nil
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeExecutor{nodeType: "custom", marker: "a"})

	executor, err := r.Resolve("custom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if executor.Type() != "custom" {
		t.Errorf("expected type custom, got %s", executor.Type())
	}
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("missing")
	if !errors.Is(err, ErrNoExecutor) {
		t.Errorf("expected ErrNoExecutor, got %v", err)
	}
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeExecutor{nodeType: "custom", marker: "first"})
	r.Register(&fakeExecutor{nodeType: "custom", marker: "second"})

	if r.Count() != 1 {
		t.Errorf("expected 1 executor, got %d", r.Count())
	}

	executor, err := r.Resolve("custom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := executor.Execute(context.Background(), domain.WorkflowNode{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outputs["marker"] != "second" {
		t.Errorf("expected last registered executor to win, got %v", result.Outputs["marker"])
	}
}

func TestRegistry_Types(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeExecutor{nodeType: "zeta"})
	r.Register(&fakeExecutor{nodeType: "alpha"})

	types := r.Types()
	if len(types) != 2 {
		t.Fatalf("expected 2 types, got %d", len(types))
	}
	if types[0] != "alpha" || types[1] != "zeta" {
		t.Errorf("expected sorted types, got %v", types)
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(nil, nil)

	for _, nodeType := range domain.BuiltinNodeTypes() {
		if !r.Has(nodeType) {
			t.Errorf("expected built-in type %s to be registered", nodeType)
		}
	}
}
