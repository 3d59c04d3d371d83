package taskworker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCompensationLog_LIFO(t *testing.T) {
	log := NewCompensationLog(nil)
	execID := uuid.New()

	var order []string
	for _, nodeID := range []string{"fetch", "ndvi", "store"} {
		id := nodeID
		log.Register(execID, id, func(ctx context.Context) error {
			order = append(order, id)
			return nil
		})
	}

	invoked := log.Invoke(context.Background(), execID, "node failed")
	if invoked != 3 {
		t.Errorf("expected 3 compensations invoked, got %d", invoked)
	}

	want := []string{"store", "ndvi", "fetch"}
	for i, id := range want {
		if i >= len(order) || order[i] != id {
			t.Fatalf("expected LIFO order %v, got %v", want, order)
		}
	}
}

func TestCompensationLog_InvokeClearsStack(t *testing.T) {
	log := NewCompensationLog(nil)
	execID := uuid.New()

	calls := 0
	log.Register(execID, "fetch", func(ctx context.Context) error {
		calls++
		return nil
	})

	log.Invoke(context.Background(), execID, "node failed")
	log.Invoke(context.Background(), execID, "node failed")

	if calls != 1 {
		t.Errorf("expected compensation invoked exactly once, got %d", calls)
	}
}

func TestCompensationLog_FailureDoesNotStopOthers(t *testing.T) {
	log := NewCompensationLog(nil)
	execID := uuid.New()

	firstCalled := false
	log.Register(execID, "a", func(ctx context.Context) error {
		firstCalled = true
		return nil
	})
	log.Register(execID, "b", func(ctx context.Context) error {
		return errors.New("rollback failed")
	})

	invoked := log.Invoke(context.Background(), execID, "node failed")
	if invoked != 1 {
		t.Errorf("expected 1 successful compensation, got %d", invoked)
	}
	if !firstCalled {
		t.Error("expected earlier compensation to run after later one failed")
	}
}

func TestCompensationLog_Clear(t *testing.T) {
	log := NewCompensationLog(nil)
	execID := uuid.New()

	called := false
	log.Register(execID, "fetch", func(ctx context.Context) error {
		called = true
		return nil
	})

	log.Clear(execID)

	if log.Count(execID) != 0 {
		t.Errorf("expected empty stack after clear, got %d", log.Count(execID))
	}
	if log.Invoke(context.Background(), execID, "node failed") != 0 {
		t.Error("expected nothing to invoke after clear")
	}
	if called {
		t.Error("compensation should not run after clear")
	}
}

func TestCompensationLog_IsolatedPerExecution(t *testing.T) {
	log := NewCompensationLog(nil)
	execA := uuid.New()
	execB := uuid.New()

	var invokedFor []string
	log.Register(execA, "a", func(ctx context.Context) error {
		invokedFor = append(invokedFor, "a")
		return nil
	})
	log.Register(execB, "b", func(ctx context.Context) error {
		invokedFor = append(invokedFor, "b")
		return nil
	})

	log.Invoke(context.Background(), execA, "node failed")

	if len(invokedFor) != 1 || invokedFor[0] != "a" {
		t.Errorf("expected only execution A compensations, got %v", invokedFor)
	}
	if log.Count(execB) != 1 {
		t.Errorf("execution B stack should be untouched, got %d", log.Count(execB))
	}
}
