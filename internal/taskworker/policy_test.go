package taskworker

import (
	"testing"

	"github.com/fedibbm/geoflow/internal/domain"
)

func TestDefaultPolicySet(t *testing.T) {
	s := DefaultPolicySet()

	tests := []struct {
		nodeType    string
		maxAttempts int
	}{
		{domain.NodeTypeDataInput, 5},
		{domain.NodeTypeProcessing, 3},
		{domain.NodeTypeOutput, 4},
		{domain.NodeTypeTrigger, 2},
	}

	for _, tt := range tests {
		policy, ok := s.Get(tt.nodeType)
		if !ok {
			t.Errorf("expected default policy for %s", tt.nodeType)
			continue
		}
		if policy.MaxAttempts != tt.maxAttempts {
			t.Errorf("%s: expected %d attempts, got %d",
				tt.nodeType, tt.maxAttempts, policy.MaxAttempts)
		}
	}

	if _, ok := s.Get(domain.NodeTypeDecision); ok {
		t.Error("decision nodes should have no retry policy")
	}
}

func TestPolicySet_Set(t *testing.T) {
	s := NewPolicySet(nil)

	s.Set("custom", domain.RetryPolicy{MaxAttempts: 7})

	policy, ok := s.Get("custom")
	if !ok || policy.MaxAttempts != 7 {
		t.Errorf("expected stored policy, got %+v (found=%v)", policy, ok)
	}
}
