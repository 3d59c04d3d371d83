package domain

import (
	"reflect"
	"testing"
)

func TestMergeInput(t *testing.T) {
	tests := []struct {
		name     string
		defaults map[string]any
		payload  map[string]any
		want     map[string]any
	}{
		{
			name:    "no defaults returns payload",
			payload: map[string]any{"aoi": "field-7"},
			want:    map[string]any{"aoi": "field-7"},
		},
		{
			name:     "no payload returns defaults",
			defaults: map[string]any{"aoi": "field-7"},
			want:     map[string]any{"aoi": "field-7"},
		},
		{
			name:     "payload key wins",
			defaults: map[string]any{"aoi": "field-7", "cloud_cover": 0.2},
			payload:  map[string]any{"cloud_cover": 0.05},
			want:     map[string]any{"aoi": "field-7", "cloud_cover": 0.05},
		},
		{
			name:     "disjoint keys are unioned",
			defaults: map[string]any{"aoi": "field-7"},
			payload:  map[string]any{"scene_id": "S2A_123"},
			want:     map[string]any{"aoi": "field-7", "scene_id": "S2A_123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeInput(tt.defaults, tt.payload)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeInput() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeInput_DoesNotMutateDefaults(t *testing.T) {
	defaults := map[string]any{"cloud_cover": 0.2}
	MergeInput(defaults, map[string]any{"cloud_cover": 0.05})
	if defaults["cloud_cover"] != 0.2 {
		t.Errorf("defaults mutated: %v", defaults)
	}
}
