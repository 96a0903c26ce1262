package analysis

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		payload  any
		expected Category
	}{
		{
			name:     "error key wins over every other signature",
			payload:  map[string]any{"error": "no data", "uniqueVehicles": 10.0, "site": "RUHSM173", "plate": "X", "cumNFrames": 1.0},
			expected: CategoryError,
		},
		{
			name:     "uniqueVehicles with site",
			payload:  map[string]any{"uniqueVehicles": 100.0, "site": "RUHSM173"},
			expected: CategorySiteTotals,
		},
		{
			name:     "uniqueVehicles without site",
			payload:  map[string]any{"day": "2025-08-16", "uniqueVehicles": 100.0},
			expected: CategoryCityTotals,
		},
		{
			name: "detections triple",
			payload: map[string]any{
				"detectionsTotal": 10.0, "detectionsGood": 9.0, "detectionsBad": 1.0,
			},
			expected: CategorySiteDayStatus,
		},
		{
			name:     "partial detections triple is not site_day_status",
			payload:  map[string]any{"detectionsTotal": 10.0, "detectionsGood": 9.0},
			expected: CategoryUnknown,
		},
		{
			name:     "plate with cumNFrames",
			payload:  map[string]any{"plate": "ABC123", "cumNFrames": 40.0},
			expected: CategoryVehicleDegrade,
		},
		{
			name:     "plate alone",
			payload:  map[string]any{"plate": "ABC123"},
			expected: CategoryUnknown,
		},
		{
			name:     "empty array is trips",
			payload:  []any{},
			expected: CategoryTrips,
		},
		{
			name: "array of trip objects",
			payload: []any{
				map[string]any{"plate": "ABC123", "day": "2025-08-16", "window30": "08:00-08:30"},
			},
			expected: CategoryTrips,
		},
		{
			name:     "array of non-trip objects",
			payload:  []any{map[string]any{"foo": "bar"}},
			expected: CategoryUnknown,
		},
		{
			name:     "array of scalars",
			payload:  []any{1.0, 2.0},
			expected: CategoryUnknown,
		},
		{
			name:     "unrecognized mapping",
			payload:  map[string]any{"foo": "bar"},
			expected: CategoryUnknown,
		},
		{
			name:     "scalar",
			payload:  42.0,
			expected: CategoryUnknown,
		},
		{
			name:     "string",
			payload:  "hello",
			expected: CategoryUnknown,
		},
		{
			name:     "nil",
			payload:  nil,
			expected: CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.payload)
			if got != tt.expected {
				t.Errorf("Classify(%v): expected %q, got %q", tt.payload, tt.expected, got)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	payload := map[string]any{"uniqueVehicles": 5.0, "site": "RUHSM001"}
	first := Classify(payload)
	for i := 0; i < 10; i++ {
		if got := Classify(payload); got != first {
			t.Fatalf("Classify changed its answer on call %d: %q vs %q", i, got, first)
		}
	}
}
