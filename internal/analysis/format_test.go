package analysis

import "testing"

func TestPct(t *testing.T) {
	tests := []struct {
		name     string
		part     float64
		whole    float64
		expected float64
	}{
		{name: "zero whole yields zero", part: 0, whole: 0, expected: 0.0},
		{name: "nonzero part over zero whole", part: 5, whole: 0, expected: 0.0},
		{name: "half", part: 5, whole: 10, expected: 50.0},
		{name: "third rounds to one decimal", part: 1, whole: 3, expected: 33.3},
		{name: "two thirds rounds up", part: 2, whole: 3, expected: 66.7},
		{name: "city scenario", part: 15, whole: 1000, expected: 1.5},
		{name: "whole itself", part: 10, whole: 10, expected: 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pct(tt.part, tt.whole)
			if got != tt.expected {
				t.Errorf("pct(%v, %v): expected %v, got %v", tt.part, tt.whole, tt.expected, got)
			}
		})
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{0, "0"},
		{15, "15"},
		{985, "985"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1000, "-1,000"},
		{40.0, "40"},
	}

	for _, tt := range tests {
		if got := formatCount(tt.in); got != tt.expected {
			t.Errorf("formatCount(%v): expected %q, got %q", tt.in, tt.expected, got)
		}
	}
}

func TestFormatQuality(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{0, "0.000"},
		{0.1, "0.100"},
		{0.3333333, "0.333"},
		{1, "1.000"},
	}

	for _, tt := range tests {
		if got := formatQuality(tt.in); got != tt.expected {
			t.Errorf("formatQuality(%v): expected %q, got %q", tt.in, tt.expected, got)
		}
	}
}

func TestFormatPct(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{0, "0.0"},
		{1.5, "1.5"},
		{95, "95.0"},
		{33.3, "33.3"},
	}

	for _, tt := range tests {
		if got := formatPct(tt.in); got != tt.expected {
			t.Errorf("formatPct(%v): expected %q, got %q", tt.in, tt.expected, got)
		}
	}
}

func TestDefaultingAccessors(t *testing.T) {
	m := map[string]any{
		"s":     "value",
		"empty": "",
		"n":     3.5,
		"b":     true,
		"wrong": []any{"x"},
		"list":  []any{"a", "b"},
	}

	if got := getString(m, "s", "def"); got != "value" {
		t.Errorf("getString present: got %q", got)
	}
	if got := getString(m, "empty", "def"); got != "def" {
		t.Errorf("getString empty should fall back to default: got %q", got)
	}
	if got := getString(m, "missing", "def"); got != "def" {
		t.Errorf("getString missing: got %q", got)
	}
	if got := getFloat(m, "n", 0); got != 3.5 {
		t.Errorf("getFloat present: got %v", got)
	}
	if got := getFloat(m, "wrong", 7); got != 7 {
		t.Errorf("getFloat wrong type should fall back to default: got %v", got)
	}
	if got := getBool(m, "b", false); got != true {
		t.Errorf("getBool present: got %v", got)
	}
	if got := getBool(m, "missing", true); got != true {
		t.Errorf("getBool missing: got %v", got)
	}
	if got := getStrings(m, "list"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("getStrings: got %v", got)
	}
	if got := getStrings(m, "missing"); got != nil {
		t.Errorf("getStrings missing should be nil: got %v", got)
	}
	if _, ok := lookupFloat(m, "missing"); ok {
		t.Error("lookupFloat missing should report false")
	}
	if v, ok := lookupFloat(m, "n"); !ok || v != 3.5 {
		t.Errorf("lookupFloat present: got %v, %v", v, ok)
	}
}

func TestLabelBands(t *testing.T) {
	if got := labelBelow(cityHealthBands, 1.5, cityHealthWorst); got != "excellent" {
		t.Errorf("city 1.5: got %q", got)
	}
	if got := labelBelow(cityHealthBands, 2, cityHealthWorst); got != "good" {
		t.Errorf("city 2 (boundary is exclusive): got %q", got)
	}
	if got := labelBelow(cityHealthBands, 50, cityHealthWorst); got != "concerning" {
		t.Errorf("city 50: got %q", got)
	}
	if got := labelAtLeast(siteDayBands, 90, siteDayWorst); got != "healthy" {
		t.Errorf("site-day 90 (boundary is inclusive): got %q", got)
	}
	if got := labelAtLeast(siteDayBands, 59.9, siteDayWorst); got != "heavily degraded" {
		t.Errorf("site-day 59.9: got %q", got)
	}
	if got := labelAtLeast(tripQualityBands, 0.7, tripQualityWorst); got != "consistently good quality across trips" {
		t.Errorf("trips 0.7: got %q", got)
	}
	if got := labelAtLeast(tripQualityBands, 0.1, tripQualityWorst); got != "frequently very poor quality" {
		t.Errorf("trips 0.1: got %q", got)
	}
}
