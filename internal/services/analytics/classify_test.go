package analytics

import (
	"math"
	"testing"
)

func TestClassifyLadderBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		rules []rule
		want  string
	}{
		{"acwr exclusive lower band", 0.79, acwrRules, "recovery"},
		{"acwr boundary is productive", 0.8, acwrRules, "productive"},
		{"acwr inclusive upper band", 1.3, acwrRules, "productive"},
		{"acwr caution band", 1.31, acwrRules, "caution"},
		{"acwr open top band", 9.0, acwrRules, "overload"},
		{"recovery index below both bounds", 0.69, recoveryIndexRules, "low"},
		{"recovery index at moderate bound", 0.8, recoveryIndexRules, "optimal"},
		{"monotony inclusive optimal", 2.0, monotonyRules, "optimal"},
		{"polarisation threshold cluster", 0.2, polarisationRules, "threshold"},
		{"polarisation textbook split", 2.0, polarisationRules, "polarised"},
	}
	for _, tt := range tests {
		got := classify("m", tt.value, tt.rules)
		if got.Classification != tt.want {
			t.Errorf("%s: classify(%v) = %s, want %s", tt.name, tt.value, got.Classification, tt.want)
		}
		if !got.Defined {
			t.Errorf("%s: classified metric must stay defined", tt.name)
		}
	}
}

func TestClassifyBeyondLadderIsUndefined(t *testing.T) {
	bounded := []rule{{1.0, true, "low", "", ""}}
	got := classify("m", 2.0, bounded)
	if got.Classification != "undefined" || !got.Defined {
		t.Fatalf("expected undefined classification with defined value, got %+v", got)
	}
	if got.Value != 2.0 {
		t.Fatalf("value must survive, got %v", got.Value)
	}
}

func TestClassifyCarriesCoachingText(t *testing.T) {
	got := classify("m", 9.0, acwrRules)
	if got.Interpretation == "" || got.Implication == "" {
		t.Fatalf("expected interpretation and implication on %+v", got)
	}
}

func TestUndefinedMetric(t *testing.T) {
	got := undefinedMetric("m", "no data")
	if got.Defined {
		t.Fatalf("expected undefined metric")
	}
	if got.Classification != "undefined" || got.Interpretation != "no data" {
		t.Fatalf("unexpected metric %+v", got)
	}
}

func TestClassifyNaNFallsThrough(t *testing.T) {
	got := classify("m", math.NaN(), acwrRules)
	if got.Classification != "undefined" {
		t.Fatalf("NaN must not match any band, got %s", got.Classification)
	}
}
