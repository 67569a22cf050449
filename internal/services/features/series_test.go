package features

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEWMAConstantSeries(t *testing.T) {
	series := []float64{50, 50, 50, 50, 50}
	got := EWMA(series, 7)
	for i, v := range got {
		if !almostEqual(v, 50) {
			t.Fatalf("index %d: expected 50, got %v", i, v)
		}
	}
}

func TestEWMASeedsAtFirstValue(t *testing.T) {
	got := EWMA([]float64{10, 20}, 3)
	if !almostEqual(got[0], 10) {
		t.Fatalf("expected seed 10, got %v", got[0])
	}
	// alpha = 2/(3+1) = 0.5
	if !almostEqual(got[1], 15) {
		t.Fatalf("expected 15, got %v", got[1])
	}
}

func TestEWMAEmpty(t *testing.T) {
	if got := EWMA(nil, 7); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := EWMALast(nil, 7); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestMeanAndStdPop(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if m := Mean(xs); !almostEqual(m, 5) {
		t.Fatalf("expected mean 5, got %v", m)
	}
	if s := StdPop(xs); !almostEqual(s, 2) {
		t.Fatalf("expected sigma 2, got %v", s)
	}
}

func TestStdPopZeroSpread(t *testing.T) {
	if s := StdPop([]float64{3, 3, 3}); s != 0 {
		t.Fatalf("expected 0, got %v", s)
	}
}

func TestPadLeft(t *testing.T) {
	got := PadLeft([]float64{1, 2}, 5)
	if len(got) != 5 {
		t.Fatalf("expected length 5, got %d", len(got))
	}
	if got[0] != 0 || got[2] != 0 || got[3] != 1 || got[4] != 2 {
		t.Fatalf("unexpected padding %v", got)
	}
	same := []float64{1, 2, 3}
	if got := PadLeft(same, 2); len(got) != 3 {
		t.Fatalf("expected unchanged series, got %v", got)
	}
}

func TestTail(t *testing.T) {
	got := Tail([]float64{1, 2, 3, 4}, 2)
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Fatalf("unexpected tail %v", got)
	}
	if got := Tail([]float64{1}, 7); len(got) != 1 {
		t.Fatalf("expected whole series, got %v", got)
	}
}
