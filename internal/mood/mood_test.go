package mood

import (
	"math"
	"testing"
	"time"
)

const eps = 1e-9

// closedForm is the exact expectation for the circuit: H then RY(φ) leaves
// wire w with <Z> = -sin φ, and the CNOT ladder multiplies each wire's
// expectation into the next one.
func closedForm(seed int64) (float64, float64) {
	theta := float64(seed%360) * math.Pi / 180
	var z [4]float64
	prev := 1.0
	for w := 0; w < 4; w++ {
		prev *= -math.Sin(theta / (float64(w) + 0.5))
		z[w] = prev
	}
	var sum, sumAbs float64
	for _, v := range z {
		sum += v
		sumAbs += math.Abs(v)
	}
	return (1 - sum/4) / 2, 1 - sumAbs/4
}

func TestMeasure_ExactMatchesClosedForm(t *testing.T) {
	for _, seed := range []int64{0, 45, 90, 137, 20261018, 20250704} {
		gotMood, gotEntropy := Measure(seed, 0)
		wantMood, wantEntropy := closedForm(seed)
		if math.Abs(gotMood-wantMood) > eps || math.Abs(gotEntropy-wantEntropy) > eps {
			t.Errorf("seed %d: got (%.6f, %.6f), want (%.6f, %.6f)", seed, gotMood, gotEntropy, wantMood, wantEntropy)
		}
	}
}

func TestMeasure_ZeroAngleIsUniform(t *testing.T) {
	m, e := Measure(360, 0)
	if math.Abs(m-0.5) > eps || math.Abs(e-1) > eps {
		t.Errorf("got (%v, %v), want (0.5, 1)", m, e)
	}
}

func TestMeasure_SampledIsDeterministicAndClose(t *testing.T) {
	seed := int64(20261018)
	m1, e1 := Measure(seed, DefaultShots)
	m2, e2 := Measure(seed, DefaultShots)
	if m1 != m2 || e1 != e2 {
		t.Fatalf("same seed gave different results: (%v,%v) vs (%v,%v)", m1, e1, m2, e2)
	}

	exactM, exactE := Measure(seed, 0)
	if math.Abs(m1-exactM) > 0.1 || math.Abs(e1-exactE) > 0.2 {
		t.Errorf("sampled (%v,%v) too far from exact (%v,%v)", m1, e1, exactM, exactE)
	}
	if m1 < 0 || m1 > 1 || e1 < 0 || e1 > 1 {
		t.Errorf("values out of range: mood=%v entropy=%v", m1, e1)
	}
}

func TestSeedForDate(t *testing.T) {
	got := SeedForDate(time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC))
	if got != 20261018 {
		t.Errorf("SeedForDate = %d, want 20261018", got)
	}
}

func TestPalette(t *testing.T) {
	tests := []struct {
		idx      float64
		wantTag  string
		wantTone string
		wantTemp float64
		wantTopP float64
	}{
		{0.0, "calm", "measured mentor", .40, .90},
		{0.3299, "calm", "measured mentor", .40, .90},
		{0.33, "energetic", "confident builder", .60, .95},
		{0.65, "energetic", "confident builder", .60, .95},
		{0.66, "visionary", "inspiring strategist", .75, .98},
		{1.0, "visionary", "inspiring strategist", .75, .98},
	}
	for _, tt := range tests {
		m := Palette(tt.idx)
		if m.Tag != tt.wantTag || m.Tone != tt.wantTone || m.Temperature != tt.wantTemp || m.TopP != tt.wantTopP {
			t.Errorf("Palette(%v) = %+v", tt.idx, m)
		}
		if m.Index != tt.idx {
			t.Errorf("Palette(%v).Index = %v", tt.idx, m.Index)
		}
	}
}

func TestForDate_SetsEntropy(t *testing.T) {
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	m := ForDate(day, 0)
	_, wantEntropy := Measure(SeedForDate(day), 0)
	if m.Entropy != wantEntropy {
		t.Errorf("Entropy = %v, want %v", m.Entropy, wantEntropy)
	}
	if m.Tag == "" || m.Temperature == 0 {
		t.Errorf("palette not applied: %+v", m)
	}
}
