// Package mood derives the day's sampling parameters for the completion call
// from a simulated 4-qubit circuit. The circuit is seeded by the date, so all
// runs on the same day share one mood.
package mood

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/amishk599/jobapplicator/internal/model"
)

const (
	wires = 4
	dim   = 1 << wires

	// DefaultShots matches the sampling depth the engine was tuned with.
	DefaultShots = 2048
)

// SeedForDate returns the date as the integer YYYYMMDD.
func SeedForDate(t time.Time) int64 {
	return int64(t.Year()*10000 + int(t.Month())*100 + t.Day())
}

// ForDate measures the circuit for t's date and maps it onto the palette.
func ForDate(t time.Time, shots int) model.Mood {
	idx, entropy := Measure(SeedForDate(t), shots)
	m := Palette(idx)
	m.Entropy = entropy
	return m
}

// Palette maps a mood index in [0,1] onto a tone and sampling parameters.
func Palette(idx float64) model.Mood {
	switch {
	case idx < .33:
		return model.Mood{Index: idx, Tag: "calm", Tone: "measured mentor", Temperature: .40, TopP: .90}
	case idx < .66:
		return model.Mood{Index: idx, Tag: "energetic", Tone: "confident builder", Temperature: .60, TopP: .95}
	default:
		return model.Mood{Index: idx, Tag: "visionary", Tone: "inspiring strategist", Temperature: .75, TopP: .98}
	}
}

// Measure runs the circuit and returns (mood, entropy):
//
//	mood    = (1 - mean(<Z_i>)) / 2
//	entropy = 1 - mean(|<Z_i>|)
//
// With shots > 0 the expectations are estimated from that many samples drawn
// with a PRNG seeded by seed; shots <= 0 uses the exact values.
func Measure(seed int64, shots int) (float64, float64) {
	probs := run(seed)

	var z [wires]float64
	if shots <= 0 {
		z = exactZ(probs)
	} else {
		z = sampledZ(probs, seed, shots)
	}

	var sum, sumAbs float64
	for _, v := range z {
		sum += v
		sumAbs += math.Abs(v)
	}
	return (1 - sum/wires) / 2, 1 - sumAbs/wires
}

// run prepares the state: H on every wire, RY(θ/(w+0.5)) on wire w with
// θ = (seed mod 360) degrees, then a CNOT ladder 0→1→2→3. It returns the
// basis-state probabilities. Every gate here is real, so the amplitudes are too.
func run(seed int64) [dim]float64 {
	theta := float64(seed%360) * math.Pi / 180

	var amp [dim]float64
	amp[0] = 1

	for w := 0; w < wires; w++ {
		hadamard(&amp, w)
	}
	for w := 0; w < wires; w++ {
		ry(&amp, w, theta/(float64(w)+0.5))
	}
	for w := 0; w < wires-1; w++ {
		cnot(&amp, w, w+1)
	}

	var probs [dim]float64
	for i, a := range amp {
		probs[i] = a * a
	}
	return probs
}

// mask returns the bit for wire w; wire 0 is the most significant bit.
func mask(w int) int {
	return 1 << (wires - 1 - w)
}

func hadamard(amp *[dim]float64, w int) {
	m := mask(w)
	for i := 0; i < dim; i++ {
		if i&m != 0 {
			continue
		}
		a, b := amp[i], amp[i|m]
		amp[i] = (a + b) / math.Sqrt2
		amp[i|m] = (a - b) / math.Sqrt2
	}
}

func ry(amp *[dim]float64, w int, phi float64) {
	m := mask(w)
	c, s := math.Cos(phi/2), math.Sin(phi/2)
	for i := 0; i < dim; i++ {
		if i&m != 0 {
			continue
		}
		a, b := amp[i], amp[i|m]
		amp[i] = c*a - s*b
		amp[i|m] = s*a + c*b
	}
}

func cnot(amp *[dim]float64, control, target int) {
	cm, tm := mask(control), mask(target)
	for i := 0; i < dim; i++ {
		if i&cm != 0 && i&tm == 0 {
			amp[i], amp[i|tm] = amp[i|tm], amp[i]
		}
	}
}

func exactZ(probs [dim]float64) [wires]float64 {
	var z [wires]float64
	for i, p := range probs {
		for w := 0; w < wires; w++ {
			z[w] += p * eigenZ(i, w)
		}
	}
	return z
}

func sampledZ(probs [dim]float64, seed int64, shots int) [wires]float64 {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	var cdf [dim]float64
	acc := 0.0
	for i, p := range probs {
		acc += p
		cdf[i] = acc
	}

	var z [wires]float64
	for n := 0; n < shots; n++ {
		u := rng.Float64() * acc
		k := 0
		for k < dim-1 && u >= cdf[k] {
			k++
		}
		for w := 0; w < wires; w++ {
			z[w] += eigenZ(k, w)
		}
	}
	for w := range z {
		z[w] /= float64(shots)
	}
	return z
}

// eigenZ is +1 when wire w of basis state i is |0⟩ and -1 when it is |1⟩.
func eigenZ(i, w int) float64 {
	if i&mask(w) != 0 {
		return -1
	}
	return 1
}
