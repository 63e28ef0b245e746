// Package dataset supplies sensor telemetry for training and for the fleet
// views, either synthesised or loaded from CSV.
package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohith182/turbine-ai/internal/rul"
)

// Reading is one timestamped sensor sample for a machine.
type Reading struct {
	MachineID   string    `json:"machine_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Vibration   float64   `json:"vibration"`
	Current     float64   `json:"current"`
	RUL         float64   `json:"rul"`
}

func (r Reading) Features() rul.SensorFeatureVector {
	return rul.SensorFeatureVector{Temperature: r.Temperature, Vibration: r.Vibration, Current: r.Current}
}

type SyntheticOptions struct {
	Machines         int
	PointsPerMachine int
	Seed             int64
	// Reference is the wall time the series ends at; the last point is one
	// step before it. Zero means time.Now.
	Reference time.Time
	Step      time.Duration
}

func (o SyntheticOptions) normalized() SyntheticOptions {
	if o.Machines <= 0 {
		o.Machines = 50
	}
	if o.PointsPerMachine <= 0 {
		o.PointsPerMachine = 100
	}
	if o.Reference.IsZero() {
		o.Reference = time.Now()
	}
	if o.Step <= 0 {
		o.Step = time.Hour
	}
	return o
}

// GenerateSynthetic is deterministic for a fixed seed and reference time.
// Machines degrade linearly over their series at a per-machine rate.
func GenerateSynthetic(opts SyntheticOptions) []Reading {
	opts = opts.normalized()
	rng := rand.New(rand.NewSource(opts.Seed))
	uniform := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }
	normal := func(sigma float64) float64 { return rng.NormFloat64() * sigma }

	n := opts.PointsPerMachine
	out := make([]Reading, 0, opts.Machines*n)
	for m := 1; m <= opts.Machines; m++ {
		id := MachineID(m)
		baseTemp := uniform(40, 60)
		baseVib := uniform(0.3, 0.8)
		baseCurrent := uniform(8, 14)
		degradation := uniform(0, 1)

		for t := 0; t < n; t++ {
			degrade := degradation * float64(t) / float64(n)

			temp := baseTemp + degrade*50 + normal(2)
			vib := baseVib + degrade*5 + normal(0.1)
			current := baseCurrent + degrade*20 + normal(1)

			life := math.Max(0, 100-(temp-45)*1.2-vib*8-(current-10)*2)
			life = math.Min(100, life+normal(3))

			out = append(out, Reading{
				MachineID:   id,
				Timestamp:   opts.Reference.Add(-time.Duration(n-t) * opts.Step),
				Temperature: round(temp, 2),
				Vibration:   round(vib, 3),
				Current:     round(current, 2),
				RUL:         round(rul.ClampRUL(life), 1),
			})
		}
	}
	return out
}

// MachineID formats the fleet identifier for the n-th machine (M001, M002...).
func MachineID(n int) string {
	return fmt.Sprintf("M%03d", n)
}

// Samples converts readings into labelled training rows.
func Samples(readings []Reading) []rul.Sample {
	out := make([]rul.Sample, len(readings))
	for i, r := range readings {
		out[i] = rul.Sample{Features: r.Features(), RUL: r.RUL}
	}
	return out
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
