// Package fleet answers per-machine health, history, alert and dashboard
// queries over loaded telemetry.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohith182/turbine-ai/internal/dataset"
	"github.com/mohith182/turbine-ai/internal/rul"
)

var ErrMachineNotFound = errors.New("machine not found")

const (
	detailHistory       = 50
	DefaultHistoryLimit = 100
)

type Predictor interface {
	Predict(features rul.SensorFeatureVector) (rul.HealthAssessment, error)
	Model() *rul.TrainedModel
}

type LatestReadings struct {
	Temperature float64    `json:"temperature"`
	Vibration   float64    `json:"vibration"`
	Current     float64    `json:"current"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

type MachineSummary struct {
	MachineID      string               `json:"machine_id"`
	LatestReadings LatestReadings       `json:"latest_readings"`
	Health         rul.HealthAssessment `json:"health"`
}

type MachineDetail struct {
	MachineID      string               `json:"machine_id"`
	LatestReadings LatestReadings       `json:"latest_readings"`
	Health         rul.HealthAssessment `json:"health"`
	History        []dataset.Reading    `json:"history"`
}

type Alert struct {
	ID               string        `json:"id"`
	MachineID        string        `json:"machine_id"`
	Severity         rul.RiskLevel `json:"severity"`
	Status           rul.Status    `json:"status"`
	HealthScore      float64       `json:"health_score"`
	DaysUntilFailure int           `json:"days_until_failure"`
	RootCauses       []string      `json:"root_causes"`
	Message          string        `json:"message"`
	Timestamp        time.Time     `json:"timestamp"`
}

type Stats struct {
	TotalMachines int     `json:"total_machines"`
	Healthy       int     `json:"healthy"`
	Warning       int     `json:"warning"`
	Critical      int     `json:"critical"`
	AverageHealth float64 `json:"average_health"`
	ModelAccuracy float64 `json:"model_accuracy"`
}

// Service is read-only after construction.
type Service struct {
	predictor Predictor
	byMachine map[string][]dataset.Reading
	ids       []string
	now       func() time.Time
}

func New(predictor Predictor, readings []dataset.Reading, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	by := map[string][]dataset.Reading{}
	for _, r := range readings {
		id := strings.ToUpper(r.MachineID)
		r.MachineID = id
		by[id] = append(by[id], r)
	}
	ids := make([]string, 0, len(by))
	for id, rs := range by {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Timestamp.Before(rs[j].Timestamp) })
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &Service{predictor: predictor, byMachine: by, ids: ids, now: now}
}

func (s *Service) MachineIDs() []string {
	return append([]string(nil), s.ids...)
}

func (s *Service) assess(r dataset.Reading) (rul.HealthAssessment, error) {
	h, err := s.predictor.Predict(r.Features())
	if err != nil {
		return rul.HealthAssessment{}, err
	}
	return h.Rounded(), nil
}

func (s *Service) latest(id string) (dataset.Reading, bool) {
	rs := s.byMachine[id]
	if len(rs) == 0 {
		return dataset.Reading{}, false
	}
	return rs[len(rs)-1], true
}

// Machines returns every machine with its latest reading and health.
func (s *Service) Machines(ctx context.Context) ([]MachineSummary, error) {
	out := make([]MachineSummary, 0, len(s.ids))
	for _, id := range s.ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, _ := s.latest(id)
		h, err := s.assess(r)
		if err != nil {
			return nil, err
		}
		out = append(out, MachineSummary{
			MachineID:      id,
			LatestReadings: LatestReadings{Temperature: r.Temperature, Vibration: r.Vibration, Current: r.Current},
			Health:         h,
		})
	}
	return out, nil
}

// Machine looks id up case-insensitively.
func (s *Service) Machine(ctx context.Context, id string) (MachineDetail, error) {
	if err := ctx.Err(); err != nil {
		return MachineDetail{}, err
	}
	id = strings.ToUpper(strings.TrimSpace(id))
	r, ok := s.latest(id)
	if !ok {
		return MachineDetail{}, fmt.Errorf("%w: %s", ErrMachineNotFound, id)
	}
	h, err := s.assess(r)
	if err != nil {
		return MachineDetail{}, err
	}
	ts := r.Timestamp
	return MachineDetail{
		MachineID: id,
		LatestReadings: LatestReadings{
			Temperature: r.Temperature,
			Vibration:   r.Vibration,
			Current:     r.Current,
			Timestamp:   &ts,
		},
		Health:  h,
		History: tail(s.byMachine[id], detailHistory),
	}, nil
}

// History returns the last limit readings, oldest first.
func (s *Service) History(ctx context.Context, id string, limit int) ([]dataset.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id = strings.ToUpper(strings.TrimSpace(id))
	rs, ok := s.byMachine[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMachineNotFound, id)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return tail(rs, limit), nil
}

// Alerts lists non-healthy machines, most severe first, then by machine id.
func (s *Service) Alerts(ctx context.Context) ([]Alert, error) {
	machines, err := s.Machines(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	var out []Alert
	for _, m := range machines {
		if m.Health.Status == rul.StatusHealthy {
			continue
		}
		out = append(out, Alert{
			ID:               uuid.NewString(),
			MachineID:        m.MachineID,
			Severity:         m.Health.RiskLevel,
			Status:           m.Health.Status,
			HealthScore:      m.Health.HealthScore,
			DaysUntilFailure: m.Health.DaysUntilFailure,
			RootCauses:       m.Health.RootCauses,
			Message:          AlertMessage(m.MachineID, m.Health.DaysUntilFailure),
			Timestamp:        now,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].Severity.Severity(), out[j].Severity.Severity()
		if si != sj {
			return si < sj
		}
		return out[i].MachineID < out[j].MachineID
	})
	if out == nil {
		out = []Alert{}
	}
	return out, nil
}

func AlertMessage(machineID string, days int) string {
	return fmt.Sprintf("Machine %s likely to fail within %d days. Schedule maintenance.", machineID, days)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	machines, err := s.Machines(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{TotalMachines: len(machines)}
	total := decimal.Zero
	for _, m := range machines {
		total = total.Add(decimal.NewFromFloat(m.Health.HealthScore))
		switch m.Health.Status {
		case rul.StatusHealthy:
			st.Healthy++
		case rul.StatusWarning:
			st.Warning++
		default:
			st.Critical++
		}
	}
	if len(machines) > 0 {
		st.AverageHealth = total.Div(decimal.NewFromInt(int64(len(machines)))).Round(1).InexactFloat64()
	}
	if m := s.predictor.Model(); m != nil {
		st.ModelAccuracy = decimal.NewFromFloat(rul.AccuracyPercent(m.HeldOutAccuracy)).Round(1).InexactFloat64()
	}
	return st, nil
}

func tail(rs []dataset.Reading, n int) []dataset.Reading {
	if n > len(rs) {
		n = len(rs)
	}
	return append([]dataset.Reading(nil), rs[len(rs)-n:]...)
}
