// Package alerting periodically scans the fleet, logs severity changes and
// pushes the alert snapshot to subscribers and notification channels.
package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/mohith182/turbine-ai/internal/fleet"
	"github.com/mohith182/turbine-ai/internal/metrics"
	"github.com/mohith182/turbine-ai/internal/models"
	"github.com/mohith182/turbine-ai/internal/repository"
	"github.com/mohith182/turbine-ai/internal/rul"
)

const (
	EventSnapshot = "alerts.snapshot"
	EventCritical = "alerts.critical"
)

type Source interface {
	Alerts(ctx context.Context) ([]fleet.Alert, error)
	Stats(ctx context.Context) (fleet.Stats, error)
}

type Publisher interface {
	Publish(eventType string, data any) error
}

type Broadcaster interface {
	Broadcast(channels []string, event, text string) int
}

// Snapshot is the payload pushed to stream subscribers.
type Snapshot struct {
	Alerts []fleet.Alert `json:"alerts"`
	Stats  fleet.Stats   `json:"stats"`
}

type Result struct {
	Active   int
	Recorded int
	Critical []string
}

type Scanner struct {
	Fleet    Source
	Repo     repository.AlertRepository
	Hub      Publisher
	Notifier Broadcaster
	Channels []string
	Logger   *zap.Logger

	mu   sync.Mutex
	last map[string]rul.RiskLevel
}

// Run is the cron entry point.
func (s *Scanner) Run(ctx context.Context) {
	res, err := s.Scan(ctx)
	if err != nil {
		s.logger().Warn("alert scan failed", zap.Error(err))
		return
	}
	s.logger().Debug("alert scan",
		zap.Int("active", res.Active),
		zap.Int("recorded", res.Recorded),
		zap.Strings("critical", res.Critical),
	)
}

// Scan runs one pass. Scans are serialized.
func (s *Scanner) Scan(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		s.last = map[string]rul.RiskLevel{}
	}

	alerts, err := s.Fleet.Alerts(ctx)
	if err != nil {
		return Result{}, err
	}
	stats, err := s.Fleet.Stats(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Active: len(alerts)}
	counts := map[rul.RiskLevel]int{rul.RiskHigh: 0, rul.RiskMedium: 0}
	seen := make(map[string]rul.RiskLevel, len(alerts))
	for _, a := range alerts {
		counts[a.Severity]++
		seen[a.MachineID] = a.Severity
		prev := s.last[a.MachineID]
		if prev == a.Severity {
			continue
		}
		if s.Repo != nil {
			if err := s.Repo.InsertAlert(ctx, toRecord(a, prev)); err != nil {
				s.logger().Warn("record alert", zap.String("machine_id", a.MachineID), zap.Error(err))
			} else {
				res.Recorded++
			}
		}
		if a.Severity == rul.RiskHigh {
			res.Critical = append(res.Critical, a.MachineID)
		}
	}
	s.last = seen

	for level, n := range counts {
		metrics.ActiveAlerts.WithLabelValues(string(level)).Set(float64(n))
	}
	if s.Hub != nil {
		if err := s.Hub.Publish(EventSnapshot, Snapshot{Alerts: alerts, Stats: stats}); err != nil {
			s.logger().Warn("publish alert snapshot", zap.Error(err))
		}
	}
	if len(res.Critical) > 0 && s.Notifier != nil && len(s.Channels) > 0 {
		s.Notifier.Broadcast(s.Channels, EventCritical, criticalText(alerts, res.Critical))
	}
	return res, nil
}

func (s *Scanner) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func toRecord(a fleet.Alert, prev rul.RiskLevel) *models.AlertRecord {
	causes, _ := json.Marshal(a.RootCauses)
	return &models.AlertRecord{
		MachineID:        a.MachineID,
		Severity:         string(a.Severity),
		PreviousSeverity: string(prev),
		Status:           string(a.Status),
		HealthScore:      decimal.NewFromFloat(a.HealthScore).Round(1),
		DaysUntilFailure: a.DaysUntilFailure,
		RootCauses:       datatypes.JSON(causes),
		Message:          a.Message,
		CreatedAt:        a.Timestamp,
	}
}

func criticalText(alerts []fleet.Alert, ids []string) string {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var b strings.Builder
	fmt.Fprintf(&b, "TurbineAI: %d machine(s) entered critical state\n", len(ids))
	for _, a := range alerts {
		if !want[a.MachineID] {
			continue
		}
		fmt.Fprintf(&b, "- %s health %.1f: %s\n", a.MachineID, a.HealthScore, a.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}
