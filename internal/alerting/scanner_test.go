package alerting

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mohith182/turbine-ai/internal/fleet"
	"github.com/mohith182/turbine-ai/internal/metrics"
	"github.com/mohith182/turbine-ai/internal/repository"
	memoryrepository "github.com/mohith182/turbine-ai/internal/repository/memory"
	"github.com/mohith182/turbine-ai/internal/rul"
)

type fakeFleet struct {
	alerts []fleet.Alert
	err    error
}

func (f *fakeFleet) Alerts(context.Context) ([]fleet.Alert, error) { return f.alerts, f.err }
func (f *fakeFleet) Stats(context.Context) (fleet.Stats, error) {
	return fleet.Stats{TotalMachines: 3}, f.err
}

type recordingHub struct{ events []string }

func (h *recordingHub) Publish(eventType string, _ any) error {
	h.events = append(h.events, eventType)
	return nil
}

type recordingNotifier struct {
	channels []string
	texts    []string
}

func (n *recordingNotifier) Broadcast(channels []string, _ string, text string) int {
	n.channels = channels
	n.texts = append(n.texts, text)
	return len(channels)
}

func alert(id string, risk rul.RiskLevel) fleet.Alert {
	return fleet.Alert{MachineID: id, Severity: risk, HealthScore: 12.5, DaysUntilFailure: 3, Message: fleet.AlertMessage(id, 3)}
}

func TestScan_RecordsOnlySeverityChanges(t *testing.T) {
	ff := &fakeFleet{alerts: []fleet.Alert{alert("M001", rul.RiskHigh), alert("M002", rul.RiskMedium)}}
	repo := memoryrepository.New()
	hub := &recordingHub{}
	notifier := &recordingNotifier{}
	s := &Scanner{Fleet: ff, Repo: repo, Hub: hub, Notifier: notifier, Channels: []string{"webhook"}}
	ctx := context.Background()

	res, err := s.Scan(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.Active != 2 || res.Recorded != 2 || len(res.Critical) != 1 || res.Critical[0] != "M001" {
		t.Fatalf("first=%+v", res)
	}
	if len(notifier.texts) != 1 || !strings.Contains(notifier.texts[0], "M001") || strings.Contains(notifier.texts[0], "M002") {
		t.Fatalf("texts=%v", notifier.texts)
	}
	if got := testutil.ToFloat64(metrics.ActiveAlerts.WithLabelValues("high")); got != 1 {
		t.Fatalf("high gauge=%v", got)
	}

	res, _ = s.Scan(ctx)
	if res.Recorded != 0 || len(res.Critical) != 0 {
		t.Fatalf("unchanged=%+v", res)
	}
	if len(notifier.texts) != 1 {
		t.Fatalf("rebroadcast on unchanged scan")
	}

	ff.alerts = []fleet.Alert{alert("M001", rul.RiskHigh), alert("M002", rul.RiskHigh)}
	res, _ = s.Scan(ctx)
	if res.Recorded != 1 || len(res.Critical) != 1 || res.Critical[0] != "M002" {
		t.Fatalf("escalation=%+v", res)
	}
	rows, _ := repo.ListAlerts(ctx, repository.ListAlertsParams{MachineID: "M002"})
	if len(rows) != 2 || rows[0].Severity != "high" || rows[0].PreviousSeverity != "medium" {
		t.Fatalf("rows=%+v", rows)
	}
	if len(hub.events) != 3 || hub.events[0] != EventSnapshot {
		t.Fatalf("events=%v", hub.events)
	}
}

func TestScan_RecoveredMachineAlertsAgain(t *testing.T) {
	ff := &fakeFleet{alerts: []fleet.Alert{alert("M001", rul.RiskHigh)}}
	notifier := &recordingNotifier{}
	s := &Scanner{Fleet: ff, Notifier: notifier, Channels: []string{"telegram"}}

	_, _ = s.Scan(context.Background())
	ff.alerts = nil
	res, _ := s.Scan(context.Background())
	if res.Active != 0 {
		t.Fatalf("active=%d", res.Active)
	}
	if got := testutil.ToFloat64(metrics.ActiveAlerts.WithLabelValues("high")); got != 0 {
		t.Fatalf("high gauge=%v", got)
	}
	ff.alerts = []fleet.Alert{alert("M001", rul.RiskHigh)}
	_, _ = s.Scan(context.Background())
	if len(notifier.texts) != 2 {
		t.Fatalf("broadcasts=%d want 2", len(notifier.texts))
	}
}

func TestScan_NoChannelsNoBroadcast(t *testing.T) {
	notifier := &recordingNotifier{}
	s := &Scanner{Fleet: &fakeFleet{alerts: []fleet.Alert{alert("M001", rul.RiskHigh)}}, Notifier: notifier}
	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(notifier.texts) != 0 {
		t.Fatalf("broadcast without channels")
	}
}

func TestScan_SourceError(t *testing.T) {
	hub := &recordingHub{}
	s := &Scanner{Fleet: &fakeFleet{err: rul.ErrModelNotReady}, Hub: hub}
	if _, err := s.Scan(context.Background()); !errors.Is(err, rul.ErrModelNotReady) {
		t.Fatalf("err=%v", err)
	}
	if len(hub.events) != 0 {
		t.Fatalf("published on failure")
	}
	s.Run(context.Background())
}
