package memoryrepository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohith182/turbine-ai/internal/models"
	"github.com/mohith182/turbine-ai/internal/repository"
)

func TestEnsureIdentity_KeepsExisting(t *testing.T) {
	s := New()
	ctx := context.Background()
	first, err := s.EnsureIdentity(ctx, &models.Identity{Email: "a@x.com", DisplayName: "Alice"})
	if err != nil || first.DisplayName != "Alice" {
		t.Fatalf("first=%+v err=%v", first, err)
	}
	second, err := s.EnsureIdentity(ctx, &models.Identity{Email: "a@x.com", DisplayName: "Other"})
	if err != nil || second.DisplayName != "Alice" {
		t.Fatalf("second=%+v err=%v", second, err)
	}
	if _, err := s.EnsureIdentity(ctx, &models.Identity{}); err == nil {
		t.Fatalf("expected error for empty email")
	}
	missing, err := s.GetIdentity(ctx, "b@x.com")
	if err != nil || missing != nil {
		t.Fatalf("missing=%+v err=%v", missing, err)
	}
}

func TestTouchLogin(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, _ = s.EnsureIdentity(ctx, &models.Identity{Email: "a@x.com", DisplayName: "A"})
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := s.TouchLogin(ctx, "a@x.com", at); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, _ := s.GetIdentity(ctx, "a@x.com")
	if got.LastLoginAt == nil || !got.LastLoginAt.Equal(at) {
		t.Fatalf("last_login_at=%v", got.LastLoginAt)
	}
	if err := s.TouchLogin(ctx, "ghost@x.com", at); err != nil {
		t.Fatalf("touch unknown: %v", err)
	}
}

func TestListPredictions_NewestFirstPerSubject(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i := 0; i < 30; i++ {
		subject := "a@x.com"
		if i%3 == 0 {
			subject = "b@x.com"
		}
		_ = s.InsertPrediction(ctx, &models.PredictionRecord{Subject: subject, RUL: decimal.NewFromInt(int64(i))})
	}

	got, _ := s.ListPredictions(ctx, repository.ListPredictionsParams{Subject: "a@x.com"})
	if len(got) != 20 {
		t.Fatalf("default limit len=%d want 20", len(got))
	}
	if !got[0].RUL.Equal(decimal.NewFromInt(29)) {
		t.Fatalf("newest=%s want 29", got[0].RUL)
	}
	for _, p := range got {
		if p.Subject != "a@x.com" {
			t.Fatalf("leaked subject %s", p.Subject)
		}
	}

	got, _ = s.ListPredictions(ctx, repository.ListPredictionsParams{Subject: "b@x.com", Limit: 3, Offset: 1})
	if len(got) != 3 || !got[0].RUL.Equal(decimal.NewFromInt(24)) {
		t.Fatalf("page=%+v", got)
	}
	got, _ = s.ListPredictions(ctx, repository.ListPredictionsParams{Subject: "b@x.com", Offset: 100})
	if len(got) != 0 {
		t.Fatalf("past end len=%d", len(got))
	}
}

func TestListAlerts_Filters(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_ = s.InsertAlert(ctx, &models.AlertRecord{MachineID: "M001", Severity: "high", CreatedAt: base})
	_ = s.InsertAlert(ctx, &models.AlertRecord{MachineID: "M002", Severity: "medium", CreatedAt: base.Add(time.Hour)})
	_ = s.InsertAlert(ctx, &models.AlertRecord{MachineID: "M001", Severity: "medium", CreatedAt: base.Add(2 * time.Hour)})

	got, _ := s.ListAlerts(ctx, repository.ListAlertsParams{MachineID: "m001"})
	if len(got) != 2 || got[0].Severity != "medium" {
		t.Fatalf("by machine=%+v", got)
	}
	got, _ = s.ListAlerts(ctx, repository.ListAlertsParams{Severity: "medium"})
	if len(got) != 2 {
		t.Fatalf("by severity len=%d", len(got))
	}
	since := base.Add(90 * time.Minute)
	got, _ = s.ListAlerts(ctx, repository.ListAlertsParams{Since: &since})
	if len(got) != 1 || got[0].MachineID != "M001" {
		t.Fatalf("since=%+v", got)
	}
}

func TestNormalizeLimit(t *testing.T) {
	if repository.NormalizeLimit(0, 20) != 20 || repository.NormalizeLimit(1000, 20) != 200 || repository.NormalizeLimit(5, 20) != 5 {
		t.Fatalf("normalize broken")
	}
}
