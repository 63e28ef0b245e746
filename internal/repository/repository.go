package repository

import (
	"context"
	"time"

	"github.com/mohith182/turbine-ai/internal/models"
)

type IdentityRepository interface {
	// GetIdentity returns nil, nil when the email is unknown.
	GetIdentity(ctx context.Context, email string) (*models.Identity, error)
	// EnsureIdentity inserts item unless the email already exists, and
	// returns the stored row.
	EnsureIdentity(ctx context.Context, item *models.Identity) (*models.Identity, error)
	TouchLogin(ctx context.Context, email string, at time.Time) error
	ListIdentities(ctx context.Context) ([]models.Identity, error)
}

type PredictionRepository interface {
	InsertPrediction(ctx context.Context, item *models.PredictionRecord) error
	ListPredictions(ctx context.Context, params ListPredictionsParams) ([]models.PredictionRecord, error)
}

type AlertRepository interface {
	InsertAlert(ctx context.Context, item *models.AlertRecord) error
	ListAlerts(ctx context.Context, params ListAlertsParams) ([]models.AlertRecord, error)
}

type Repository interface {
	IdentityRepository
	PredictionRepository
	AlertRepository
}

type ListPredictionsParams struct {
	Subject string
	Limit   int
	Offset  int
}

type ListAlertsParams struct {
	MachineID string
	Severity  string
	Since     *time.Time
	Limit     int
	Offset    int
}

const (
	DefaultPredictionLimit = 20
	MaxListLimit           = 200
)

func NormalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func NormalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
