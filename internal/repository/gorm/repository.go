package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mohith182/turbine-ai/internal/models"
	"github.com/mohith182/turbine-ai/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repository.Repository = (*Store)(nil)

func (s *Store) GetIdentity(ctx context.Context, email string) (*models.Identity, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Identity
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) EnsureIdentity(ctx context.Context, item *models.Identity) (*models.Identity, error) {
	if s == nil || s.db == nil || item == nil {
		return item, nil
	}
	if strings.TrimSpace(item.Email) == "" {
		return nil, errors.New("identity email is empty")
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(item).Error; err != nil {
		return nil, err
	}
	return s.GetIdentity(ctx, item.Email)
}

func (s *Store) TouchLogin(ctx context.Context, email string, at time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Identity{}).
		Where("email = ?", email).
		Update("last_login_at", at).Error
}

func (s *Store) ListIdentities(ctx context.Context) ([]models.Identity, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Identity
	if err := s.db.WithContext(ctx).Order("email asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) InsertPrediction(ctx context.Context, item *models.PredictionRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListPredictions(ctx context.Context, params repository.ListPredictionsParams) ([]models.PredictionRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.PredictionRecord{})
	if subject := strings.TrimSpace(params.Subject); subject != "" {
		query = query.Where("subject = ?", subject)
	}
	limit := repository.NormalizeLimit(params.Limit, repository.DefaultPredictionLimit)
	offset := repository.NormalizeOffset(params.Offset)
	var items []models.PredictionRecord
	if err := query.Order("created_at desc").Order("id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) InsertAlert(ctx context.Context, item *models.AlertRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListAlerts(ctx context.Context, params repository.ListAlertsParams) ([]models.AlertRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.AlertRecord{})
	if id := strings.TrimSpace(params.MachineID); id != "" {
		query = query.Where("machine_id = ?", strings.ToUpper(id))
	}
	if sev := strings.TrimSpace(params.Severity); sev != "" {
		query = query.Where("severity = ?", sev)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	limit := repository.NormalizeLimit(params.Limit, repository.MaxListLimit)
	offset := repository.NormalizeOffset(params.Offset)
	var items []models.AlertRecord
	if err := query.Order("created_at desc").Order("id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
