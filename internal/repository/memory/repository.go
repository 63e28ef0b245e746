// Package memoryrepository keeps repository state in process memory. It is
// used when no database DSN is configured.
package memoryrepository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mohith182/turbine-ai/internal/models"
	"github.com/mohith182/turbine-ai/internal/repository"
)

type Store struct {
	mu          sync.RWMutex
	identities  map[string]models.Identity
	predictions []models.PredictionRecord
	alerts      []models.AlertRecord
	nextID      uint64
	now         func() time.Time
}

func New() *Store {
	return &Store{identities: map[string]models.Identity{}, now: func() time.Time { return time.Now().UTC() }}
}

var _ repository.Repository = (*Store)(nil)

func (s *Store) GetIdentity(ctx context.Context, email string) (*models.Identity, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.identities[email]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *Store) EnsureIdentity(ctx context.Context, item *models.Identity) (*models.Identity, error) {
	_ = ctx
	if item == nil || strings.TrimSpace(item.Email) == "" {
		return nil, errors.New("identity email is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.identities[item.Email]; ok {
		return &existing, nil
	}
	row := *item
	now := s.now()
	row.CreatedAt, row.UpdatedAt = now, now
	s.identities[row.Email] = row
	return &row, nil
}

func (s *Store) TouchLogin(ctx context.Context, email string, at time.Time) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.identities[email]
	if !ok {
		return nil
	}
	item.LastLoginAt = &at
	item.UpdatedAt = s.now()
	s.identities[email] = item
	return nil
}

func (s *Store) ListIdentities(ctx context.Context) ([]models.Identity, error) {
	_ = ctx
	s.mu.RLock()
	out := make([]models.Identity, 0, len(s.identities))
	for _, item := range s.identities {
		out = append(out, item)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *Store) InsertPrediction(ctx context.Context, item *models.PredictionRecord) error {
	_ = ctx
	if item == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item.ID = s.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
	}
	s.predictions = append(s.predictions, *item)
	return nil
}

func (s *Store) ListPredictions(ctx context.Context, params repository.ListPredictionsParams) ([]models.PredictionRecord, error) {
	_ = ctx
	subject := strings.TrimSpace(params.Subject)
	s.mu.RLock()
	var matched []models.PredictionRecord
	for i := len(s.predictions) - 1; i >= 0; i-- {
		p := s.predictions[i]
		if subject != "" && p.Subject != subject {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.RUnlock()
	return page(matched, params.Offset, repository.NormalizeLimit(params.Limit, repository.DefaultPredictionLimit)), nil
}

func (s *Store) InsertAlert(ctx context.Context, item *models.AlertRecord) error {
	_ = ctx
	if item == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item.ID = s.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
	}
	s.alerts = append(s.alerts, *item)
	return nil
}

func (s *Store) ListAlerts(ctx context.Context, params repository.ListAlertsParams) ([]models.AlertRecord, error) {
	_ = ctx
	machine := strings.ToUpper(strings.TrimSpace(params.MachineID))
	severity := strings.TrimSpace(params.Severity)
	s.mu.RLock()
	var matched []models.AlertRecord
	for i := len(s.alerts) - 1; i >= 0; i-- {
		a := s.alerts[i]
		if machine != "" && a.MachineID != machine {
			continue
		}
		if severity != "" && a.Severity != severity {
			continue
		}
		if params.Since != nil && a.CreatedAt.Before(*params.Since) {
			continue
		}
		matched = append(matched, a)
	}
	s.mu.RUnlock()
	return page(matched, params.Offset, repository.NormalizeLimit(params.Limit, repository.MaxListLimit)), nil
}

func page[T any](items []T, offset, limit int) []T {
	offset = repository.NormalizeOffset(offset)
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
