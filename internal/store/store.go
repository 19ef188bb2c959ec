package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"filament-station/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// FindSpoolByURL returns nil, nil when no spool matches.
	FindSpoolByURL(ctx context.Context, url string) (*model.Spool, error)
	GetSpool(ctx context.Context, id int64) (*model.Spool, error)
	CreateSpool(ctx context.Context, url, name string) (*model.Spool, error)
	ListSpools(ctx context.Context) ([]model.Spool, error)

	// UpdateWeight sets the spool's weight and last-updated timestamp and
	// appends the weigh log entry in the same transaction.
	UpdateWeight(ctx context.Context, spoolID int64, grams float64, now time.Time) error
	// UpdateLocation sets the spool's location and last-updated timestamp and
	// appends the move log entry in the same transaction.
	UpdateLocation(ctx context.Context, spoolID int64, location string, now time.Time) error

	AppendLog(ctx context.Context, params LogParams) error
	SpoolLogs(ctx context.Context, spoolID int64, limit int) ([]model.ActionLog, error)

	Subscriptions(ctx context.Context) ([]model.PushSubscription, error)
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	SaveSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) FindSpoolByURL(ctx context.Context, url string) (*model.Spool, error) {
	var spool model.Spool
	err := s.db.WithContext(ctx).Where("url = ?", url).First(&spool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up spool %q: %w", url, err)
	}
	return &spool, nil
}

func (s *gormStore) GetSpool(ctx context.Context, id int64) (*model.Spool, error) {
	var spool model.Spool
	err := s.db.WithContext(ctx).First(&spool, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spool %d: %w", id, err)
	}
	return &spool, nil
}

func (s *gormStore) CreateSpool(ctx context.Context, url, name string) (*model.Spool, error) {
	spool := model.Spool{URL: url, Name: name}
	if err := s.db.WithContext(ctx).Create(&spool).Error; err != nil {
		return nil, fmt.Errorf("failed to create spool %q: %w", url, err)
	}
	return &spool, nil
}

func (s *gormStore) ListSpools(ctx context.Context) ([]model.Spool, error) {
	var spools []model.Spool
	if err := s.db.WithContext(ctx).Order("name").Find(&spools).Error; err != nil {
		return nil, fmt.Errorf("failed to list spools: %w", err)
	}
	return spools, nil
}

func (s *gormStore) UpdateWeight(ctx context.Context, spoolID int64, grams float64, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"last_weight_grams": grams,
			"last_updated":      now,
		}
		if err := tx.Model(&model.Spool{}).Where("id = ?", spoolID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update weight for spool %d: %w", spoolID, err)
		}
		return appendLog(tx, LogParams{
			SpoolID:     spoolID,
			Action:      model.ActionWeigh,
			At:          now,
			WeightGrams: &grams,
		})
	})
}

func (s *gormStore) UpdateLocation(ctx context.Context, spoolID int64, location string, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"location":     location,
			"last_updated": now,
		}
		if err := tx.Model(&model.Spool{}).Where("id = ?", spoolID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update location for spool %d: %w", spoolID, err)
		}
		return appendLog(tx, LogParams{
			SpoolID:  spoolID,
			Action:   model.ActionMove,
			At:       now,
			Location: &location,
		})
	})
}

func (s *gormStore) AppendLog(ctx context.Context, params LogParams) error {
	return appendLog(s.db.WithContext(ctx), params)
}

func appendLog(tx *gorm.DB, params LogParams) error {
	entry := model.ActionLog{
		EventID:     uuid.NewString(),
		SpoolID:     params.SpoolID,
		Timestamp:   params.At,
		Action:      params.Action,
		WeightGrams: params.WeightGrams,
		Location:    params.Location,
		Note:        params.Note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append %s log for spool %d: %w", params.Action, params.SpoolID, err)
	}
	return nil
}

func (s *gormStore) SpoolLogs(ctx context.Context, spoolID int64, limit int) ([]model.ActionLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []model.ActionLog
	err := s.db.WithContext(ctx).
		Where("spool_id = ?", spoolID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logs for spool %d: %w", spoolID, err)
	}
	return logs, nil
}

func (s *gormStore) Subscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return subs, nil
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	return &sub, nil
}

func (s *gormStore) SaveSubscription(ctx context.Context, sub model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(&sub).Error
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}
