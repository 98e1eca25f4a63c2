package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"portfolio/internal/database"
	"portfolio/internal/domain"
	"portfolio/internal/metrics"
)

// GormStore keeps submissions in a SQL table through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open, migrated gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, c *domain.Contact) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Create(c).Error
	metrics.RecordDBQuery("create", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, limit int) ([]domain.Contact, error) {
	start := time.Now()
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var contacts []domain.Contact
	err := query.Find(&contacts).Error
	metrics.RecordDBQuery("list", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return contacts, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	if err := database.Ping(ctx, s.db); err != nil {
		return err
	}
	if stats, err := database.Stats(s.db); err == nil {
		metrics.UpdateDBConnections(stats.InUse, stats.Idle)
	}
	return nil
}

func (s *GormStore) Close(context.Context) error {
	return database.Close(s.db)
}
