// Package store persists contact submissions. Implementations are
// append-only: the interface has no update or delete.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/domain"
)

// Store is the record store for contact submissions.
type Store interface {
	// Create appends one record.
	Create(ctx context.Context, c *domain.Contact) error
	// List returns records newest first. limit <= 0 returns all of them.
	List(ctx context.Context, limit int) ([]domain.Contact, error)
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects the store named by cfg.URI. It returns a nil Store and a nil
// error when persistence is not configured.
func Open(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (Store, error) {
	switch cfg.Driver() {
	case config.DriverNone:
		if cfg.URI != "" {
			return nil, fmt.Errorf("unsupported record store URI scheme")
		}
		return nil, nil
	case config.DriverMongo:
		ms, err := OpenMongo(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return ms, nil
	default:
		db, err := database.Open(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db), nil
	}
}
