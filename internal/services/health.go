package services

import (
	"context"
	"time"

	"portfolio/internal/store"
)

const (
	DatabaseDisabled     = "disabled"
	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

// HealthResult is the body of GET /api/health
type HealthResult struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

// HealthService implements the health service
type HealthService struct {
	store   store.Store
	timeout time.Duration
	now     func() time.Time
}

// NewHealthService creates a new health service
func NewHealthService(st store.Store, timeout time.Duration) *HealthService {
	return &HealthService{store: st, timeout: timeout, now: time.Now}
}

// Check implements the health check method. The process is healthy whether
// or not the record store answers; its state is reported for information.
func (s *HealthService) Check(ctx context.Context) (*HealthResult, error) {
	return &HealthResult{
		Status:    "OK",
		Message:   "Portfolio Backend is running!",
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		Database:  s.databaseState(ctx),
	}, nil
}

func (s *HealthService) databaseState(ctx context.Context) string {
	if s.store == nil {
		return DatabaseDisabled
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		return DatabaseDisconnected
	}
	return DatabaseConnected
}
