package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"portfolio/internal/domain"
	"portfolio/internal/mail"
)

type fakeStore struct {
	mu        sync.Mutex
	records   []domain.Contact
	createErr error
	pingErr   error
	listErr   error
	creates   int
}

func (f *fakeStore) Create(_ context.Context, c *domain.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	f.records = append(f.records, *c)
	return nil
}

func (f *fakeStore) List(_ context.Context, limit int) ([]domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := append([]domain.Contact(nil), f.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) Close(context.Context) error { return nil }

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	// failOn makes the n-th call (1-based) fail; 0 never fails.
	failOn int
	calls  int
}

var errSMTP = errors.New("535 5.7.8 Username and Password not accepted")

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failOn == f.calls {
		return errSMTP
	}
	f.sent = append(f.sent, msg)
	return nil
}
