package verification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"venuebook/models"
)

// MemoryCodeStore keeps codes in a mutex-guarded map.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]*models.VerificationCode
}

func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: make(map[string]*models.VerificationCode)}
}

func (s *MemoryCodeStore) Put(ctx context.Context, code *models.VerificationCode, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := *code
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[codeKey(code.SubjectID, code.Purpose)] = &stored
	return nil
}

func (s *MemoryCodeStore) Get(ctx context.Context, subjectID string, purpose models.CodePurpose) (*models.VerificationCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.codes[codeKey(subjectID, purpose)]
	if !ok {
		return nil, fmt.Errorf("verification code for %s: %w", subjectID, models.ErrNotFound)
	}
	out := *rec
	return &out, nil
}

func (s *MemoryCodeStore) Consume(ctx context.Context, subjectID string, purpose models.CodePurpose, recordID, digest string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.codes[codeKey(subjectID, purpose)]
	switch {
	case !ok || rec.Consumed:
		return fmt.Errorf("verification code for %s: %w", subjectID, models.ErrNotFound)
	case rec.ID != recordID:
		return errStale
	case rec.Expired(now):
		return models.ErrExpired
	case rec.Digest != digest:
		return models.ErrMismatch
	}
	rec.Consumed = true
	return nil
}

func (s *MemoryCodeStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, rec := range s.codes {
		if rec.Consumed || rec.ExpiresAt.Before(cutoff) {
			delete(s.codes, key)
			removed++
		}
	}
	return removed, nil
}
