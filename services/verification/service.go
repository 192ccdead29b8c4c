package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"venuebook/models"
	"venuebook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const consumeAttempts = 3

// minRetention keeps a record past its deadline long enough for a late
// attempt to read Expired rather than NotFound.
const minRetention = time.Second

// IssuedCode is the plaintext code handed to the caller for delivery.
type IssuedCode struct {
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// VerificationService issues and checks single-use codes bound to a subject
// and purpose.
type VerificationService interface {
	Issue(ctx context.Context, subjectID string, purpose models.CodePurpose) (*IssuedCode, error)
	Verify(ctx context.Context, subjectID string, purpose models.CodePurpose, candidate string) error
	Sweep(ctx context.Context) (int, error)
}

// DefaultVerificationService implements VerificationService over a CodeStore.
type DefaultVerificationService struct {
	Store     CodeStore
	Clock     utils.Clock
	TTL       time.Duration
	Retention time.Duration
	Logger    *zap.Logger
}

func NewDefaultVerificationService(store CodeStore, clock utils.Clock, ttl, retention time.Duration, logger *zap.Logger) (*DefaultVerificationService, error) {
	if store == nil || clock == nil {
		return nil, fmt.Errorf("verification service initialization error: store or clock is nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("verification service initialization error: ttl must be positive")
	}
	if retention < minRetention {
		retention = minRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultVerificationService{
		Store:     store,
		Clock:     clock,
		TTL:       ttl,
		Retention: retention,
		Logger:    logger,
	}, nil
}

// Issue mints a new code for (subjectID, purpose), replacing any earlier one.
func (s *DefaultVerificationService) Issue(ctx context.Context, subjectID string, purpose models.CodePurpose) (*IssuedCode, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" || purpose == "" {
		return nil, fmt.Errorf("%w: subject and purpose are required", models.ErrInvalidInput)
	}

	code, err := newCode()
	if err != nil {
		return nil, err
	}
	salt, err := newSalt()
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	rec := &models.VerificationCode{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Purpose:   purpose,
		Salt:      salt,
		Digest:    digestCode(code, salt),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.TTL),
	}
	if err := s.Store.Put(ctx, rec, s.TTL+s.Retention); err != nil {
		return nil, err
	}

	s.Logger.Debug("Verification code issued",
		zap.String("subject_id", subjectID),
		zap.String("purpose", string(purpose)),
		zap.Time("expires_at", rec.ExpiresAt))
	return &IssuedCode{Code: code, IssuedAt: rec.IssuedAt, ExpiresAt: rec.ExpiresAt}, nil
}

// Verify consumes the live code for (subjectID, purpose) if candidate matches.
// A consumed code reports models.ErrNotFound, even for the right value.
func (s *DefaultVerificationService) Verify(ctx context.Context, subjectID string, purpose models.CodePurpose, candidate string) error {
	subjectID = strings.TrimSpace(subjectID)
	candidate = strings.TrimSpace(candidate)

	for attempt := 0; attempt < consumeAttempts; attempt++ {
		rec, err := s.Store.Get(ctx, subjectID, purpose)
		if err != nil {
			return err
		}
		if rec.Consumed {
			return fmt.Errorf("verification code for %s: %w", subjectID, models.ErrNotFound)
		}

		err = s.Store.Consume(ctx, subjectID, purpose, rec.ID, digestCode(candidate, rec.Salt), s.Clock.Now())
		if errors.Is(err, errStale) {
			continue
		}
		if err != nil {
			return err
		}
		s.Logger.Debug("Verification code consumed",
			zap.String("subject_id", subjectID),
			zap.String("purpose", string(purpose)))
		return nil
	}
	// Reissued on every attempt: the candidate belongs to an older code.
	return models.ErrMismatch
}

// Sweep removes consumed codes and codes expired for longer than Retention.
func (s *DefaultVerificationService) Sweep(ctx context.Context) (int, error) {
	cutoff := s.Clock.Now().Add(-s.Retention)
	removed, err := s.Store.Sweep(ctx, cutoff)
	if err != nil {
		return removed, fmt.Errorf("verification sweep failed: %w", err)
	}
	s.Logger.Info("Verification codes swept", zap.Int("removed", removed))
	return removed, nil
}
