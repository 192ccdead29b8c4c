package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuebook/models"
)

// errStale reports that the stored code was replaced between Get and Consume.
var errStale = errors.New("verification code replaced")

// CodeStore persists at most one code per (subject, purpose).
type CodeStore interface {
	// Put replaces whatever is stored for the code's subject and purpose.
	// keep bounds how long the record may be retained by the backend.
	Put(ctx context.Context, code *models.VerificationCode, keep time.Duration) error
	// Get fails with models.ErrNotFound when nothing is stored.
	Get(ctx context.Context, subjectID string, purpose models.CodePurpose) (*models.VerificationCode, error)
	// Consume atomically marks record recordID consumed when it is unconsumed,
	// unexpired at now and its digest equals digest. It fails with
	// models.ErrNotFound, models.ErrExpired, models.ErrMismatch or errStale.
	Consume(ctx context.Context, subjectID string, purpose models.CodePurpose, recordID, digest string, now time.Time) error
	// Sweep deletes consumed codes and codes that expired before cutoff,
	// returning how many were removed.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

func codeKey(subjectID string, purpose models.CodePurpose) string {
	return fmt.Sprintf("vcode:%s:%s", purpose, subjectID)
}
