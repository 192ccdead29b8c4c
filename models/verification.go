package models

import "time"

// CodePurpose scopes a verification code so it cannot be replayed for another flow.
type CodePurpose string

const (
	PurposeCancelBooking CodePurpose = "cancel-booking"
	PurposeVerifyPhone   CodePurpose = "verify-phone"
)

// VerificationCode is the stored form of a one-time code. The code itself is
// kept only as a salted digest.
type VerificationCode struct {
	ID        string      `json:"id"`
	SubjectID string      `json:"subject_id"`
	Purpose   CodePurpose `json:"purpose"`
	Salt      string      `json:"-"`
	Digest    string      `json:"-"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	Consumed  bool        `json:"consumed"`
}

// Expired reports whether the code is past its deadline at now.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
