package models

import "time"

// CancellationTicket is returned once a cancellation code has been sent.
// It never carries the code.
type CancellationTicket struct {
	BookingID string    `json:"booking_id"`
	SentTo    string    `json:"sent_to"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RequestCancellationInput struct {
	Phone string `json:"phone" binding:"required"`
}

type ConfirmCancellationInput struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}
