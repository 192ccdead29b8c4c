package models

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusConfirmed BookingStatus = "Confirmed"
	StatusCancelled BookingStatus = "Cancelled"
)

// ActiveStatuses are the statuses that occupy a venue date.
var ActiveStatuses = []BookingStatus{StatusPending, StatusConfirmed}

// IsActive reports whether a booking in this status holds its date.
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Cancelled is terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

// TransitionSources returns every status that may move to next.
func TransitionSources(next BookingStatus) []BookingStatus {
	out := []BookingStatus{}
	for _, s := range []BookingStatus{StatusPending, StatusConfirmed, StatusCancelled} {
		if s.CanTransitionTo(next) {
			out = append(out, s)
		}
	}
	return out
}

// ParseBookingStatus accepts a status name in any letter case.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	for _, s := range []BookingStatus{StatusPending, StatusConfirmed, StatusCancelled} {
		if strings.EqualFold(string(s), strings.TrimSpace(raw)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown booking status %q", ErrInvalidInput, raw)
}

// Booking is a guest's reservation of one calendar date at a venue.
type Booking struct {
	ID             string        `bson:"id" json:"id"`
	VenueID        string        `bson:"venue_id" json:"venue_id"`
	GuestFirstName string        `bson:"guest_first_name" json:"guest_first_name"`
	GuestLastName  string        `bson:"guest_last_name" json:"guest_last_name"`
	GuestPhone     string        `bson:"guest_phone" json:"guest_phone"`
	GuestCount     int           `bson:"guest_count" json:"guest_count"`
	Date           Date          `bson:"date" json:"date"`
	Status         BookingStatus `bson:"status" json:"status"`
	Active         bool          `bson:"active" json:"-"` // mirrors Status.IsActive(); backs the unique venue/date index
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updated_at"`
}

// GuestInfo is the guest-supplied part of a reservation request.
type GuestInfo struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Count     int    `json:"guest_count" binding:"required,gt=0"`
}

// CreateBookingRequest is the reservation payload accepted at the HTTP boundary.
type CreateBookingRequest struct {
	VenueID string    `json:"venue_id" binding:"required"`
	Date    string    `json:"date" binding:"required"`
	Guest   GuestInfo `json:"guest"`
}

// UpdateStatusRequest is the administrative status change payload.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
