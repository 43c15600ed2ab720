package models

import (
	"fmt"
	"time"
)

// RequestStatus is the lifecycle state of a booking request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// Terminal reports whether no further transition is legal from s.
// Every state except pending is terminal for the request itself.
func (s RequestStatus) Terminal() bool {
	return s != RequestStatusPending
}

// BookingRequest is a proposal for a session awaiting provider approval.
// A request is mutated exactly once (its terminal transition) and never deleted.
type BookingRequest struct {
	ID              string        `bson:"id" json:"id"`
	RequesterID     string        `bson:"requester_id" json:"requester_id"`
	ProviderID      string        `bson:"provider_id" json:"provider_id"`
	RequestedDate   string        `bson:"requested_date" json:"requested_date"` // "YYYY-MM-DD"
	RequestedTime   string        `bson:"requested_time" json:"requested_time"` // "HH:MM", 24h
	SessionKind     string        `bson:"session_kind" json:"session_kind"`
	DurationMinutes int           `bson:"duration_minutes" json:"duration_minutes"`
	Message         string        `bson:"message,omitempty" json:"message,omitempty"`
	Status          RequestStatus `bson:"status" json:"status"`
	RejectionReason string        `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	PaymentRequired bool          `bson:"payment_required" json:"payment_required"`
	PaymentAmount   *float64      `bson:"payment_amount,omitempty" json:"payment_amount,omitempty"`
	Hidden          bool          `bson:"hidden,omitempty" json:"hidden,omitempty"` // provider-side soft hide in listings
	CreatedAt       time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at" json:"updated_at"`
}

// StartTime combines the requested date and time into a wall-clock instant (UTC).
func (r *BookingRequest) StartTime() (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", r.RequestedDate+" "+r.RequestedTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("request %s has malformed schedule fields: %w", r.ID, err)
	}
	return t, nil
}

// BookingRequestInput is the creation payload accepted at the API boundary.
type BookingRequestInput struct {
	ProviderID      string   `json:"provider_id" binding:"required"`
	RequestedDate   string   `json:"requested_date" binding:"required"`
	RequestedTime   string   `json:"requested_time" binding:"required"`
	SessionKind     string   `json:"session_kind" binding:"required"`
	DurationMinutes int      `json:"duration_minutes" binding:"required"`
	Message         string   `json:"message"`
	PaymentRequired bool     `json:"payment_required"`
	PaymentAmount   *float64 `json:"payment_amount"`
}

// Validate checks field-level rules that gin's binding tags cannot express.
func (in *BookingRequestInput) Validate() error {
	if _, err := time.Parse("2006-01-02", in.RequestedDate); err != nil {
		return fmt.Errorf("requested_date must be formatted YYYY-MM-DD: %q", in.RequestedDate)
	}
	if _, err := time.Parse("15:04", in.RequestedTime); err != nil {
		return fmt.Errorf("requested_time must be formatted HH:MM: %q", in.RequestedTime)
	}
	if in.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive, got %d", in.DurationMinutes)
	}
	if in.PaymentRequired {
		if in.PaymentAmount == nil {
			return fmt.Errorf("payment_amount is required when payment_required is true")
		}
		if *in.PaymentAmount <= 0 {
			return fmt.Errorf("payment_amount must be positive, got %v", *in.PaymentAmount)
		}
	}
	return nil
}
