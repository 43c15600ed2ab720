package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRequestInputValidate(t *testing.T) {
	amount := 45.0
	negative := -1.0

	base := BookingRequestInput{
		ProviderID:      "provider-1",
		RequestedDate:   "2026-10-01",
		RequestedTime:   "14:30",
		SessionKind:     "consultation",
		DurationMinutes: 60,
	}

	cases := []struct {
		name    string
		mutate  func(*BookingRequestInput)
		wantErr string
	}{
		{"valid", func(in *BookingRequestInput) {}, ""},
		{"bad date format", func(in *BookingRequestInput) { in.RequestedDate = "01/10/2026" }, "requested_date"},
		{"bad time format", func(in *BookingRequestInput) { in.RequestedTime = "2pm" }, "requested_time"},
		{"zero duration", func(in *BookingRequestInput) { in.DurationMinutes = 0 }, "duration_minutes"},
		{"negative duration", func(in *BookingRequestInput) { in.DurationMinutes = -30 }, "duration_minutes"},
		{"payment required without amount", func(in *BookingRequestInput) { in.PaymentRequired = true }, "payment_amount"},
		{"payment required with negative amount", func(in *BookingRequestInput) {
			in.PaymentRequired = true
			in.PaymentAmount = &negative
		}, "payment_amount"},
		{"payment required with amount", func(in *BookingRequestInput) {
			in.PaymentRequired = true
			in.PaymentAmount = &amount
		}, ""},
		{"amount without payment required is ignored", func(in *BookingRequestInput) { in.PaymentAmount = &negative }, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			err := in.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestBookingRequestStartTime(t *testing.T) {
	req := &BookingRequest{ID: "r1", RequestedDate: "2026-10-01", RequestedTime: "14:30"}

	start, err := req.StartTime()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2026, 10, 1, 14, 30, 0, 0, time.UTC)))

	req.RequestedTime = "25:00"
	_, err = req.StartTime()
	assert.Error(t, err)
}

func TestRequestStatusTerminal(t *testing.T) {
	assert.False(t, RequestStatusPending.Terminal())
	assert.True(t, RequestStatusAccepted.Terminal())
	assert.True(t, RequestStatusRejected.Terminal())
	assert.True(t, RequestStatusCancelled.Terminal())
}

func TestAppointmentStatusTerminal(t *testing.T) {
	assert.False(t, AppointmentStatusScheduled.Terminal())
	assert.True(t, AppointmentStatusCompleted.Terminal())
	assert.True(t, AppointmentStatusCancelled.Terminal())
	assert.True(t, AppointmentStatusNoShow.Terminal())
}
