package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2026, 9, d, 10, 0, 0, 0, time.UTC)
}

func TestBookingOverlaps(t *testing.T) {
	booking := &Booking{StartDate: day(10), EndDate: day(15)}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"identical window", day(10), day(15), true},
		{"contained window", day(11), day(13), true},
		{"containing window", day(9), day(16), true},
		{"overlaps start", day(8), day(11), true},
		{"overlaps end", day(14), day(18), true},
		{"before", day(5), day(9), false},
		{"after", day(16), day(20), false},
		{"ends exactly at start", day(5), day(10), false},
		{"starts exactly at end", day(15), day(20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, booking.Overlaps(tt.start, tt.end))
		})
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to BookingStatus
	}{
		{BookingPending, BookingApproved},
		{BookingPending, BookingRejected},
		{BookingPending, BookingCancelled},
		{BookingApproved, BookingActive},
		{BookingApproved, BookingCancelled},
		{BookingActive, BookingCompleted},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct {
		from, to BookingStatus
	}{
		{BookingPending, BookingActive},
		{BookingPending, BookingCompleted},
		{BookingApproved, BookingCompleted},
		{BookingApproved, BookingRejected},
		{BookingActive, BookingCancelled},
		{BookingActive, BookingApproved},
		{BookingRejected, BookingPending},
		{BookingCompleted, BookingActive},
		{BookingCancelled, BookingApproved},
		{BookingPending, BookingPending},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []BookingStatus{BookingRejected, BookingCompleted, BookingCancelled} {
		assert.True(t, IsTerminal(s), "%s should be terminal", s)
	}
	for _, s := range []BookingStatus{BookingPending, BookingApproved, BookingActive} {
		assert.False(t, IsTerminal(s), "%s should not be terminal", s)
	}
}

func TestCancellable(t *testing.T) {
	assert.True(t, Cancellable(BookingPending))
	assert.True(t, Cancellable(BookingApproved))
	assert.False(t, Cancellable(BookingActive))
	assert.False(t, Cancellable(BookingCompleted))
	assert.False(t, Cancellable(BookingRejected))
	assert.False(t, Cancellable(BookingCancelled))
}

func TestValidBookingStatus(t *testing.T) {
	for _, s := range []BookingStatus{BookingPending, BookingApproved, BookingRejected, BookingActive, BookingCompleted, BookingCancelled} {
		assert.True(t, ValidBookingStatus(s))
	}
	assert.False(t, ValidBookingStatus("shipped"))
	assert.False(t, ValidBookingStatus(""))
}
