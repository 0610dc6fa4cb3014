package events

import (
	"time"

	"homeserve/pkg/model"
)

// Booking lifecycle topics and event types. Consumers subscribe to the
// single topic and dispatch on the event-type header.
const (
	TopicBookingLifecycle = "booking.lifecycle"

	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeBookingCancelled     = "booking.cancelled"
	TypeBookingDeleted       = "booking.deleted"

	SchemaVersion = "1"
)

// BookingEvent is the payload for every booking lifecycle event.
type BookingEvent struct {
	BookingID     string                `json:"booking_id"`
	ServiceID     string                `json:"service_id"`
	Category      model.ServiceCategory `json:"category"`
	CustomerEmail string                `json:"customer_email"`
	ProviderEmail string                `json:"provider_email"`
	ServiceName   string                `json:"service_name"`
	Price         float64               `json:"price"`
	Status        model.BookingStatus   `json:"status"`
	PrevStatus    model.BookingStatus   `json:"prev_status,omitempty"`
	ScheduledAt   *time.Time            `json:"scheduled_at,omitempty"`
	OccurredAt    time.Time             `json:"occurred_at"`
}

// FromBooking builds the common part of an event from a booking.
func FromBooking(b *model.Booking) BookingEvent {
	return BookingEvent{
		BookingID:     b.ID,
		ServiceID:     b.ServiceID,
		Category:      b.Category,
		CustomerEmail: b.CustomerEmail,
		ProviderEmail: b.ProviderEmail,
		ServiceName:   b.ServiceName,
		Price:         b.Price,
		Status:        b.Status,
		ScheduledAt:   b.ScheduledAt,
		OccurredAt:    time.Now().UTC(),
	}
}
