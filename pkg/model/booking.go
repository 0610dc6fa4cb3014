package model

import "time"

// Booking is a customer's reservation against a ServiceListing. The
// provider email, service name and price are snapshotted from the listing at
// creation time so later listing edits or deletion never rewrite history.
type Booking struct {
	ID                  string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ServiceID           string          `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	Category            ServiceCategory `json:"category" bson:"category" validate:"required,service_category"`
	CustomerEmail       string          `json:"customer_email" bson:"customer_email" validate:"required,email"`
	Status              BookingStatus   `json:"status" bson:"status" validate:"required,booking_status"`
	ScheduledAt         *time.Time      `json:"scheduled_at,omitempty" bson:"scheduled_at,omitempty" validate:"omitempty"`
	AreaSize            string          `json:"area_size,omitempty" bson:"area_size,omitempty" validate:"omitempty,area_coverage"`
	SpecialInstructions string          `json:"special_instructions,omitempty" bson:"special_instructions,omitempty" validate:"omitempty,max=1000"`

	// Snapshot fields, copied from the listing when the booking is created.
	ProviderEmail string  `json:"provider_email" bson:"provider_email" validate:"required,email"`
	ServiceName   string  `json:"service_name" bson:"service_name" validate:"required"`
	Price         float64 `json:"price" bson:"price" validate:"gte=0"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// ActorRole identifies who is asking for a booking mutation. Providers may
// confirm and complete; customers and providers may cancel.
type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleProvider ActorRole = "provider"
)

func (r ActorRole) IsValid() bool {
	return r == RoleCustomer || r == RoleProvider
}

// StatusChange is the request body for booking status transitions.
type StatusChange struct {
	Status     string    `json:"status" validate:"required"`
	ActorEmail string    `json:"actor_email" validate:"required,email"`
	ActorRole  ActorRole `json:"actor_role" validate:"required,oneof=customer provider"`
}

// CancelRequest identifies the actor asking to cancel a booking.
type CancelRequest struct {
	ActorEmail string `json:"actor_email" validate:"required,email"`
}

// BatchBookingResult reports the outcome of one item of a batch creation.
// Failed items are reported, never silently skipped.
type BatchBookingResult struct {
	Index   int      `json:"index"`
	Booking *Booking `json:"booking,omitempty"`
	Error   string   `json:"error,omitempty"`
	Code    string   `json:"code,omitempty"`
}

func (r *BatchBookingResult) Succeeded() bool {
	return r.Error == ""
}
