package model

import "time"

// SlotLock is an advisory lock taken while a booking for a scheduled slot is
// being created. It narrows the window between the duplicate-slot check and
// the insert; the partial unique index on the bookings collection is the
// hard guarantee.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
