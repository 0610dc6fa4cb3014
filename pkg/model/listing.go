package model

import "time"

// ServiceListing is a provider-published offering. The provider email is
// immutable after creation; every other attribute is owner-editable.
type ServiceListing struct {
	ID               string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Category         ServiceCategory `json:"category" bson:"category" validate:"required,service_category"`
	Name             string          `json:"name" bson:"name" validate:"required,min=3,max=100"`
	Price            float64         `json:"price" bson:"price" validate:"gte=0"`
	DurationEstimate string          `json:"duration_estimate" bson:"duration_estimate" validate:"required,duration_estimate"`
	Description      string          `json:"description" bson:"description" validate:"required,min=10,max=2000"`
	ProviderEmail    string          `json:"provider_email" bson:"provider_email" validate:"required,email"`
	IsAvailable      *bool           `json:"is_available,omitempty" bson:"is_available" validate:"omitempty"`
	ServiceKind      string          `json:"service_kind,omitempty" bson:"service_kind,omitempty" validate:"omitempty,min=2,max=50"`
	AreaCoverage     string          `json:"area_coverage,omitempty" bson:"area_coverage,omitempty" validate:"omitempty,area_coverage"`
	CreatedAt        time.Time       `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt        time.Time       `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Available treats an unset flag as available, matching the storage default.
func (l *ServiceListing) Available() bool {
	return l.IsAvailable == nil || *l.IsAvailable
}

// ServiceListingUpdate carries the owner-editable attributes. ProviderEmail
// and Category are deliberately absent.
type ServiceListingUpdate struct {
	Name             string   `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Price            *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	DurationEstimate string   `json:"duration_estimate,omitempty" validate:"omitempty,duration_estimate"`
	Description      string   `json:"description,omitempty" validate:"omitempty,min=10,max=2000"`
	IsAvailable      *bool    `json:"is_available,omitempty" validate:"omitempty"`
	ServiceKind      string   `json:"service_kind,omitempty" validate:"omitempty,min=2,max=50"`
	AreaCoverage     string   `json:"area_coverage,omitempty" validate:"omitempty,area_coverage"`
}

// ListingFilter narrows catalog queries. Zero values mean "no constraint".
type ListingFilter struct {
	ProviderEmail string
	Category      ServiceCategory
	Available     *bool
}
