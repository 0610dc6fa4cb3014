package service

import (
	"context"
	"errors"
	"sync"

	catalogerrors "homeserve/internal/catalog/errors"
	"homeserve/internal/catalog/repository"
	"homeserve/internal/catalog/validator"
	"homeserve/pkg/config"
	apperrors "homeserve/pkg/errors"
	"homeserve/pkg/model"
	"homeserve/pkg/sanitizer"
)

type ListingService interface {
	Create(ctx context.Context, listing *model.ServiceListing) error
	GetByID(ctx context.Context, id string) (*model.ServiceListing, error)
	GetAll(ctx context.Context, filter *model.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, int64, error)
	Update(ctx context.Context, id string, actorEmail string, updates *model.ServiceListingUpdate) error
	SetAvailability(ctx context.Context, id string, actorEmail string, available bool) error
	Delete(ctx context.Context, id string, actorEmail string) error
}

type listingService struct {
	repo      repository.ListingRepository
	validator *validator.ListingValidator
	cfg       *config.Config
}

func NewListingService(
	repo repository.ListingRepository,
	validator *validator.ListingValidator,
	cfg *config.Config,
) ListingService {
	return &listingService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *listingService) Create(ctx context.Context, listing *model.ServiceListing) error {
	s.sanitize(listing)

	if err := s.validator.Validate(listing); err != nil {
		s.cfg.Log.Warn("Service listing validation failed",
			"name", listing.Name,
			"provider_email", listing.ProviderEmail,
			"error", err,
		)
		return apperrors.Validation("Service listing validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		s.cfg.Log.Error("Failed to create service listing",
			"name", listing.Name,
			"provider_email", listing.ProviderEmail,
			"error", err,
		)
		return apperrors.Internal("Failed to create service listing", err)
	}

	s.cfg.Log.Info("Service listing created successfully",
		"id", listing.ID,
		"category", listing.Category,
		"name", listing.Name,
		"provider_email", listing.ProviderEmail,
	)

	return nil
}

func (s *listingService) GetByID(ctx context.Context, id string) (*model.ServiceListing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service listing ID cannot be empty")
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service listing", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service listing ID format")
		}
		s.cfg.Log.Error("Failed to get service listing by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve service listing", err)
	}

	return listing, nil
}

func (s *listingService) GetAll(ctx context.Context, filter *model.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)
	s.sanitizeFilter(filter)

	if filter != nil && filter.Category != "" && !filter.Category.IsValid() {
		return nil, 0, apperrors.InvalidInput("Unknown service category: " + filter.Category.String())
	}

	var count int64
	var listings []*model.ServiceListing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count service listings", "error", errCount)
			errCount = apperrors.Internal("Failed to count service listings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		listings, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list service listings",
				"limit", limit,
				"offset", offset,
				"error", errFind,
			)
			errFind = apperrors.Internal("Failed to retrieve service listings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return listings, count, nil
}

func (s *listingService) Update(ctx context.Context, id string, actorEmail string, updates *model.ServiceListingUpdate) error {
	existing, err := s.loadOwned(ctx, id, actorEmail)
	if err != nil {
		return err
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Service listing update validation failed", "id", id, "error", err)
		return apperrors.Validation("Service listing validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	merged := s.mergeListingUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Service listing validation failed after merge", "id", id, "error", err)
		return apperrors.Validation("Service listing validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service listing", id)
		}
		s.cfg.Log.Error("Failed to update service listing",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to update service listing", err)
	}

	s.cfg.Log.Info("Service listing updated successfully",
		"id", id,
		"name", merged.Name,
	)

	return nil
}

func (s *listingService) SetAvailability(ctx context.Context, id string, actorEmail string, available bool) error {
	return s.Update(ctx, id, actorEmail, &model.ServiceListingUpdate{
		IsAvailable: &available,
	})
}

func (s *listingService) Delete(ctx context.Context, id string, actorEmail string) error {
	if _, err := s.loadOwned(ctx, id, actorEmail); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service listing", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid service listing ID format")
		}
		s.cfg.Log.Error("Failed to delete service listing",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete service listing", err)
	}

	s.cfg.Log.Info("Service listing deleted successfully", "id", id)

	return nil
}

// loadOwned fetches the listing and verifies the actor owns it. Existing
// bookings keep their snapshots, so listing mutations never need to touch the
// bookings collection.
func (s *listingService) loadOwned(ctx context.Context, id string, actorEmail string) (*model.ServiceListing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service listing ID cannot be empty")
	}
	if actorEmail == "" {
		return nil, apperrors.InvalidInput("Actor email cannot be empty")
	}
	actorEmail = sanitizer.NormalizeEmail(actorEmail)

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service listing", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service listing ID format")
		}
		return nil, apperrors.Internal("Failed to check service listing existence", err)
	}

	if existing.ProviderEmail != actorEmail {
		s.cfg.Log.Warn("Listing mutation denied for non-owner",
			"id", id,
			"actor_email", actorEmail,
		)
		return nil, apperrors.Forbidden("Only the listing owner may modify it")
	}

	return existing, nil
}

func (s *listingService) sanitize(listing *model.ServiceListing) {
	listing.Category = model.ServiceCategory(sanitizer.NormalizeCategory(string(listing.Category)))
	listing.Name = sanitizer.NormalizeName(listing.Name)
	listing.DurationEstimate = sanitizer.TrimAndNormalize(listing.DurationEstimate)
	listing.Description = sanitizer.NormalizeText(listing.Description)
	listing.ProviderEmail = sanitizer.NormalizeEmail(listing.ProviderEmail)
	listing.ServiceKind = sanitizer.TrimAndNormalize(listing.ServiceKind)
	listing.AreaCoverage = sanitizer.TrimAndNormalize(listing.AreaCoverage)
}

func (s *listingService) sanitizeUpdate(updates *model.ServiceListingUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.DurationEstimate != "" {
		updates.DurationEstimate = sanitizer.TrimAndNormalize(updates.DurationEstimate)
	}
	if updates.Description != "" {
		updates.Description = sanitizer.NormalizeText(updates.Description)
	}
	if updates.ServiceKind != "" {
		updates.ServiceKind = sanitizer.TrimAndNormalize(updates.ServiceKind)
	}
	if updates.AreaCoverage != "" {
		updates.AreaCoverage = sanitizer.TrimAndNormalize(updates.AreaCoverage)
	}
}

func (s *listingService) sanitizeFilter(filter *model.ListingFilter) {
	if filter == nil {
		return
	}
	if filter.ProviderEmail != "" {
		filter.ProviderEmail = sanitizer.NormalizeEmail(filter.ProviderEmail)
	}
	if filter.Category != "" {
		filter.Category = model.ServiceCategory(sanitizer.NormalizeCategory(string(filter.Category)))
	}
}

func (s *listingService) mergeListingUpdates(existing *model.ServiceListing, updates *model.ServiceListingUpdate) *model.ServiceListing {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.DurationEstimate != "" {
		merged.DurationEstimate = updates.DurationEstimate
	}
	if updates.Description != "" {
		merged.Description = updates.Description
	}
	if updates.IsAvailable != nil {
		merged.IsAvailable = updates.IsAvailable
	}
	if updates.ServiceKind != "" {
		merged.ServiceKind = updates.ServiceKind
	}
	if updates.AreaCoverage != "" {
		merged.AreaCoverage = updates.AreaCoverage
	}

	// ProviderEmail and Category are immutable after creation.
	merged.ID = existing.ID
	merged.ProviderEmail = existing.ProviderEmail
	merged.Category = existing.Category
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
