package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "homeserve/internal/bookings/errors"
	"homeserve/internal/bookings/repository"
	"homeserve/internal/bookings/validator"
	catalogerrors "homeserve/internal/catalog/errors"
	catalogrepo "homeserve/internal/catalog/repository"
	"homeserve/pkg/config"
	apperrors "homeserve/pkg/errors"
	"homeserve/pkg/events"
	"homeserve/pkg/kafka"
	"homeserve/pkg/model"
	"homeserve/pkg/sanitizer"
)

// EventPublisher emits booking lifecycle events. A nil publisher disables
// event emission without changing any request outcome.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	CreateBatch(ctx context.Context, bookings []*model.Booking) ([]*model.BatchBookingResult, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByCustomer(ctx context.Context, customerEmail string, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByProvider(ctx context.Context, providerEmail string, limit int, offset int64) ([]*model.Booking, int64, error)
	Delete(ctx context.Context, id string, actorEmail string) error

	SetStatus(ctx context.Context, id string, change *model.StatusChange) (*model.Booking, error)
	Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error)
}

type bookingService struct {
	repo        repository.BookingRepository
	lockRepo    repository.SlotLockRepository
	listingRepo catalogrepo.ListingRepository
	validator   *validator.BookingValidator
	publisher   EventPublisher
	cfg         *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	listingRepo catalogrepo.ListingRepository,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:        repo,
		lockRepo:    lockRepo,
		listingRepo: listingRepo,
		validator:   validator,
		publisher:   publisher,
		cfg:         cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.sanitize(booking)

	if booking.ServiceID == "" {
		return apperrors.InvalidInput("Service ID cannot be empty")
	}

	listing, err := s.resolveListing(ctx, booking.ServiceID)
	if err != nil {
		return err
	}
	if !listing.Available() {
		return apperrors.Policy("Service listing is not available for booking")
	}

	// Snapshot the listing onto the booking so later edits or deletion of
	// the listing never rewrite booking history.
	booking.ProviderEmail = listing.ProviderEmail
	booking.ServiceName = listing.Name
	booking.Price = listing.Price
	booking.Category = listing.Category
	booking.Status = model.StatusPending
	normalizeSchedule(booking)

	if err := s.validate(booking); err != nil {
		return err
	}

	if booking.ScheduledAt == nil {
		if err := s.repo.Create(ctx, booking); err != nil {
			s.cfg.Log.Error("Failed to create booking", "service_id", booking.ServiceID, "error", err)
			return apperrors.Internal("Failed to create booking", err)
		}
	} else {
		if err := s.createScheduled(ctx, booking); err != nil {
			return err
		}
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"service_id", booking.ServiceID,
		"customer_email", booking.CustomerEmail,
		"scheduled_at", booking.ScheduledAt,
	)
	s.publishEvent(events.TypeBookingCreated, booking)
	return nil
}

// createScheduled closes the create/conflict race with three layers: an
// advisory lock on the slot, a check-then-insert inside a transaction, and
// the partial unique index on (service_id, scheduled_at) for active bookings.
func (s *bookingService) createScheduled(ctx context.Context, booking *model.Booking) error {
	lockID, err := s.acquireSlotLock(ctx, booking.ServiceID, *booking.ScheduledAt)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		count, err := s.repo.CountActiveAtSlot(sessCtx, booking.ServiceID, *booking.ScheduledAt)
		if err != nil {
			return apperrors.Internal("Failed to check for conflicting bookings", err)
		}
		if count > 0 {
			return apperrors.Conflict(fmt.Sprintf(
				"An active booking already exists for this service at %s",
				booking.ScheduledAt.Format(time.RFC3339),
			))
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict("An active booking already exists for this slot")
			}
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create scheduled booking",
			"service_id", booking.ServiceID,
			"scheduled_at", booking.ScheduledAt,
			"error", err,
		)
		return err
	}
	return nil
}

func (s *bookingService) CreateBatch(ctx context.Context, bookings []*model.Booking) ([]*model.BatchBookingResult, error) {
	if len(bookings) == 0 {
		return nil, apperrors.InvalidInput("Batch must contain at least one booking")
	}
	if len(bookings) > s.cfg.MaxBatchBookings {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"Batch size %d exceeds the maximum of %d", len(bookings), s.cfg.MaxBatchBookings,
		))
	}

	// Items are processed sequentially; each failure is reported per item
	// rather than aborting or silently skipping the rest.
	results := make([]*model.BatchBookingResult, 0, len(bookings))
	for i, booking := range bookings {
		result := &model.BatchBookingResult{Index: i}
		if booking == nil {
			result.Error = "booking item is empty"
			result.Code = apperrors.CodeInvalidInput
			results = append(results, result)
			continue
		}

		if err := s.Create(ctx, booking); err != nil {
			appErr := apperrors.AsAppError(err)
			result.Error = appErr.Message
			result.Code = appErr.Code
		} else {
			result.Booking = booking
		}
		results = append(results, result)
	}

	succeeded := 0
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		}
	}
	s.cfg.Log.Info("Batch booking creation completed",
		"total", len(bookings),
		"succeeded", succeeded,
		"failed", len(bookings)-succeeded,
	)

	return results, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetByCustomer(ctx context.Context, customerEmail string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if customerEmail == "" {
		return nil, 0, apperrors.InvalidInput("Customer email cannot be empty")
	}
	customerEmail = sanitizer.NormalizeEmail(customerEmail)
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByCustomer(ctx, customerEmail)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings by customer", "customer_email", customerEmail, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByCustomer(ctx, customerEmail, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings by customer", "customer_email", customerEmail, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// GetByProvider resolves the provider's listing IDs first, then returns the
// bookings made against any of them, newest first.
func (s *bookingService) GetByProvider(ctx context.Context, providerEmail string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if providerEmail == "" {
		return nil, 0, apperrors.InvalidInput("Provider email cannot be empty")
	}
	providerEmail = sanitizer.NormalizeEmail(providerEmail)
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	serviceIDs, err := s.listingRepo.FindIDsByProvider(ctx, providerEmail)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve provider listings", "provider_email", providerEmail, "error", err)
		return nil, 0, apperrors.Internal("Failed to resolve provider listings", err)
	}
	if len(serviceIDs) == 0 {
		return []*model.Booking{}, 0, nil
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByServiceIDs(ctx, serviceIDs)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings by provider", "provider_email", providerEmail, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByServiceIDs(ctx, serviceIDs, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings by provider", "provider_email", providerEmail, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Delete hard-deletes a booking that is still pending. Either party may do
// it; anything past pending must go through cancellation instead.
func (s *bookingService) Delete(ctx context.Context, id string, actorEmail string) error {
	if actorEmail == "" {
		return apperrors.InvalidInput("Actor email cannot be empty")
	}
	actorEmail = sanitizer.NormalizeEmail(actorEmail)

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if booking.Status != model.StatusPending {
		return apperrors.InvalidTransition(fmt.Sprintf(
			"Only pending bookings may be deleted; this booking is %s", booking.Status,
		))
	}
	if actorEmail != booking.CustomerEmail && actorEmail != booking.ProviderEmail {
		return apperrors.Forbidden("Only the booking's customer or provider may delete it")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to delete booking", "id", id, "error", err)
		return apperrors.Internal("Failed to delete booking", err)
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id, "actor_email", actorEmail)
	s.publishEvent(events.TypeBookingDeleted, booking)
	return nil
}

// --- Helpers ---

func (s *bookingService) sanitize(b *model.Booking) {
	b.CustomerEmail = sanitizer.NormalizeEmail(b.CustomerEmail)
	b.Category = model.ServiceCategory(sanitizer.NormalizeCategory(string(b.Category)))
	b.AreaSize = sanitizer.TrimAndNormalize(b.AreaSize)
	b.SpecialInstructions = sanitizer.NormalizeText(b.SpecialInstructions)
}

// normalizeSchedule pins scheduled times to UTC at minute granularity so the
// exact-match conflict rule and the unique slot index compare like for like.
func normalizeSchedule(b *model.Booking) {
	if b.ScheduledAt == nil {
		return
	}
	normalized := b.ScheduledAt.UTC().Truncate(time.Minute)
	b.ScheduledAt = &normalized
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) resolveListing(ctx context.Context, serviceID string) (*model.ServiceListing, error) {
	listing, err := s.listingRepo.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service listing", serviceID)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service listing ID format")
		}
		return nil, apperrors.Internal("Failed to resolve service listing", err)
	}
	return listing, nil
}

func (s *bookingService) acquireSlotLock(ctx context.Context, serviceID string, scheduledAt time.Time) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%d", serviceID, scheduledAt.Unix())

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

// publishEvent emits a lifecycle event keyed by booking ID. Emission is best
// effort: a broker failure is logged and never fails the request.
func (s *bookingService) publishEvent(eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithEventType(eventType).
		WithSource("bookings").
		WithValue(events.FromBooking(booking)).
		Build()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
