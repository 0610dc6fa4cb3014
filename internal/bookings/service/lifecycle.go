package service

import (
	"context"
	"fmt"
	"time"

	apperrors "homeserve/pkg/errors"
	"homeserve/pkg/events"
	"homeserve/pkg/model"
	"homeserve/pkg/sanitizer"
)

// SetStatus applies one transition of the booking state machine. Legacy
// "accepted"/"rejected" inputs are mapped to confirmed/cancelled before any
// rule runs. Re-applying the current status is a no-op, including on
// terminal bookings; any other move out of a terminal state fails.
func (s *bookingService) SetStatus(ctx context.Context, id string, change *model.StatusChange) (*model.Booking, error) {
	if err := s.validator.ValidateStatusChange(change); err != nil {
		s.cfg.Log.Warn("Status change validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Status change validation failed", map[string]any{"error": err.Error()})
	}

	target, err := model.ParseBookingStatus(change.Status)
	if err != nil {
		return nil, apperrors.InvalidTransition(fmt.Sprintf(
			"Unknown booking status %q; must be one of: pending, confirmed, completed, cancelled", change.Status,
		))
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == target {
		s.cfg.Log.Debug("Status change is a no-op", "id", id, "status", target)
		return booking, nil
	}

	if booking.Status.IsTerminal() {
		return nil, apperrors.InvalidTransition(fmt.Sprintf(
			"Booking is already %s; no further transitions are allowed", booking.Status,
		))
	}
	if !booking.Status.CanTransitionTo(target) {
		return nil, apperrors.InvalidTransition(fmt.Sprintf(
			"Cannot transition booking from %s to %s", booking.Status, target,
		))
	}

	if err := s.authorizeTransition(booking, change, target); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		s.cfg.Log.Error("Failed to update booking status", "id", id, "status", target, "error", err)
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	booking.Status = target
	booking.UpdatedAt = time.Now().UTC()

	s.cfg.Log.Info("Booking status updated",
		"id", id,
		"status", target,
		"actor_email", change.ActorEmail,
		"actor_role", change.ActorRole,
	)
	s.publishEvent(events.TypeBookingStatusChanged, booking)
	return booking, nil
}

// authorizeTransition enforces who may move a booking where: only the owning
// provider confirms or completes; the booking's customer or that provider
// cancels.
func (s *bookingService) authorizeTransition(booking *model.Booking, change *model.StatusChange, target model.BookingStatus) error {
	actorEmail := sanitizer.NormalizeEmail(change.ActorEmail)

	switch target {
	case model.StatusConfirmed, model.StatusCompleted:
		if change.ActorRole != model.RoleProvider || actorEmail != booking.ProviderEmail {
			return apperrors.Forbidden(fmt.Sprintf(
				"Only the provider who owns the listing may mark a booking %s", target,
			))
		}
	case model.StatusCancelled:
		if actorEmail != booking.CustomerEmail && actorEmail != booking.ProviderEmail {
			return apperrors.Forbidden("Only the booking's customer or provider may cancel it")
		}
	default:
		return apperrors.InvalidTransition(fmt.Sprintf("Cannot transition a booking into %s", target))
	}

	return nil
}

// Cancel is the customer-facing cancellation path. Unlike SetStatus it is
// not idempotent: cancelling an already terminal booking fails. Scheduled
// bookings may not be cancelled inside the lead window.
func (s *bookingService) Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error) {
	if err := s.validator.ValidateCancelRequest(req); err != nil {
		s.cfg.Log.Warn("Cancel request validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Cancel request validation failed", map[string]any{"error": err.Error()})
	}
	actorEmail := sanitizer.NormalizeEmail(req.ActorEmail)

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status.IsTerminal() {
		return nil, apperrors.InvalidTransition(fmt.Sprintf(
			"Booking is already %s and cannot be cancelled", booking.Status,
		))
	}
	if actorEmail != booking.CustomerEmail && actorEmail != booking.ProviderEmail {
		return nil, apperrors.Forbidden("Only the booking's customer or provider may cancel it")
	}

	if booking.ScheduledAt != nil {
		remaining := time.Until(*booking.ScheduledAt)
		if remaining < s.cfg.CancelLeadWindow {
			return nil, apperrors.Policy(fmt.Sprintf(
				"Cannot cancel within %s of the scheduled time", s.cfg.CancelLeadWindow,
			))
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	booking.Status = model.StatusCancelled
	booking.UpdatedAt = time.Now().UTC()

	s.cfg.Log.Info("Booking cancelled",
		"id", id,
		"actor_email", actorEmail,
		"scheduled_at", booking.ScheduledAt,
	)
	s.publishEvent(events.TypeBookingCancelled, booking)
	return booking, nil
}
