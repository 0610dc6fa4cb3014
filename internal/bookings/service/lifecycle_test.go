package service

import (
	"context"
	"testing"
	"time"

	apperrors "homeserve/pkg/errors"
	"homeserve/pkg/model"
)

func providerChange(status string) *model.StatusChange {
	return &model.StatusChange{
		Status:     status,
		ActorEmail: providerEmail,
		ActorRole:  model.RoleProvider,
	}
}

func customerChange(status string) *model.StatusChange {
	return &model.StatusChange{
		Status:     status,
		ActorEmail: customerEmail,
		ActorRole:  model.RoleCustomer,
	}
}

// ────────────────────────────────────────────────
// SetStatus: state machine
// ────────────────────────────────────────────────

func TestSetStatus_ForwardTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   model.BookingStatus
		change *model.StatusChange
		want   model.BookingStatus
	}{
		{"pending to confirmed", model.StatusPending, providerChange("confirmed"), model.StatusConfirmed},
		{"pending to completed", model.StatusPending, providerChange("completed"), model.StatusCompleted},
		{"pending to cancelled by customer", model.StatusPending, customerChange("cancelled"), model.StatusCancelled},
		{"confirmed to completed", model.StatusConfirmed, providerChange("completed"), model.StatusCompleted},
		{"confirmed to cancelled by provider", model.StatusConfirmed, providerChange("cancelled"), model.StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repoWithBooking(storedBooking(tt.from, nil))
			var persisted model.BookingStatus
			repo.updateStatusFunc = func(ctx context.Context, id string, status model.BookingStatus) error {
				persisted = status
				return nil
			}
			svc := newTestService(repo, nil, nil, nil)

			updated, err := svc.SetStatus(context.Background(), bookingID, tt.change)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if updated.Status != tt.want {
				t.Errorf("expected status %s, got %s", tt.want, updated.Status)
			}
			if persisted != tt.want {
				t.Errorf("expected persisted status %s, got %s", tt.want, persisted)
			}
		})
	}
}

func TestSetStatus_TerminalStatesAreFrozen(t *testing.T) {
	for _, from := range []model.BookingStatus{model.StatusCompleted, model.StatusCancelled} {
		for _, target := range []string{"pending", "confirmed", "completed", "cancelled", "accepted", "rejected"} {
			parsed, err := model.ParseBookingStatus(target)
			if err != nil {
				t.Fatalf("bad fixture status %q: %v", target, err)
			}
			if parsed == from {
				continue
			}

			t.Run(string(from)+" to "+target, func(t *testing.T) {
				repo := repoWithBooking(storedBooking(from, nil))
				repo.updateStatusFunc = func(ctx context.Context, id string, status model.BookingStatus) error {
					t.Error("terminal booking must not be written")
					return nil
				}
				svc := newTestService(repo, nil, nil, nil)

				_, err := svc.SetStatus(context.Background(), bookingID, providerChange(target))
				expectCode(t, err, apperrors.CodeInvalidTransition)
			})
		}
	}
}

func TestSetStatus_SameStatusIsNoOp(t *testing.T) {
	for _, status := range []model.BookingStatus{model.StatusPending, model.StatusConfirmed, model.StatusCompleted, model.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			repo := repoWithBooking(storedBooking(status, nil))
			repo.updateStatusFunc = func(ctx context.Context, id string, s model.BookingStatus) error {
				t.Error("no-op must not write")
				return nil
			}
			svc := newTestService(repo, nil, nil, nil)

			updated, err := svc.SetStatus(context.Background(), bookingID, providerChange(string(status)))
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", status, err)
			}
			if updated.Status != status {
				t.Errorf("expected status unchanged at %s, got %s", status, updated.Status)
			}
		})
	}
}

func TestSetStatus_LegacyVocabulary(t *testing.T) {
	// "accepted" must land as confirmed, "rejected" as cancelled.
	repo := repoWithBooking(storedBooking(model.StatusPending, nil))
	var persisted model.BookingStatus
	repo.updateStatusFunc = func(ctx context.Context, id string, status model.BookingStatus) error {
		persisted = status
		return nil
	}
	svc := newTestService(repo, nil, nil, nil)

	updated, err := svc.SetStatus(context.Background(), bookingID, providerChange("accepted"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusConfirmed || persisted != model.StatusConfirmed {
		t.Errorf("expected accepted to map to confirmed, got %s (persisted %s)", updated.Status, persisted)
	}

	repo2 := repoWithBooking(storedBooking(model.StatusPending, nil))
	repo2.updateStatusFunc = func(ctx context.Context, id string, status model.BookingStatus) error {
		persisted = status
		return nil
	}
	svc2 := newTestService(repo2, nil, nil, nil)

	updated, err = svc2.SetStatus(context.Background(), bookingID, providerChange("rejected"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusCancelled || persisted != model.StatusCancelled {
		t.Errorf("expected rejected to map to cancelled, got %s (persisted %s)", updated.Status, persisted)
	}
}

func TestSetStatus_UnknownStatus(t *testing.T) {
	repo := repoWithBooking(storedBooking(model.StatusPending, nil))
	svc := newTestService(repo, nil, nil, nil)

	for _, bad := range []string{"in_progress", "CONFIRMED", "done"} {
		_, err := svc.SetStatus(context.Background(), bookingID, providerChange(bad))
		expectCode(t, err, apperrors.CodeInvalidTransition)
	}
}

// ────────────────────────────────────────────────
// SetStatus: authorization
// ────────────────────────────────────────────────

func TestSetStatus_CustomerCannotConfirmOrComplete(t *testing.T) {
	for _, target := range []string{"confirmed", "completed"} {
		t.Run(target, func(t *testing.T) {
			repo := repoWithBooking(storedBooking(model.StatusPending, nil))
			svc := newTestService(repo, nil, nil, nil)

			_, err := svc.SetStatus(context.Background(), bookingID, customerChange(target))
			expectCode(t, err, apperrors.CodeForbidden)
		})
	}
}

func TestSetStatus_ForeignProviderForbidden(t *testing.T) {
	repo := repoWithBooking(storedBooking(model.StatusPending, nil))
	svc := newTestService(repo, nil, nil, nil)

	change := &model.StatusChange{
		Status:     "confirmed",
		ActorEmail: "other@pro.example",
		ActorRole:  model.RoleProvider,
	}
	_, err := svc.SetStatus(context.Background(), bookingID, change)
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestSetStatus_StrangerCannotCancel(t *testing.T) {
	repo := repoWithBooking(storedBooking(model.StatusPending, nil))
	svc := newTestService(repo, nil, nil, nil)

	change := &model.StatusChange{
		Status:     "cancelled",
		ActorEmail: "stranger@other.example",
		ActorRole:  model.RoleCustomer,
	}
	_, err := svc.SetStatus(context.Background(), bookingID, change)
	expectCode(t, err, apperrors.CodeForbidden)
}

// ────────────────────────────────────────────────
// Cancel
// ────────────────────────────────────────────────

func TestCancel_InsideLeadWindowFails(t *testing.T) {
	repo := repoWithBooking(storedBooking(model.StatusConfirmed, inFuture(23*time.Hour)))
	svc := newTestService(repo, nil, nil, nil)

	_, err := svc.Cancel(context.Background(), bookingID, &model.CancelRequest{ActorEmail: customerEmail})
	expectCode(t, err, apperrors.CodePolicy)
}

func TestCancel_OutsideLeadWindowSucceeds(t *testing.T) {
	repo := repoWithBooking(storedBooking(model.StatusConfirmed, inFuture(25*time.Hour)))
	var persisted model.BookingStatus
	repo.updateStatusFunc = func(ctx context.Context, id string, status model.BookingStatus) error {
		persisted = status
		return nil
	}
	svc := newTestService(repo, nil, nil, nil)

	updated, err := svc.Cancel(context.Background(), bookingID, &model.CancelRequest{ActorEmail: customerEmail})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusCancelled || persisted != model.StatusCancelled {
		t.Errorf("expected cancelled, got %s (persisted %s)", updated.Status, persisted)
	}
}

func TestCancel_NoScheduleCancelsAnytime(t *testing.T) {
	repo := repoWithBooking(storedBooking(model.StatusPending, nil))
	svc := newTestService(repo, nil, nil, nil)

	updated, err := svc.Cancel(context.Background(), bookingID, &model.CancelRequest{ActorEmail: customerEmail})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusCancelled {
		t.Errorf("expected cancelled, got %s", updated.Status)
	}
}

func TestCancel_TerminalFails(t *testing.T) {
	for _, status := range []model.BookingStatus{model.StatusCompleted, model.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			repo := repoWithBooking(storedBooking(status, inFuture(48*time.Hour)))
			svc := newTestService(repo, nil, nil, nil)

			_, err := svc.Cancel(context.Background(), bookingID, &model.CancelRequest{ActorEmail: customerEmail})
			expectCode(t, err, apperrors.CodeInvalidTransition)
		})
	}
}

func TestCancel_StrangerForbidden(t *testing.T) {
	repo := repoWithBooking(storedBooking(model.StatusConfirmed, inFuture(48*time.Hour)))
	svc := newTestService(repo, nil, nil, nil)

	_, err := svc.Cancel(context.Background(), bookingID, &model.CancelRequest{ActorEmail: "stranger@other.example"})
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestCancel_ProviderMayCancel(t *testing.T) {
	repo := repoWithBooking(storedBooking(model.StatusConfirmed, inFuture(48*time.Hour)))
	svc := newTestService(repo, nil, nil, nil)

	updated, err := svc.Cancel(context.Background(), bookingID, &model.CancelRequest{ActorEmail: providerEmail})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusCancelled {
		t.Errorf("expected cancelled, got %s", updated.Status)
	}
}
