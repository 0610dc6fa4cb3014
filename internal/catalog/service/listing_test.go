package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	catalogerrors "homeserve/internal/catalog/errors"
	"homeserve/internal/catalog/validator"
	"homeserve/pkg/config"
	mongotx "homeserve/pkg/db/mongo"
	apperrors "homeserve/pkg/errors"
	"homeserve/pkg/logger"
	"homeserve/pkg/model"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockListingRepository struct {
	createFunc   func(ctx context.Context, listing *model.ServiceListing) error
	findByIDFunc func(ctx context.Context, id string) (*model.ServiceListing, error)
	findAllFunc  func(ctx context.Context, filter *model.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, error)
	countFunc    func(ctx context.Context, filter *model.ListingFilter) (int64, error)
	updateFunc   func(ctx context.Context, id string, listing *model.ServiceListing) (*mongo.UpdateResult, error)
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockListingRepository) Create(ctx context.Context, listing *model.ServiceListing) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, listing)
	}
	listing.ID = "68b000000000000000000001"
	return nil
}

func (m *mockListingRepository) FindByID(ctx context.Context, id string) (*model.ServiceListing, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", catalogerrors.ErrNotFound, id)
}

func (m *mockListingRepository) FindAll(ctx context.Context, filter *model.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, limit, offset)
	}
	return []*model.ServiceListing{}, nil
}

func (m *mockListingRepository) Count(ctx context.Context, filter *model.ListingFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockListingRepository) FindIDsByProvider(ctx context.Context, providerEmail string) ([]string, error) {
	return nil, nil
}

func (m *mockListingRepository) Update(ctx context.Context, id string, listing *model.ServiceListing) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, listing)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockListingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockListingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func validListing() *model.ServiceListing {
	avail := true
	return &model.ServiceListing{
		Category:         model.CategoryPlumbing,
		Name:             "Tap and Pipe Repair",
		Price:            49.99,
		DurationEstimate: "2 hours",
		Description:      "Fixing leaking taps, burst pipes and blocked drains.",
		ProviderEmail:    "pro@fixit.example",
		IsAvailable:      &avail,
	}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestListingCreate_Valid(t *testing.T) {
	cfg := testConfig()
	svc := NewListingService(&mockListingRepository{}, validator.NewListingValidator(cfg.Log), cfg)

	listing := validListing()
	listing.ProviderEmail = "  PRO@Fixit.Example "

	if err := svc.Create(context.Background(), listing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.ID == "" {
		t.Error("expected ID to be populated after create")
	}
	if listing.ProviderEmail != "pro@fixit.example" {
		t.Errorf("expected provider email to be normalized, got %q", listing.ProviderEmail)
	}
}

func TestListingCreate_ValidationFailures(t *testing.T) {
	cfg := testConfig()
	svc := NewListingService(&mockListingRepository{}, validator.NewListingValidator(cfg.Log), cfg)

	tests := []struct {
		name   string
		mutate func(l *model.ServiceListing)
	}{
		{"missing name", func(l *model.ServiceListing) { l.Name = "" }},
		{"negative price", func(l *model.ServiceListing) { l.Price = -5 }},
		{"unknown category", func(l *model.ServiceListing) { l.Category = "rocketry" }},
		{"bad email", func(l *model.ServiceListing) { l.ProviderEmail = "not-an-email" }},
		{"bad duration", func(l *model.ServiceListing) { l.DurationEstimate = "soonish" }},
		{"short description", func(l *model.ServiceListing) { l.Description = "short" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := validListing()
			tt.mutate(listing)

			err := svc.Create(context.Background(), listing)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeValidation {
				t.Errorf("expected %s error, got %v", apperrors.CodeValidation, err)
			}
		})
	}
}

func TestListingCreate_NormalizesCategoryCase(t *testing.T) {
	cfg := testConfig()
	svc := NewListingService(&mockListingRepository{}, validator.NewListingValidator(cfg.Log), cfg)

	listing := validListing()
	listing.Category = "  Plumbing "

	if err := svc.Create(context.Background(), listing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.Category != model.CategoryPlumbing {
		t.Errorf("expected category normalized to %q, got %q", model.CategoryPlumbing, listing.Category)
	}
}

// ────────────────────────────────────────────────
// GetAll
// ────────────────────────────────────────────────

func TestListingGetAll_ConcurrentCountAndFind(t *testing.T) {
	cfg := testConfig()
	mockRepo := &mockListingRepository{
		countFunc: func(ctx context.Context, filter *model.ListingFilter) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, filter *model.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.ServiceListing{
				{ID: "1", Name: "Listing 1"},
				{ID: "2", Name: "Listing 2"},
			}, nil
		},
	}
	svc := NewListingService(mockRepo, validator.NewListingValidator(cfg.Log), cfg)

	for i := 0; i < 10; i++ {
		listings, count, err := svc.GetAll(context.Background(), nil, 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 42 {
			t.Errorf("iteration %d: expected count 42, got %d", i, count)
		}
		if len(listings) != 2 {
			t.Errorf("iteration %d: expected 2 listings, got %d", i, len(listings))
		}
	}
}

func TestListingGetAll_LimitNormalization(t *testing.T) {
	cfg := testConfig()
	mockRepo := &mockListingRepository{
		findAllFunc: func(ctx context.Context, filter *model.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, error) {
			if limit <= 0 || limit > config.DefaultPaginationLimit {
				t.Errorf("limit not normalized: %d", limit)
			}
			if offset < 0 {
				t.Errorf("offset not normalized: %d", offset)
			}
			return nil, nil
		},
	}
	svc := NewListingService(mockRepo, validator.NewListingValidator(cfg.Log), cfg)

	for _, limit := range []int{-1, 0, 5, 1000} {
		if _, _, err := svc.GetAll(context.Background(), nil, limit, -3); err != nil {
			t.Fatalf("unexpected error for limit %d: %v", limit, err)
		}
	}
}

func TestListingGetAll_RejectsUnknownCategoryFilter(t *testing.T) {
	cfg := testConfig()
	svc := NewListingService(&mockListingRepository{}, validator.NewListingValidator(cfg.Log), cfg)

	_, _, err := svc.GetAll(context.Background(), &model.ListingFilter{Category: "rocketry"}, 10, 0)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s error, got %v", apperrors.CodeInvalidInput, err)
	}
}

// ────────────────────────────────────────────────
// Update / ownership
// ────────────────────────────────────────────────

func TestListingUpdate_DeniedForNonOwner(t *testing.T) {
	cfg := testConfig()
	existing := validListing()
	existing.ID = "68b000000000000000000001"

	mockRepo := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceListing, error) {
			return existing, nil
		},
	}
	svc := NewListingService(mockRepo, validator.NewListingValidator(cfg.Log), cfg)

	name := "Renamed Service Anything"
	err := svc.Update(context.Background(), existing.ID, "intruder@other.example", &model.ServiceListingUpdate{Name: name})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected %s error, got %v", apperrors.CodeForbidden, err)
	}
}

func TestListingUpdate_OwnerEmailImmutable(t *testing.T) {
	cfg := testConfig()
	existing := validListing()
	existing.ID = "68b000000000000000000001"

	var updated *model.ServiceListing
	mockRepo := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceListing, error) {
			copied := *existing
			return &copied, nil
		},
		updateFunc: func(ctx context.Context, id string, listing *model.ServiceListing) (*mongo.UpdateResult, error) {
			updated = listing
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := NewListingService(mockRepo, validator.NewListingValidator(cfg.Log), cfg)

	price := 99.0
	err := svc.Update(context.Background(), existing.ID, existing.ProviderEmail, &model.ServiceListingUpdate{Price: &price})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil {
		t.Fatal("expected repository update to be called")
	}
	if updated.Price != 99.0 {
		t.Errorf("expected price 99.0, got %v", updated.Price)
	}
	if updated.ProviderEmail != existing.ProviderEmail {
		t.Errorf("provider email must not change on update, got %q", updated.ProviderEmail)
	}
	if updated.Category != existing.Category {
		t.Errorf("category must not change on update, got %q", updated.Category)
	}
}

func TestListingUpdate_NotFound(t *testing.T) {
	cfg := testConfig()
	svc := NewListingService(&mockListingRepository{}, validator.NewListingValidator(cfg.Log), cfg)

	err := svc.Update(context.Background(), "68b000000000000000000009", "pro@fixit.example", &model.ServiceListingUpdate{})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected %s error, got %v", apperrors.CodeNotFound, err)
	}
}

// ────────────────────────────────────────────────
// SetAvailability / Delete
// ────────────────────────────────────────────────

func TestListingSetAvailability(t *testing.T) {
	cfg := testConfig()
	existing := validListing()
	existing.ID = "68b000000000000000000001"

	var updated *model.ServiceListing
	mockRepo := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceListing, error) {
			copied := *existing
			return &copied, nil
		},
		updateFunc: func(ctx context.Context, id string, listing *model.ServiceListing) (*mongo.UpdateResult, error) {
			updated = listing
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := NewListingService(mockRepo, validator.NewListingValidator(cfg.Log), cfg)

	if err := svc.SetAvailability(context.Background(), existing.ID, existing.ProviderEmail, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil || updated.IsAvailable == nil || *updated.IsAvailable {
		t.Error("expected listing to be marked unavailable")
	}
}

func TestListingDelete_DeniedForNonOwner(t *testing.T) {
	cfg := testConfig()
	existing := validListing()
	existing.ID = "68b000000000000000000001"

	mockRepo := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceListing, error) {
			return existing, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			t.Error("delete must not be called for non-owner")
			return nil
		},
	}
	svc := NewListingService(mockRepo, validator.NewListingValidator(cfg.Log), cfg)

	err := svc.Delete(context.Background(), existing.ID, "intruder@other.example")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected %s error, got %v", apperrors.CodeForbidden, err)
	}
}

func TestListingDelete_Owner(t *testing.T) {
	cfg := testConfig()
	existing := validListing()
	existing.ID = "68b000000000000000000001"

	deleted := false
	mockRepo := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceListing, error) {
			return existing, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := NewListingService(mockRepo, validator.NewListingValidator(cfg.Log), cfg)

	if err := svc.Delete(context.Background(), existing.ID, existing.ProviderEmail); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected repository delete to be called")
	}
}
