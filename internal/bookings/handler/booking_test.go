package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "homeserve/pkg/errors"
	"homeserve/pkg/logger"
	"homeserve/pkg/model"
)

// Mock service for testing
type mockBookingService struct {
	createFunc      func(ctx context.Context, booking *model.Booking) error
	createBatchFunc func(ctx context.Context, bookings []*model.Booking) ([]*model.BatchBookingResult, error)
	setStatusFunc   func(ctx context.Context, id string, change *model.StatusChange) (*model.Booking, error)
	cancelFunc      func(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error)
	deleteFunc      func(ctx context.Context, id string, actorEmail string) error
}

func (m *mockBookingService) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingService) CreateBatch(ctx context.Context, bookings []*model.Booking) ([]*model.BatchBookingResult, error) {
	if m.createBatchFunc != nil {
		return m.createBatchFunc(ctx, bookings)
	}
	return nil, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) GetByCustomer(ctx context.Context, customerEmail string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) GetByProvider(ctx context.Context, providerEmail string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) Delete(ctx context.Context, id string, actorEmail string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, actorEmail)
	}
	return nil
}

func (m *mockBookingService) SetStatus(ctx context.Context, id string, change *model.StatusChange) (*model.Booking, error) {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, change)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id, req)
	}
	return &model.Booking{ID: id, Status: model.StatusCancelled}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func TestCreate_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"validation", apperrors.Validation("bad input", nil), http.StatusBadRequest},
		{"not found", apperrors.NotFoundWithID("Service listing", "x"), http.StatusNotFound},
		{"conflict", apperrors.Conflict("slot taken"), http.StatusConflict},
		{"policy", apperrors.Policy("listing unavailable"), http.StatusBadRequest},
		{"internal", apperrors.Internal("storage down", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mockBookingService{
				createFunc: func(ctx context.Context, booking *model.Booking) error {
					return tt.serviceErr
				},
			}
			handler := NewBookingHandler(mockService, testLogger())

			body := `{"service_id":"68b000000000000000000001","customer_email":"cust@home.example"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.Create(w, req, httprouter.Params{})

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	handler := NewBookingHandler(&mockBookingService{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.Create(w, req, httprouter.Params{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestCreateBatch_AlwaysOKWithPerItemResults(t *testing.T) {
	mockService := &mockBookingService{
		createBatchFunc: func(ctx context.Context, bookings []*model.Booking) ([]*model.BatchBookingResult, error) {
			return []*model.BatchBookingResult{
				{Index: 0, Booking: &model.Booking{ID: "a"}},
				{Index: 1, Error: "slot taken", Code: apperrors.CodeConflict},
			}, nil
		},
	}
	handler := NewBookingHandler(mockService, testLogger())

	body := `[{"service_id":"x"},{"service_id":"y"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/batch", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateBatch(w, req, httprouter.Params{})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for partial failure, got %d", w.Code)
	}

	var resp struct {
		Data []model.BatchBookingResult `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Data))
	}
	if resp.Data[1].Code != apperrors.CodeConflict {
		t.Errorf("expected conflict code on item 1, got %q", resp.Data[1].Code)
	}
}

func TestSetStatus_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"invalid transition", apperrors.InvalidTransition("terminal"), http.StatusBadRequest},
		{"forbidden", apperrors.Forbidden("not the provider"), http.StatusForbidden},
		{"not found", apperrors.NotFoundWithID("Booking", "x"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mockBookingService{
				setStatusFunc: func(ctx context.Context, id string, change *model.StatusChange) (*model.Booking, error) {
					return nil, tt.serviceErr
				},
			}
			handler := NewBookingHandler(mockService, testLogger())

			body := `{"status":"confirmed","actor_email":"pro@fixit.example","actor_role":"provider"}`
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/id/abc/status", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.SetStatus(w, req, httprouter.Params{{Key: "id", Value: "abc"}})

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestList_RequiresExactlyOneIdentity(t *testing.T) {
	handler := NewBookingHandler(&mockBookingService{}, testLogger())

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"neither", "", http.StatusBadRequest},
		{"both", "?customer_email=a@b.c&provider_email=d@e.f", http.StatusBadRequest},
		{"customer only", "?customer_email=a@b.c", http.StatusOK},
		{"provider only", "?provider_email=d@e.f", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.List(w, req, httprouter.Params{})

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestDelete_PassesActorHeader(t *testing.T) {
	var gotActor string
	mockService := &mockBookingService{
		deleteFunc: func(ctx context.Context, id string, actorEmail string) error {
			gotActor = actorEmail
			return nil
		},
	}
	handler := NewBookingHandler(mockService, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/id/abc", nil)
	req.Header.Set(ActorEmailHeader, "cust@home.example")
	w := httptest.NewRecorder()

	handler.Delete(w, req, httprouter.Params{{Key: "id", Value: "abc"}})

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}
	if gotActor != "cust@home.example" {
		t.Errorf("expected actor from header, got %q", gotActor)
	}
}
