package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"homeserve/internal/catalog/service"
	apperrors "homeserve/pkg/errors"
	httputil "homeserve/pkg/http"
	"homeserve/pkg/logger"
	"homeserve/pkg/model"
)

// ActorEmailHeader carries the identity of the caller. There is no auth
// layer in front of this service; the gateway is trusted to set it.
const ActorEmailHeader = "X-Client-Email"

type ListingHandler struct {
	service service.ListingService
	log     *logger.Logger
}

func NewListingHandler(service service.ListingService, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		log:     log,
	}
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var listing model.ServiceListing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &listing); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, listing); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ListingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	listing, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, listing); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ListingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	query := r.URL.Query()
	filter := &model.ListingFilter{
		ProviderEmail: query.Get("provider_email"),
		Category:      model.ServiceCategory(query.Get("category")),
	}
	if availStr := query.Get("available"); availStr != "" {
		avail, err := strconv.ParseBool(availStr)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid available parameter: "+availStr)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
			}
			return
		}
		filter.Available = &avail
	}

	listings, total, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, listings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.ServiceListingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), id, r.Header.Get(ActorEmailHeader), &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ListingHandler) SetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var body struct {
		IsAvailable *bool `json:"is_available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsAvailable == nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Request body must contain boolean 'is_available'",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetAvailability", "error", writeErr)
		}
		return
	}

	if err := h.service.SetAvailability(r.Context(), id, r.Header.Get(ActorEmailHeader), *body.IsAvailable); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetAvailability", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id, r.Header.Get(ActorEmailHeader)); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ListingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/services", h.Create)
	router.GET("/api/v1/services", h.GetAll)
	router.GET("/api/v1/services/id/:id", h.GetByID)
	router.PATCH("/api/v1/services/id/:id", h.Update)
	router.PUT("/api/v1/services/id/:id/availability", h.SetAvailability)
	router.DELETE("/api/v1/services/id/:id", h.Delete)
}
