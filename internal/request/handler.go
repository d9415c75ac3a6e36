package request

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/pkg/middleware"
	"github.com/joinup-app/joinup/pkg/response"
)

// Handler handles HTTP requests for join-request operations
type Handler struct {
	service *Service
	auth    *middleware.Auth
}

// NewHandler creates a new request handler with dependencies injected
func NewHandler(service *Service, auth *middleware.Auth) *Handler {
	return &Handler{service: service, auth: auth}
}

// Routes returns the router for request endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.auth.RequireUser)

	r.Post("/", h.Create)
	r.Get("/user", h.Mine)
	r.Get("/received", h.Received)
	r.Get("/event/{eventId}", h.ByEvent)
	r.Put("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Cancel)

	return r
}

// Create handles POST /requests
// @Summary      Request to join an event
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Join request"
// @Success      201 {object} response.APIResponse{data=Request}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /requests [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	eventID, err := primitive.ObjectIDFromHex(req.EventID)
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	created, err := h.service.Create(r.Context(), eventID, userID)
	if err != nil {
		h.writeError(w, err, "Failed to create request")
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

// Mine handles GET /requests/user
// @Summary      List requests sent by the caller
// @Tags         requests
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]SentResponse}
// @Router       /requests/user [get]
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	requests, err := h.service.Mine(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list requests")
		return
	}
	response.JSON(w, http.StatusOK, requests)
}

// Received handles GET /requests/received
// @Summary      List requests received across the caller's events
// @Tags         requests
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]ReceivedResponse}
// @Router       /requests/received [get]
func (h *Handler) Received(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	requests, err := h.service.Received(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list received requests")
		return
	}
	response.JSON(w, http.StatusOK, requests)
}

// ByEvent handles GET /requests/event/{eventId}
// @Summary      List requests for one event
// @Tags         requests
// @Produce      json
// @Param        eventId path string true "Event ID"
// @Success      200 {object} response.APIResponse{data=[]ReceivedResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /requests/event/{eventId} [get]
func (h *Handler) ByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventId"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	requests, err := h.service.ByEvent(r.Context(), eventID)
	if err != nil {
		response.InternalError(w, "Failed to list requests")
		return
	}
	response.JSON(w, http.StatusOK, requests)
}

// UpdateStatus handles PUT /requests/{id}/status
// @Summary      Accept or reject a request
// @Description  Acceptance adds the requester to the participant list, guarded by the event capacity.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id path string true "Request ID"
// @Param        request body UpdateStatusRequest true "New status"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /requests/{id}/status [put]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.UpdateStatus(r.Context(), id, userID, Status(req.Status)); err != nil {
		h.writeError(w, err, "Failed to update request")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Request updated successfully"})
}

// Cancel handles DELETE /requests/{id}
// @Summary      Cancel a pending request
// @Tags         requests
// @Produce      json
// @Param        id path string true "Request ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /requests/{id} [delete]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid request ID")
		return
	}

	if err := h.service.Cancel(r.Context(), id, userID); err != nil {
		h.writeError(w, err, "Failed to cancel request")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Request canceled successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrEventNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotEventCreator), errors.Is(err, ErrNotRequester), errors.Is(err, ErrInformativeEvent):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrEventClosed),
		errors.Is(err, ErrAlreadyParticipant),
		errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrEventFull),
		errors.Is(err, ErrTooManyPending),
		errors.Is(err, ErrNotPending),
		errors.Is(err, ErrInvalidStatus):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
