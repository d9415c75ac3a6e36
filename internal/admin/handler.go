package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/internal/event"
	"github.com/joinup-app/joinup/internal/user"
	"github.com/joinup-app/joinup/pkg/middleware"
	"github.com/joinup-app/joinup/pkg/response"
)

// EventModeration is the event surface exposed to admins.
type EventModeration interface {
	ListAll(ctx context.Context) ([]*event.Response, error)
	DeleteAny(ctx context.Context, id primitive.ObjectID) error
}

// Handler handles HTTP requests for moderation. All routes require the
// administrator flag.
type Handler struct {
	service *Service
	events  EventModeration
	auth    *middleware.Auth
}

// NewHandler creates a new admin handler with dependencies injected
func NewHandler(service *Service, events EventModeration, auth *middleware.Auth) *Handler {
	return &Handler{service: service, events: events, auth: auth}
}

// Routes returns the router for admin endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.auth.RequireUser)
	r.Use(h.auth.RequireAdmin)

	r.Get("/users", h.ListUsers)
	r.Get("/events", h.ListEvents)
	r.Delete("/events/{id}", h.DeleteEvent)
	r.Put("/users/{id}/toggle", h.ToggleUser)

	return r
}

// ListUsers handles GET /admin/users
// @Summary      List all users
// @Tags         admin
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]user.ProfileResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list users")
		return
	}

	resps := make([]*user.ProfileResponse, len(users))
	for i, u := range users {
		resps[i] = u.ToProfileResponse()
	}
	response.JSON(w, http.StatusOK, resps)
}

// ListEvents handles GET /admin/events
// @Summary      List all events
// @Tags         admin
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]event.Response}
// @Failure      403 {object} response.APIResponse
// @Router       /admin/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListAll(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list events")
		return
	}
	response.JSON(w, http.StatusOK, events)
}

// DeleteEvent handles DELETE /admin/events/{id}
// @Summary      Delete any event
// @Description  Removes the event with the same cascade as an owner delete
// @Tags         admin
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /admin/events/{id} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	if err := h.events.DeleteAny(r.Context(), id); err != nil {
		if errors.Is(err, event.ErrNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete event")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Event deleted"})
}

// ToggleUser handles PUT /admin/users/{id}/toggle
// @Summary      Suspend or reactivate a user
// @Tags         admin
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /admin/users/{id}/toggle [put]
func (h *Handler) ToggleUser(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())

	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.service.ToggleActive(r.Context(), targetID, actorID); err != nil {
		switch {
		case errors.Is(err, ErrSelfAction):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrTargetAdmin):
			response.Forbidden(w, err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to update user")
		}
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "User status updated"})
}
