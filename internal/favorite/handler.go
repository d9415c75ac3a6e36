package favorite

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/pkg/middleware"
	"github.com/joinup-app/joinup/pkg/response"
)

// Handler handles HTTP requests for favorite operations
type Handler struct {
	service *Service
	auth    *middleware.Auth
}

// NewHandler creates a new favorite handler with dependencies injected
func NewHandler(service *Service, auth *middleware.Auth) *Handler {
	return &Handler{service: service, auth: auth}
}

// Routes returns the router for favorite endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.auth.RequireUser)

	r.Post("/", h.Add)
	r.Get("/", h.List)
	r.Delete("/{eventId}", h.Remove)

	return r
}

// Add handles POST /favorites
// @Summary      Bookmark an event
// @Tags         favorites
// @Accept       json
// @Produce      json
// @Param        request body AddRequest true "Favorite request"
// @Success      201 {object} response.APIResponse{data=Favorite}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /favorites [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	eventID, err := primitive.ObjectIDFromHex(req.EventID)
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	favorite, err := h.service.Add(r.Context(), userID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrAlreadyFavorite):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to add favorite")
		}
		return
	}
	response.JSON(w, http.StatusCreated, favorite)
}

// List handles GET /favorites
// @Summary      List the caller's bookmarked events
// @Tags         favorites
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Response}
// @Router       /favorites [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	favorites, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list favorites")
		return
	}
	response.JSON(w, http.StatusOK, favorites)
}

// Remove handles DELETE /favorites/{eventId}
// @Summary      Remove a bookmark
// @Tags         favorites
// @Produce      json
// @Param        eventId path string true "Event ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /favorites/{eventId} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventId"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	if err := h.service.Remove(r.Context(), userID, eventID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to remove favorite")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Favorite removed successfully"})
}
