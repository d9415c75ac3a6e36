package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joinup-app/joinup/pkg/middleware"
	"github.com/joinup-app/joinup/pkg/response"
)

// Handler handles HTTP requests for profile operations
type Handler struct {
	service *Service
	auth    *middleware.Auth
}

// NewHandler creates a new user handler with dependencies injected
func NewHandler(service *Service, auth *middleware.Auth) *Handler {
	return &Handler{service: service, auth: auth}
}

// Routes returns the router for user endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.auth.RequireUser)

	r.Get("/me", h.Me)
	r.Put("/profile", h.UpdateProfile)

	return r
}

// Me handles GET /users/me
// @Summary      Get own profile
// @Description  Get the authenticated user's profile
// @Tags         users
// @Produce      json
// @Success      200 {object} response.APIResponse{data=ProfileResponse}
// @Failure      401 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	u, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get profile")
		return
	}

	response.JSON(w, http.StatusOK, u.ToProfileResponse())
}

// UpdateProfile handles PUT /users/profile
// @Summary      Update own profile
// @Description  Update the about text and optionally replace the avatar (multipart form)
// @Tags         users
// @Accept       mpfd
// @Produce      json
// @Param        about_me formData string false "About text"
// @Param        avatar formData file false "Avatar image"
// @Success      200 {object} response.APIResponse{data=ProfileResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /users/profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	var aboutMe *string
	if v := r.FormValue("about_me"); v != "" {
		aboutMe = &v
	}

	file, _, err := r.FormFile("avatar")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		response.BadRequest(w, "Invalid avatar file")
		return
	}
	if file != nil {
		defer file.Close()
	}

	u, err := h.service.UpdateProfile(r.Context(), userID, aboutMe, file)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update profile")
		return
	}

	response.JSON(w, http.StatusOK, u.ToProfileResponse())
}
