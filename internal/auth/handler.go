package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joinup-app/joinup/pkg/middleware"
	"github.com/joinup-app/joinup/pkg/response"
)

// Handler handles HTTP requests for authentication
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for auth endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	return r
}

// Register handles POST /auth/register
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		response.BadRequest(w, "Username, email and password are required")
		return
	}

	if _, err := h.service.Register(r.Context(), &req); err != nil {
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to register user")
		return
	}

	response.JSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

// Login handles POST /auth/login
// @Summary      Log in
// @Description  Log in with username or email. Sets an httpOnly session cookie and returns the token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=LoginResponse}
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	u, token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(w, err.Error())
		case errors.Is(err, ErrUserSuspended):
			response.Forbidden(w, "Account suspended. Contact support or wait for reactivation.")
		default:
			response.InternalError(w, "Failed to log in")
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.service.TokenTTL().Seconds()),
	})

	response.JSON(w, http.StatusOK, &LoginResponse{
		ID:       u.ID.Hex(),
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
		Token:    token,
	})
}

// Logout handles POST /auth/logout
// @Summary      Log out
// @Description  Clears the session cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})

	response.JSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
