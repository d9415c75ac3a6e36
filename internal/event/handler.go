package event

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/pkg/middleware"
	"github.com/joinup-app/joinup/pkg/response"
)

const maxUploadBytes = 10 << 20

// Handler handles HTTP requests for event operations
type Handler struct {
	service *Service
	auth    *middleware.Auth
}

// NewHandler creates a new event handler with dependencies injected
func NewHandler(service *Service, auth *middleware.Auth) *Handler {
	return &Handler{service: service, auth: auth}
}

// Routes returns the router for event endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	// Public listings
	r.Get("/", h.ListOpen)
	r.Get("/upcoming", h.Upcoming)
	r.Get("/nearby", h.Nearby)
	r.Get("/{id}", h.GetByID)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.RequireUser)

		r.Post("/", h.Publish)
		r.Get("/user", h.Mine)
		r.Get("/participating", h.Participating)
		r.Put("/{id}", h.Update)
		r.Put("/{id}/status", h.ChangeStatus)
		r.Delete("/{id}", h.Delete)
		r.Delete("/{id}/leave", h.Leave)
		r.Delete("/{id}/participants/{participantId}", h.RemoveParticipant)
	})

	return r
}

// ListOpen handles GET /events
// @Summary      List open events
// @Tags         events
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Response}
// @Router       /events [get]
func (h *Handler) ListOpen(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListOpen(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list events")
		return
	}
	response.JSON(w, http.StatusOK, events)
}

// Upcoming handles GET /events/upcoming
// @Summary      List the next upcoming open events
// @Tags         events
// @Produce      json
// @Param        limit query int false "Maximum results" default(2)
// @Success      200 {object} response.APIResponse{data=[]Response}
// @Router       /events/upcoming [get]
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	events, err := h.service.Upcoming(r.Context(), limit)
	if err != nil {
		response.InternalError(w, "Failed to list upcoming events")
		return
	}
	response.JSON(w, http.StatusOK, events)
}

// Nearby handles GET /events/nearby
// @Summary      List open events near a point
// @Tags         events
// @Produce      json
// @Param        lat query number true "Latitude"
// @Param        lng query number true "Longitude"
// @Param        distance query number false "Distance in km" default(25)
// @Param        limit query int false "Maximum results"
// @Success      200 {object} response.APIResponse{data=[]Response}
// @Failure      400 {object} response.APIResponse
// @Router       /events/nearby [get]
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		response.BadRequest(w, "Latitude and longitude are required")
		return
	}

	distance, _ := strconv.ParseFloat(q.Get("distance"), 64)
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)

	events, err := h.service.Nearby(r.Context(), lat, lng, distance, limit)
	if err != nil {
		response.InternalError(w, "Failed to list nearby events")
		return
	}
	response.JSON(w, http.StatusOK, events)
}

// GetByID handles GET /events/{id}
// @Summary      Get event by ID
// @Tags         events
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse{data=Response}
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	event, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to get event")
		return
	}
	response.JSON(w, http.StatusOK, event)
}

// Publish handles POST /events
// @Summary      Publish a new event
// @Description  Create an event from a multipart form. The creator becomes the first participant.
// @Tags         events
// @Accept       mpfd
// @Produce      json
// @Param        title formData string true "Title"
// @Param        description formData string true "Description"
// @Param        location formData string true "Free-text location"
// @Param        date formData string true "Event date (RFC 3339)"
// @Param        category formData string true "Category"
// @Param        participation_type formData string false "participative or informative"
// @Param        max_participants formData int false "Capacity (required when participative)"
// @Param        lat formData number false "Latitude"
// @Param        lng formData number false "Longitude"
// @Param        image formData file false "Event image"
// @Success      201 {object} response.APIResponse{data=Event}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /events [post]
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	in, file, err := parsePublishForm(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if file != nil {
		defer file.Close()
	}

	event, err := h.service.Publish(r.Context(), userID, in, file)
	if err != nil {
		h.writeError(w, err, "Failed to create event")
		return
	}
	response.JSON(w, http.StatusCreated, event)
}

// Update handles PUT /events/{id}
// @Summary      Update an event
// @Description  Edit an owned event from a multipart form. A new image replaces the old one.
// @Tags         events
// @Accept       mpfd
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse{data=Event}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	in, file, err := parseUpdateForm(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if file != nil {
		defer file.Close()
	}

	event, err := h.service.Update(r.Context(), id, userID, in, file)
	if err != nil {
		h.writeError(w, err, "Failed to update event")
		return
	}
	response.JSON(w, http.StatusOK, event)
}

// ChangeStatus handles PUT /events/{id}/status
// @Summary      Toggle event status between open and close
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id path string true "Event ID"
// @Param        request body ChangeStatusRequest true "New status"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/status [put]
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.ChangeStatus(r.Context(), id, userID, Status(req.Status)); err != nil {
		h.writeError(w, err, "Failed to update event status")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Event status updated successfully"})
}

// Delete handles DELETE /events/{id}
// @Summary      Delete an owned event
// @Tags         events
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		h.writeError(w, err, "Failed to delete event")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}

// Mine handles GET /events/user
// @Summary      List events created by the caller
// @Tags         events
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Response}
// @Router       /events/user [get]
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	events, err := h.service.Mine(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list events")
		return
	}
	response.JSON(w, http.StatusOK, events)
}

// Participating handles GET /events/participating
// @Summary      List events the caller participates in
// @Tags         events
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Response}
// @Router       /events/participating [get]
func (h *Handler) Participating(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	events, err := h.service.Participating(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list participating events")
		return
	}
	response.JSON(w, http.StatusOK, events)
}

// Leave handles DELETE /events/{id}/leave
// @Summary      Leave an event
// @Tags         events
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/leave [delete]
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	if err := h.service.Leave(r.Context(), id, userID); err != nil {
		h.writeError(w, err, "Failed to leave event")
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "You have left the event successfully"})
}

// RemoveParticipant handles DELETE /events/{id}/participants/{participantId}
// @Summary      Remove a participant from an owned event
// @Description  Removes the participant and deletes every request they made for the event
// @Tags         events
// @Produce      json
// @Param        id path string true "Event ID"
// @Param        participantId path string true "Participant user ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/participants/{participantId} [delete]
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}
	participantID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "participantId"))
	if err != nil {
		response.BadRequest(w, "Invalid participant ID")
		return
	}

	deleted, err := h.service.RemoveParticipant(r.Context(), id, participantID, userID)
	if err != nil {
		h.writeError(w, err, "Failed to remove participant")
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message":          "Participant removed successfully",
		"requests_deleted": deleted,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotCreator):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrPastDate),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrFinished),
		errors.Is(err, ErrExpired),
		errors.Is(err, ErrNotParticipant),
		errors.Is(err, ErrCapacityRequired),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrMissingFields):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

func parsePublishForm(r *http.Request) (*PublishInput, multipart.File, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}

	in := &PublishInput{
		Title:             r.FormValue("title"),
		Description:       r.FormValue("description"),
		Location:          r.FormValue("location"),
		Category:          Category(r.FormValue("category")),
		ParticipationType: ParticipationType(r.FormValue("participation_type")),
	}

	if v := r.FormValue("date"); v != "" {
		date, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, errors.New("invalid date, expected RFC 3339")
		}
		in.Date = date
	}
	if v := r.FormValue("max_participants"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, nil, errors.New("invalid max_participants")
		}
		in.MaxParticipants = &n
	}
	if coords, err := parseCoordinates(r); err != nil {
		return nil, nil, err
	} else if coords != nil {
		in.Coordinates = coords
	}

	file, err := formFile(r, "image")
	if err != nil {
		return nil, nil, err
	}
	return in, file, nil
}

func parseUpdateForm(r *http.Request) (*UpdateInput, multipart.File, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}

	in := &UpdateInput{}
	if v := r.FormValue("title"); v != "" {
		in.Title = &v
	}
	if v := r.FormValue("description"); v != "" {
		in.Description = &v
	}
	if v := r.FormValue("location"); v != "" {
		in.Location = &v
	}
	if v := r.FormValue("category"); v != "" {
		c := Category(v)
		in.Category = &c
	}
	if v := r.FormValue("date"); v != "" {
		date, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, nil, errors.New("invalid date, expected RFC 3339")
		}
		in.Date = &date
	}
	if v := r.FormValue("max_participants"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, nil, errors.New("invalid max_participants")
		}
		in.MaxParticipants = &n
	}
	if coords, err := parseCoordinates(r); err != nil {
		return nil, nil, err
	} else if coords != nil {
		in.Coordinates = coords
	}

	file, err := formFile(r, "image")
	if err != nil {
		return nil, nil, err
	}
	return in, file, nil
}

func parseCoordinates(r *http.Request) (*Coordinates, error) {
	latStr, lngStr := r.FormValue("lat"), r.FormValue("lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return nil, errors.New("invalid coordinates")
	}
	return &Coordinates{Lat: lat, Lng: lng}, nil
}

func formFile(r *http.Request, field string) (multipart.File, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, errors.New("invalid " + field + " file")
	}
	return file, nil
}
