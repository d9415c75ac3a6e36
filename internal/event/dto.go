package event

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/internal/user"
)

// PublishInput carries the fields of a new event, parsed from the
// multipart publish form.
type PublishInput struct {
	Title             string
	Description       string
	Location          string
	Coordinates       *Coordinates
	Date              time.Time
	Category          Category
	ParticipationType ParticipationType
	MaxParticipants   *int
}

// UpdateInput carries the editable fields of an existing event. Nil
// fields are left untouched.
type UpdateInput struct {
	Title           *string
	Description     *string
	Location        *string
	Coordinates     *Coordinates
	Date            *time.Time
	Category        *Category
	MaxParticipants *int
}

// ChangeStatusRequest represents the request body for a status toggle
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open close"`
}

// Response is an event with its creator and participants populated
type Response struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Location          string         `json:"location"`
	Coordinates       *Coordinates   `json:"coordinates,omitempty"`
	Date              time.Time      `json:"date"`
	CreatedBy         user.Summary   `json:"created_by"`
	Participants      []user.Summary `json:"participants"`
	Category          Category       `json:"category"`
	ParticipationType string         `json:"participation_type"`
	Image             Image          `json:"image"`
	CreationDate      time.Time      `json:"creation_date"`
	Status            Status         `json:"status"`
	MaxParticipants   *int           `json:"max_participants,omitempty"`
}

// ToResponse converts an event, resolving user references through the
// given summary map. Unknown references are dropped rather than
// failing the whole listing.
func (e *Event) ToResponse(users map[primitive.ObjectID]user.Summary) *Response {
	resp := &Response{
		ID:                e.ID.Hex(),
		Title:             e.Title,
		Description:       e.Description,
		Location:          e.Location,
		Coordinates:       e.Coordinates,
		Date:              e.Date,
		Category:          e.Category,
		ParticipationType: string(e.ParticipationType),
		Image:             e.Image,
		CreationDate:      e.CreationDate,
		Status:            e.Status,
		MaxParticipants:   e.MaxParticipants,
	}

	if s, ok := users[e.CreatedBy]; ok {
		resp.CreatedBy = s
	}
	resp.Participants = make([]user.Summary, 0, len(e.Participants))
	for _, p := range e.Participants {
		if s, ok := users[p]; ok {
			resp.Participants = append(resp.Participants, s)
		}
	}
	return resp
}
