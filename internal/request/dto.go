package request

import (
	"time"

	"github.com/joinup-app/joinup/internal/event"
	"github.com/joinup-app/joinup/internal/user"
)

// CreateRequest represents the request body for a join attempt
type CreateRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

// UpdateStatusRequest represents the accept/reject body
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

// EventSummary is the slimmed event shape embedded in received
// request listings.
type EventSummary struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
}

// SentResponse is a request the caller sent, with its event attached.
type SentResponse struct {
	ID          string       `json:"id"`
	Status      Status       `json:"status"`
	RequestDate time.Time    `json:"request_date"`
	Event       *event.Event `json:"event,omitempty"`
}

// ReceivedResponse is a request against one of the caller's events,
// with the requester attached.
type ReceivedResponse struct {
	ID          string        `json:"id"`
	Status      Status        `json:"status"`
	RequestDate time.Time     `json:"request_date"`
	User        *user.Summary `json:"user,omitempty"`
	Event       *EventSummary `json:"event,omitempty"`
}
