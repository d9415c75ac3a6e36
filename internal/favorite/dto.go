package favorite

import (
	"time"

	"github.com/joinup-app/joinup/internal/event"
)

// AddRequest represents the request body for bookmarking an event
type AddRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

// Response is a bookmark with its event populated. Bookmarks whose
// event no longer exists are filtered out of listings.
type Response struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Event     *event.Response `json:"event"`
}
