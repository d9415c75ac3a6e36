package favorite

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite bookmarks an event for a user. The (user, event) pair is
// unique, enforced by a compound index.
type Favorite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Event     primitive.ObjectID `bson:"event" json:"event"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
