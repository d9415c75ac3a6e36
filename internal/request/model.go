package request

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the join-request lifecycle state. Only pending requests
// are mutable or cancelable.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Request is a user's petition to join an event.
type Request struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Event       primitive.ObjectID `bson:"event" json:"event"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Status      Status             `bson:"status" json:"status"`
	RequestDate time.Time          `bson:"request_date" json:"request_date"`
}
