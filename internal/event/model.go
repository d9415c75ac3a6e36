package event

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the event lifecycle state. Finished is terminal and
// date-driven.
type Status string

const (
	StatusOpen     Status = "open"
	StatusClose    Status = "close"
	StatusFinished Status = "finished"
)

// ParticipationType distinguishes events that track a participant list
// from purely informative ones.
type ParticipationType string

const (
	Participative ParticipationType = "participative"
	Informative   ParticipationType = "informative"
)

// Category is the closed set of event categories.
type Category string

const (
	CategoryTapeo      Category = "tapeo"
	CategorySenderismo Category = "senderismo"
	CategoryDeporte    Category = "deporte"
	CategoryFiesta     Category = "fiesta"
	CategoryMusica     Category = "musica"
	CategoryViajes     Category = "viajes"
	CategoryCultura    Category = "cultura"
	CategoryIdiomas    Category = "idiomas"
	CategoryOther      Category = "other"
)

var categories = map[Category]bool{
	CategoryTapeo:      true,
	CategorySenderismo: true,
	CategoryDeporte:    true,
	CategoryFiesta:     true,
	CategoryMusica:     true,
	CategoryViajes:     true,
	CategoryCultura:    true,
	CategoryIdiomas:    true,
	CategoryOther:      true,
}

// ValidCategory reports whether c is part of the closed category set.
func ValidCategory(c Category) bool { return categories[c] }

// Coordinates is a geographic point attached to an event.
type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Image is a stored event image reference.
type Image struct {
	PublicID string `bson:"public_id,omitempty" json:"public_id,omitempty"`
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
}

// Event represents a published event. The creator owns the event and
// is always its first participant.
type Event struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title             string               `bson:"title" json:"title"`
	Description       string               `bson:"description" json:"description"`
	Location          string               `bson:"location" json:"location"`
	Coordinates       *Coordinates         `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	Date              time.Time            `bson:"date" json:"date"`
	CreatedBy         primitive.ObjectID   `bson:"created_by" json:"created_by"`
	Participants      []primitive.ObjectID `bson:"participants" json:"participants"`
	Category          Category             `bson:"category" json:"category"`
	ParticipationType ParticipationType    `bson:"participation_type" json:"participation_type"`
	Image             Image                `bson:"image,omitempty" json:"image,omitempty"`
	CreationDate      time.Time            `bson:"creation_date" json:"creation_date"`
	Status            Status               `bson:"status" json:"status"`
	MaxParticipants   *int                 `bson:"max_participants,omitempty" json:"max_participants,omitempty"`
}

// HasParticipant reports whether the user is on the participant list.
func (e *Event) HasParticipant(id primitive.ObjectID) bool {
	for _, p := range e.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// IsFull reports whether the participant list has reached capacity.
// The creator holds no slot; capacity bounds the joiners. Events
// without a capacity are never full.
func (e *Event) IsFull() bool {
	if e.MaxParticipants == nil {
		return false
	}
	joiners := 0
	for _, p := range e.Participants {
		if p != e.CreatedBy {
			joiners++
		}
	}
	return joiners >= *e.MaxParticipants
}
