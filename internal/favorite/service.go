package favorite

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/internal/event"
	"github.com/joinup-app/joinup/internal/user"
	"github.com/joinup-app/joinup/pkg/clock"
)

// Common errors
var (
	ErrAlreadyFavorite = errors.New("event is already a favorite")
	ErrNotFound        = errors.New("favorite not found")
	ErrEventNotFound   = errors.New("event not found")
)

// Store is the favorite persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, f *Favorite) (*Favorite, error)
	FindPair(ctx context.Context, userID, eventID primitive.ObjectID) (*Favorite, error)
	DeletePair(ctx context.Context, userID, eventID primitive.ObjectID) (bool, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*Favorite, error)
}

// EventStore looks up bookmarked events.
type EventStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*event.Event, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*event.Event, error)
}

// UserDirectory resolves event creators for populated listings.
type UserDirectory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]user.Summary, error)
}

// Service handles bookmark business logic
type Service struct {
	store  Store
	events EventStore
	users  UserDirectory
	clock  clock.Clock
}

// NewService creates a new favorite service with dependencies injected
func NewService(store Store, events EventStore, users UserDirectory, clk clock.Clock) *Service {
	return &Service{store: store, events: events, users: users, clock: clk}
}

// Add bookmarks an event for the caller
func (s *Service) Add(ctx context.Context, userID, eventID primitive.ObjectID) (*Favorite, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEventNotFound
	}

	existing, err := s.store.FindPair(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyFavorite
	}

	return s.store.Create(ctx, &Favorite{
		User:      userID,
		Event:     eventID,
		CreatedAt: s.clock.Now(),
	})
}

// Remove deletes the caller's bookmark of an event
func (s *Service) Remove(ctx context.Context, userID, eventID primitive.ObjectID) error {
	deleted, err := s.store.DeletePair(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// List retrieves the caller's bookmarks with events and their creators
// populated. Bookmarks of deleted events are filtered out, not purged.
func (s *Service) List(ctx context.Context, userID primitive.ObjectID) ([]*Response, error) {
	favorites, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	eventIDs := make([]primitive.ObjectID, 0, len(favorites))
	for _, f := range favorites {
		eventIDs = append(eventIDs, f.Event)
	}
	events, err := s.events.FindByIDs(ctx, eventIDs)
	if err != nil {
		return nil, err
	}

	creatorIDs := make([]primitive.ObjectID, 0, len(events))
	seen := map[primitive.ObjectID]bool{}
	eventsByID := make(map[primitive.ObjectID]*event.Event, len(events))
	for _, e := range events {
		eventsByID[e.ID] = e
		if !seen[e.CreatedBy] {
			seen[e.CreatedBy] = true
			creatorIDs = append(creatorIDs, e.CreatedBy)
		}
	}
	users, err := s.users.Summaries(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}

	resps := make([]*Response, 0, len(favorites))
	for _, f := range favorites {
		e, ok := eventsByID[f.Event]
		if !ok {
			// Orphaned bookmark: the event was deleted.
			continue
		}
		resps = append(resps, &Response{
			ID:        f.ID.Hex(),
			CreatedAt: f.CreatedAt,
			Event:     e.ToResponse(users),
		})
	}
	return resps, nil
}
