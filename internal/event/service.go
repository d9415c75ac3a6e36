package event

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/internal/geocode"
	"github.com/joinup-app/joinup/internal/images"
	"github.com/joinup-app/joinup/internal/user"
	"github.com/joinup-app/joinup/pkg/clock"
)

// Common errors
var (
	ErrNotFound         = errors.New("event not found")
	ErrNotCreator       = errors.New("only the event creator may do this")
	ErrPastDate         = errors.New("event date must be in the future")
	ErrInvalidStatus    = errors.New("status can only be changed between open and close")
	ErrFinished         = errors.New("finished events cannot change status")
	ErrExpired          = errors.New("the event date has already passed")
	ErrNotParticipant   = errors.New("user is not a participant of this event")
	ErrCapacityRequired = errors.New("participative events require a maximum number of participants")
	ErrInvalidCategory  = errors.New("invalid event category")
	ErrMissingFields    = errors.New("title, description, location, date and category are required")
)

// Store is the event persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, e *Event) (*Event, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Event, error)
	Update(ctx context.Context, id primitive.ObjectID, f *UpdateFields) (*Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status Status) error
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	PullParticipant(ctx context.Context, eventID, userID primitive.ObjectID) error
	FindOpen(ctx context.Context) ([]*Event, error)
	FindUpcoming(ctx context.Context, now time.Time, limit int64) ([]*Event, error)
	FindNearby(ctx context.Context, lat, lng, distanceKm float64, limit int64) ([]*Event, error)
	FindByCreator(ctx context.Context, userID primitive.ObjectID) ([]*Event, error)
	FindParticipating(ctx context.Context, userID primitive.ObjectID) ([]*Event, error)
	FindAll(ctx context.Context) ([]*Event, error)
}

// RequestCleaner removes join requests when events or participants go
// away.
type RequestCleaner interface {
	DeleteAcceptedForPair(ctx context.Context, eventID, userID primitive.ObjectID) error
	DeleteAllForPair(ctx context.Context, eventID, userID primitive.ObjectID) (int64, error)
	DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) error
}

// FavoriteCleaner removes bookmarks of deleted events.
type FavoriteCleaner interface {
	DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) error
}

// UserDirectory resolves user references for populated responses.
type UserDirectory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]user.Summary, error)
}

// Geocoder resolves free-text locations. Best-effort: failures never
// block publishing.
type Geocoder interface {
	Forward(ctx context.Context, address string) (*geocode.Coordinates, error)
}

// ImageStore uploads and deletes event images.
type ImageStore interface {
	UploadEvent(ctx context.Context, file multipart.File) (*images.Upload, error)
	Destroy(ctx context.Context, publicID string) error
}

// Service handles event business logic
type Service struct {
	store     Store
	requests  RequestCleaner
	favorites FavoriteCleaner
	users     UserDirectory
	geocoder  Geocoder
	images    ImageStore
	clock     clock.Clock
}

// NewService creates a new event service with dependencies injected
func NewService(store Store, requests RequestCleaner, favorites FavoriteCleaner, users UserDirectory, geocoder Geocoder, imageStore ImageStore, clk clock.Clock) *Service {
	return &Service{
		store:     store,
		requests:  requests,
		favorites: favorites,
		users:     users,
		geocoder:  geocoder,
		images:    imageStore,
		clock:     clk,
	}
}

// Publish creates a new event. The creator becomes the first
// participant. Missing coordinates are geocoded from the location
// text; a failed lookup is logged and the event proceeds without
// coordinates.
func (s *Service) Publish(ctx context.Context, creatorID primitive.ObjectID, in *PublishInput, file multipart.File) (*Event, error) {
	if in.Title == "" || in.Description == "" || in.Location == "" || in.Date.IsZero() || in.Category == "" {
		return nil, ErrMissingFields
	}
	if !ValidCategory(in.Category) {
		return nil, ErrInvalidCategory
	}

	pt := in.ParticipationType
	if pt == "" {
		pt = Participative
	}
	if pt == Participative && in.MaxParticipants == nil {
		return nil, ErrCapacityRequired
	}

	coords := in.Coordinates
	if coords == nil && s.geocoder != nil {
		geocoded, err := s.geocoder.Forward(ctx, in.Location)
		if err != nil {
			log.Printf("geocoding failed for %q: %v", in.Location, err)
		} else if geocoded != nil {
			coords = &Coordinates{Lat: geocoded.Lat, Lng: geocoded.Lng}
		}
	}

	var image Image
	if file != nil && s.images != nil {
		up, err := s.images.UploadEvent(ctx, file)
		if err != nil {
			return nil, err
		}
		image = Image{PublicID: up.PublicID, URL: up.URL}
	}

	return s.store.Create(ctx, &Event{
		Title:             in.Title,
		Description:       in.Description,
		Location:          in.Location,
		Coordinates:       coords,
		Date:              in.Date,
		CreatedBy:         creatorID,
		Participants:      []primitive.ObjectID{creatorID},
		Category:          in.Category,
		ParticipationType: pt,
		Image:             image,
		CreationDate:      s.clock.Now(),
		Status:            StatusOpen,
		MaxParticipants:   in.MaxParticipants,
	})
}

// Update edits an event. Only the creator may edit; a new date must be
// in the future; the capacity is only editable while the event is
// participative; a new image replaces and destroys the old one.
func (s *Service) Update(ctx context.Context, id, actorID primitive.ObjectID, in *UpdateInput, file multipart.File) (*Event, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	if e.CreatedBy != actorID {
		return nil, ErrNotCreator
	}

	if in.Date != nil && !in.Date.After(s.clock.Now()) {
		return nil, ErrPastDate
	}
	if in.Category != nil && !ValidCategory(*in.Category) {
		return nil, ErrInvalidCategory
	}

	fields := &UpdateFields{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Coordinates: in.Coordinates,
		Date:        in.Date,
		Category:    in.Category,
	}
	if e.ParticipationType == Participative {
		fields.MaxParticipants = in.MaxParticipants
	}

	if file != nil && s.images != nil {
		if e.Image.PublicID != "" {
			if err := s.images.Destroy(ctx, e.Image.PublicID); err != nil {
				log.Printf("failed to delete old event image %s: %v", e.Image.PublicID, err)
			}
		}
		up, err := s.images.UploadEvent(ctx, file)
		if err != nil {
			return nil, err
		}
		fields.Image = &Image{PublicID: up.PublicID, URL: up.URL}
	}

	updated, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// GetByID retrieves a single populated event.
func (s *Service) GetByID(ctx context.Context, id primitive.ObjectID) (*Response, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}

	resps, err := s.populate(ctx, []*Event{e})
	if err != nil {
		return nil, err
	}
	return resps[0], nil
}

// ListOpen retrieves all open events, expiring stale ones first.
func (s *Service) ListOpen(ctx context.Context) ([]*Response, error) {
	if err := s.Sweep(ctx); err != nil {
		return nil, err
	}
	events, err := s.store.FindOpen(ctx)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, events)
}

// Upcoming retrieves the next open events by date.
func (s *Service) Upcoming(ctx context.Context, limit int64) ([]*Response, error) {
	if err := s.Sweep(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 2
	}
	events, err := s.store.FindUpcoming(ctx, s.clock.Now(), limit)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, events)
}

// Nearby retrieves open events around a point.
func (s *Service) Nearby(ctx context.Context, lat, lng, distanceKm float64, limit int64) ([]*Response, error) {
	if err := s.Sweep(ctx); err != nil {
		return nil, err
	}
	if distanceKm <= 0 {
		distanceKm = 25
	}
	events, err := s.store.FindNearby(ctx, lat, lng, distanceKm, limit)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, events)
}

// Mine retrieves the caller's own events.
func (s *Service) Mine(ctx context.Context, userID primitive.ObjectID) ([]*Response, error) {
	events, err := s.store.FindByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, events)
}

// Participating retrieves events the caller joined but did not create.
func (s *Service) Participating(ctx context.Context, userID primitive.ObjectID) ([]*Response, error) {
	if err := s.Sweep(ctx); err != nil {
		return nil, err
	}
	events, err := s.store.FindParticipating(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, events)
}

// ListAll retrieves every event, populated, for the admin dashboard.
func (s *Service) ListAll(ctx context.Context) ([]*Response, error) {
	events, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, events)
}

// ChangeStatus toggles an event between open and close. Finished is
// terminal and past-date events cannot be toggled.
func (s *Service) ChangeStatus(ctx context.Context, id, actorID primitive.ObjectID, newStatus Status) error {
	if newStatus != StatusOpen && newStatus != StatusClose {
		return ErrInvalidStatus
	}

	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrNotFound
	}
	if e.CreatedBy != actorID {
		return ErrNotCreator
	}
	if e.Status == StatusFinished {
		return ErrFinished
	}
	if e.Date.Before(s.clock.Now()) {
		return ErrExpired
	}

	return s.store.SetStatus(ctx, id, newStatus)
}

// Delete removes an event owned by the caller, cascading to its
// requests and favorites.
func (s *Service) Delete(ctx context.Context, id, actorID primitive.ObjectID) error {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrNotFound
	}
	if e.CreatedBy != actorID {
		return ErrNotCreator
	}
	return s.purge(ctx, e)
}

// DeleteAny removes an event regardless of ownership, for admin
// moderation. Cascade is identical to an owner delete.
func (s *Service) DeleteAny(ctx context.Context, id primitive.ObjectID) error {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrNotFound
	}
	return s.purge(ctx, e)
}

func (s *Service) purge(ctx context.Context, e *Event) error {
	if e.Image.PublicID != "" && s.images != nil {
		if err := s.images.Destroy(ctx, e.Image.PublicID); err != nil {
			log.Printf("failed to delete image of event %s: %v", e.ID.Hex(), err)
		}
	}

	if err := s.store.Delete(ctx, e.ID); err != nil {
		return err
	}
	if err := s.requests.DeleteByEvent(ctx, e.ID); err != nil {
		return err
	}
	return s.favorites.DeleteByEvent(ctx, e.ID)
}

// Leave removes the caller from the participant list and deletes only
// their accepted request for the event.
func (s *Service) Leave(ctx context.Context, eventID, userID primitive.ObjectID) error {
	e, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrNotFound
	}
	if !e.HasParticipant(userID) {
		return ErrNotParticipant
	}

	if err := s.store.PullParticipant(ctx, eventID, userID); err != nil {
		return err
	}
	return s.requests.DeleteAcceptedForPair(ctx, eventID, userID)
}

// RemoveParticipant lets the creator remove someone from the event,
// purging every request that pair ever made.
func (s *Service) RemoveParticipant(ctx context.Context, eventID, participantID, actorID primitive.ObjectID) (int64, error) {
	e, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, ErrNotFound
	}
	if e.CreatedBy != actorID {
		return 0, ErrNotCreator
	}
	if !e.HasParticipant(participantID) {
		return 0, ErrNotParticipant
	}

	if err := s.store.PullParticipant(ctx, eventID, participantID); err != nil {
		return 0, err
	}
	return s.requests.DeleteAllForPair(ctx, eventID, participantID)
}

// Sweep marks every stale open or closed event as finished. It runs
// inline before listing reads; running it twice changes nothing.
func (s *Service) Sweep(ctx context.Context) error {
	n, err := s.store.MarkExpired(ctx, s.clock.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("%d events marked as finished", n)
	}
	return nil
}

func (s *Service) populate(ctx context.Context, events []*Event) ([]*Response, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, e := range events {
		if !seen[e.CreatedBy] {
			seen[e.CreatedBy] = true
			ids = append(ids, e.CreatedBy)
		}
		for _, p := range e.Participants {
			if !seen[p] {
				seen[p] = true
				ids = append(ids, p)
			}
		}
	}

	users, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	resps := make([]*Response, len(events))
	for i, e := range events {
		resps[i] = e.ToResponse(users)
	}
	return resps, nil
}
