package request

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
	ErrNotFound           = errors.New("request not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrNotEventCreator    = errors.New("only the event creator may update this request")
	ErrNotRequester       = errors.New("only the requester may cancel this request")
	ErrNotPending         = errors.New("request must be pending to be canceled")
	ErrInformativeEvent   = errors.New("informative events do not accept requests")
	ErrEventClosed        = errors.New("event is not open for requests")
	ErrAlreadyParticipant = errors.New("user is already a participant of this event")
	ErrDuplicate          = errors.New("a pending request for this event already exists")
	ErrEventFull          = errors.New("event is full")
	ErrTooManyPending     = errors.New("pending request limit reached, wait until some are processed")
	ErrInvalidStatus      = errors.New("status must be accepted or rejected")
)

// Store is the request persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, req *Request) (*Request, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Request, error)
	FindPendingForPair(ctx context.Context, eventID, userID primitive.ObjectID) (*Request, error)
	CountPendingByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status Status) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*Request, error)
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*Request, error)
	FindByEvents(ctx context.Context, eventIDs []primitive.ObjectID) ([]*Request, error)
}

// EventStore is the event surface the lifecycle needs: lookups plus
// the capacity-guarded participant append.
type EventStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*event.Event, error)
	AddParticipant(ctx context.Context, eventID, userID primitive.ObjectID, capacity *int) (bool, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*event.Event, error)
	FindIDsByCreator(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// UserDirectory resolves requester references for listings.
type UserDirectory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]user.Summary, error)
}

// Service orchestrates the join-request lifecycle across the request
// and event stores.
type Service struct {
	store      Store
	events     EventStore
	users      UserDirectory
	clock      clock.Clock
	maxPending int64
}

// NewService creates a new request service with dependencies injected.
// maxPending caps how many pending requests one user may hold.
func NewService(store Store, events EventStore, users UserDirectory, clk clock.Clock, maxPending int64) *Service {
	return &Service{store: store, events: events, users: users, clock: clk, maxPending: maxPending}
}

// Create files a pending join request after walking the full
// validation ladder: the event must exist, be participative, be open,
// not already include the user, not already hold a pending request for
// the pair, not be full, and the user must be under the pending cap.
func (s *Service) Create(ctx context.Context, eventID, userID primitive.ObjectID) (*Request, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEventNotFound
	}
	if e.ParticipationType == event.Informative {
		return nil, ErrInformativeEvent
	}
	if e.Status != event.StatusOpen {
		return nil, ErrEventClosed
	}
	if e.HasParticipant(userID) {
		return nil, ErrAlreadyParticipant
	}

	pending, err := s.store.FindPendingForPair(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrDuplicate
	}

	if e.IsFull() {
		return nil, ErrEventFull
	}

	count, err := s.store.CountPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= s.maxPending {
		return nil, ErrTooManyPending
	}

	return s.store.Create(ctx, &Request{
		Event:       eventID,
		User:        userID,
		Status:      StatusPending,
		RequestDate: s.clock.Now(),
	})
}

// UpdateStatus accepts or rejects a request. Only the event creator
// may decide. Acceptance appends the requester to the participant list
// through the capacity-guarded update before the request status is
// persisted, so an accepted request always has its participant.
func (s *Service) UpdateStatus(ctx context.Context, requestID, actorID primitive.ObjectID, newStatus Status) error {
	if newStatus != StatusAccepted && newStatus != StatusRejected {
		return ErrInvalidStatus
	}

	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrNotFound
	}

	e, err := s.events.GetByID(ctx, req.Event)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrEventNotFound
	}
	if e.CreatedBy != actorID {
		return ErrNotEventCreator
	}

	if newStatus == StatusAccepted && !e.HasParticipant(req.User) {
		added, err := s.events.AddParticipant(ctx, e.ID, req.User, e.MaxParticipants)
		if err != nil {
			return err
		}
		if !added {
			// The guarded update matches nothing when the user is
			// already listed or the event is at capacity. Re-read to
			// tell the two apart.
			current, err := s.events.GetByID(ctx, e.ID)
			if err != nil {
				return err
			}
			if current == nil {
				return ErrEventNotFound
			}
			if !current.HasParticipant(req.User) {
				return ErrEventFull
			}
		}
	}

	return s.store.SetStatus(ctx, requestID, newStatus)
}

// Cancel deletes a request. Only the requester may cancel, and only
// while the request is still pending.
func (s *Service) Cancel(ctx context.Context, requestID, actorID primitive.ObjectID) error {
	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrNotFound
	}
	if req.User != actorID {
		return ErrNotRequester
	}
	if req.Status != StatusPending {
		return ErrNotPending
	}

	return s.store.Delete(ctx, requestID)
}

// Mine lists the requests the caller sent, with their events attached.
func (s *Service) Mine(ctx context.Context, userID primitive.ObjectID) ([]*SentResponse, error) {
	requests, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	eventIDs := make([]primitive.ObjectID, 0, len(requests))
	for _, req := range requests {
		eventIDs = append(eventIDs, req.Event)
	}
	events, err := s.events.FindByIDs(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*event.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	resps := make([]*SentResponse, len(requests))
	for i, req := range requests {
		resps[i] = &SentResponse{
			ID:          req.ID.Hex(),
			Status:      req.Status,
			RequestDate: req.RequestDate,
			Event:       byID[req.Event],
		}
	}
	return resps, nil
}

// ByEvent lists the requests targeting one event with requesters
// attached, for the creator's management view.
func (s *Service) ByEvent(ctx context.Context, eventID primitive.ObjectID) ([]*ReceivedResponse, error) {
	requests, err := s.store.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.toReceived(ctx, requests)
}

// Received lists every request across all of the caller's events,
// newest first.
func (s *Service) Received(ctx context.Context, userID primitive.ObjectID) ([]*ReceivedResponse, error) {
	eventIDs, err := s.events.FindIDsByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(eventIDs) == 0 {
		return []*ReceivedResponse{}, nil
	}

	requests, err := s.store.FindByEvents(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	return s.toReceived(ctx, requests)
}

func (s *Service) toReceived(ctx context.Context, requests []*Request) ([]*ReceivedResponse, error) {
	userIDs := make([]primitive.ObjectID, 0, len(requests))
	eventIDs := make([]primitive.ObjectID, 0, len(requests))
	for _, req := range requests {
		userIDs = append(userIDs, req.User)
		eventIDs = append(eventIDs, req.Event)
	}

	users, err := s.users.Summaries(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	events, err := s.events.FindByIDs(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	eventsByID := make(map[primitive.ObjectID]*event.Event, len(events))
	for _, e := range events {
		eventsByID[e.ID] = e
	}

	resps := make([]*ReceivedResponse, len(requests))
	for i, req := range requests {
		resp := &ReceivedResponse{
			ID:          req.ID.Hex(),
			Status:      req.Status,
			RequestDate: req.RequestDate,
		}
		if u, ok := users[req.User]; ok {
			resp.User = &u
		}
		if e, ok := eventsByID[req.Event]; ok {
			resp.Event = &EventSummary{
				ID:       e.ID.Hex(),
				Title:    e.Title,
				Date:     e.Date,
				Location: e.Location,
			}
		}
		resps[i] = resp
	}
	return resps, nil
}
