package admin

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/internal/user"
	"github.com/joinup-app/joinup/pkg/clock"
)

// Common errors
var (
	ErrSelfAction   = errors.New("you cannot suspend your own account")
	ErrTargetAdmin  = errors.New("administrators cannot be suspended")
	ErrUserNotFound = errors.New("user not found")
)

// UserStore is the account surface moderation needs.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*user.User, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	List(ctx context.Context) ([]*user.User, error)
}

// EventParticipation detaches a suspended user from events that have
// not happened yet.
type EventParticipation interface {
	PullParticipantFromFutureEvents(ctx context.Context, userID primitive.ObjectID, now time.Time) error
}

// RequestCleaner drops a suspended user's pending requests.
type RequestCleaner interface {
	DeletePendingByUser(ctx context.Context, userID primitive.ObjectID) error
}

// Service handles moderation business logic
type Service struct {
	users    UserStore
	events   EventParticipation
	requests RequestCleaner
	clock    clock.Clock
}

// NewService creates a new admin service with dependencies injected
func NewService(users UserStore, events EventParticipation, requests RequestCleaner, clk clock.Clock) *Service {
	return &Service{users: users, events: events, requests: requests, clock: clk}
}

// ListUsers retrieves every account for the dashboard
func (s *Service) ListUsers(ctx context.Context) ([]*user.User, error) {
	return s.users.List(ctx)
}

// ToggleActive suspends or reactivates an account. Admins cannot act
// on themselves or on other admins. Suspension removes the user from
// the participant list of every future event and deletes their pending
// requests; reactivation restores nothing, since freed slots may have
// been taken in the meantime.
func (s *Service) ToggleActive(ctx context.Context, targetID, actorID primitive.ObjectID) error {
	if targetID == actorID {
		return ErrSelfAction
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if target.IsAdmin {
		return ErrTargetAdmin
	}

	newActive := !target.IsActive
	if err := s.users.SetActive(ctx, targetID, newActive); err != nil {
		return err
	}

	if !newActive {
		if err := s.events.PullParticipantFromFutureEvents(ctx, targetID, s.clock.Now()); err != nil {
			return err
		}
		if err := s.requests.DeletePendingByUser(ctx, targetID); err != nil {
			return err
		}
	}
	return nil
}
