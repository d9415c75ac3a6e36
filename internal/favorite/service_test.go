package favorite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/internal/event"
	"github.com/joinup-app/joinup/internal/user"
	"github.com/joinup-app/joinup/pkg/clock"
)

type memStore struct {
	items map[primitive.ObjectID]*Favorite
}

func newMemStore() *memStore {
	return &memStore{items: map[primitive.ObjectID]*Favorite{}}
}

func (m *memStore) Create(_ context.Context, f *Favorite) (*Favorite, error) {
	f.ID = primitive.NewObjectID()
	cp := *f
	m.items[f.ID] = &cp
	return f, nil
}

func (m *memStore) FindPair(_ context.Context, userID, eventID primitive.ObjectID) (*Favorite, error) {
	for _, f := range m.items {
		if f.User == userID && f.Event == eventID {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) DeletePair(_ context.Context, userID, eventID primitive.ObjectID) (bool, error) {
	for id, f := range m.items {
		if f.User == userID && f.Event == eventID {
			delete(m.items, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]*Favorite, error) {
	var out []*Favorite
	for _, f := range m.items {
		if f.User == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

type stubEvents struct {
	items map[primitive.ObjectID]*event.Event
}

func (s *stubEvents) GetByID(_ context.Context, id primitive.ObjectID) (*event.Event, error) {
	e, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *stubEvents) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*event.Event, error) {
	var out []*event.Event
	for _, id := range ids {
		if e, ok := s.items[id]; ok {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type stubDirectory struct {
	users map[primitive.ObjectID]user.Summary
}

func (s *stubDirectory) Summaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]user.Summary, error) {
	out := map[primitive.ObjectID]user.Summary{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func sampleEvent(creator primitive.ObjectID) *event.Event {
	return &event.Event{
		ID:                primitive.NewObjectID(),
		Title:             "vinyl market",
		Location:          "Valencia",
		Date:              time.Date(2026, 10, 12, 11, 0, 0, 0, time.UTC),
		CreatedBy:         creator,
		Participants:      []primitive.ObjectID{creator},
		Category:          event.CategoryMusica,
		ParticipationType: event.Informative,
		Status:            event.StatusOpen,
	}
}

func newTestService(events ...*event.Event) (*Service, *memStore) {
	store := newMemStore()
	es := &stubEvents{items: map[primitive.ObjectID]*event.Event{}}
	dir := &stubDirectory{users: map[primitive.ObjectID]user.Summary{}}
	for _, e := range events {
		es.items[e.ID] = e
		dir.users[e.CreatedBy] = user.Summary{ID: e.CreatedBy, Username: "host"}
	}
	clk := clock.NewFixed(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
	return NewService(store, es, dir, clk), store
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	t.Run("event must exist", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Add(ctx, userID, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("bookmarks once", func(t *testing.T) {
		e := sampleEvent(creator)
		svc, store := newTestService(e)

		f, err := svc.Add(ctx, userID, e.ID)
		require.NoError(t, err)
		assert.Equal(t, userID, f.User)
		assert.Equal(t, e.ID, f.Event)
		assert.Equal(t, time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC), f.CreatedAt)
		assert.Len(t, store.items, 1)

		_, err = svc.Add(ctx, userID, e.ID)
		assert.ErrorIs(t, err, ErrAlreadyFavorite)
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	e := sampleEvent(creator)
	svc, store := newTestService(e)

	t.Run("missing bookmark", func(t *testing.T) {
		assert.ErrorIs(t, svc.Remove(ctx, userID, e.ID), ErrNotFound)
	})

	t.Run("removes the pair", func(t *testing.T) {
		_, err := svc.Add(ctx, userID, e.ID)
		require.NoError(t, err)
		require.NoError(t, svc.Remove(ctx, userID, e.ID))
		assert.Empty(t, store.items)
	})
}

func TestListSkipsOrphans(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	kept := sampleEvent(creator)
	deleted := sampleEvent(creator)
	svc, store := newTestService(kept, deleted)

	_, err := svc.Add(ctx, userID, kept.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, userID, deleted.ID)
	require.NoError(t, err)

	// The second event disappears after being bookmarked.
	events := svc.events.(*stubEvents)
	delete(events.items, deleted.ID)

	got, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, kept.ID.Hex(), got[0].Event.ID)
	assert.Equal(t, "host", got[0].Event.CreatedBy.Username)

	// The orphaned bookmark is filtered, not purged.
	assert.Len(t, store.items, 2)
}
