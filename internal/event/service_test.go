package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/internal/geocode"
	"github.com/joinup-app/joinup/internal/user"
	"github.com/joinup-app/joinup/pkg/clock"
)

type memStore struct {
	items map[primitive.ObjectID]*Event
}

func newMemStore(events ...*Event) *memStore {
	m := &memStore{items: map[primitive.ObjectID]*Event{}}
	for _, e := range events {
		m.items[e.ID] = e
	}
	return m
}

func (m *memStore) Create(_ context.Context, e *Event) (*Event, error) {
	e.ID = primitive.NewObjectID()
	cp := *e
	m.items[e.ID] = &cp
	return e, nil
}

func (m *memStore) GetByID(_ context.Context, id primitive.ObjectID) (*Event, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	cp.Participants = append([]primitive.ObjectID(nil), e.Participants...)
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, id primitive.ObjectID, f *UpdateFields) (*Event, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	if f.Title != nil {
		e.Title = *f.Title
	}
	if f.Description != nil {
		e.Description = *f.Description
	}
	if f.Location != nil {
		e.Location = *f.Location
	}
	if f.Coordinates != nil {
		e.Coordinates = f.Coordinates
	}
	if f.Date != nil {
		e.Date = *f.Date
	}
	if f.Category != nil {
		e.Category = *f.Category
	}
	if f.Image != nil {
		e.Image = *f.Image
	}
	if f.MaxParticipants != nil {
		e.MaxParticipants = f.MaxParticipants
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.items, id)
	return nil
}

func (m *memStore) SetStatus(_ context.Context, id primitive.ObjectID, status Status) error {
	if e, ok := m.items[id]; ok {
		e.Status = status
	}
	return nil
}

func (m *memStore) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, e := range m.items {
		if e.Date.Before(now) && (e.Status == StatusOpen || e.Status == StatusClose) {
			e.Status = StatusFinished
			n++
		}
	}
	return n, nil
}

func (m *memStore) PullParticipant(_ context.Context, eventID, userID primitive.ObjectID) error {
	e, ok := m.items[eventID]
	if !ok {
		return nil
	}
	out := e.Participants[:0]
	for _, p := range e.Participants {
		if p != userID {
			out = append(out, p)
		}
	}
	e.Participants = out
	return nil
}

func (m *memStore) FindOpen(_ context.Context) ([]*Event, error) {
	var out []*Event
	for _, e := range m.items {
		if e.Status == StatusOpen {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) FindUpcoming(_ context.Context, now time.Time, limit int64) ([]*Event, error) {
	var out []*Event
	for _, e := range m.items {
		if e.Status == StatusOpen && !e.Date.Before(now) {
			cp := *e
			out = append(out, &cp)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) FindNearby(_ context.Context, lat, lng, distanceKm float64, limit int64) ([]*Event, error) {
	var out []*Event
	for _, e := range m.items {
		if e.Status == StatusOpen && e.Coordinates != nil {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) FindByCreator(_ context.Context, userID primitive.ObjectID) ([]*Event, error) {
	var out []*Event
	for _, e := range m.items {
		if e.CreatedBy == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) FindParticipating(_ context.Context, userID primitive.ObjectID) ([]*Event, error) {
	var out []*Event
	for _, e := range m.items {
		if e.CreatedBy != userID && e.HasParticipant(userID) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) FindAll(_ context.Context) ([]*Event, error) {
	var out []*Event
	for _, e := range m.items {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

type recordingRequests struct {
	acceptedPairs [][2]primitive.ObjectID
	allPairs      [][2]primitive.ObjectID
	byEvent       []primitive.ObjectID
}

func (r *recordingRequests) DeleteAcceptedForPair(_ context.Context, eventID, userID primitive.ObjectID) error {
	r.acceptedPairs = append(r.acceptedPairs, [2]primitive.ObjectID{eventID, userID})
	return nil
}

func (r *recordingRequests) DeleteAllForPair(_ context.Context, eventID, userID primitive.ObjectID) (int64, error) {
	r.allPairs = append(r.allPairs, [2]primitive.ObjectID{eventID, userID})
	return 2, nil
}

func (r *recordingRequests) DeleteByEvent(_ context.Context, eventID primitive.ObjectID) error {
	r.byEvent = append(r.byEvent, eventID)
	return nil
}

type recordingFavorites struct {
	byEvent []primitive.ObjectID
}

func (r *recordingFavorites) DeleteByEvent(_ context.Context, eventID primitive.ObjectID) error {
	r.byEvent = append(r.byEvent, eventID)
	return nil
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

type stubGeocoder struct {
	coords *geocode.Coordinates
	err    error
	calls  int
}

func (s *stubGeocoder) Forward(_ context.Context, _ string) (*geocode.Coordinates, error) {
	s.calls++
	return s.coords, s.err
}

type fixture struct {
	store     *memStore
	requests  *recordingRequests
	favorites *recordingFavorites
	geocoder  *stubGeocoder
	clock     *clock.Fixed
	svc       *Service
}

func newFixture(events ...*Event) *fixture {
	f := &fixture{
		store:     newMemStore(events...),
		requests:  &recordingRequests{},
		favorites: &recordingFavorites{},
		geocoder:  &stubGeocoder{},
		clock:     clock.NewFixed(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)),
	}
	dir := &stubDirectory{users: map[primitive.ObjectID]user.Summary{}}
	for _, e := range events {
		dir.users[e.CreatedBy] = user.Summary{ID: e.CreatedBy, Username: "creator"}
	}
	f.svc = NewService(f.store, f.requests, f.favorites, dir, f.geocoder, nil, f.clock)
	return f
}

func capOf(v int) *int { return &v }

func futureEvent(creator primitive.ObjectID) *Event {
	return &Event{
		ID:                primitive.NewObjectID(),
		Title:             "tapas crawl",
		Description:       "old town route",
		Location:          "Sevilla",
		Date:              time.Date(2026, 10, 5, 20, 0, 0, 0, time.UTC),
		CreatedBy:         creator,
		Participants:      []primitive.ObjectID{creator},
		Category:          CategoryTapeo,
		ParticipationType: Participative,
		Status:            StatusOpen,
		MaxParticipants:   capOf(8),
	}
}

func validPublishInput() *PublishInput {
	return &PublishInput{
		Title:           "tapas crawl",
		Description:     "old town route",
		Location:        "Sevilla",
		Date:            time.Date(2026, 10, 5, 20, 0, 0, 0, time.UTC),
		Category:        CategoryTapeo,
		MaxParticipants: capOf(8),
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture()
		in := validPublishInput()
		in.Title = ""
		_, err := f.svc.Publish(ctx, creator, in, nil)
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("invalid category", func(t *testing.T) {
		f := newFixture()
		in := validPublishInput()
		in.Category = Category("karaoke")
		_, err := f.svc.Publish(ctx, creator, in, nil)
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("participative needs a capacity", func(t *testing.T) {
		f := newFixture()
		in := validPublishInput()
		in.MaxParticipants = nil
		_, err := f.svc.Publish(ctx, creator, in, nil)
		assert.ErrorIs(t, err, ErrCapacityRequired)
	})

	t.Run("informative needs no capacity", func(t *testing.T) {
		f := newFixture()
		in := validPublishInput()
		in.ParticipationType = Informative
		in.MaxParticipants = nil
		e, err := f.svc.Publish(ctx, creator, in, nil)
		require.NoError(t, err)
		assert.Nil(t, e.MaxParticipants)
	})

	t.Run("creator is the first participant", func(t *testing.T) {
		f := newFixture()
		e, err := f.svc.Publish(ctx, creator, validPublishInput(), nil)
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, e.Status)
		assert.Equal(t, Participative, e.ParticipationType)
		assert.Equal(t, []primitive.ObjectID{creator}, e.Participants)
		assert.Equal(t, f.clock.Now(), e.CreationDate)
	})

	t.Run("location is geocoded when coordinates are absent", func(t *testing.T) {
		f := newFixture()
		f.geocoder.coords = &geocode.Coordinates{Lat: 37.38, Lng: -5.99}
		e, err := f.svc.Publish(ctx, creator, validPublishInput(), nil)
		require.NoError(t, err)
		require.NotNil(t, e.Coordinates)
		assert.Equal(t, 37.38, e.Coordinates.Lat)
		assert.Equal(t, 1, f.geocoder.calls)
	})

	t.Run("explicit coordinates skip geocoding", func(t *testing.T) {
		f := newFixture()
		in := validPublishInput()
		in.Coordinates = &Coordinates{Lat: 40.41, Lng: -3.70}
		e, err := f.svc.Publish(ctx, creator, in, nil)
		require.NoError(t, err)
		assert.Equal(t, 40.41, e.Coordinates.Lat)
		assert.Zero(t, f.geocoder.calls)
	})

	t.Run("geocoder failure never blocks publishing", func(t *testing.T) {
		f := newFixture()
		f.geocoder.err = errors.New("service unavailable")
		e, err := f.svc.Publish(ctx, creator, validPublishInput(), nil)
		require.NoError(t, err)
		assert.Nil(t, e.Coordinates)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Update(ctx, primitive.NewObjectID(), creator, &UpdateInput{}, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("only the creator edits", func(t *testing.T) {
		e := futureEvent(creator)
		f := newFixture(e)
		_, err := f.svc.Update(ctx, e.ID, stranger, &UpdateInput{}, nil)
		assert.ErrorIs(t, err, ErrNotCreator)
	})

	t.Run("new date must be in the future", func(t *testing.T) {
		e := futureEvent(creator)
		f := newFixture(e)
		past := f.clock.Now().Add(-time.Hour)
		_, err := f.svc.Update(ctx, e.ID, creator, &UpdateInput{Date: &past}, nil)
		assert.ErrorIs(t, err, ErrPastDate)
	})

	t.Run("capacity is ignored on informative events", func(t *testing.T) {
		e := futureEvent(creator)
		e.ParticipationType = Informative
		e.MaxParticipants = nil
		f := newFixture(e)
		_, err := f.svc.Update(ctx, e.ID, creator, &UpdateInput{MaxParticipants: capOf(3)}, nil)
		require.NoError(t, err)
		assert.Nil(t, f.store.items[e.ID].MaxParticipants)
	})

	t.Run("fields are applied", func(t *testing.T) {
		e := futureEvent(creator)
		f := newFixture(e)
		title := "tapas crawl v2"
		got, err := f.svc.Update(ctx, e.ID, creator, &UpdateInput{Title: &title}, nil)
		require.NoError(t, err)
		assert.Equal(t, "tapas crawl v2", got.Title)
		assert.Equal(t, "old town route", got.Description)
	})
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	t.Run("only open and close are reachable", func(t *testing.T) {
		e := futureEvent(creator)
		f := newFixture(e)
		assert.ErrorIs(t, f.svc.ChangeStatus(ctx, e.ID, creator, StatusFinished), ErrInvalidStatus)
		assert.ErrorIs(t, f.svc.ChangeStatus(ctx, e.ID, creator, Status("bogus")), ErrInvalidStatus)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		assert.ErrorIs(t, f.svc.ChangeStatus(ctx, primitive.NewObjectID(), creator, StatusClose), ErrNotFound)
	})

	t.Run("only the creator toggles", func(t *testing.T) {
		e := futureEvent(creator)
		f := newFixture(e)
		assert.ErrorIs(t, f.svc.ChangeStatus(ctx, e.ID, stranger, StatusClose), ErrNotCreator)
	})

	t.Run("finished is terminal", func(t *testing.T) {
		e := futureEvent(creator)
		e.Status = StatusFinished
		f := newFixture(e)
		assert.ErrorIs(t, f.svc.ChangeStatus(ctx, e.ID, creator, StatusOpen), ErrFinished)
	})

	t.Run("past events cannot be reopened", func(t *testing.T) {
		e := futureEvent(creator)
		e.Date = time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)
		e.Status = StatusClose
		f := newFixture(e)
		assert.ErrorIs(t, f.svc.ChangeStatus(ctx, e.ID, creator, StatusOpen), ErrExpired)
	})

	t.Run("open and close toggle freely", func(t *testing.T) {
		e := futureEvent(creator)
		f := newFixture(e)
		require.NoError(t, f.svc.ChangeStatus(ctx, e.ID, creator, StatusClose))
		assert.Equal(t, StatusClose, f.store.items[e.ID].Status)
		require.NoError(t, f.svc.ChangeStatus(ctx, e.ID, creator, StatusOpen))
		assert.Equal(t, StatusOpen, f.store.items[e.ID].Status)
	})
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()

	stale := futureEvent(creator)
	stale.Date = time.Date(2026, 8, 20, 20, 0, 0, 0, time.UTC)
	staleClosed := futureEvent(creator)
	staleClosed.Date = time.Date(2026, 8, 25, 20, 0, 0, 0, time.UTC)
	staleClosed.Status = StatusClose
	fresh := futureEvent(creator)

	f := newFixture(stale, staleClosed, fresh)

	require.NoError(t, f.svc.Sweep(ctx))
	assert.Equal(t, StatusFinished, f.store.items[stale.ID].Status)
	assert.Equal(t, StatusFinished, f.store.items[staleClosed.ID].Status)
	assert.Equal(t, StatusOpen, f.store.items[fresh.ID].Status)

	// A second sweep is a no-op.
	require.NoError(t, f.svc.Sweep(ctx))
	assert.Equal(t, StatusFinished, f.store.items[stale.ID].Status)
	assert.Equal(t, StatusOpen, f.store.items[fresh.ID].Status)
}

func TestListOpenSweepsFirst(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()

	stale := futureEvent(creator)
	stale.Date = time.Date(2026, 8, 20, 20, 0, 0, 0, time.UTC)
	fresh := futureEvent(creator)

	f := newFixture(stale, fresh)

	got, err := f.svc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fresh.ID.Hex(), got[0].ID)
	assert.Equal(t, "creator", got[0].CreatedBy.Username)
}

func TestLeave(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()
	userB := primitive.NewObjectID()

	t.Run("not a participant", func(t *testing.T) {
		e := futureEvent(creator)
		f := newFixture(e)
		assert.ErrorIs(t, f.svc.Leave(ctx, e.ID, userB), ErrNotParticipant)
	})

	t.Run("removes the participant and their accepted request", func(t *testing.T) {
		e := futureEvent(creator)
		e.Participants = append(e.Participants, userB)
		f := newFixture(e)

		require.NoError(t, f.svc.Leave(ctx, e.ID, userB))
		assert.Equal(t, []primitive.ObjectID{creator}, f.store.items[e.ID].Participants)
		assert.Equal(t, [][2]primitive.ObjectID{{e.ID, userB}}, f.requests.acceptedPairs)
		assert.Empty(t, f.requests.allPairs)
	})
}

func TestRemoveParticipant(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()
	userB := primitive.NewObjectID()

	t.Run("only the creator removes", func(t *testing.T) {
		e := futureEvent(creator)
		e.Participants = append(e.Participants, userB)
		f := newFixture(e)
		_, err := f.svc.RemoveParticipant(ctx, e.ID, userB, userB)
		assert.ErrorIs(t, err, ErrNotCreator)
	})

	t.Run("target must be a participant", func(t *testing.T) {
		e := futureEvent(creator)
		f := newFixture(e)
		_, err := f.svc.RemoveParticipant(ctx, e.ID, userB, creator)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("purges every request of the pair", func(t *testing.T) {
		e := futureEvent(creator)
		e.Participants = append(e.Participants, userB)
		f := newFixture(e)

		n, err := f.svc.RemoveParticipant(ctx, e.ID, userB, creator)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, []primitive.ObjectID{creator}, f.store.items[e.ID].Participants)
		assert.Equal(t, [][2]primitive.ObjectID{{e.ID, userB}}, f.requests.allPairs)
		assert.Empty(t, f.requests.acceptedPairs)
	})
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	creator := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	t.Run("only the creator deletes", func(t *testing.T) {
		e := futureEvent(creator)
		f := newFixture(e)
		assert.ErrorIs(t, f.svc.Delete(ctx, e.ID, stranger), ErrNotCreator)
	})

	t.Run("owner delete cascades to requests and favorites", func(t *testing.T) {
		e := futureEvent(creator)
		f := newFixture(e)

		require.NoError(t, f.svc.Delete(ctx, e.ID, creator))
		assert.NotContains(t, f.store.items, e.ID)
		assert.Equal(t, []primitive.ObjectID{e.ID}, f.requests.byEvent)
		assert.Equal(t, []primitive.ObjectID{e.ID}, f.favorites.byEvent)
	})

	t.Run("moderation delete ignores ownership", func(t *testing.T) {
		e := futureEvent(creator)
		f := newFixture(e)

		require.NoError(t, f.svc.DeleteAny(ctx, e.ID))
		assert.NotContains(t, f.store.items, e.ID)
		assert.Equal(t, []primitive.ObjectID{e.ID}, f.requests.byEvent)
		assert.Equal(t, []primitive.ObjectID{e.ID}, f.favorites.byEvent)
	})
}

func TestIsFull(t *testing.T) {
	creator := primitive.NewObjectID()

	e := futureEvent(creator)
	e.MaxParticipants = capOf(1)
	assert.False(t, e.IsFull(), "the creator holds no slot")

	e.Participants = append(e.Participants, primitive.NewObjectID())
	assert.True(t, e.IsFull())

	e.MaxParticipants = nil
	assert.False(t, e.IsFull(), "events without a capacity are never full")
}
