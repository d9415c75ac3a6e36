package user

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/internal/images"
)

type memStore struct {
	items map[primitive.ObjectID]*User
}

func newMemStore(users ...*User) *memStore {
	m := &memStore{items: map[primitive.ObjectID]*User{}}
	for _, u := range users {
		m.items[u.ID] = u
	}
	return m
}

func (m *memStore) GetByID(_ context.Context, id primitive.ObjectID) (*User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateProfile(_ context.Context, id primitive.ObjectID, aboutMe *string, avatar *Avatar) (*User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	if aboutMe != nil {
		u.AboutMe = *aboutMe
	}
	if avatar != nil {
		u.Avatar = *avatar
	}
	cp := *u
	return &cp, nil
}

type stubImages struct {
	uploaded  *images.Upload
	destroyed []string
}

func (s *stubImages) UploadAvatar(_ context.Context, _ multipart.File) (*images.Upload, error) {
	if s.uploaded == nil {
		return nil, errors.New("upload failed")
	}
	return s.uploaded, nil
}

func (s *stubImages) Destroy(_ context.Context, publicID string) error {
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

type nopFile struct{ multipart.File }

func sampleUser() *User {
	return &User{
		ID:       primitive.NewObjectID(),
		Username: "ines",
		Email:    "ines@example.com",
		AboutMe:  DefaultAboutMe,
		Avatar:   Avatar{PublicID: "joinup_avatars/old", URL: "https://cdn.example.com/old.png"},
		IsActive: true,
	}
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	u := sampleUser()
	svc := NewService(newMemStore(u), nil)

	got, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ines", got.Username)

	_, err = svc.GetProfile(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("about text only", func(t *testing.T) {
		u := sampleUser()
		store := newMemStore(u)
		svc := NewService(store, nil)

		about := "hiker and coffee snob"
		got, err := svc.UpdateProfile(ctx, u.ID, &about, nil)
		require.NoError(t, err)
		assert.Equal(t, "hiker and coffee snob", got.AboutMe)
		assert.Equal(t, "joinup_avatars/old", got.Avatar.PublicID)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := NewService(newMemStore(), nil)
		_, err := svc.UpdateProfile(ctx, primitive.NewObjectID(), nil, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("new avatar replaces and destroys the old one", func(t *testing.T) {
		u := sampleUser()
		store := newMemStore(u)
		imgs := &stubImages{uploaded: &images.Upload{PublicID: "joinup_avatars/new", URL: "https://cdn.example.com/new.png"}}
		svc := NewService(store, imgs)

		got, err := svc.UpdateProfile(ctx, u.ID, nil, nopFile{})
		require.NoError(t, err)
		assert.Equal(t, "joinup_avatars/new", got.Avatar.PublicID)
		assert.Equal(t, []string{"joinup_avatars/old"}, imgs.destroyed)
	})

	t.Run("failed upload leaves the profile untouched", func(t *testing.T) {
		u := sampleUser()
		store := newMemStore(u)
		svc := NewService(store, &stubImages{})

		_, err := svc.UpdateProfile(ctx, u.ID, nil, nopFile{})
		require.Error(t, err)
		assert.Equal(t, DefaultAboutMe, store.items[u.ID].AboutMe)
	})
}
