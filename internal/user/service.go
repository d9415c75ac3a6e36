package user

import (
	"context"
	"errors"
	"log"
	"mime/multipart"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joinup-app/joinup/internal/images"
)

// Common errors
var (
	ErrNotFound = errors.New("user not found")
)

// Store is the persistence surface the service needs.
type Store interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, aboutMe *string, avatar *Avatar) (*User, error)
}

// ImageStore uploads and deletes avatar images.
type ImageStore interface {
	UploadAvatar(ctx context.Context, file multipart.File) (*images.Upload, error)
	Destroy(ctx context.Context, publicID string) error
}

// Service handles profile business logic
type Service struct {
	store  Store
	images ImageStore
}

// NewService creates a new user service with dependencies injected
func NewService(store Store, images ImageStore) *Service {
	return &Service{store: store, images: images}
}

// GetProfile retrieves the caller's own profile
func (s *Service) GetProfile(ctx context.Context, id primitive.ObjectID) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// UpdateProfile modifies the caller's about text and, when a file is
// provided, replaces their avatar. The previous avatar is destroyed
// best-effort.
func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, aboutMe *string, file multipart.File) (*User, error) {
	var avatar *Avatar

	if file != nil && s.images != nil {
		current, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrNotFound
		}

		if current.Avatar.PublicID != "" {
			if err := s.images.Destroy(ctx, current.Avatar.PublicID); err != nil {
				log.Printf("failed to delete old avatar %s: %v", current.Avatar.PublicID, err)
			}
		}

		up, err := s.images.UploadAvatar(ctx, file)
		if err != nil {
			return nil, err
		}
		avatar = &Avatar{PublicID: up.PublicID, URL: up.URL}
	}

	updated, err := s.store.UpdateProfile(ctx, id, aboutMe, avatar)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}
