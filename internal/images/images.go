package images

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Upload is a stored image reference: the CDN identifier plus a
// retrievable URL.
type Upload struct {
	PublicID string
	URL      string
}

// Store wraps the Cloudinary CDN for event images and avatars.
type Store struct {
	cld *cloudinary.Cloudinary
}

func New(cloudinaryURL string) (*Store, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	return &Store{cld: cld}, nil
}

// UploadEvent stores an event image, capped to 1000x1000.
func (s *Store) UploadEvent(ctx context.Context, file multipart.File) (*Upload, error) {
	return s.upload(ctx, file, "joinup_events", "c_limit,w_1000,h_1000")
}

// UploadAvatar stores a profile picture, cropped around the face.
func (s *Store) UploadAvatar(ctx context.Context, file multipart.File) (*Upload, error) {
	return s.upload(ctx, file, "joinup_avatars", "c_fill,g_face,w_400,h_400")
}

func (s *Store) upload(ctx context.Context, file multipart.File, folder, transformation string) (*Upload, error) {
	res, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		Transformation: transformation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	return &Upload{PublicID: res.PublicID, URL: res.SecureURL}, nil
}

// Destroy removes a stored image. Callers treat failures as
// non-fatal cleanup.
func (s *Store) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to destroy image %s: %w", publicID, err)
	}
	return nil
}
