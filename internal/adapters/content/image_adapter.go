package content

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	"github.com/zatekoja/woundtrack/internal/infrastructure/clients/contentapi"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

// ImageAdapter uploads wound photos to the content API media library
type ImageAdapter struct {
	client      contentapi.Client
	mediaOrigin string
}

// NewImageAdapter creates an image store over the content API
func NewImageAdapter(client contentapi.Client, baseURL string) *ImageAdapter {
	return &ImageAdapter{client: client, mediaOrigin: origin(baseURL)}
}

var _ repositories.ImageStore = (*ImageAdapter)(nil)

// Upload stores the image under a collision-free name
func (a *ImageAdapter) Upload(ctx context.Context, image *entities.ImageUpload) (entities.ImageRef, error) {
	if image == nil || len(image.Data) == 0 {
		return entities.ImageRef{}, apperrors.NewValidationError("image is empty")
	}

	files, err := a.client.Upload(ctx, uploadName(image.Filename), image.ContentType, image.Data)
	if err != nil {
		return entities.ImageRef{}, mapError(err, "failed to upload image")
	}

	f := files[0]
	ref := entities.ImageRef{ID: string(f.ID), URL: f.URL}
	if strings.HasPrefix(ref.URL, "/") && a.mediaOrigin != "" {
		ref.URL = a.mediaOrigin + ref.URL
	}
	if ref.IsZero() {
		return entities.ImageRef{}, mapError(contentapi.ErrMalformedResponse, "upload returned no file id")
	}
	return ref, nil
}

// uploadName keeps the original extension and replaces the stem with a uuid.
func uploadName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".jpg"
	}
	return "wound-" + uuid.NewString() + ext
}
