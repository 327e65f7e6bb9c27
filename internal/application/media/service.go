package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/madadgarapp/listings-api/internal/domain"
	s3infra "github.com/madadgarapp/listings-api/internal/infrastructure/s3"
	"github.com/madadgarapp/listings-api/internal/pkg/id"
)

// UploadInput is one file from a multipart request.
type UploadInput struct {
	Reader   io.Reader
	Filename string
}

type Service interface {
	UploadImages(ctx context.Context, userID string, inputs []UploadInput) ([]string, error)
	UploadVideo(ctx context.Context, userID string, input UploadInput) (string, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type service struct {
	images objectStore
	videos objectStore
	logger *slog.Logger
}

func NewService(images, videos objectStore, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{images: images, videos: videos, logger: logger}
}

// UploadImages stores each image under {userID}/{ulid}.{ext} and returns
// the URLs that succeeded. Individual failures are tolerated so one bad
// file does not sink a multi-image listing, but at least one image must
// make it through.
func (s *service) UploadImages(ctx context.Context, userID string, inputs []UploadInput) ([]string, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no images provided: %w", domain.ErrBadRequest)
	}
	urls := make([]string, 0, len(inputs))
	for _, in := range inputs {
		key := objectKey(userID, in.Filename)
		url, err := s.images.Upload(ctx, key, in.Reader, s3infra.ContentTypeForExt(path.Ext(in.Filename)))
		if err != nil {
			s.logger.Warn("image upload failed", "user_id", userID, "filename", in.Filename, "error", err)
			continue
		}
		urls = append(urls, url)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("all image uploads failed")
	}
	return urls, nil
}

func (s *service) UploadVideo(ctx context.Context, userID string, input UploadInput) (string, error) {
	key := objectKey(userID, input.Filename)
	url, err := s.videos.Upload(ctx, key, input.Reader, s3infra.ContentTypeForExt(path.Ext(input.Filename)))
	if err != nil {
		return "", fmt.Errorf("video upload: %w", err)
	}
	return url, nil
}

// objectKey builds {userID}/{ulid}.{ext}. The original filename only
// contributes its extension, never its name.
func objectKey(userID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s%s", userID, id.New(), ext)
}
