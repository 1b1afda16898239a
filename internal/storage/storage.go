package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoURLExpiry is how long a presigned exercise video URL stays valid.
const VideoURLExpiry = 15 * time.Minute

var ErrNotVideo = errors.New("content type is not a video/* MIME type")

// VideoStore keeps exercise videos in object storage. Clients upload and
// stream the bytes themselves through presigned URLs.
type VideoStore interface {
	// PresignUpload returns a PUT URL for key. The client must send the same
	// Content-Type header.
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	// Delete removes the given videos. Keys that do not exist are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// ExerciseVideoKey builds a unique object key for a new exercise video,
// such as plans/<planID>/exercises/<uuid>.mp4. Content type parameters are
// dropped from the extension.
func ExerciseVideoKey(planID primitive.ObjectID, contentType string) (string, error) {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	kind, ext, _ := strings.Cut(strings.TrimSpace(mediaType), "/")
	if kind != "video" {
		return "", ErrNotVideo
	}

	name := uuid.NewString()
	if ext = strings.TrimSpace(ext); ext != "" {
		name += "." + ext
	}
	return path.Join("plans", planID.Hex(), "exercises", name), nil
}
