package storage

import (
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExerciseVideoKey(t *testing.T) {
	planID := primitive.NewObjectID()
	prefix := "plans/" + planID.Hex() + "/exercises/"

	tests := []struct {
		contentType string
		wantSuffix  string
	}{
		{"video/mp4", ".mp4"},
		{"Video/WebM", ".webm"},
		{"video/mp4; codecs=avc1", ".mp4"},
	}
	for _, tt := range tests {
		key, err := ExerciseVideoKey(planID, tt.contentType)
		if err != nil {
			t.Fatalf("%q: %v", tt.contentType, err)
		}
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, tt.wantSuffix) {
			t.Errorf("%q: unexpected key %q", tt.contentType, key)
		}
	}

	first, _ := ExerciseVideoKey(planID, "video/mp4")
	second, _ := ExerciseVideoKey(planID, "video/mp4")
	if first == second {
		t.Fatalf("keys must be unique, got %q twice", first)
	}
}

func TestExerciseVideoKeyRejectsOtherMedia(t *testing.T) {
	for _, ct := range []string{"image/png", "", "videos", "application/video"} {
		if _, err := ExerciseVideoKey(primitive.NewObjectID(), ct); !errors.Is(err, ErrNotVideo) {
			t.Errorf("%q: expected ErrNotVideo, got %v", ct, err)
		}
	}
}
