package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Category identifies the kind of asset being stored. It selects the remote
// folder, the accepted content types, and the provider resource type, so it
// must be threaded through to deletion rather than inferred there.
type Category string

const (
	// CategoryImage is cover art for a song.
	CategoryImage Category = "image"
	// CategoryAudio is the song recording itself.
	CategoryAudio Category = "audio"
)

// Reference points at one uploaded asset: the public URL plus the
// provider-issued identifier needed to delete exactly that asset later.
// DeletionID is always the value returned by the upload call; it is never
// reconstructed by parsing the URL.
type Reference struct {
	URL        string `bson:"url" json:"url"`
	DeletionID string `bson:"deletionId" json:"deletionId"`
}

// UploadError reports a failed upload: unsupported content, a provider
// rejection, or a network failure. Callers must not persist a record that
// references the failed upload.
type UploadError struct {
	Category Category
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Category, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Uploader stores raw asset bytes in object storage and removes them again.
// Implementations must be safe for concurrent use.
type Uploader interface {
	// Upload stores data under the category's namespace and returns the
	// reference needed to serve and later delete the asset. Failures are
	// reported as *UploadError.
	Upload(ctx context.Context, data []byte, contentType string, category Category) (Reference, error)

	// Delete removes the asset identified by deletionID. Deleting an unknown
	// or already-deleted identifier is not an error; cleanup is best-effort.
	Delete(ctx context.Context, deletionID string, category Category) error
}

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

var audioTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/wave":  true,
}

// Valid reports whether c is one of the known asset categories.
func (c Category) Valid() bool {
	return c == CategoryImage || c == CategoryAudio
}

// Folder returns the logical storage folder for assets of this category.
func (c Category) Folder() string {
	if c == CategoryAudio {
		return "songs/audio"
	}
	return "songs/images"
}

// Accepts reports whether contentType is allowed for the category.
func (c Category) Accepts(contentType string) bool {
	mt := normalizeContentType(contentType)
	switch c {
	case CategoryImage:
		return imageTypes[mt]
	case CategoryAudio:
		return audioTypes[mt]
	default:
		return false
	}
}

// normalizeContentType lowercases the media type and strips any parameters
// (e.g. "; charset=...").
func normalizeContentType(contentType string) string {
	mt := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

// checkPayload validates an upload request before any provider call is made.
func checkPayload(data []byte, contentType string, category Category) error {
	if !category.Valid() {
		return fmt.Errorf("unknown asset category %q", category)
	}
	if len(data) == 0 {
		return errors.New("empty file payload")
	}
	if !category.Accepts(contentType) {
		return fmt.Errorf("unsupported %s content type %q", category, contentType)
	}
	return nil
}
