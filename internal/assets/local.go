package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var extByType = map[string]string{
	"image/jpeg":  ".jpg",
	"image/jpg":   ".jpg",
	"image/png":   ".png",
	"image/gif":   ".gif",
	"audio/mpeg":  ".mp3",
	"audio/mp3":   ".mp3",
	"audio/wav":   ".wav",
	"audio/x-wav": ".wav",
	"audio/wave":  ".wav",
}

// LocalUploader writes assets to a directory on disk and serves them from a
// static file route. It fulfils the same contract as the Cloudinary uploader
// so development setups can run without provider credentials.
type LocalUploader struct {
	baseDir string
	baseURL string
}

// NewLocalUploader prepares the per-category directories under baseDir.
// baseURL is the public prefix the directory is served from.
func NewLocalUploader(baseDir, baseURL string) (*LocalUploader, error) {
	if baseDir == "" {
		return nil, errors.New("upload directory is required")
	}
	for _, c := range []Category{CategoryImage, CategoryAudio} {
		dir := filepath.Join(baseDir, filepath.FromSlash(c.Folder()))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &LocalUploader{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Dir returns the directory uploads are written to, for static serving.
func (u *LocalUploader) Dir() string { return u.baseDir }

// Upload writes the payload to a freshly named file in the category's folder.
// The deletion identifier is the file's path relative to the base directory.
func (u *LocalUploader) Upload(ctx context.Context, data []byte, contentType string, category Category) (Reference, error) {
	if err := checkPayload(data, contentType, category); err != nil {
		return Reference{}, &UploadError{Category: category, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return Reference{}, &UploadError{Category: category, Err: err}
	}

	name := uuid.New().String() + extByType[normalizeContentType(contentType)]
	rel := path.Join(category.Folder(), name)

	full := filepath.Join(u.baseDir, filepath.FromSlash(rel))
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return Reference{}, &UploadError{Category: category, Err: fmt.Errorf("write file: %w", err)}
	}

	return Reference{URL: u.baseURL + "/" + rel, DeletionID: rel}, nil
}

// Delete removes the file named by deletionID. A missing file is treated as
// already deleted.
func (u *LocalUploader) Delete(ctx context.Context, deletionID string, category Category) error {
	if deletionID == "" {
		return errors.New("missing deletion id")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Confine the identifier to the upload directory.
	rel := strings.TrimPrefix(path.Clean("/"+deletionID), "/")
	full := filepath.Join(u.baseDir, filepath.FromSlash(rel))

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s asset %s: %w", category, deletionID, err)
	}
	return nil
}
