package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// resourceType maps a category onto Cloudinary's resource types. Cloudinary
// has no dedicated audio type; audio is stored and deleted as "video".
func resourceType(c Category) string {
	if c == CategoryAudio {
		return "video"
	}
	return "image"
}

// CloudinaryUploader stores assets in Cloudinary through an injected client
// handle, so callers (and tests) decide how the client is configured.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
}

// NewCloudinaryUploader wraps an already-configured Cloudinary client.
func NewCloudinaryUploader(client *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{client: client}
}

// Upload sends the payload to Cloudinary and returns the secure URL together
// with the public ID Cloudinary assigned. The public ID is the deletion
// identifier; it is taken from the response verbatim.
func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, contentType string, category Category) (Reference, error) {
	if err := checkPayload(data, contentType, category); err != nil {
		return Reference{}, &UploadError{Category: category, Err: err}
	}

	resp, err := u.client.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       category.Folder(),
		ResourceType: resourceType(category),
	})
	if err != nil {
		return Reference{}, &UploadError{Category: category, Err: err}
	}
	// The SDK surfaces API-level rejections in the response body with a nil
	// error, so the body has to be checked as well.
	if resp.Error.Message != "" {
		return Reference{}, &UploadError{Category: category, Err: errors.New(resp.Error.Message)}
	}
	if resp.PublicID == "" || resp.SecureURL == "" {
		return Reference{}, &UploadError{Category: category, Err: errors.New("provider response missing public id or url")}
	}

	return Reference{URL: resp.SecureURL, DeletionID: resp.PublicID}, nil
}

// Delete destroys the remote asset. A "not found" result counts as success so
// repeated deletions stay idempotent for callers.
func (u *CloudinaryUploader) Delete(ctx context.Context, deletionID string, category Category) error {
	if deletionID == "" {
		return errors.New("missing deletion id")
	}

	resp, err := u.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     deletionID,
		ResourceType: resourceType(category),
	})
	if err != nil {
		return fmt.Errorf("destroy %s asset %s: %w", category, deletionID, err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("destroy %s asset %s: %s", category, deletionID, resp.Result)
	}
	return nil
}
