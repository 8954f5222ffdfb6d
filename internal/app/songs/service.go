package songs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"songvault/internal/assets"
	"songvault/internal/store"
)

// ErrInvalidInput rejects an add request at the boundary, before any upload
// or database call is made.
var ErrInvalidInput = errors.New("invalid input")

// DefaultAddTimeout bounds one add operation across both uploads and the
// database write. The add depends on two external network calls, so it must
// not hang indefinitely; hitting the deadline counts as an upload failure.
const DefaultAddTimeout = 60 * time.Second

// File is one multipart upload payload handed over by the transport layer.
type File struct {
	Data        []byte
	ContentType string
}

// Store captures the persistence operations the service needs.
type Store interface {
	InsertSong(ctx context.Context, song store.Song) (store.Song, error)
	GetSong(ctx context.Context, id primitive.ObjectID) (store.Song, error)
	DeleteSong(ctx context.Context, id primitive.ObjectID) error
	ListSongs(ctx context.Context) ([]store.Song, error)
}

// Service exposes the song record workflows.
type Service interface {
	Add(ctx context.Context, title, album string, image, audio File) (store.Song, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]store.Song, error)
}

type service struct {
	store    Store
	uploader assets.Uploader
	timeout  time.Duration
}

// New constructs a song Service backed by the provided store and uploader.
// A non-positive timeout falls back to DefaultAddTimeout.
func New(st Store, uploader assets.Uploader, timeout time.Duration) Service {
	if timeout <= 0 {
		timeout = DefaultAddTimeout
	}
	return &service{store: st, uploader: uploader, timeout: timeout}
}

// Add uploads both files and persists the record only once both uploads have
// succeeded. If either upload fails, or the record cannot be written, any
// asset that already reached remote storage is deleted again, so that a
// record exists iff both of its assets do.
func (s *service) Add(ctx context.Context, title, album string, image, audio File) (store.Song, error) {
	title = strings.TrimSpace(title)
	album = strings.TrimSpace(album)
	switch {
	case title == "":
		return store.Song{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	case album == "":
		return store.Song{}, fmt.Errorf("%w: album is required", ErrInvalidInput)
	case len(image.Data) == 0:
		return store.Song{}, fmt.Errorf("%w: image file is required", ErrInvalidInput)
	case len(audio.Data) == 0:
		return store.Song{}, fmt.Errorf("%w: audio file is required", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// The two uploads target independent remote resources, so they run
	// concurrently. Both must finish before the record is written; a failure
	// in either cancels the other.
	var imageRef, audioRef assets.Reference
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ref, err := s.uploader.Upload(gctx, image.Data, image.ContentType, assets.CategoryImage)
		if err != nil {
			return err
		}
		imageRef = ref
		return nil
	})
	g.Go(func() error {
		ref, err := s.uploader.Upload(gctx, audio.Data, audio.ContentType, assets.CategoryAudio)
		if err != nil {
			return err
		}
		audioRef = ref
		return nil
	})

	if err := g.Wait(); err != nil {
		// The sibling upload may have completed before the failure; remove
		// the orphan so no remote asset survives without a record.
		s.compensate(imageRef, audioRef)
		var ue *assets.UploadError
		if !errors.As(err, &ue) {
			err = fmt.Errorf("upload assets: %w", err)
		}
		return store.Song{}, err
	}

	song, err := s.store.InsertSong(ctx, store.Song{
		Title:     title,
		Album:     album,
		Image:     imageRef,
		Audio:     audioRef,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.compensate(imageRef, audioRef)
		return store.Song{}, fmt.Errorf("persist song: %w", err)
	}

	return song, nil
}

// compensate deletes whichever assets were uploaded during a failed add. It
// runs on a fresh context because the operation's own context is already
// canceled or past its deadline.
func (s *service) compensate(imageRef, audioRef assets.Reference) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if imageRef.DeletionID != "" {
		if err := s.uploader.Delete(ctx, imageRef.DeletionID, assets.CategoryImage); err != nil {
			log.Error().Err(err).Str("deletion_id", imageRef.DeletionID).Msg("compensating image deletion failed")
		}
	}
	if audioRef.DeletionID != "" {
		if err := s.uploader.Delete(ctx, audioRef.DeletionID, assets.CategoryAudio); err != nil {
			log.Error().Err(err).Str("deletion_id", audioRef.DeletionID).Msg("compensating audio deletion failed")
		}
	}
}

// Delete removes the song record and its remote assets. Remote deletions are
// best-effort: a provider failure is logged but never blocks record removal,
// since a dangling storage object is preferable to a database record whose
// assets are gone.
func (s *service) Delete(ctx context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}

	song, err := s.store.GetSong(ctx, oid)
	if err != nil {
		return err
	}

	s.deleteAsset(ctx, song.Image, assets.CategoryImage)
	s.deleteAsset(ctx, song.Audio, assets.CategoryAudio)

	if err := s.store.DeleteSong(ctx, oid); err != nil && !errors.Is(err, store.ErrSongNotFound) {
		return fmt.Errorf("remove song record: %w", err)
	}
	return nil
}

func (s *service) deleteAsset(ctx context.Context, ref assets.Reference, category assets.Category) {
	if ref.DeletionID == "" {
		return
	}
	if err := s.uploader.Delete(ctx, ref.DeletionID, category); err != nil {
		log.Warn().
			Err(err).
			Str("category", string(category)).
			Str("deletion_id", ref.DeletionID).
			Msg("remote asset deletion failed")
	}
}

// List returns all songs, newest first.
func (s *service) List(ctx context.Context) ([]store.Song, error) {
	return s.store.ListSongs(ctx)
}
