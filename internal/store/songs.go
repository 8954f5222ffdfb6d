package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"songvault/internal/assets"
)

// Song represents a stored song together with its two remote assets. The
// record is the single source of truth for which remote assets exist.
type Song struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Album     string             `bson:"album" json:"album"`
	Image     assets.Reference   `bson:"image" json:"image"`
	Audio     assets.Reference   `bson:"audio" json:"audio"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

func validateSong(song Song) error {
	if song.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidSong)
	}
	if song.Album == "" {
		return fmt.Errorf("%w: album is required", ErrInvalidSong)
	}
	if song.Image.URL == "" || song.Image.DeletionID == "" {
		return fmt.Errorf("%w: incomplete image reference", ErrInvalidSong)
	}
	if song.Audio.URL == "" || song.Audio.DeletionID == "" {
		return fmt.Errorf("%w: incomplete audio reference", ErrInvalidSong)
	}
	return nil
}

// InsertSong persists a new song and returns it with the assigned id.
func (s *Store) InsertSong(ctx context.Context, song Song) (Song, error) {
	song.Title = strings.TrimSpace(song.Title)
	song.Album = strings.TrimSpace(song.Album)
	if err := validateSong(song); err != nil {
		return Song{}, err
	}
	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now().UTC()
	}

	res, err := s.songs.InsertOne(ctx, song)
	if err != nil {
		return Song{}, fmt.Errorf("insert song: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return Song{}, fmt.Errorf("insert song: unexpected inserted id type %T", res.InsertedID)
	}
	song.ID = oid

	return song, nil
}

// GetSong returns a single song by id.
func (s *Store) GetSong(ctx context.Context, id primitive.ObjectID) (Song, error) {
	var song Song
	err := s.songs.FindOne(ctx, bson.M{"_id": id}).Decode(&song)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Song{}, ErrSongNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// DeleteSong removes the song record.
func (s *Store) DeleteSong(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.songs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrSongNotFound
	}
	return nil
}

// ListSongs returns all songs, newest first.
func (s *Store) ListSongs(ctx context.Context) ([]Song, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.songs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer cursor.Close(ctx)

	songs := []Song{}
	for cursor.Next(ctx) {
		var song Song
		if err := cursor.Decode(&song); err != nil {
			return nil, fmt.Errorf("decode song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}

	return songs, nil
}
