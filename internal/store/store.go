package store

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrSongNotFound signals a lookup or delete of an unknown song id.
	ErrSongNotFound = errors.New("song not found")
	// ErrInvalidSongID indicates the supplied id is not a well-formed object id.
	ErrInvalidSongID = errors.New("invalid song id")
	// ErrInvalidSong indicates a record that fails validation before insert.
	ErrInvalidSong = errors.New("invalid song")
)

// Store provides persistence backed by MongoDB.
type Store struct {
	songs *mongo.Collection
}

// New sets up a Store using the provided database handle.
func New(db *mongo.Database) *Store {
	return &Store{songs: db.Collection("songs")}
}

// ParseID checks the syntactic shape of a song id without touching the
// database. Malformed ids map to ErrInvalidSongID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidSongID
	}
	return oid, nil
}
