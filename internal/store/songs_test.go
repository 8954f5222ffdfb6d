package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"songvault/internal/assets"
)

func testSong() Song {
	return Song{
		Title: "Riff",
		Album: "Demo",
		Image: assets.Reference{
			URL:        "https://cdn.example.com/songs/images/a.png",
			DeletionID: "songs/images/a",
		},
		Audio: assets.Reference{
			URL:        "https://cdn.example.com/songs/audio/a.mp3",
			DeletionID: "songs/audio/a",
		},
	}
}

func songDoc(song Song) bson.D {
	return bson.D{
		{Key: "_id", Value: song.ID},
		{Key: "title", Value: song.Title},
		{Key: "album", Value: song.Album},
		{Key: "image", Value: bson.D{
			{Key: "url", Value: song.Image.URL},
			{Key: "deletionId", Value: song.Image.DeletionID},
		}},
		{Key: "audio", Value: bson.D{
			{Key: "url", Value: song.Audio.URL},
			{Key: "deletionId", Value: song.Audio.DeletionID},
		}},
		{Key: "createdAt", Value: song.CreatedAt},
	}
}

func TestValidateSong(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Song)
		wantErr bool
	}{
		{name: "valid song", mutate: func(*Song) {}},
		{name: "missing title", mutate: func(s *Song) { s.Title = "" }, wantErr: true},
		{name: "missing album", mutate: func(s *Song) { s.Album = "" }, wantErr: true},
		{name: "missing image url", mutate: func(s *Song) { s.Image.URL = "" }, wantErr: true},
		{name: "missing image deletion id", mutate: func(s *Song) { s.Image.DeletionID = "" }, wantErr: true},
		{name: "missing audio url", mutate: func(s *Song) { s.Audio.URL = "" }, wantErr: true},
		{name: "missing audio deletion id", mutate: func(s *Song) { s.Audio.DeletionID = "" }, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			song := testSong()
			tc.mutate(&song)

			err := validateSong(song)
			if tc.wantErr && !errors.Is(err, ErrInvalidSong) {
				t.Fatalf("expected ErrInvalidSong, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := ParseID(oid.Hex())
	if err != nil {
		t.Fatalf("ParseID(%q): %v", oid.Hex(), err)
	}
	if got != oid {
		t.Fatalf("expected %v, got %v", oid, got)
	}

	if _, err := ParseID("  " + oid.Hex() + "  "); err != nil {
		t.Fatalf("expected whitespace to be tolerated, got %v", err)
	}

	for _, bad := range []string{"", "not-an-id", "123", oid.Hex() + "ff"} {
		if _, err := ParseID(bad); !errors.Is(err, ErrInvalidSongID) {
			t.Fatalf("ParseID(%q): expected ErrInvalidSongID, got %v", bad, err)
		}
	}
}

func TestInsertSong(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id and timestamp", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		s := New(mt.DB)
		before := time.Now().UTC()

		got, err := s.InsertSong(context.Background(), testSong())
		if err != nil {
			t.Fatalf("InsertSong: %v", err)
		}
		if got.ID.IsZero() {
			t.Fatal("expected assigned id")
		}
		if got.CreatedAt.Before(before.Add(-time.Second)) {
			t.Fatalf("expected createdAt to be set, got %v", got.CreatedAt)
		}
	})

	mt.Run("trims title and album", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		s := New(mt.DB)
		song := testSong()
		song.Title = "  Riff "
		song.Album = " Demo  "

		got, err := s.InsertSong(context.Background(), song)
		if err != nil {
			t.Fatalf("InsertSong: %v", err)
		}
		if got.Title != "Riff" || got.Album != "Demo" {
			t.Fatalf("expected trimmed fields, got %q / %q", got.Title, got.Album)
		}
	})

	mt.Run("rejects invalid record before any write", func(mt *mtest.T) {
		s := New(mt.DB)
		song := testSong()
		song.Image.DeletionID = ""

		if _, err := s.InsertSong(context.Background(), song); !errors.Is(err, ErrInvalidSong) {
			t.Fatalf("expected ErrInvalidSong, got %v", err)
		}
	})
}

func TestGetSong(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		want := testSong()
		want.ID = primitive.NewObjectID()
		want.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

		mt.AddMockResponses(mtest.CreateCursorResponse(1, "songvault.songs", mtest.FirstBatch, songDoc(want)))

		s := New(mt.DB)
		got, err := s.GetSong(context.Background(), want.ID)
		if err != nil {
			t.Fatalf("GetSong: %v", err)
		}
		if got.ID != want.ID || got.Title != want.Title {
			t.Fatalf("unexpected song %+v", got)
		}
		if got.Image != want.Image || got.Audio != want.Audio {
			t.Fatalf("asset references did not round-trip: %+v", got)
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "songvault.songs", mtest.FirstBatch))

		s := New(mt.DB)
		if _, err := s.GetSong(context.Background(), primitive.NewObjectID()); !errors.Is(err, ErrSongNotFound) {
			t.Fatalf("expected ErrSongNotFound, got %v", err)
		}
	})
}

func TestDeleteSong(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		s := New(mt.DB)
		if err := s.DeleteSong(context.Background(), primitive.NewObjectID()); err != nil {
			t.Fatalf("DeleteSong: %v", err)
		}
	})

	mt.Run("missing record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		s := New(mt.DB)
		if err := s.DeleteSong(context.Background(), primitive.NewObjectID()); !errors.Is(err, ErrSongNotFound) {
			t.Fatalf("expected ErrSongNotFound, got %v", err)
		}
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11600,
			Name:    "InterruptedAtShutdown",
			Message: "interrupted at shutdown",
		}))

		s := New(mt.DB)
		err := s.DeleteSong(context.Background(), primitive.NewObjectID())
		if err == nil || errors.Is(err, ErrSongNotFound) {
			t.Fatalf("expected wrapped server error, got %v", err)
		}
	})
}

func TestListSongs(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns batches in order", func(mt *mtest.T) {
		newer := testSong()
		newer.ID = primitive.NewObjectID()
		newer.Title = "Newer"
		newer.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

		older := testSong()
		older.ID = primitive.NewObjectID()
		older.Title = "Older"
		older.CreatedAt = newer.CreatedAt.Add(-time.Hour)

		const ns = "songvault.songs"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, songDoc(newer)),
			mtest.CreateCursorResponse(1, ns, mtest.NextBatch, songDoc(older)),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		s := New(mt.DB)
		got, err := s.ListSongs(context.Background())
		if err != nil {
			t.Fatalf("ListSongs: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(got))
		}
		if got[0].Title != "Newer" || got[1].Title != "Older" {
			t.Fatalf("unexpected order: %q, %q", got[0].Title, got[1].Title)
		}
	})

	mt.Run("empty collection yields empty slice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "songvault.songs", mtest.FirstBatch))

		s := New(mt.DB)
		got, err := s.ListSongs(context.Background())
		if err != nil {
			t.Fatalf("ListSongs: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", got)
		}
	})
}
