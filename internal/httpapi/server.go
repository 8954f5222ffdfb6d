package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"songvault/internal/app/songs"
	"songvault/internal/store"
)

// defaultMaxUploadBytes caps one multipart request body. Two attached files
// plus form fields fit comfortably; anything larger is rejected up front.
const defaultMaxUploadBytes = 32 << 20

// SongService coordinates the song record workflows behind the HTTP surface.
type SongService interface {
	Add(ctx context.Context, title, album string, image, audio songs.File) (store.Song, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]store.Song, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	songs          SongService
	maxUploadBytes int64
}

// New configures a Server with the given song service.
func New(songs SongService) *Server {
	return &Server{
		songs:          songs,
		maxUploadBytes: defaultMaxUploadBytes,
	}
}

// Routes exposes the HTTP handlers for the song catalogue.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Song routes
	mux.HandleFunc("GET /api/songs", s.handleListSongs)
	mux.HandleFunc("POST /api/songs", s.handleAddSong)
	mux.HandleFunc("DELETE /api/songs/{id}", s.handleDeleteSong)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
