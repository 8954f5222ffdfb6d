package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"songvault/internal/app/songs"
	"songvault/internal/assets"
	"songvault/internal/store"
)

// handleListSongs handles GET /api/songs, newest first.
func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	list, err := s.songs.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list songs failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not list songs"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleAddSong handles POST /api/songs: a multipart form with title, album,
// and one image plus one audio file.
func (s *Server) handleAddSong(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	image, err := readFormFile(r, "image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	audio, err := readFormFile(r, "audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	song, err := s.songs.Add(r.Context(), r.FormValue("title"), r.FormValue("album"), image, audio)
	if err != nil {
		var ue *assets.UploadError
		switch {
		case errors.Is(err, songs.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.As(err, &ue):
			log.Error().Err(err).Str("category", string(ue.Category)).Msg("asset upload failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "asset upload failed"})
		default:
			log.Error().Err(err).Msg("add song failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not save song"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, song)
}

// handleDeleteSong handles DELETE /api/songs/{id}. Remote deletion failures
// are handled inside the service and never surface here.
func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	err := s.songs.Delete(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, messageResponse{Message: "song deleted"})
	case errors.Is(err, store.ErrInvalidSongID):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid song id"})
	case errors.Is(err, store.ErrSongNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "song not found"})
	default:
		log.Error().Err(err).Msg("delete song failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not delete song"})
	}
}

// readFormFile pulls one named file out of the parsed multipart form. The
// declared content type is kept when present; otherwise it is sniffed from
// the payload.
func readFormFile(r *http.Request, field string) (songs.File, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return songs.File{}, fmt.Errorf("%s file is required", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return songs.File{}, fmt.Errorf("could not read %s file", field)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return songs.File{Data: data, ContentType: contentType}, nil
}
