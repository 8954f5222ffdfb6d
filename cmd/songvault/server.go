package main

import (
	"fmt"
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2"

	"songvault/internal/app/songs"
	"songvault/internal/assets"
	"songvault/internal/httpapi"
	"songvault/internal/middleware"
	"songvault/internal/store"
)

func newUploader(cfg Config) (assets.Uploader, error) {
	switch cfg.UploadBackend {
	case "local":
		return assets.NewLocalUploader(cfg.UploadDir, cfg.PublicBaseURL)
	default:
		client, err := newCloudinaryClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("configure cloudinary: %w", err)
		}
		return assets.NewCloudinaryUploader(client), nil
	}
}

func newCloudinaryClient(cfg Config) (*cloudinary.Cloudinary, error) {
	if cfg.CloudinaryURL != "" {
		return cloudinary.NewFromURL(cfg.CloudinaryURL)
	}
	return cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
}

func newHTTPHandler(cfg Config, dataStore *store.Store, uploader assets.Uploader) http.Handler {
	songSvc := songs.New(dataStore, uploader, cfg.UploadTimeout)

	mux := http.NewServeMux()
	mux.Handle("/", httpapi.New(songSvc).Routes())

	// With the local backend the uploaded files are served by this process.
	if lu, ok := uploader.(*assets.LocalUploader); ok {
		mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(lu.Dir()))))
	}

	handler := middleware.CORS(cfg.AllowedOrigins)(mux)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}
