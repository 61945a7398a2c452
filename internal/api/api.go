package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	prerrs "github.com/jdholdren/podreview/internal/errors"
	"github.com/jdholdren/podreview/internal/podreview"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("error encoding json response: %s", err)
	}

	return nil
}

// HandlerFuncE is a modified type of [http.HandlerFunc] that returns an error.
type HandlerFuncE func(w http.ResponseWriter, r *http.Request) error

func (f HandlerFuncE) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}

	// Either it's already a structured error, or coerce it to one
	sErr := &prerrs.Error{}
	if !errors.As(err, &sErr) {
		slog.Error("unstructured error from handler", "err", err)
		sErr = prerrs.E(http.StatusInternalServerError, "internal server error")
	}

	if err := writeJSON(w, sErr.Status, sErr); err != nil {
		slog.Error("error writing response", "error", err)
	}
}

// errRouter is a newtype around a mux router that allows attaching handlers that return errors.
type errRouter struct {
	*mux.Router
}

func (r errRouter) HandleFuncE(path string, f HandlerFuncE) *mux.Route {
	return r.Handle(path, f)
}

type (
	// Server handles the podcast moderation API: submissions come in, sit
	// in review, and either get approved into the published listing or
	// soft-deleted.
	Server struct {
		*http.Server

		repo podreview.Repository

		publicURL string // Base URL the RSS feed points back at
	}

	ServerConfig struct {
		Port       int
		CorsOrigin string
		PublicURL  string
	}
)

func NewServer(config ServerConfig, repo podreview.Repository) *Server {
	r := errRouter{Router: mux.NewRouter()}

	srvr := Server{
		repo:      repo,
		publicURL: config.PublicURL,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			Handler: handlers.CORS(
				handlers.AllowedOrigins([]string{config.CorsOrigin}),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"content-type", "accept"}),
			)(r),
		},
	}

	r.Use(accessLogMiddleware) // Log everything

	// The feed is meant for podcast clients, so it sits outside the strict
	// accept matching applied to the JSON surface.
	r.HandleFuncE("/podcasts/published/rss", srvr.getPublishedRSS).Methods(http.MethodGet)

	vnd := errRouter{Router: r.NewRoute().Subrouter()}
	vnd.Use(strictAcceptMiddleware)

	vnd.HandleFuncE("/podcasts/published", srvr.getPublishedPodcasts).Methods(http.MethodGet)
	vnd.HandleFuncE("/podcasts/approve/{id}", srvr.getApprovePodcast).Methods(http.MethodGet)
	vnd.HandleFuncE("/podcasts", srvr.postPodcast).Methods(http.MethodPost)
	vnd.HandleFuncE("/podcasts/{id}", srvr.getPodcast).Methods(http.MethodGet)
	vnd.HandleFuncE("/podcasts/{id}", srvr.putPodcast).Methods(http.MethodPut)
	vnd.HandleFuncE("/podcasts/{id}", srvr.deletePodcast).Methods(http.MethodDelete)

	slog.Debug("configured podreview server", "port", config.Port)

	return &srvr
}
