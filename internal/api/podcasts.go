package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	prerrs "github.com/jdholdren/podreview/internal/errors"
	"github.com/jdholdren/podreview/internal/podreview"
	"github.com/jdholdren/podreview/logger"
)

type PodcastResp struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	MarketingURL string    `json:"marketing_url,omitempty"`
	FeedURL      string    `json:"feed_url"`
	Image        string    `json:"image,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func apiPodcast(p podreview.Podcast) PodcastResp {
	var (
		marketingURL string
		image        string
	)
	if p.MarketingURL != nil {
		marketingURL = *p.MarketingURL
	}
	if p.Image != nil {
		image = *p.Image
	}

	return PodcastResp{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		MarketingURL: marketingURL,
		FeedURL:      p.FeedURL,
		Image:        image,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (s *Server) getPublishedPodcasts(w http.ResponseWriter, r *http.Request) error {
	podcasts, err := s.repo.PublishedPodcasts(r.Context())
	if err != nil {
		return err
	}

	resp := []PodcastResp{}
	for _, p := range podcasts {
		resp = append(resp, apiPodcast(p))
	}

	return writeJSON(w, http.StatusOK, resp)
}

func (s *Server) postPodcast(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx  = r.Context()
		body podreview.PodcastInput
	)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return prerrs.E(err, http.StatusBadRequest)
	}

	details, err := podreview.Validate(ctx, s.repo, body, "", true)
	if err != nil {
		return err
	}
	if len(details) > 0 {
		return prerrs.E("validation failed", http.StatusUnprocessableEntity, details)
	}

	// Whatever status the client sent, the store lands the row in review.
	created, err := s.repo.InsertPodcast(ctx, podreview.Podcast{
		Name:         *body.Name,
		Description:  *body.Description,
		FeedURL:      *body.FeedURL,
		MarketingURL: body.MarketingURL,
		Image:        body.Image,
	})
	if errors.Is(err, podreview.ErrConflict) {
		// A concurrent insert beat the validation pre-check to the punch.
		return prerrs.E(err, http.StatusUnprocessableEntity)
	}
	if err != nil {
		return err
	}

	slog.InfoContext(logger.Ctx(ctx, slog.String("podcast_id", created.ID)), "podcast submitted for review")

	return writeJSON(w, http.StatusCreated, apiPodcast(created))
}

func (s *Server) getPodcast(w http.ResponseWriter, r *http.Request) error {
	p, err := s.repo.Podcast(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, podreview.ErrNotFound) {
		return prerrs.E(err, http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, apiPodcast(p))
}

func (s *Server) putPodcast(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx  = r.Context()
		id   = mux.Vars(r)["id"]
		body podreview.PodcastInput
	)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return prerrs.E(err, http.StatusBadRequest)
	}

	// Validation first: a broken payload is reported even when the target
	// turns out not to exist. The record's own values are exempt from the
	// uniqueness probes.
	details, err := podreview.Validate(ctx, s.repo, body, id, false)
	if err != nil {
		return err
	}
	if len(details) > 0 {
		return prerrs.E("validation failed", http.StatusUnprocessableEntity, details)
	}

	err = s.repo.UpdatePodcast(ctx, id, body.UpdateArgs())
	if errors.Is(err, podreview.ErrNotFound) {
		return prerrs.E(err, http.StatusNotFound)
	}
	if errors.Is(err, podreview.ErrConflict) {
		return prerrs.E(err, http.StatusUnprocessableEntity)
	}
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) deletePodcast(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx = r.Context()
		id  = mux.Vars(r)["id"]
	)

	err := s.repo.SoftDeletePodcast(ctx, id)
	if errors.Is(err, podreview.ErrNotFound) {
		return prerrs.E(err, http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	slog.InfoContext(logger.Ctx(ctx, slog.String("podcast_id", id)), "podcast deleted")

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) getApprovePodcast(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx = r.Context()
		id  = mux.Vars(r)["id"]
	)

	err := s.repo.ApprovePodcast(ctx, id)
	if errors.Is(err, podreview.ErrNotFound) {
		return prerrs.E(err, http.StatusNotFound)
	}
	if errors.Is(err, podreview.ErrAlreadyPublished) {
		return prerrs.E(err, http.StatusUnprocessableEntity)
	}
	if err != nil {
		return err
	}

	slog.InfoContext(logger.Ctx(ctx, slog.String("podcast_id", id)), "podcast approved")

	w.WriteHeader(http.StatusNoContent)
	return nil
}
