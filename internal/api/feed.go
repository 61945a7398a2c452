package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eduncan911/podcast"
	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// Removes all markup from the string before it goes out in the feed.
// Stored data is left exactly as submitted.
func sanitize(s string) string {
	return strings.TrimSpace(stripPolicy.Sanitize(s))
}

// getPublishedRSS renders the published listing as an RSS channel for
// podcast clients.
func (s *Server) getPublishedRSS(w http.ResponseWriter, r *http.Request) error {
	podcasts, err := s.repo.PublishedPodcasts(r.Context())
	if err != nil {
		return err
	}

	now := time.Now()
	feed := podcast.New(
		"Published podcasts",
		s.publicURL+"/podcasts/published",
		"Podcasts that have cleared moderation.",
		nil, &now,
	)

	for _, p := range podcasts {
		link := p.FeedURL
		if p.MarketingURL != nil {
			link = *p.MarketingURL
		}

		item := podcast.Item{
			Title:       p.Name,
			Description: sanitize(p.Description),
			Link:        link,
			PubDate:     &p.CreatedAt,
		}
		if item.Description == "" {
			item.Description = p.Name
		}
		if _, err := feed.AddItem(item); err != nil {
			return fmt.Errorf("error adding feed item: %s", err)
		}
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.WriteHeader(http.StatusOK)
	if err := feed.Encode(w); err != nil {
		return fmt.Errorf("error encoding feed: %s", err)
	}

	return nil
}
