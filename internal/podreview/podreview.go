package podreview

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("podcast not found")
	ErrConflict         = errors.New("podcast already exists")
	ErrAlreadyPublished = errors.New("podcast already published")
)

// Status is the moderation state of a podcast.
type Status string

const (
	// StatusReview is where every podcast lands on creation, pending moderation.
	StatusReview Status = "review"
	// StatusPublished means moderation is done and the podcast is publicly listable.
	StatusPublished Status = "published"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusReview || s == StatusPublished
}

type (
	// Podcast represents a podcast submission and its moderation state.
	//
	// DeletedAt being set marks the row soft-deleted: it no longer shows up
	// in any read but stays around so its name and urls can be reused.
	Podcast struct {
		ID           string     `db:"id"`
		Name         string     `db:"name"`
		Description  string     `db:"description"`
		MarketingURL *string    `db:"marketing_url"`
		FeedURL      string     `db:"feed_url"`
		Image        *string    `db:"image"`
		Status       Status     `db:"status"`
		CreatedAt    time.Time  `db:"created_at"`
		UpdatedAt    time.Time  `db:"updated_at"`
		DeletedAt    *time.Time `db:"deleted_at"`
	}

	// Holds the optional fields for updating a podcast.
	UpdateArgs struct {
		Name         *string
		Description  *string
		MarketingURL *string
		FeedURL      *string
		Image        *string
		Status       *Status
	}

	Repository interface {
		// Podcast fetches a single visible podcast.
		Podcast(ctx context.Context, id string) (Podcast, error)
		// PublishedPodcasts lists visible podcasts that cleared moderation.
		PublishedPodcasts(ctx context.Context) ([]Podcast, error)
		// InsertPodcast stores p with a fresh id and status forced to review.
		InsertPodcast(ctx context.Context, p Podcast) (Podcast, error)
		// UpdatePodcast applies args to a visible podcast.
		UpdatePodcast(ctx context.Context, id string, args UpdateArgs) error
		// ApprovePodcast moves a visible podcast from review to published.
		// Returns ErrAlreadyPublished if the transition already happened.
		ApprovePodcast(ctx context.Context, id string) error
		// SoftDeletePodcast marks a visible podcast deleted. Deleting twice
		// is ErrNotFound, not a no-op.
		SoftDeletePodcast(ctx context.Context, id string) error

		UniquenessStore
	}

	// UniquenessStore is the read-only slice of the repository the validator
	// needs: visibility-scoped probes for taken field values.
	UniquenessStore interface {
		FieldTaken(ctx context.Context, column string, value string, excludeID string) (bool, error)
	}
)
