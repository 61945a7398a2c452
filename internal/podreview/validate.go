package podreview

import (
	"context"
	"fmt"
	"net/url"

	prerrs "github.com/jdholdren/podreview/internal/errors"
)

// Field length bounds, matching the published API contract.
const (
	nameMinLen        = 4
	nameMaxLen        = 128
	descriptionMinLen = 4
	descriptionMaxLen = 1000
	urlMaxLen         = 128
	imageMaxLen       = 256
)

// PodcastInput is a candidate field set for creating or updating a podcast.
//
// Pointer fields keep "key absent" and "key present but blank" apart: an
// absent key is allowed on update, a present one is always validated.
type PodcastInput struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	MarketingURL *string `json:"marketing_url"`
	FeedURL      *string `json:"feed_url"`
	Image        *string `json:"image"`
	Status       *string `json:"status"`
}

// UpdateArgs converts the input into store update arguments.
func (in PodcastInput) UpdateArgs() UpdateArgs {
	args := UpdateArgs{
		Name:         in.Name,
		Description:  in.Description,
		MarketingURL: in.MarketingURL,
		FeedURL:      in.FeedURL,
		Image:        in.Image,
	}
	if in.Status != nil {
		status := Status(*in.Status)
		args.Status = &status
	}

	return args
}

// Validate checks every rule against in and collects all violations, not
// just the first. Uniqueness probes go through store and are scoped to
// visible podcasts, skipping the row identified by excludeID so an update
// doesn't collide with itself. With onCreate set, name, description and
// feed_url must be present.
//
// The returned error is only ever a store failure; rule violations come
// back as details.
func Validate(ctx context.Context, store UniquenessStore, in PodcastInput, excludeID string, onCreate bool) ([]prerrs.Detail, error) {
	var details []prerrs.Detail

	if onCreate {
		for _, req := range []struct {
			field string
			val   *string
		}{
			{"name", in.Name},
			{"description", in.Description},
			{"feed_url", in.FeedURL},
		} {
			if req.val == nil {
				details = append(details, prerrs.Detail{Field: req.field, Error: "is required"})
			}
		}
	}

	if in.Name != nil {
		if d := checkLength("name", *in.Name, nameMinLen, nameMaxLen); d != nil {
			details = append(details, *d)
		} else {
			d, err := checkUnique(ctx, store, "name", *in.Name, excludeID)
			if err != nil {
				return nil, err
			}
			if d != nil {
				details = append(details, *d)
			}
		}
	}

	if in.Description != nil {
		if d := checkLength("description", *in.Description, descriptionMinLen, descriptionMaxLen); d != nil {
			details = append(details, *d)
		}
	}

	for _, uf := range []struct {
		field string
		val   *string
	}{
		{"marketing_url", in.MarketingURL},
		{"feed_url", in.FeedURL},
	} {
		if uf.val == nil {
			continue
		}
		if d := checkURL(uf.field, *uf.val); d != nil {
			details = append(details, *d)
			continue
		}
		d, err := checkUnique(ctx, store, uf.field, *uf.val, excludeID)
		if err != nil {
			return nil, err
		}
		if d != nil {
			details = append(details, *d)
		}
	}

	if in.Image != nil {
		if d := checkLength("image", *in.Image, 1, imageMaxLen); d != nil {
			details = append(details, *d)
		}
	}

	if in.Status != nil && !Status(*in.Status).Valid() {
		details = append(details, prerrs.Detail{
			Field: "status",
			Error: fmt.Sprintf("must be one of %s, %s", StatusReview, StatusPublished),
		})
	}

	return details, nil
}

func checkLength(field, val string, min, max int) *prerrs.Detail {
	if len(val) >= min && len(val) <= max {
		return nil
	}

	return &prerrs.Detail{
		Field: field,
		Error: fmt.Sprintf("must be between %d and %d characters", min, max),
	}
}

func checkURL(field, val string) *prerrs.Detail {
	if len(val) == 0 || len(val) > urlMaxLen {
		return &prerrs.Detail{
			Field: field,
			Error: fmt.Sprintf("must be between %d and %d characters", 1, urlMaxLen),
		}
	}

	u, err := url.Parse(val)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &prerrs.Detail{Field: field, Error: "must be a valid url"}
	}

	return nil
}

func checkUnique(ctx context.Context, store UniquenessStore, column, val, excludeID string) (*prerrs.Detail, error) {
	taken, err := store.FieldTaken(ctx, column, val, excludeID)
	if err != nil {
		return nil, fmt.Errorf("error checking %s uniqueness: %s", column, err)
	}
	if taken {
		return &prerrs.Detail{Field: column, Error: "is already taken"}, nil
	}

	return nil, nil
}
