package podreview_test

import (
	"context"
	"strings"
	"testing"

	prerrs "github.com/jdholdren/podreview/internal/errors"
	"github.com/jdholdren/podreview/internal/podreview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore satisfies the uniqueness surface with a canned answer per
// column:value pair, mapped to the id owning that value.
type stubStore map[string]string

func (s stubStore) FieldTaken(_ context.Context, column, value, excludeID string) (bool, error) {
	owner, ok := s[column+":"+value]
	if !ok {
		return false, nil
	}

	return owner != excludeID, nil
}

func strPtr(s string) *string { return &s }

func validInput() podreview.PodcastInput {
	return podreview.PodcastInput{
		Name:        strPtr("Tech Talk"),
		Description: strPtr("A show about building things."),
		FeedURL:     strPtr("https://example.com/feed.xml"),
	}
}

func TestValidate_CreateRequiresFields(t *testing.T) {
	details, err := podreview.Validate(context.Background(), stubStore{}, podreview.PodcastInput{}, "", true)
	require.NoError(t, err)

	fields := map[string]string{}
	for _, d := range details {
		fields[d.Field] = d.Error
	}
	assert.Equal(t, map[string]string{
		"name":        "is required",
		"description": "is required",
		"feed_url":    "is required",
	}, fields)
}

func TestValidate_UpdateAllowsOmittedFields(t *testing.T) {
	details, err := podreview.Validate(context.Background(), stubStore{}, podreview.PodcastInput{}, "abc-pod", false)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	in := podreview.PodcastInput{
		Name:        strPtr("abc"), // too short
		Description: strPtr("abc"), // too short
		FeedURL:     strPtr("not a url"),
		Status:      strPtr("archived"),
	}

	details, err := podreview.Validate(context.Background(), stubStore{}, in, "", true)
	require.NoError(t, err)
	require.Len(t, details, 4)

	var fields []string
	for _, d := range details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"name", "description", "feed_url", "status"}, fields)
}

func TestValidate_LengthBounds(t *testing.T) {
	for name, tc := range map[string]struct {
		in        podreview.PodcastInput
		wantField string
	}{
		"name too long": {
			in:        podreview.PodcastInput{Name: strPtr(strings.Repeat("a", 129))},
			wantField: "name",
		},
		"blank name": {
			in:        podreview.PodcastInput{Name: strPtr("")},
			wantField: "name",
		},
		"description too long": {
			in:        podreview.PodcastInput{Description: strPtr(strings.Repeat("a", 1001))},
			wantField: "description",
		},
		"feed url too long": {
			in:        podreview.PodcastInput{FeedURL: strPtr("https://example.com/" + strings.Repeat("a", 120))},
			wantField: "feed_url",
		},
		"blank image": {
			in:        podreview.PodcastInput{Image: strPtr("")},
			wantField: "image",
		},
		"image too long": {
			in:        podreview.PodcastInput{Image: strPtr(strings.Repeat("a", 257))},
			wantField: "image",
		},
	} {
		t.Run(name, func(t *testing.T) {
			details, err := podreview.Validate(context.Background(), stubStore{}, tc.in, "", false)
			require.NoError(t, err)
			require.Len(t, details, 1)
			assert.Equal(t, tc.wantField, details[0].Field)
		})
	}
}

func TestValidate_BoundaryValuesPass(t *testing.T) {
	in := podreview.PodcastInput{
		Name:        strPtr("abcd"),
		Description: strPtr(strings.Repeat("a", 1000)),
		Image:       strPtr(strings.Repeat("a", 256)),
		Status:      strPtr("published"),
	}

	details, err := podreview.Validate(context.Background(), stubStore{}, in, "", false)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestValidate_UniqueName(t *testing.T) {
	store := stubStore{"name:Tech Talk": "other-pod"}

	details, err := podreview.Validate(context.Background(), store, validInput(), "", true)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, prerrs.Detail{Field: "name", Error: "is already taken"}, details[0])
}

func TestValidate_UniquenessExemptsOwnRecord(t *testing.T) {
	store := stubStore{
		"name:Tech Talk":                        "self-pod",
		"feed_url:https://example.com/feed.xml": "self-pod",
	}

	details, err := podreview.Validate(context.Background(), store, validInput(), "self-pod", false)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestValidate_MarketingURL(t *testing.T) {
	in := podreview.PodcastInput{MarketingURL: strPtr("https://example.com/show")}
	details, err := podreview.Validate(context.Background(), stubStore{}, in, "", false)
	require.NoError(t, err)
	assert.Empty(t, details)

	in.MarketingURL = strPtr("example")
	details, err = podreview.Validate(context.Background(), stubStore{}, in, "", false)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, prerrs.Detail{Field: "marketing_url", Error: "must be a valid url"}, details[0])
}
