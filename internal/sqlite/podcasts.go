package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/jdholdren/podreview/internal/podreview"
)

const podcastNamespace = "-pod"

func (r Repo) Podcast(ctx context.Context, id string) (podreview.Podcast, error) {
	const q = `SELECT * FROM podcasts WHERE id = ? AND deleted_at IS NULL;`

	var p podreview.Podcast
	err := r.db.GetContext(ctx, &p, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return podreview.Podcast{}, podreview.ErrNotFound
	}
	if err != nil {
		return podreview.Podcast{}, fmt.Errorf("error fetching podcast: %s", err)
	}

	return p, nil
}

func (r Repo) PublishedPodcasts(ctx context.Context) ([]podreview.Podcast, error) {
	query, args, err := sq.Select("*").
		From("podcasts").
		Where(sq.Eq{"status": podreview.StatusPublished}).
		Where("deleted_at IS NULL").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	podcasts := []podreview.Podcast{}
	if err := r.db.SelectContext(ctx, &podcasts, query, args...); err != nil {
		return nil, fmt.Errorf("error fetching published podcasts: %s", err)
	}

	return podcasts, nil
}

func (r Repo) InsertPodcast(ctx context.Context, p podreview.Podcast) (podreview.Podcast, error) {
	const q = `INSERT INTO podcasts (id, name, description, marketing_url, feed_url, image, status, created_at, updated_at)
	VALUES (:id, :name, :description, :marketing_url, :feed_url, :image, :status, :created_at, :updated_at);`

	now := time.Now().UTC()
	p.ID = uuid.NewString() + podcastNamespace
	p.Status = podreview.StatusReview // never client-settable
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, q, p)
	if isUniqueViolation(err) {
		return podreview.Podcast{}, fmt.Errorf("podcast already exists: %w", podreview.ErrConflict)
	}
	if err != nil {
		return podreview.Podcast{}, fmt.Errorf("error inserting podcast: %s", err)
	}

	return r.Podcast(ctx, p.ID)
}

func (r Repo) UpdatePodcast(ctx context.Context, id string, args podreview.UpdateArgs) error {
	q := sq.Update("podcasts")
	if args.Name != nil {
		q = q.Set("name", *args.Name)
	}
	if args.Description != nil {
		q = q.Set("description", *args.Description)
	}
	if args.MarketingURL != nil {
		q = q.Set("marketing_url", *args.MarketingURL)
	}
	if args.FeedURL != nil {
		q = q.Set("feed_url", *args.FeedURL)
	}
	if args.Image != nil {
		q = q.Set("image", *args.Image)
	}
	if args.Status != nil {
		q = q.Set("status", *args.Status)
	}
	q = q.Set("updated_at", time.Now().UTC())
	// The visibility predicate doubles as the transition guard: a deleted
	// row can never be updated, no matter what raced in between.
	q = q.Where(sq.Eq{"id": id}).Where("deleted_at IS NULL")

	query, qArgs, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("error constructing sql: %s", err)
	}
	res, err := r.db.ExecContext(ctx, query, qArgs...)
	if isUniqueViolation(err) {
		return fmt.Errorf("podcast already exists: %w", podreview.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("error executing podcast update: %s", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %s", err)
	}
	if n == 0 {
		return podreview.ErrNotFound
	}

	return nil
}

func (r Repo) ApprovePodcast(ctx context.Context, id string) error {
	// Conditional on the prior state so two concurrent approvals can't both
	// land: the row count tells us whether the transition happened.
	const q = `UPDATE podcasts SET status = ?, updated_at = ? WHERE id = ? AND status = ? AND deleted_at IS NULL;`

	res, err := r.db.ExecContext(ctx, q, podreview.StatusPublished, time.Now().UTC(), id, podreview.StatusReview)
	if err != nil {
		return fmt.Errorf("error approving podcast: %s", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %s", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing moved: either the podcast is gone or it already went forward.
	const probe = `SELECT status FROM podcasts WHERE id = ? AND deleted_at IS NULL;`
	var status podreview.Status
	err = r.db.GetContext(ctx, &status, probe, id)
	if errors.Is(err, sql.ErrNoRows) {
		return podreview.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("error probing podcast status: %s", err)
	}
	if status == podreview.StatusPublished {
		return podreview.ErrAlreadyPublished
	}

	return podreview.ErrNotFound
}

func (r Repo) SoftDeletePodcast(ctx context.Context, id string) error {
	const q = `UPDATE podcasts SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL;`

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, q, now, now, id)
	if err != nil {
		return fmt.Errorf("error deleting podcast: %s", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %s", err)
	}
	if n == 0 {
		// Already deleted rows behave as absent, deleting twice is not a no-op.
		return podreview.ErrNotFound
	}

	return nil
}

// FieldTaken reports whether a visible podcast other than excludeID already
// holds value in column. Column names come from the validator, not callers.
func (r Repo) FieldTaken(ctx context.Context, column, value, excludeID string) (bool, error) {
	q := sq.Select("COUNT(*)").
		From("podcasts").
		Where(sq.Eq{column: value}).
		Where("deleted_at IS NULL")
	if excludeID != "" {
		q = q.Where(sq.NotEq{"id": excludeID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("error constructing sql: %s", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("error counting podcasts: %s", err)
	}

	return count > 0, nil
}

// 2067 is SQLITE_CONSTRAINT_UNIQUE.
func isUniqueViolation(err error) bool {
	sqliteErr := &sqlite.Error{}
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == 2067
}
