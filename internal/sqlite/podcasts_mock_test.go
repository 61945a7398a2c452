package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/podreview/internal/podreview"
)

// Mock-backed tests for the conditional-update branches that depend on
// what a concurrent request did between the UPDATE and the status probe.

func newMockRepo(t *testing.T) (Repo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(sqlx.NewDb(db, "sqlmock")), mock
}

func TestApprovePodcast_LostRaceToApprove(t *testing.T) {
	repo, mock := newMockRepo(t)

	// The conditional update misses because another request already moved
	// the podcast to published.
	mock.ExpectExec(`UPDATE podcasts SET status = \?, updated_at = \? WHERE id = \? AND status = \? AND deleted_at IS NULL`).
		WithArgs(podreview.StatusPublished, sqlmock.AnyArg(), "abc-pod", podreview.StatusReview).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM podcasts WHERE id = \? AND deleted_at IS NULL`).
		WithArgs("abc-pod").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("published"))

	err := repo.ApprovePodcast(context.Background(), "abc-pod")
	assert.ErrorIs(t, err, podreview.ErrAlreadyPublished)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovePodcast_LostRaceToDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	// The row vanished between the update and the probe: treated as absent.
	mock.ExpectExec(`UPDATE podcasts SET status = \?, updated_at = \? WHERE id = \? AND status = \? AND deleted_at IS NULL`).
		WithArgs(podreview.StatusPublished, sqlmock.AnyArg(), "abc-pod", podreview.StatusReview).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM podcasts WHERE id = \? AND deleted_at IS NULL`).
		WithArgs("abc-pod").
		WillReturnError(sql.ErrNoRows)

	err := repo.ApprovePodcast(context.Background(), "abc-pod")
	assert.ErrorIs(t, err, podreview.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovePodcast_SingleStatement(t *testing.T) {
	repo, mock := newMockRepo(t)

	// One row moved: no follow-up probe should be issued.
	mock.ExpectExec(`UPDATE podcasts SET status = \?, updated_at = \? WHERE id = \? AND status = \? AND deleted_at IS NULL`).
		WithArgs(podreview.StatusPublished, sqlmock.AnyArg(), "abc-pod", podreview.StatusReview).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ApprovePodcast(context.Background(), "abc-pod"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
