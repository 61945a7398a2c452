package sqlite

import (
	"github.com/jmoiron/sqlx"

	"github.com/jdholdren/podreview/internal/podreview"
)

// Ensure Repo implements the Repository interface
var _ podreview.Repository = (*Repo)(nil)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}
