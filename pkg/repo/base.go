package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/scienceol/chemtrack/pkg/middleware/db"
)

const pgUniqueViolation = "23505"

// Transactor runs fn in one transaction; repos called with txCtx join it.
type Transactor interface {
	ExecTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type BaseDB struct {
	*db.Datastore
}

func NewBaseDB() *BaseDB {
	return &BaseDB{Datastore: db.DB()}
}

// SortOrder is the direction of a listing, newest first by default.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

func (s SortOrder) OrDesc() SortOrder {
	if s == SortOrderAsc {
		return s
	}
	return SortOrderDesc
}

// IsUniqueViolation reports a postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
