package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"wallapi/internal/repository"
)

const uniqueViolation = "23505"

// mapWriteError converts driver errors into repository sentinels.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

// expectAffected turns a zero-row write into sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func clampPage(pq repository.PageQuery) repository.PageQuery {
	if pq.Limit <= 0 {
		pq.Limit = 20
	}
	if pq.Offset < 0 {
		pq.Offset = 0
	}
	return pq
}
