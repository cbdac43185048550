package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	codeForeignKeyViolation = pq.ErrorCode("23503")
	codeUniqueViolation     = pq.ErrorCode("23505")
)

// sqlState extracts the SQLSTATE of a Postgres error, whichever driver
// produced it.
func sqlState(err error) pq.ErrorCode {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pq.ErrorCode(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}

	return ""
}
