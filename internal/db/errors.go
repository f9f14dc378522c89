package db

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-jewelry/internal/common"
)

const (
	sqlStateRaiseException  = "P0001"
	sqlStateUniqueViolation = "23505"
	sqlStateForeignKey      = "23503"
	sqlStateCheckViolation  = "23514"
)

// IsNotFound reports whether err is a missing-row result.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Classify translates database errors into application errors carrying an
// HTTP status. Errors it does not recognise are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if common.IsAppError(err) {
		return err
	}
	if IsNotFound(err) {
		return common.NewAppError("NOT_FOUND", "resource not found", http.StatusNotFound, err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case sqlStateRaiseException:
		return common.NewAppError("PROCEDURE_REJECTED", pgErr.Message, http.StatusUnprocessableEntity, err)
	case sqlStateUniqueViolation:
		return common.NewAppError("CONFLICT", "resource already exists", http.StatusConflict, err)
	case sqlStateForeignKey, sqlStateCheckViolation:
		return common.NewAppError("CONSTRAINT_VIOLATION", pgErr.Message, http.StatusUnprocessableEntity, err)
	default:
		return err
	}
}
