package errx

import (
	"database/sql"
	"errors"
	"net/http"
)

// WrapPostgres maps business-store errors to the unified Error type. A missing
// row surfaces as an explicit 404 so callers can distinguish "entity not found"
// from an upstream failure.
func WrapPostgres(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return New(err, http.StatusNotFound, NotFoundMessage)
	}

	return New(err, http.StatusBadGateway, PostgresErrorMessage)
}
