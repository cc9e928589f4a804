package postgres

import (
	"database/sql"
	"errors"
)

// isNotFound reports whether a query came back empty. Repositories
// translate this into usecase.ErrNotFound so handlers never see
// driver errors.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
