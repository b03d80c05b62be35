package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error code for unique constraint violations.
const uniqueViolationCode = "23505"

// isUniqueViolation checks whether err is a PostgreSQL unique constraint
// violation, optionally restricted to a specific constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// notInClause renders a "col NOT IN (...)" predicate for the excluded IDs,
// appending the IDs to args and numbering placeholders from the current
// length of args. An empty exclusion set renders as TRUE so callers can
// splice the clause unconditionally.
func notInClause(col string, excluded []uuid.UUID, args *[]any) string {
	if len(excluded) == 0 {
		return "TRUE"
	}

	placeholders := make([]string, len(excluded))
	for i, id := range excluded {
		*args = append(*args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(*args))
	}
	return fmt.Sprintf("%s NOT IN (%s)", col, strings.Join(placeholders, ", "))
}
