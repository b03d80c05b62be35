package postgres

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	violation := &pgconn.PgError{
		Code:           uniqueViolationCode,
		ConstraintName: "delivery_records_user_id_day_key",
	}

	assert.True(t, isUniqueViolation(violation, ""))
	assert.True(t, isUniqueViolation(violation, "delivery_records_user_id_day_key"))
	assert.False(t, isUniqueViolation(violation, "answer_records_delivery_id_key"))

	assert.False(t, isUniqueViolation(errors.New("connection refused"), ""))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, isUniqueViolation(nil, ""))
}

func TestNotInClause(t *testing.T) {
	t.Parallel()

	t.Run("empty exclusion renders TRUE", func(t *testing.T) {
		t.Parallel()

		args := []any{1}
		clause := notInClause("id", nil, &args)

		assert.Equal(t, "TRUE", clause)
		assert.Len(t, args, 1)
	})

	t.Run("placeholders continue existing numbering", func(t *testing.T) {
		t.Parallel()

		a := uuid.New()
		b := uuid.New()
		args := []any{42}
		clause := notInClause("id", []uuid.UUID{a, b}, &args)

		assert.Equal(t, "id NOT IN ($2, $3)", clause)
		assert.Equal(t, []any{42, a, b}, args)
	})
}
