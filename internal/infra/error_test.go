//go:build unit

package infra_test

import (
	"errors"
	"testing"

	"mentor-booking/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapRepoErr_Classifies(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want infra.RepositoryErrorKind
	}{
		{"no rows", pgx.ErrNoRows, infra.KindNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, infra.KindDuplicateKey},
		{"foreign key", &pgconn.PgError{Code: "23503"}, infra.KindForeignKeyViolated},
		{"other pg error", &pgconn.PgError{Code: "57014"}, infra.KindDBFailure},
		{"plain", errors.New("conn reset"), infra.KindDBFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := infra.WrapRepoErr("op failed", tt.err)
			assert.True(t, infra.IsKind(err, tt.want))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNewNotFound(t *testing.T) {
	err := infra.NewNotFound("booking not found")
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
	assert.False(t, infra.IsKind(err, infra.KindDBFailure))
	assert.Equal(t, "NOT_FOUND: booking not found", err.Error())
}

func TestViolatedConstraint(t *testing.T) {
	err := infra.WrapRepoErr("failed to link booking slots",
		&pgconn.PgError{Code: "23505", ConstraintName: infra.ConstraintSlotBooked})
	assert.Equal(t, infra.ConstraintSlotBooked, infra.ViolatedConstraint(err))

	assert.Equal(t, "bookings_order_id_key", infra.ViolatedConstraint(
		infra.WrapRepoErr("failed to create booking", &pgconn.PgError{Code: "23505", ConstraintName: "bookings_order_id_key"})))
	assert.Empty(t, infra.ViolatedConstraint(errors.New("conn reset")))
}
