package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/DeVincenzoNicole/ElectroStoreInventory/internal/domain"
)

func TestIsTransient_CodigosSQLState(t *testing.T) {
	cases := map[string]bool{
		"08006": true,  // connection_failure
		"08001": true,  // sqlclient_unable_to_establish_sqlconnection
		"40001": true,  // serialization_failure
		"40P01": true,  // deadlock_detected
		"57P01": true,  // admin_shutdown
		"53300": true,  // too_many_connections
		"23505": false, // unique_violation
		"23514": false, // check_violation
		"42P01": false, // undefined_table
	}
	for code, want := range cases {
		err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
		assert.Equal(t, want, isTransient(err), code)
	}
}

func TestIsTransient_ContextoNoEsTransitorio(t *testing.T) {
	assert.False(t, isTransient(context.Canceled))
	assert.False(t, isTransient(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.False(t, isTransient(nil))
	assert.False(t, isTransient(errors.New("otro")))
}

func TestWrap_MarcaTransitorios(t *testing.T) {
	err := wrap("save product", &pgconn.PgError{Code: "40P01"})
	assert.ErrorIs(t, err, domain.ErrTransientStorage)
	assert.True(t, domain.IsTransient(err))

	err = wrap("save product", &pgconn.PgError{Code: "23514"})
	assert.False(t, domain.IsTransient(err))
	assert.Contains(t, err.Error(), "save product")

	assert.NoError(t, wrap("noop", nil))
}
