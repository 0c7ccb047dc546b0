package common

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"wallet-ledger-go/internal/database"
	"wallet-ledger-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDatabase(t *testing.T) *database.Service {
	t.Helper()
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Driver:       database.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "users.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
		BusyTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestCreateUserAndLookup(t *testing.T) {
	ctx := context.Background()
	db := newDatabase(t)

	alice, err := CreateUser(ctx, db, "Alice Johnson", "alice@example.com")
	require.NoError(t, err)
	_, err = CreateUser(ctx, db, "Bob Smith", "bob@example.com")
	require.NoError(t, err)

	_, err = CreateUser(ctx, db, "Alice Again", "alice@example.com")
	require.ErrorIs(t, err, ErrUserExists)

	users, err := InitializeUsers(ctx, db, "", zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = InitializeUsers(ctx, db, "alice@example.com", zap.NewNop())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, alice.Id, users[0].Id)

	_, err = InitializeUsers(ctx, db, "carol@example.com", zap.NewNop())
	require.Error(t, err)
}
