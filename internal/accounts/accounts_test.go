package accounts

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog/internal/db"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dbc, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbc.Close() })
	require.NoError(t, db.Migrate(dbc))
	return dbc
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@x.com", NormalizeEmail("  jane@X.COM "))
	assert.Equal(t, "Jane@x.com", NormalizeEmail("Jane@X.com"))
	assert.Equal(t, "notanemail", NormalizeEmail("notanemail"))
	assert.Equal(t, "a@b@c.com", NormalizeEmail("a@B@C.com"))
}

func TestCreateAndAuthenticate(t *testing.T) {
	svc := New(testDB(t))
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "jane@x.com", "pw123", "Jane")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "Jane", u.FullName)
	assert.True(t, u.Active)
	assert.False(t, u.Staff)
	assert.False(t, u.JoinedAt.IsZero())
	assert.NotEqual(t, "pw123", u.PasswordHash)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$2"))

	got, err := svc.Authenticate(ctx, "jane@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// Domain case differences still authenticate.
	got, err = svc.Authenticate(ctx, "jane@X.COM", "pw123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestAuthenticateFailuresLookAlike(t *testing.T) {
	svc := New(testDB(t))
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "jane@x.com", "pw123", "Jane")
	require.NoError(t, err)

	_, wrongPass := svc.Authenticate(ctx, "jane@x.com", "nope")
	_, noUser := svc.Authenticate(ctx, "nobody@x.com", "pw123")

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, ErrInvalidCredentials)
}

func TestDuplicateEmail(t *testing.T) {
	dbc := testDB(t)
	svc := New(dbc)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "jane@x.com", "pw123", "Jane")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "jane@x.com", "other", "Jane Again")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Case-insensitive: local part case also collides thanks to NOCASE.
	_, err = svc.CreateUser(ctx, "JANE@X.COM", "other", "Jane Again")
	assert.ErrorIs(t, err, ErrEmailTaken)

	var count int
	require.NoError(t, dbc.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCreateUserRequiresEmail(t *testing.T) {
	svc := New(testDB(t))

	_, err := svc.CreateUser(context.Background(), "   ", "pw123", "Jane")
	assert.Error(t, err)
}

func TestCreateSuperuser(t *testing.T) {
	svc := New(testDB(t))

	u, err := svc.CreateSuperuser(context.Background(), "admin@x.com", "pw123", "Admin")
	require.NoError(t, err)
	assert.True(t, u.Staff)
	assert.True(t, u.Active)
}
