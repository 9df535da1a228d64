package auth

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog/internal/accounts"
	"blog/internal/db"
)

func testSetup(t *testing.T, ttl time.Duration) (*Manager, *sql.DB, int64) {
	t.Helper()
	dbc, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbc.Close() })
	require.NoError(t, db.Migrate(dbc))

	u, err := accounts.New(dbc).CreateUser(context.Background(), "jane@x.com", "pw123", "Jane")
	require.NoError(t, err)

	return NewManager(dbc, ttl), dbc, u.ID
}

func sessionRequest(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestSessionRoundtrip(t *testing.T) {
	m, _, uid := testSetup(t, time.Hour)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Create(rec, uid))

	r := sessionRequest(t, rec)
	got, ok := m.CurrentUserID(r)
	assert.True(t, ok)
	assert.Equal(t, uid, got)

	user, ok := m.CurrentUser(r)
	require.True(t, ok)
	assert.Equal(t, "jane@x.com", user.Email)
	assert.Equal(t, "Jane", user.FullName)
}

func TestExpiredSession(t *testing.T) {
	m, _, uid := testSetup(t, -time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Create(rec, uid))

	_, ok := m.CurrentUserID(sessionRequest(t, rec))
	assert.False(t, ok)
}

func TestDestroy(t *testing.T) {
	m, dbc, uid := testSetup(t, time.Hour)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Create(rec, uid))
	r := sessionRequest(t, rec)

	m.Destroy(httptest.NewRecorder(), r)

	_, ok := m.CurrentUserID(r)
	assert.False(t, ok)

	var count int
	require.NoError(t, dbc.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count))
	assert.Zero(t, count)
}

func TestNoCookie(t *testing.T) {
	m, _, _ := testSetup(t, time.Hour)

	_, ok := m.CurrentUserID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}
