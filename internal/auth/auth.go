package auth

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"

	"blog/internal/models"
)

const sessionCookie = "blog_session"

// Manager keeps login sessions in the database, keyed by a random id carried
// in an HttpOnly cookie. Destroying the session server-side invalidates the
// cookie immediately.
type Manager struct {
	db     *sql.DB
	maxAge time.Duration
}

func NewManager(db *sql.DB, maxAge time.Duration) *Manager {
	return &Manager{db: db, maxAge: maxAge}
}

func (m *Manager) Create(w http.ResponseWriter, userID int64) error {
	id := uuid.New().String()
	expires := time.Now().Add(m.maxAge)

	_, err := m.db.Exec(`INSERT INTO sessions(id,user_id,expires_at) VALUES(?,?,?)`, id, userID, expires)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	return nil
}

func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	c, _ := r.Cookie(sessionCookie)
	if c != nil && c.Value != "" {
		m.db.Exec(`DELETE FROM sessions WHERE id = ?`, c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
}

func (m *Manager) CurrentUserID(r *http.Request) (int64, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return 0, false
	}
	var uid int64
	var exp time.Time
	err = m.db.QueryRow(`SELECT user_id, expires_at FROM sessions WHERE id = ?`, c.Value).Scan(&uid, &exp)
	if err != nil || time.Now().After(exp) {
		return 0, false
	}
	return uid, true
}

// CurrentUser loads the full user row for the request's session, so handlers
// can pass an explicit user around instead of re-querying.
func (m *Manager) CurrentUser(r *http.Request) (*models.User, bool) {
	uid, ok := m.CurrentUserID(r)
	if !ok {
		return nil, false
	}
	var u models.User
	err := m.db.QueryRow(
		`SELECT id, email, full_name, password_hash, is_active, is_staff, joined_at FROM users WHERE id = ?`, uid).
		Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Active, &u.Staff, &u.JoinedAt)
	if err != nil {
		return nil, false
	}
	return &u, true
}
