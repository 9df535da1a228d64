// Package accounts creates and authenticates users. Passwords are bcrypt
// hashed before they reach the database; plaintext is never stored or logged.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"blog/internal/models"
)

var (
	// ErrEmailTaken is returned when the (case-insensitive) email is already
	// registered.
	ErrEmailTaken = errors.New("accounts: email already taken")

	// ErrInvalidCredentials covers unknown email, wrong password and inactive
	// accounts alike, so callers cannot enumerate registered addresses.
	ErrInvalidCredentials = errors.New("accounts: invalid credentials")
)

type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// NormalizeEmail trims the address and lower-cases its domain part. The local
// part is kept as authored.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	i := strings.LastIndex(email, "@")
	if i < 0 {
		return email
	}
	return email[:i+1] + strings.ToLower(email[i+1:])
}

// CreateUser registers a new active, non-staff user. The caller is expected
// to have validated email syntax and password confirmation already.
func (s *Service) CreateUser(ctx context.Context, email, password, fullName string) (*models.User, error) {
	return s.createUser(ctx, email, password, fullName, false)
}

// CreateSuperuser registers a staff user. Used by administrative seeding, not
// reachable from the HTTP surface.
func (s *Service) CreateSuperuser(ctx context.Context, email, password, fullName string) (*models.User, error) {
	return s.createUser(ctx, email, password, fullName, true)
}

func (s *Service) createUser(ctx context.Context, email, password, fullName string, staff bool) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("accounts: email required")
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := models.User{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: string(hash),
		Active:       true,
		Staff:        staff,
		JoinedAt:     time.Now(),
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users(email,full_name,password_hash,is_active,is_staff,joined_at) VALUES(?,?,?,?,?,?)`,
		u.Email, u.FullName, u.PasswordHash, u.Active, u.Staff, u.JoinedAt)
	if err != nil {
		// The UNIQUE constraint can still fire under a concurrent register.
		return nil, ErrEmailTaken
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate looks the user up by normalized email and verifies the
// password. The error is the same whichever check fails.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, password_hash, is_active, is_staff, joined_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Active, &u.Staff, &u.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}

	if !u.Active {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}
