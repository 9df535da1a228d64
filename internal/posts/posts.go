// Package posts is the store for blog posts.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"blog/internal/models"
)

var (
	ErrNotFound = errors.New("posts: not found")
	ErrNotOwner = errors.New("posts: requester does not own this post")
	ErrEmpty    = errors.New("posts: title and content required")
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const listQuery = `SELECT p.id, p.user_id, p.title, p.content, p.image, p.created_at, u.full_name
	FROM posts p JOIN users u ON p.user_id = u.id`

// ListAll returns every post, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, listQuery+` ORDER BY p.created_at DESC, p.id DESC`)
}

// ListByOwner returns the given user's posts, newest first.
func (s *Store) ListByOwner(ctx context.Context, userID int64) ([]models.Post, error) {
	return s.list(ctx, listQuery+` WHERE p.user_id = ? ORDER BY p.created_at DESC, p.id DESC`, userID)
}

func (s *Store) list(ctx context.Context, q string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Image, &p.CreatedAt, &p.Author); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create stores a post for userID. Title and content are trimmed first;
// image is the stored filename and may be empty. The creation timestamp is
// assigned here, not by the caller.
func (s *Store) Create(ctx context.Context, userID int64, title, content, image string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, ErrEmpty
	}

	p := models.Post{
		UserID:    userID,
		Title:     title,
		Content:   content,
		Image:     image,
		CreatedAt: time.Now(),
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts(user_id,title,content,image,created_at) VALUES(?,?,?,?,?)`,
		p.UserID, p.Title, p.Content, p.Image, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteByID removes the post only when requesterID owns it. A missing post
// is ErrNotFound; someone else's post is ErrNotOwner and the row is kept.
func (s *Store) DeleteByID(ctx context.Context, id, requesterID int64) error {
	var ownerID int64
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = ?`, id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	if ownerID != requesterID {
		return ErrNotOwner
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}
