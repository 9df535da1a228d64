package models

import "time"

type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	Active       bool
	Staff        bool
	JoinedAt     time.Time
}

type Post struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	Image     string // stored filename under the upload dir; empty if none
	CreatedAt time.Time
	Author    string // full name of the owner, filled by list queries
}
