package model

import "github.com/jackc/pgx/v5/pgtype"

// ReadMarker records that a user has seen a post. There is at most one marker
// per (user, post) pair.
type ReadMarker struct {
	UserID int64              `json:"user_id"`
	PostID int64              `json:"post_id"`
	ReadAt pgtype.Timestamptz `json:"read_at"`
}
