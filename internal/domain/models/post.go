package model

import "github.com/jackc/pgx/v5/pgtype"

type Post struct {
	ID        int64              `json:"id"`
	AuthorID  int64              `json:"author_id"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	MediaPath *string            `json:"media_path,omitempty"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

// HasAuthor reports whether the creator account still exists. Posts of deleted
// accounts keep their row but lose the creator reference.
func (p *Post) HasAuthor() bool {
	return p.AuthorID != 0
}

func (p *Post) HasMedia() bool {
	return p.MediaPath != nil && *p.MediaPath != ""
}
