package model

// DeletedAuthorName is shown instead of the author of a post whose creator
// account no longer exists.
const DeletedAuthorName = "deleted user"

type PostDetailed struct {
	Post       *Post  `json:"post"`
	Author     *User  `json:"author,omitempty"`
	AuthorName string `json:"author_name"`
}

// FeedItem is a post as seen by one viewer.
type FeedItem struct {
	Post       *Post  `json:"post"`
	AuthorName string `json:"author_name"`
	IsRead     bool   `json:"is_read"`
}
