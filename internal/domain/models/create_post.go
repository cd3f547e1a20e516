package model

type CreatePostDTO struct {
	AuthorID  int64   `json:"author_id" validate:"required,gt=0"`
	Title     string  `json:"title" validate:"required,max=255"`
	Content   string  `json:"content" validate:"required,max=10000"`
	MediaPath *string `json:"media_path,omitempty"`
}
