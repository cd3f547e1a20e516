package post_http

import (
	"strconv"
	"strings"
	"time"

	model "feedstack-post-service/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type PostResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  *int64    `json:"author_id"`
	Author    string    `json:"author"`
	MediaPath *string   `json:"media_path,omitempty"`
	MediaURL  *string   `json:"media_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedItemResponse struct {
	PostResponse
	IsRead bool `json:"is_read"`
}

func newPostResponse(post *model.Post, authorName, baseURL string) PostResponse {
	resp := PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Author:    authorName,
		CreatedAt: post.CreatedAt.Time,
	}
	if post.HasAuthor() {
		authorID := post.AuthorID
		resp.AuthorID = &authorID
	}
	if post.HasMedia() {
		path := *post.MediaPath
		url := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
		resp.MediaPath = &path
		resp.MediaURL = &url
	}
	return resp
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
