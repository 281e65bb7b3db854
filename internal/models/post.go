package models

// Post is a server-owned post as returned by the posts endpoints.
type Post struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	AuthorID       int64     `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	CreatedAt      Timestamp `json:"createdAt"`
	UpdatedAt      Timestamp `json:"updatedAt"`
	ViewCount      int64     `json:"viewCount"`
	CommentCount   int64     `json:"commentCount"`
	Published      bool      `json:"published"`
}

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	AuthorID int64  `json:"authorId"`
}
