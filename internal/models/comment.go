package models

// Comment is a comment on a post. The API returns comments as a flat list;
// Replies is only filled in client-side by the comment tree builder.
// A nil ParentID marks a root comment.
type Comment struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	PostID    int64      `json:"postId"`
	UserID    int64      `json:"userId"`
	Username  string     `json:"username"`
	CreatedAt Timestamp  `json:"createdAt"`
	UpdatedAt Timestamp  `json:"updatedAt"`
	ParentID  *int64     `json:"parentId"`
	Replies   []*Comment `json:"replies,omitempty"`
}

// IsRoot reports whether the comment declares no parent.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// CommentRequest is the body of POST /api/posts/{id}/comments. ParentID is
// omitted from the JSON for root comments.
type CommentRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parentId,omitempty"`
}
