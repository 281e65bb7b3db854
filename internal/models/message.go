package models

// Message is a guestbook message. Children are nested by the server.
type Message struct {
	ID         int64      `json:"id"`
	Content    string     `json:"content"`
	Username   string     `json:"username"`
	ParentID   *int64     `json:"parentId"`
	CreateTime Timestamp  `json:"createTime"`
	Children   []*Message `json:"children,omitempty"`
}

// MessageList is the envelope returned by GET /api/messages.
type MessageList struct {
	Success bool       `json:"success"`
	Data    []*Message `json:"data"`
	Message string     `json:"message,omitempty"`
}

// MessageRequest is the body of POST /api/messages.
type MessageRequest struct {
	Content  string `json:"content"`
	ParentID int64  `json:"parentId"`
}
