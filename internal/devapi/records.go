// Package devapi is a local implementation of the forum API used for
// development and end-to-end tests of the client.
package devapi

import (
	"time"

	"agora/internal/models"
)

// User is a registered account.
type User struct {
	ID        int64  `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;size:20;not null"`
	Email     string `gorm:"uniqueIndex;size:254;not null"`
	Password  string `gorm:"not null"`
	CreatedAt time.Time
}

// Post is a forum post.
type Post struct {
	ID        int64  `gorm:"primaryKey"`
	Title     string `gorm:"size:200;not null"`
	Content   string `gorm:"type:text;not null"`
	AuthorID  int64  `gorm:"index;not null"`
	Author    User   `gorm:"foreignKey:AuthorID"`
	ViewCount int64  `gorm:"not null;default:0"`
	Published bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// CommentCount is filled by queries that count comments.
	CommentCount int64 `gorm:"->;-:migration"`
}

// Comment is a comment on a post; ParentID links replies.
type Comment struct {
	ID        int64  `gorm:"primaryKey"`
	Content   string `gorm:"type:text;not null"`
	PostID    int64  `gorm:"index;not null"`
	UserID    int64  `gorm:"index;not null"`
	User      User   `gorm:"foreignKey:UserID"`
	ParentID  *int64 `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a guestbook entry; ParentID links replies.
type Message struct {
	ID        int64  `gorm:"primaryKey"`
	Content   string `gorm:"type:text;not null"`
	UserID    int64  `gorm:"index;not null"`
	User      User   `gorm:"foreignKey:UserID"`
	ParentID  *int64 `gorm:"index"`
	CreatedAt time.Time
}

func (u *User) toModel() *models.User {
	return &models.User{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (p *Post) toModel() models.Post {
	return models.Post{
		ID:             p.ID,
		Title:          p.Title,
		Content:        p.Content,
		AuthorID:       p.AuthorID,
		AuthorUsername: p.Author.Username,
		CreatedAt:      models.NewTimestamp(p.CreatedAt),
		UpdatedAt:      models.NewTimestamp(p.UpdatedAt),
		ViewCount:      p.ViewCount,
		CommentCount:   p.CommentCount,
		Published:      p.Published,
	}
}

func (c *Comment) toModel() *models.Comment {
	return &models.Comment{
		ID:        c.ID,
		Content:   c.Content,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Username:  c.User.Username,
		CreatedAt: models.NewTimestamp(c.CreatedAt),
		UpdatedAt: models.NewTimestamp(c.UpdatedAt),
		ParentID:  c.ParentID,
	}
}

func (m *Message) toModel() *models.Message {
	return &models.Message{
		ID:         m.ID,
		Content:    m.Content,
		Username:   m.User.Username,
		ParentID:   m.ParentID,
		CreateTime: models.NewTimestamp(m.CreatedAt),
	}
}
