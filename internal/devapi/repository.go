package devapi

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// UserRepository defines interface for user operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByLogin finds a user by username or email. It returns nil, nil when
	// there is no match.
	GetByLogin(ctx context.Context, login string) (*User, error)
	Exists(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
}

// PostRepository defines interface for post operations
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	ListPublished(ctx context.Context, offset, limit int) ([]*Post, int64, error)
	IncrementViews(ctx context.Context, id int64) error
}

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*Comment, error)
}

// MessageRepository defines interface for guestbook operations
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)
	List(ctx context.Context) ([]*Message, error)
}

const commentCountColumn = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, username, email string) (bool, bool, error) {
	var byName, byEmail int64
	if err := r.db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Count(&byName).Error; err != nil {
		return false, false, err
	}
	if err := r.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&byEmail).Error; err != nil {
		return false, false, err
	}
	return byName > 0, byEmail > 0, nil
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*Post, error) {
	var post Post
	err := r.db.WithContext(ctx).
		Select("posts.*, "+commentCountColumn).
		Preload("Author").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListPublished(ctx context.Context, offset, limit int) ([]*Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Post{}).Where("published = ?", true).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*Post
	err := r.db.WithContext(ctx).
		Select("posts.*, "+commentCountColumn).
		Preload("Author").
		Where("published = ?", true).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) IncrementViews(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	var comment Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]*Comment, error) {
	var comments []*Comment
	err := r.db.WithContext(ctx).Preload("User").Where("post_id = ?", postID).Order("created_at asc, id asc").Find(&comments).Error
	return comments, err
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*Message, error) {
	var message Message
	if err := r.db.WithContext(ctx).Preload("User").First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) List(ctx context.Context) ([]*Message, error) {
	var messages []*Message
	err := r.db.WithContext(ctx).Preload("User").Order("created_at asc, id asc").Find(&messages).Error
	return messages, err
}
