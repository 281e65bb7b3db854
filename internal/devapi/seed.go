package devapi

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "Passw0rd!"

// SeedOptions controls how much demo data Seed creates.
type SeedOptions struct {
	Users           int
	Posts           int
	CommentsPerPost int
	Messages        int
	// Seed makes the generated content reproducible when non-zero.
	Seed int64
}

// SeedResult reports what Seed created.
type SeedResult struct {
	Users    []*User
	Posts    int
	Comments int
	Messages int
}

// Factory builds demo records and persists them.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	now   time.Time
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	return &Factory{db: db, faker: gofakeit.New(seed), now: time.Now()}
}

// Seed fills an empty database with users, posts, threaded comments and
// guestbook messages. A database that already has users is left alone.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) (*SeedResult, error) {
	var existing int64
	if err := db.WithContext(ctx).Model(&User{}).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if existing > 0 {
		return &SeedResult{}, nil
	}
	if opts.Users <= 0 {
		opts.Users = 3
	}

	f := NewFactory(db, opts.Seed)
	result := &SeedResult{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hashed, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
		if err != nil {
			return err
		}
		for i := 0; i < opts.Users; i++ {
			user := f.BuildUser(i, string(hashed))
			if err := tx.Create(user).Error; err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			result.Users = append(result.Users, user)
		}

		for i := 0; i < opts.Posts; i++ {
			author := result.Users[f.faker.Number(0, len(result.Users)-1)]
			post := f.BuildPost(author, opts.Posts-i)
			if err := tx.Create(post).Error; err != nil {
				return fmt.Errorf("create post: %w", err)
			}
			result.Posts++

			var thread []int64
			for j := 0; j < opts.CommentsPerPost; j++ {
				commenter := result.Users[f.faker.Number(0, len(result.Users)-1)]
				comment := f.BuildComment(post, commenter, j)
				// Roughly half the comments reply to an earlier one.
				if len(thread) > 0 && f.faker.Bool() {
					parent := thread[f.faker.Number(0, len(thread)-1)]
					comment.ParentID = &parent
				}
				if err := tx.Create(comment).Error; err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
				thread = append(thread, comment.ID)
				result.Comments++
			}
		}

		var guestbook []int64
		for i := 0; i < opts.Messages; i++ {
			author := result.Users[f.faker.Number(0, len(result.Users)-1)]
			message := &Message{
				Content:   f.faker.Sentence(8),
				UserID:    author.ID,
				CreatedAt: f.now.Add(time.Duration(i-opts.Messages) * time.Minute),
			}
			if len(guestbook) > 0 && f.faker.Bool() {
				parent := guestbook[f.faker.Number(0, len(guestbook)-1)]
				message.ParentID = &parent
			}
			if err := tx.Create(message).Error; err != nil {
				return fmt.Errorf("create message: %w", err)
			}
			guestbook = append(guestbook, message.ID)
			result.Messages++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BuildUser returns an unsaved user whose username passes registration rules.
func (f *Factory) BuildUser(n int, passwordHash string) *User {
	name := alnum(strings.ToLower(f.faker.FirstName()))
	if len(name) > 14 {
		name = name[:14]
	}
	username := fmt.Sprintf("%s%05d", name, n)
	return &User{
		Username: username,
		Email:    username + "@example.com",
		Password: passwordHash,
	}
}

// BuildPost returns an unsaved post created ageHours before the factory clock.
func (f *Factory) BuildPost(author *User, ageHours int) *Post {
	created := f.now.Add(-time.Duration(ageHours) * time.Hour)
	return &Post{
		Title:     strings.TrimSuffix(f.faker.Sentence(5), "."),
		Content:   f.faker.Paragraph(1, 3, 12, "\n"),
		AuthorID:  author.ID,
		Published: true,
		ViewCount: int64(f.faker.Number(0, 500)),
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// BuildComment returns an unsaved top-level comment on post.
func (f *Factory) BuildComment(post *Post, author *User, n int) *Comment {
	created := post.CreatedAt.Add(time.Duration(n+1) * time.Minute)
	return &Comment{
		Content:   f.faker.Sentence(10),
		PostID:    post.ID,
		UserID:    author.ID,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func alnum(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, s)
}
