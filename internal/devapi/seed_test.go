package devapi

import (
	"context"
	"testing"

	"agora/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeed(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	result, err := Seed(ctx, s.db, SeedOptions{Users: 4, Posts: 6, CommentsPerPost: 5, Messages: 4, Seed: 11})
	require.NoError(t, err)
	assert.Len(t, result.Users, 4)
	assert.Equal(t, 6, result.Posts)
	assert.Equal(t, 30, result.Comments)
	assert.Equal(t, 4, result.Messages)

	for _, u := range result.Users {
		assert.Empty(t, validation.ValidateRegistration(validation.Registration{
			Username:        u.Username,
			Email:           u.Email,
			Password:        SeedPassword,
			ConfirmPassword: SeedPassword,
		}), u.Username)
	}
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.Users[0].Password), []byte(SeedPassword)))

	posts, total, err := s.postRepo.ListPublished(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	for _, p := range posts {
		assert.Equal(t, int64(5), p.CommentCount)
		assert.NotEmpty(t, p.Author.Username)

		comments, err := s.commentRepo.ListByPost(ctx, p.ID)
		require.NoError(t, err)
		seen := map[int64]bool{}
		for _, c := range comments {
			if c.ParentID != nil {
				assert.True(t, seen[*c.ParentID], "reply must follow its parent on the same post")
			}
			seen[c.ID] = true
		}
	}

	again, err := Seed(ctx, s.db, SeedOptions{Users: 2, Posts: 2})
	require.NoError(t, err)
	assert.Empty(t, again.Users)
}
