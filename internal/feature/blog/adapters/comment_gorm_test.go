package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/usecase"
)

func TestCommentRepository(t *testing.T) {
	gdb := setupTestDB(t)
	posts := NewPostRepository(gdb)
	repo := NewCommentRepository(gdb)
	ctx := context.Background()
	author := seedUser(t, gdb, "a@x.com")
	post := seedPost(t, posts, author, "hello")
	other := seedPost(t, posts, author, "other")

	c := &entity.Comment{PostID: post.ID, AuthorID: author, Text: "nice post"}
	require.NoError(t, repo.Add(ctx, c))
	assert.NotEmpty(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero(), "timestamp is set on insert")

	err := repo.Add(ctx, &entity.Comment{PostID: "missing", AuthorID: author, Text: "lost"})
	assert.ErrorIs(t, err, usecase.ErrPostNotFound)

	list, err := repo.List(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)

	list, err = repo.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.List(ctx, "missing")
	assert.ErrorIs(t, err, usecase.ErrPostNotFound)

	found, err := repo.FindByID(ctx, post.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "nice post", found.Text)

	_, err = repo.FindByID(ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, usecase.ErrCommentNotFound, "comment must belong to the post")

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), usecase.ErrCommentNotFound)
}

func TestCommentRepository_ListRecent(t *testing.T) {
	gdb := setupTestDB(t)
	posts := NewPostRepository(gdb)
	repo := NewCommentRepository(gdb)
	ctx := context.Background()
	author := seedUser(t, gdb, "a@x.com")
	first := seedPost(t, posts, author, "first")
	second := seedPost(t, posts, author, "second")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, postID := range []string{first.ID, second.ID, first.ID} {
		require.NoError(t, repo.Add(ctx, &entity.Comment{
			PostID: postID, AuthorID: author, Text: "comment",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, first.ID, list[0].PostID, "newest first across posts")
	assert.Equal(t, second.ID, list[1].PostID)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	list, err = repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
