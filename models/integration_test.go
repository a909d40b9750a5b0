package models_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/testutil"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/models"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

type graph struct {
	pm       *neopersist.PersistenceManager
	users    *models.UserMapper
	posts    *models.PostMapper
	comments *models.CommentMapper
}

func TestSocialGraphIntegration(t *testing.T) {
	executor := testutil.StartNeo4J(t)
	ctx := context.Background()

	applied := neopersist.EnsureConstraints(ctx, executor, zaptest.NewLogger(t), models.Constraints()...)
	require.Equal(t, len(models.Constraints()), applied)

	pm := neopersist.NewPersistenceManager(executor)
	g := graph{pm: pm}
	var err error
	g.users, err = models.NewUserMapper(pm)
	require.NoError(t, err)
	g.posts, err = models.NewPostMapper(pm)
	require.NoError(t, err)
	g.comments, err = models.NewCommentMapper(pm)
	require.NoError(t, err)

	alice, err := g.users.Create(ctx, "Alice", "alice@x.com")
	require.NoError(t, err)
	bob, err := g.users.Create(ctx, "Bob", "bob@x.com")
	require.NoError(t, err)
	carol, err := g.users.Create(ctx, "Carol", "carol@x.com")
	require.NoError(t, err)

	t.Run("duplicate email is rejected by the database", func(t *testing.T) {
		_, err := g.users.Create(ctx, "Impostor", "alice@x.com")
		assert.ErrorIs(t, err, neopersist.ErrConstraintViolation)

		repo, err := neopersist.RepositoryFor[models.User](pm)
		require.NoError(t, err)
		n, err := repo.CountByProperty(ctx, "email", "alice@x.com")
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("friendship is idempotent and undirected", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			ok, err := g.users.AddFriend(ctx, alice.ID, bob.ID)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		result, err := executor.Run(ctx,
			"MATCH (:User {id: $a})-[r:FRIENDS_WITH]-(:User {id: $b}) RETURN count(r) AS total",
			map[string]interface{}{"a": alice.ID, "b": bob.ID})
		require.NoError(t, err)
		n, err := neopersist.Int64(result, "total")
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		isFriend, err := g.users.IsFriendWith(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, isFriend)

		ok, err := g.users.AddFriend(ctx, alice.ID, "ghost")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("mutual friends exclude both users", func(t *testing.T) {
		_, err := g.users.AddFriend(ctx, carol.ID, alice.ID)
		require.NoError(t, err)
		_, err = g.users.AddFriend(ctx, bob.ID, carol.ID)
		require.NoError(t, err)

		mutual, err := g.users.GetMutualFriends(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		require.Len(t, mutual, 1)
		assert.Equal(t, carol.ID, mutual[0].ID)

		friends, err := g.users.GetFriends(ctx, alice.ID)
		require.NoError(t, err)
		assert.Len(t, friends, 2)

		removed, err := g.users.RemoveFriend(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, removed)
		isFriend, err := g.users.IsFriendWith(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, isFriend)
	})

	t.Run("post for a missing author is not created", func(t *testing.T) {
		_, err := g.posts.Create(ctx, "Orphan", "nobody wrote this", "ghost")
		assert.ErrorIs(t, err, models.ErrAuthorNotFound)

		repo, err := neopersist.RepositoryFor[models.Post](pm)
		require.NoError(t, err)
		n, err := repo.CountByProperty(ctx, "title", "Orphan")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("like flow and cascading post delete", func(t *testing.T) {
		post, err := g.posts.Create(ctx, "Hello", "first post", alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, post.AuthorID)

		liked, err := g.posts.AddLike(ctx, post.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, liked)
		count, err := g.posts.GetLikesCount(ctx, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		_, err = g.posts.RemoveLike(ctx, post.ID, bob.ID)
		require.NoError(t, err)
		count, err = g.posts.GetLikesCount(ctx, post.ID)
		require.NoError(t, err)
		assert.Zero(t, count)

		comment, err := g.comments.Create(ctx, "Nice", bob.ID, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.ID, comment.PostID)
		_, err = g.comments.AddLike(ctx, comment.ID, alice.ID)
		require.NoError(t, err)

		comments, err := g.posts.GetComments(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, bob.ID, comments[0].AuthorID)

		_, err = g.posts.AddLike(ctx, post.ID, carol.ID)
		require.NoError(t, err)
		require.NoError(t, g.posts.Delete(ctx, post.ID))

		_, err = g.posts.FindByID(ctx, post.ID)
		assert.ErrorIs(t, err, neopersist.ErrNotFound)
		_, err = g.comments.FindByID(ctx, comment.ID)
		assert.ErrorIs(t, err, neopersist.ErrNotFound)

		result, err := executor.Run(ctx,
			"MATCH (:User {id: $id})-[r:CREATED|LIKES]->() RETURN count(r) AS total",
			map[string]interface{}{"id": carol.ID})
		require.NoError(t, err)
		n, err := neopersist.Int64(result, "total")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("update keeps unsupplied fields", func(t *testing.T) {
		name := "Alice Liddell"
		require.NoError(t, g.users.Update(ctx, alice, models.UserPatch{Name: &name}))

		found, err := g.users.FindByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, "Alice Liddell", found.Name)
		assert.Equal(t, alice.CreatedAt, found.CreatedAt)
	})
}
