// Package httpapi exposes the social graph over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/apperr"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/models"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

// UserStore is the user persistence the handlers depend on.
type UserStore interface {
	Create(ctx context.Context, name, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, u *models.User, patch models.UserPatch) error
	Delete(ctx context.Context, id string) error
	AddFriend(ctx context.Context, userID, friendID string) (bool, error)
	RemoveFriend(ctx context.Context, userID, friendID string) (bool, error)
	IsFriendWith(ctx context.Context, userID, friendID string) (bool, error)
	GetFriends(ctx context.Context, userID string) ([]*models.User, error)
	GetMutualFriends(ctx context.Context, userID, otherID string) ([]*models.User, error)
	Neighborhood(ctx context.Context, userID string) (*neopersist.GraphResult, error)
}

// PostStore is the post persistence the handlers depend on.
type PostStore interface {
	Create(ctx context.Context, title, content, authorID string) (*models.Post, error)
	FindByID(ctx context.Context, id string) (*models.Post, error)
	GetAll(ctx context.Context) ([]*models.Post, error)
	GetUserPosts(ctx context.Context, authorID string) ([]*models.Post, error)
	Update(ctx context.Context, p *models.Post, patch models.PostPatch) error
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)
	GetLikesCount(ctx context.Context, postID string) (int64, error)
	GetComments(ctx context.Context, postID string) ([]*models.Comment, error)
}

// CommentStore is the comment persistence the handlers depend on.
type CommentStore interface {
	Create(ctx context.Context, content, authorID, postID string) (*models.Comment, error)
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	GetAll(ctx context.Context) ([]*models.Comment, error)
	Update(ctx context.Context, c *models.Comment, patch models.CommentPatch) error
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, commentID, userID string) (bool, error)
	RemoveLike(ctx context.Context, commentID, userID string) (bool, error)
	GetLikesCount(ctx context.Context, commentID string) (int64, error)
}

// Database reports on the graph database itself.
type Database interface {
	CountNodes(ctx context.Context) (int64, error)
	Verify(ctx context.Context) error
}

// ServiceInfo describes the running service on the index route.
type ServiceInfo struct {
	Name    string
	Version string
}

// Handler serves every API route.
type Handler struct {
	users    UserStore
	posts    PostStore
	comments CommentStore
	db       Database
	info     ServiceInfo
	logger   *zap.Logger
	validate *validator.Validate
}

// NewHandler wires the handlers to their stores.
func NewHandler(users UserStore, posts PostStore, comments CommentStore, db Database, info ServiceInfo, logger *zap.Logger) *Handler {
	return &Handler{
		users:    users,
		posts:    posts,
		comments: comments,
		db:       db,
		info:     info,
		logger:   logger,
		validate: newValidator(),
	}
}

// notFound translates a persistence miss into a client-facing not found error.
func notFound(err error, what string) error {
	if errors.Is(err, neopersist.ErrNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return err
}

func (h *Handler) findUser(ctx context.Context, id, what string) (*models.User, error) {
	u, err := h.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, what)
	}
	return u, nil
}

func (h *Handler) findPost(ctx context.Context, id string) (*models.Post, error) {
	p, err := h.posts.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "post")
	}
	return p, nil
}

func (h *Handler) findComment(ctx context.Context, id string) (*models.Comment, error) {
	c, err := h.comments.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "comment")
	}
	return c, nil
}
