package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/apperr"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/models"
)

type likeRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type createCommentRequest struct {
	Content string `json:"content" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
}

// likesPayload is the data returned by every like endpoint.
type likesPayload struct {
	LikesCount int64 `json:"likes_count"`
}

func (h *Handler) postRoutes(r chi.Router) {
	r.Get("/", h.handle(h.listPosts))
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.handle(h.getPost))
		r.Put("/", h.handle(h.updatePost))
		r.Delete("/", h.handle(h.deletePost))
		r.Post("/like", h.handle(h.likePost))
		r.Delete("/like", h.handle(h.unlikePost))
		r.Get("/likes", h.handle(h.postLikes))
		r.Get("/comments", h.handle(h.listPostComments))
		r.Post("/comments", h.handle(h.createPostComment))
		r.Delete("/comments/{comment_id}", h.handle(h.deletePostComment))
	})
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) error {
	posts, err := h.posts.GetAll(r.Context())
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, posts, "")
	return nil
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) error {
	p, err := h.findPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, p, "")
	return nil
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) error {
	var patch models.PostPatch
	if err := decode(r, &patch); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return apperr.Validation("no data provided")
	}
	ctx := r.Context()
	p, err := h.findPost(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	if err := h.posts.Update(ctx, p, patch); err != nil {
		return notFound(err, "post")
	}
	respond(w, http.StatusOK, p, "Post updated successfully")
	return nil
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	p, err := h.findPost(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	if err := h.posts.Delete(ctx, p.ID); err != nil {
		return err
	}
	respond(w, http.StatusOK, nil, "Post deleted successfully")
	return nil
}

// likeTarget resolves the post and the liking user named in the request body.
func (h *Handler) likeTarget(r *http.Request) (*models.Post, *models.User, error) {
	var req likeRequest
	if err := h.bind(r, &req); err != nil {
		return nil, nil, err
	}
	ctx := r.Context()
	p, err := h.findPost(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return nil, nil, err
	}
	u, err := h.findUser(ctx, req.UserID, "user")
	if err != nil {
		return nil, nil, err
	}
	return p, u, nil
}

func (h *Handler) likePost(w http.ResponseWriter, r *http.Request) error {
	p, u, err := h.likeTarget(r)
	if err != nil {
		return err
	}
	ctx := r.Context()
	if _, err := h.posts.AddLike(ctx, p.ID, u.ID); err != nil {
		return err
	}
	count, err := h.posts.GetLikesCount(ctx, p.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusCreated, likesPayload{LikesCount: count}, "Like added successfully")
	return nil
}

func (h *Handler) unlikePost(w http.ResponseWriter, r *http.Request) error {
	p, u, err := h.likeTarget(r)
	if err != nil {
		return err
	}
	ctx := r.Context()
	if _, err := h.posts.RemoveLike(ctx, p.ID, u.ID); err != nil {
		return err
	}
	count, err := h.posts.GetLikesCount(ctx, p.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, likesPayload{LikesCount: count}, "Like removed successfully")
	return nil
}

func (h *Handler) postLikes(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	p, err := h.findPost(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	count, err := h.posts.GetLikesCount(ctx, p.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, likesPayload{LikesCount: count}, "")
	return nil
}

func (h *Handler) listPostComments(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	p, err := h.findPost(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	comments, err := h.posts.GetComments(ctx, p.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, comments, "")
	return nil
}

func (h *Handler) createPostComment(w http.ResponseWriter, r *http.Request) error {
	var req createCommentRequest
	if err := h.bind(r, &req); err != nil {
		return err
	}
	ctx := r.Context()
	p, err := h.findPost(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	u, err := h.findUser(ctx, req.UserID, "user")
	if err != nil {
		return err
	}
	c, err := h.comments.Create(ctx, req.Content, u.ID, p.ID)
	if err != nil {
		return notFound(err, "post or user")
	}
	respond(w, http.StatusCreated, c, "Comment added successfully")
	return nil
}

func (h *Handler) deletePostComment(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	p, err := h.findPost(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	c, err := h.findComment(ctx, chi.URLParam(r, "comment_id"))
	if err != nil {
		return err
	}
	if c.PostID != p.ID {
		return apperr.Validation("this comment does not belong to this post")
	}
	if err := h.comments.Delete(ctx, c.ID); err != nil {
		return err
	}
	respond(w, http.StatusOK, nil, "Comment deleted successfully")
	return nil
}
