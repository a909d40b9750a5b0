package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/models"
)

type updateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handler) commentRoutes(r chi.Router) {
	r.Get("/", h.handle(h.listComments))
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.handle(h.getComment))
		r.Put("/", h.handle(h.updateComment))
		r.Delete("/", h.handle(h.deleteComment))
		r.Post("/like", h.handle(h.likeComment))
		r.Delete("/like", h.handle(h.unlikeComment))
		r.Get("/likes", h.handle(h.commentLikes))
	})
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) error {
	comments, err := h.comments.GetAll(r.Context())
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, comments, "")
	return nil
}

func (h *Handler) getComment(w http.ResponseWriter, r *http.Request) error {
	c, err := h.findComment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, c, "")
	return nil
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request) error {
	var req updateCommentRequest
	if err := h.bind(r, &req); err != nil {
		return err
	}
	ctx := r.Context()
	c, err := h.findComment(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	if err := h.comments.Update(ctx, c, models.CommentPatch{Content: &req.Content}); err != nil {
		return notFound(err, "comment")
	}
	respond(w, http.StatusOK, c, "Comment updated successfully")
	return nil
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	c, err := h.findComment(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	if err := h.comments.Delete(ctx, c.ID); err != nil {
		return err
	}
	respond(w, http.StatusOK, nil, "Comment deleted successfully")
	return nil
}

func (h *Handler) commentLikeTarget(r *http.Request) (*models.Comment, *models.User, error) {
	var req likeRequest
	if err := h.bind(r, &req); err != nil {
		return nil, nil, err
	}
	ctx := r.Context()
	c, err := h.findComment(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return nil, nil, err
	}
	u, err := h.findUser(ctx, req.UserID, "user")
	if err != nil {
		return nil, nil, err
	}
	return c, u, nil
}

func (h *Handler) likeComment(w http.ResponseWriter, r *http.Request) error {
	c, u, err := h.commentLikeTarget(r)
	if err != nil {
		return err
	}
	ctx := r.Context()
	if _, err := h.comments.AddLike(ctx, c.ID, u.ID); err != nil {
		return err
	}
	count, err := h.comments.GetLikesCount(ctx, c.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusCreated, likesPayload{LikesCount: count}, "Like added successfully")
	return nil
}

func (h *Handler) unlikeComment(w http.ResponseWriter, r *http.Request) error {
	c, u, err := h.commentLikeTarget(r)
	if err != nil {
		return err
	}
	ctx := r.Context()
	if _, err := h.comments.RemoveLike(ctx, c.ID, u.ID); err != nil {
		return err
	}
	count, err := h.comments.GetLikesCount(ctx, c.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, likesPayload{LikesCount: count}, "Like removed successfully")
	return nil
}

func (h *Handler) commentLikes(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	c, err := h.findComment(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	count, err := h.comments.GetLikesCount(ctx, c.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, likesPayload{LikesCount: count}, "")
	return nil
}
