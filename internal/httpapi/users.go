package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/apperr"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/models"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

type createUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

type friendRequest struct {
	FriendID string `json:"friend_id" validate:"required"`
}

type createPostRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func errEmailTaken() error {
	return apperr.Conflict("a user with this email already exists")
}

func (h *Handler) userRoutes(r chi.Router) {
	r.Get("/", h.handle(h.listUsers))
	r.Post("/", h.handle(h.createUser))
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.handle(h.getUser))
		r.Put("/", h.handle(h.updateUser))
		r.Delete("/", h.handle(h.deleteUser))
		r.Get("/friends", h.handle(h.listFriends))
		r.Post("/friends", h.handle(h.addFriend))
		r.Get("/friends/{friend_id}", h.handle(h.checkFriendship))
		r.Delete("/friends/{friend_id}", h.handle(h.removeFriend))
		r.Get("/mutual-friends/{other_id}", h.handle(h.mutualFriends))
		r.Get("/posts", h.handle(h.listUserPosts))
		r.Post("/posts", h.handle(h.createUserPost))
		r.Get("/graph", h.handle(h.userGraph))
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := h.users.GetAll(r.Context())
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, users, "")
	return nil
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) error {
	var req createUserRequest
	if err := h.bind(r, &req); err != nil {
		return err
	}
	ctx := r.Context()

	_, err := h.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return errEmailTaken()
	case !errors.Is(err, neopersist.ErrNotFound):
		return err
	}

	u, err := h.users.Create(ctx, req.Name, req.Email)
	if errors.Is(err, neopersist.ErrConstraintViolation) {
		// Lost a race against a concurrent registration.
		return errEmailTaken()
	}
	if err != nil {
		return err
	}
	respond(w, http.StatusCreated, u, "User created successfully")
	return nil
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) error {
	u, err := h.findUser(r.Context(), chi.URLParam(r, "id"), "user")
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, u, "")
	return nil
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) error {
	var patch models.UserPatch
	if err := decode(r, &patch); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return apperr.Validation("no data provided")
	}
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	u, err := h.findUser(ctx, id, "user")
	if err != nil {
		return err
	}
	if patch.Email != nil && *patch.Email != "" && *patch.Email != u.Email {
		existing, err := h.users.FindByEmail(ctx, *patch.Email)
		if err == nil && existing.ID != id {
			return apperr.Conflict("this email is already used by another user")
		}
		if err != nil && !errors.Is(err, neopersist.ErrNotFound) {
			return err
		}
	}

	err = h.users.Update(ctx, u, patch)
	if errors.Is(err, neopersist.ErrConstraintViolation) {
		return apperr.Conflict("this email is already used by another user")
	}
	if err != nil {
		return notFound(err, "user")
	}
	respond(w, http.StatusOK, u, "User updated successfully")
	return nil
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	u, err := h.findUser(ctx, chi.URLParam(r, "id"), "user")
	if err != nil {
		return err
	}
	if err := h.users.Delete(ctx, u.ID); err != nil {
		return err
	}
	respond(w, http.StatusOK, nil, "User deleted successfully")
	return nil
}

func (h *Handler) listFriends(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	u, err := h.findUser(ctx, chi.URLParam(r, "id"), "user")
	if err != nil {
		return err
	}
	friends, err := h.users.GetFriends(ctx, u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, friends, "")
	return nil
}

func (h *Handler) addFriend(w http.ResponseWriter, r *http.Request) error {
	var req friendRequest
	if err := h.bind(r, &req); err != nil {
		return err
	}
	ctx := r.Context()

	u, err := h.findUser(ctx, chi.URLParam(r, "id"), "user")
	if err != nil {
		return err
	}
	friend, err := h.findUser(ctx, req.FriendID, "friend")
	if err != nil {
		return err
	}
	already, err := h.users.IsFriendWith(ctx, u.ID, friend.ID)
	if err != nil {
		return err
	}
	if already {
		return apperr.Conflict("these users are already friends")
	}
	added, err := h.users.AddFriend(ctx, u.ID, friend.ID)
	if err != nil {
		return err
	}
	if !added {
		// One of the users vanished between the lookups and the write.
		return apperr.NotFound("user not found")
	}
	respond(w, http.StatusCreated, nil, "Friend added successfully")
	return nil
}

func (h *Handler) checkFriendship(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	u, err := h.findUser(ctx, chi.URLParam(r, "id"), "user")
	if err != nil {
		return err
	}
	friend, err := h.findUser(ctx, chi.URLParam(r, "friend_id"), "friend")
	if err != nil {
		return err
	}
	isFriend, err := h.users.IsFriendWith(ctx, u.ID, friend.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, map[string]bool{"is_friend": isFriend}, "")
	return nil
}

func (h *Handler) removeFriend(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	u, err := h.findUser(ctx, chi.URLParam(r, "id"), "user")
	if err != nil {
		return err
	}
	friend, err := h.findUser(ctx, chi.URLParam(r, "friend_id"), "friend")
	if err != nil {
		return err
	}
	removed, err := h.users.RemoveFriend(ctx, u.ID, friend.ID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("these users are not friends")
	}
	respond(w, http.StatusOK, nil, "Friendship removed successfully")
	return nil
}

func (h *Handler) mutualFriends(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	u, err := h.findUser(ctx, chi.URLParam(r, "id"), "user")
	if err != nil {
		return err
	}
	other, err := h.findUser(ctx, chi.URLParam(r, "other_id"), "other user")
	if err != nil {
		return err
	}
	mutual, err := h.users.GetMutualFriends(ctx, u.ID, other.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, mutual, "")
	return nil
}

func (h *Handler) listUserPosts(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	u, err := h.findUser(ctx, chi.URLParam(r, "id"), "user")
	if err != nil {
		return err
	}
	posts, err := h.posts.GetUserPosts(ctx, u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, posts, "")
	return nil
}

func (h *Handler) createUserPost(w http.ResponseWriter, r *http.Request) error {
	var req createPostRequest
	if err := h.bind(r, &req); err != nil {
		return err
	}
	ctx := r.Context()
	u, err := h.findUser(ctx, chi.URLParam(r, "id"), "user")
	if err != nil {
		return err
	}
	p, err := h.posts.Create(ctx, req.Title, req.Content, u.ID)
	if err != nil {
		return notFound(err, "user")
	}
	respond(w, http.StatusCreated, p, "Post created successfully")
	return nil
}

func (h *Handler) userGraph(w http.ResponseWriter, r *http.Request) error {
	graph, err := h.users.Neighborhood(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return notFound(err, "user")
	}
	respond(w, http.StatusOK, graph, "")
	return nil
}
