package models

import (
	"context"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

// User is a member of the social graph, stored as a `:User` node.
type User struct {
	// ID is the primary key used by MERGE and MATCH operations.
	ID string `crud:"pk,property:id" json:"id"`
	// Name is the display name of the user.
	Name string `crud:"property:name" json:"name"`
	// Email is unique among users; a database constraint enforces it.
	Email string `crud:"property:email" json:"email"`
	// CreatedAt is the creation time in epoch seconds.
	CreatedAt float64 `crud:"property:created_at" json:"created_at"`
}

// UserPatch carries the optional fields of a user update. Nil or empty
// values leave the current value untouched.
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// IsEmpty reports whether the patch supplies no field at all.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil
}

// Apply merges the patch onto u.
func (p UserPatch) Apply(u *User) {
	overwrite(&u.Name, p.Name)
	overwrite(&u.Email, p.Email)
}

// UserMapper persists users and their friendships.
type UserMapper struct {
	pm   *neopersist.PersistenceManager
	repo *neopersist.Repository[User]
	opts options
}

// NewUserMapper returns a UserMapper backed by pm.
func NewUserMapper(pm *neopersist.PersistenceManager, opts ...Option) (*UserMapper, error) {
	repo, err := neopersist.RepositoryFor[User](pm)
	if err != nil {
		return nil, err
	}
	return &UserMapper{pm: pm, repo: repo, opts: buildOptions(opts)}, nil
}

// New builds an unsaved user with a fresh id and timestamp.
func (m *UserMapper) New(name, email string) *User {
	return &User{ID: m.opts.newID(), Name: name, Email: email, CreatedAt: m.opts.timestamp()}
}

// Create builds and saves a new user. It does not check whether the email is
// taken; a duplicate fails with neopersist.ErrConstraintViolation once the
// schema constraints are in place.
func (m *UserMapper) Create(ctx context.Context, name, email string) (*User, error) {
	u := m.New(name, email)
	if err := m.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Save persists the full state of u.
func (m *UserMapper) Save(ctx context.Context, u *User) error {
	return m.repo.Save(ctx, u)
}

// FindByID returns the user with the given id.
func (m *UserMapper) FindByID(ctx context.Context, id string) (*User, error) {
	return m.repo.FindByID(ctx, id)
}

// FindByEmail returns the user registered with email.
func (m *UserMapper) FindByEmail(ctx context.Context, email string) (*User, error) {
	users, err := m.repo.FindByProperty(ctx, "email", email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, neopersist.ErrNotFound
	}
	return users[0], nil
}

// GetAll returns every user.
func (m *UserMapper) GetAll(ctx context.Context) ([]*User, error) {
	return m.repo.FindAll(ctx)
}

// Update merges patch onto u and writes every property back. It fails with
// neopersist.ErrNotFound when the user no longer exists.
func (m *UserMapper) Update(ctx context.Context, u *User, patch UserPatch) error {
	patch.Apply(u)
	updated, err := m.repo.QueryOne(ctx,
		"MATCH (u:User {id: $id})\nSET u.name = $name, u.email = $email\nRETURN u",
		map[string]interface{}{"id": u.ID, "name": u.Name, "email": u.Email})
	if err != nil {
		return err
	}
	*u = *updated
	return nil
}

// Delete removes the user and every relationship attached to it.
func (m *UserMapper) Delete(ctx context.Context, id string) error {
	return m.repo.Delete(ctx, id)
}

// AddFriend creates the friendship edge from userID to friendID unless one
// already exists in that direction. It reports false when either user is missing.
func (m *UserMapper) AddFriend(ctx context.Context, userID, friendID string) (bool, error) {
	return m.pm.MergeRelation(ctx, &User{ID: userID}, &User{ID: friendID}, RelFriendsWith)
}

// RemoveFriend deletes the friendship between the two users whichever way it
// was created. It reports whether anything was removed.
func (m *UserMapper) RemoveFriend(ctx context.Context, userID, friendID string) (bool, error) {
	n, err := m.pm.DeleteRelation(ctx, &User{ID: userID}, &User{ID: friendID}, RelFriendsWith, neopersist.Undirected)
	return n > 0, err
}

// IsFriendWith reports whether the two users are friends in either direction.
func (m *UserMapper) IsFriendWith(ctx context.Context, userID, friendID string) (bool, error) {
	return m.pm.RelationExists(ctx, &User{ID: userID}, &User{ID: friendID}, RelFriendsWith, neopersist.Undirected)
}

// GetFriends returns the distinct friends of the user.
func (m *UserMapper) GetFriends(ctx context.Context, userID string) ([]*User, error) {
	query := fmt.Sprintf("MATCH (u:User {id: $id})-[:%s]-(friend:User)\nRETURN DISTINCT friend\nORDER BY friend.name", RelFriendsWith)
	return m.repo.Query(ctx, query, map[string]interface{}{"id": userID})
}

// GetMutualFriends returns the users that are friends of both userID and
// otherID, never including either of them.
func (m *UserMapper) GetMutualFriends(ctx context.Context, userID, otherID string) ([]*User, error) {
	query := fmt.Sprintf(
		"MATCH (a:User {id: $user_id})-[:%[1]s]-(mutual:User)-[:%[1]s]-(b:User {id: $other_id})\n"+
			"WHERE mutual.id <> $user_id AND mutual.id <> $other_id\n"+
			"RETURN DISTINCT mutual\nORDER BY mutual.name", RelFriendsWith)
	return m.repo.Query(ctx, query, map[string]interface{}{"user_id": userID, "other_id": otherID})
}

// Neighborhood returns the user together with every adjacent node and edge.
func (m *UserMapper) Neighborhood(ctx context.Context, userID string) (*neopersist.GraphResult, error) {
	return m.pm.FindGraphCypher(ctx,
		"MATCH (u:User {id: $id})\nOPTIONAL MATCH (u)-[r]-(n)\nRETURN u, r, n",
		map[string]interface{}{"id": userID})
}
