package httpapi

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/models"
	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

// memGraph is an in-memory social graph backing the store fakes.
type memGraph struct {
	mu       sync.Mutex
	seq      int
	users    map[string]models.User
	posts    map[string]models.Post
	comments map[string]models.Comment
	friends  map[[2]string]bool // directed, as stored
	likes    map[[2]string]bool // user id -> post or comment id
	fail     error
	down     error
}

func newMemGraph() *memGraph {
	return &memGraph{
		users:    map[string]models.User{},
		posts:    map[string]models.Post{},
		comments: map[string]models.Comment{},
		friends:  map[[2]string]bool{},
		likes:    map[[2]string]bool{},
	}
}

func (g *memGraph) nextID(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s%d", prefix, g.seq)
}

func (g *memGraph) lock() (func(), error) {
	g.mu.Lock()
	if g.fail != nil {
		g.mu.Unlock()
		return nil, g.fail
	}
	return g.mu.Unlock, nil
}

func sortedUsers(in []*models.User) []*models.User {
	sort.Slice(in, func(i, j int) bool { return in[i].ID < in[j].ID })
	return in
}

type memUsers struct{ g *memGraph }
type memPosts struct{ g *memGraph }
type memComments struct{ g *memGraph }
type memDB struct{ g *memGraph }

func (s memUsers) Create(_ context.Context, name, email string) (*models.User, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, u := range s.g.users {
		if u.Email == email {
			return nil, fmt.Errorf("save user: %w", neopersist.ErrConstraintViolation)
		}
	}
	u := models.User{ID: s.g.nextID("u"), Name: name, Email: email, CreatedAt: 1}
	s.g.users[u.ID] = u
	return &u, nil
}

func (s memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	u, ok := s.g.users[id]
	if !ok {
		return nil, neopersist.ErrNotFound
	}
	return &u, nil
}

func (s memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, u := range s.g.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, neopersist.ErrNotFound
}

func (s memUsers) GetAll(_ context.Context) ([]*models.User, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*models.User, 0, len(s.g.users))
	for _, u := range s.g.users {
		u := u
		out = append(out, &u)
	}
	return sortedUsers(out), nil
}

func (s memUsers) Update(_ context.Context, u *models.User, patch models.UserPatch) error {
	unlock, err := s.g.lock()
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := s.g.users[u.ID]; !ok {
		return neopersist.ErrNotFound
	}
	patch.Apply(u)
	s.g.users[u.ID] = *u
	return nil
}

func (s memUsers) Delete(_ context.Context, id string) error {
	unlock, err := s.g.lock()
	if err != nil {
		return err
	}
	defer unlock()
	delete(s.g.users, id)
	for k := range s.g.friends {
		if k[0] == id || k[1] == id {
			delete(s.g.friends, k)
		}
	}
	for k := range s.g.likes {
		if k[0] == id {
			delete(s.g.likes, k)
		}
	}
	return nil
}

func (s memUsers) AddFriend(_ context.Context, userID, friendID string) (bool, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return false, err
	}
	defer unlock()
	_, a := s.g.users[userID]
	_, b := s.g.users[friendID]
	if !a || !b {
		return false, nil
	}
	s.g.friends[[2]string{userID, friendID}] = true
	return true, nil
}

func (s memUsers) RemoveFriend(_ context.Context, userID, friendID string) (bool, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return false, err
	}
	defer unlock()
	removed := false
	for _, k := range [][2]string{{userID, friendID}, {friendID, userID}} {
		if s.g.friends[k] {
			delete(s.g.friends, k)
			removed = true
		}
	}
	return removed, nil
}

func (s memUsers) IsFriendWith(_ context.Context, userID, friendID string) (bool, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return false, err
	}
	defer unlock()
	return s.g.friends[[2]string{userID, friendID}] || s.g.friends[[2]string{friendID, userID}], nil
}

func (s memUsers) friendsOf(id string) map[string]bool {
	out := map[string]bool{}
	for k := range s.g.friends {
		if k[0] == id {
			out[k[1]] = true
		}
		if k[1] == id {
			out[k[0]] = true
		}
	}
	return out
}

func (s memUsers) GetFriends(_ context.Context, userID string) ([]*models.User, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*models.User, 0)
	for id := range s.friendsOf(userID) {
		u := s.g.users[id]
		out = append(out, &u)
	}
	return sortedUsers(out), nil
}

func (s memUsers) GetMutualFriends(_ context.Context, userID, otherID string) ([]*models.User, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	theirs := s.friendsOf(otherID)
	out := make([]*models.User, 0)
	for id := range s.friendsOf(userID) {
		if theirs[id] && id != userID && id != otherID {
			u := s.g.users[id]
			out = append(out, &u)
		}
	}
	return sortedUsers(out), nil
}

func (s memUsers) Neighborhood(_ context.Context, userID string) (*neopersist.GraphResult, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	if _, ok := s.g.users[userID]; !ok {
		return nil, neopersist.ErrNotFound
	}
	graph := &neopersist.GraphResult{
		Nodes: []*neopersist.GraphNode{{ID: userID, Labels: []string{"User"}}},
		Edges: []*neopersist.Edge{},
	}
	for id := range s.friendsOf(userID) {
		graph.Nodes = append(graph.Nodes, &neopersist.GraphNode{ID: id, Labels: []string{"User"}})
		graph.Edges = append(graph.Edges, &neopersist.Edge{Source: userID, Target: id, Type: models.RelFriendsWith})
	}
	return graph, nil
}

func (s memPosts) Create(_ context.Context, title, content, authorID string) (*models.Post, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	if _, ok := s.g.users[authorID]; !ok {
		return nil, models.ErrAuthorNotFound
	}
	p := models.Post{ID: s.g.nextID("p"), Title: title, Content: content, AuthorID: authorID, CreatedAt: 2}
	s.g.posts[p.ID] = p
	return &p, nil
}

func (s memPosts) FindByID(_ context.Context, id string) (*models.Post, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	p, ok := s.g.posts[id]
	if !ok {
		return nil, neopersist.ErrNotFound
	}
	return &p, nil
}

func (s memPosts) GetAll(_ context.Context) ([]*models.Post, error) {
	return s.filter(func(models.Post) bool { return true })
}

func (s memPosts) GetUserPosts(_ context.Context, authorID string) ([]*models.Post, error) {
	return s.filter(func(p models.Post) bool { return p.AuthorID == authorID })
}

func (s memPosts) filter(keep func(models.Post) bool) ([]*models.Post, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*models.Post, 0)
	for _, p := range s.g.posts {
		if keep(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memPosts) Update(_ context.Context, p *models.Post, patch models.PostPatch) error {
	unlock, err := s.g.lock()
	if err != nil {
		return err
	}
	defer unlock()
	patch.Apply(p)
	s.g.posts[p.ID] = *p
	return nil
}

func (s memPosts) Delete(_ context.Context, id string) error {
	unlock, err := s.g.lock()
	if err != nil {
		return err
	}
	defer unlock()
	delete(s.g.posts, id)
	for cid, c := range s.g.comments {
		if c.PostID == id {
			delete(s.g.comments, cid)
		}
	}
	for k := range s.g.likes {
		if k[1] == id {
			delete(s.g.likes, k)
		}
	}
	return nil
}

func (g *memGraph) like(userID, targetID string, on bool) (bool, error) {
	unlock, err := g.lock()
	if err != nil {
		return false, err
	}
	defer unlock()
	k := [2]string{userID, targetID}
	had := g.likes[k]
	if on {
		g.likes[k] = true
		return true, nil
	}
	delete(g.likes, k)
	return had, nil
}

func (g *memGraph) countLikes(targetID string) (int64, error) {
	unlock, err := g.lock()
	if err != nil {
		return 0, err
	}
	defer unlock()
	var n int64
	for k := range g.likes {
		if k[1] == targetID {
			n++
		}
	}
	return n, nil
}

func (s memPosts) AddLike(_ context.Context, postID, userID string) (bool, error) {
	return s.g.like(userID, postID, true)
}

func (s memPosts) RemoveLike(_ context.Context, postID, userID string) (bool, error) {
	return s.g.like(userID, postID, false)
}

func (s memPosts) GetLikesCount(_ context.Context, postID string) (int64, error) {
	return s.g.countLikes(postID)
}

func (s memPosts) GetComments(_ context.Context, postID string) ([]*models.Comment, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*models.Comment, 0)
	for _, c := range s.g.comments {
		if c.PostID == postID {
			c := c
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s memComments) Create(_ context.Context, content, authorID, postID string) (*models.Comment, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	c := models.Comment{ID: s.g.nextID("c"), Content: content, AuthorID: authorID, PostID: postID, CreatedAt: 3}
	s.g.comments[c.ID] = c
	return &c, nil
}

func (s memComments) FindByID(_ context.Context, id string) (*models.Comment, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	c, ok := s.g.comments[id]
	if !ok {
		return nil, neopersist.ErrNotFound
	}
	return &c, nil
}

func (s memComments) GetAll(_ context.Context) ([]*models.Comment, error) {
	unlock, err := s.g.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*models.Comment, 0, len(s.g.comments))
	for _, c := range s.g.comments {
		c := c
		out = append(out, &c)
	}
	return out, nil
}

func (s memComments) Update(_ context.Context, c *models.Comment, patch models.CommentPatch) error {
	unlock, err := s.g.lock()
	if err != nil {
		return err
	}
	defer unlock()
	patch.Apply(c)
	s.g.comments[c.ID] = *c
	return nil
}

func (s memComments) Delete(_ context.Context, id string) error {
	unlock, err := s.g.lock()
	if err != nil {
		return err
	}
	defer unlock()
	delete(s.g.comments, id)
	return nil
}

func (s memComments) AddLike(_ context.Context, commentID, userID string) (bool, error) {
	return s.g.like(userID, commentID, true)
}

func (s memComments) RemoveLike(_ context.Context, commentID, userID string) (bool, error) {
	return s.g.like(userID, commentID, false)
}

func (s memComments) GetLikesCount(_ context.Context, commentID string) (int64, error) {
	return s.g.countLikes(commentID)
}

func (d memDB) CountNodes(_ context.Context) (int64, error) {
	unlock, err := d.g.lock()
	if err != nil {
		return 0, err
	}
	defer unlock()
	return int64(len(d.g.users) + len(d.g.posts) + len(d.g.comments)), nil
}

func (d memDB) Verify(_ context.Context) error {
	return d.g.down
}
