package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

// Post is an article written by a user, stored as a `:Post` node with exactly
// one incoming CREATED edge from its author.
type Post struct {
	ID      string `crud:"pk,property:id" json:"id"`
	Title   string `crud:"property:title" json:"title"`
	Content string `crud:"property:content" json:"content"`
	// AuthorID is read back through the CREATED edge and never stored on the node.
	AuthorID  string  `crud:"derived,property:author_id" json:"author_id"`
	CreatedAt float64 `crud:"property:created_at" json:"created_at"`
}

// PostPatch carries the optional fields of a post update.
type PostPatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// IsEmpty reports whether the patch supplies no field at all.
func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil
}

// Apply merges the patch onto post.
func (p PostPatch) Apply(post *Post) {
	overwrite(&post.Title, p.Title)
	overwrite(&post.Content, p.Content)
}

// postWithAuthor completes a query that has bound `p` with the author lookup.
const postWithAuthor = "\nOPTIONAL MATCH (author:User)-[:" + RelCreated + "]->(p)\nRETURN p, author.id AS author_id"

// PostMapper persists posts, their likes and their comments.
type PostMapper struct {
	pm       *neopersist.PersistenceManager
	repo     *neopersist.Repository[Post]
	comments *neopersist.Repository[Comment]
	opts     options
}

// NewPostMapper returns a PostMapper backed by pm.
func NewPostMapper(pm *neopersist.PersistenceManager, opts ...Option) (*PostMapper, error) {
	repo, err := neopersist.RepositoryFor[Post](pm)
	if err != nil {
		return nil, err
	}
	comments, err := neopersist.RepositoryFor[Comment](pm)
	if err != nil {
		return nil, err
	}
	return &PostMapper{pm: pm, repo: repo, comments: comments, opts: buildOptions(opts)}, nil
}

// New builds an unsaved post with a fresh id and timestamp.
func (m *PostMapper) New(title, content, authorID string) *Post {
	return &Post{
		ID:        m.opts.newID(),
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: m.opts.timestamp(),
	}
}

// Create builds a post and stores it together with its authorship edge in a
// single statement. Nothing is written when the author does not exist, and
// ErrAuthorNotFound is returned.
func (m *PostMapper) Create(ctx context.Context, title, content, authorID string) (*Post, error) {
	p := m.New(title, content, authorID)
	if err := m.insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *PostMapper) insert(ctx context.Context, p *Post) error {
	query := "MATCH (author:User {id: $author_id})\n" +
		"CREATE (p:Post {id: $id, title: $title, content: $content, created_at: $created_at})\n" +
		"CREATE (author)-[:" + RelCreated + "]->(p)\n" +
		"RETURN p, author.id AS author_id"
	params := m.repo.Props(p)
	params["author_id"] = p.AuthorID

	created, err := m.repo.QueryOne(ctx, query, params)
	if errors.Is(err, neopersist.ErrNotFound) {
		return fmt.Errorf("post %s: %w", p.ID, ErrAuthorNotFound)
	}
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

// Save stores a new post through the atomic create path and overwrites the
// properties of an existing one.
func (m *PostMapper) Save(ctx context.Context, p *Post) error {
	n, err := m.repo.CountByProperty(ctx, "id", p.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return m.insert(ctx, p)
	}
	return m.repo.Save(ctx, p)
}

// FindByID returns the post with the given id along with its author id.
func (m *PostMapper) FindByID(ctx context.Context, id string) (*Post, error) {
	return m.repo.QueryOne(ctx, "MATCH (p:Post {id: $id})"+postWithAuthor, map[string]interface{}{"id": id})
}

// GetAll returns every post, oldest first.
func (m *PostMapper) GetAll(ctx context.Context) ([]*Post, error) {
	return m.repo.Query(ctx, "MATCH (p:Post)"+postWithAuthor+"\nORDER BY p.created_at", nil)
}

// GetUserPosts returns the posts written by authorID, oldest first.
func (m *PostMapper) GetUserPosts(ctx context.Context, authorID string) ([]*Post, error) {
	query := "MATCH (author:User {id: $author_id})-[:" + RelCreated + "]->(p:Post)\n" +
		"RETURN p, author.id AS author_id\nORDER BY p.created_at"
	return m.repo.Query(ctx, query, map[string]interface{}{"author_id": authorID})
}

// Update merges patch onto p and writes title and content back.
func (m *PostMapper) Update(ctx context.Context, p *Post, patch PostPatch) error {
	patch.Apply(p)
	updated, err := m.repo.QueryOne(ctx,
		"MATCH (p:Post {id: $id})\nSET p.title = $title, p.content = $content\nWITH p"+postWithAuthor,
		map[string]interface{}{"id": p.ID, "title": p.Title, "content": p.Content})
	if err != nil {
		return err
	}
	*p = *updated
	return nil
}

// Delete removes the post, its comments and every relationship attached to them.
func (m *PostMapper) Delete(ctx context.Context, id string) error {
	query := "MATCH (p:Post {id: $id})\n" +
		"OPTIONAL MATCH (p)-[:" + RelHasComment + "]->(c:Comment)\n" +
		"DETACH DELETE c, p"
	_, err := m.pm.Runner().Run(ctx, query, map[string]interface{}{"id": id})
	return err
}

// AddLike records that userID likes the post. Liking twice is a no-op. It
// reports false when the user or the post is missing.
func (m *PostMapper) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	return m.pm.MergeRelation(ctx, &User{ID: userID}, &Post{ID: postID}, RelLikes)
}

// RemoveLike deletes the like of userID, reporting whether there was one.
func (m *PostMapper) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	n, err := m.pm.DeleteRelation(ctx, &User{ID: userID}, &Post{ID: postID}, RelLikes, neopersist.Outgoing)
	return n > 0, err
}

// GetLikesCount returns how many users like the post.
func (m *PostMapper) GetLikesCount(ctx context.Context, postID string) (int64, error) {
	return countLikes(ctx, m.pm.Runner(), m.repo.Label(), postID)
}

// GetComments returns the comments attached to the post, oldest first.
func (m *PostMapper) GetComments(ctx context.Context, postID string) ([]*Comment, error) {
	return postComments(ctx, m.comments, postID)
}
