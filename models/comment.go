package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

// Comment is a reply to a post. Its author and post are linked by CREATED and
// HAS_COMMENT edges created together with the node.
type Comment struct {
	ID        string  `crud:"pk,property:id" json:"id"`
	Content   string  `crud:"property:content" json:"content"`
	AuthorID  string  `crud:"derived,property:author_id" json:"author_id"`
	PostID    string  `crud:"derived,property:post_id" json:"post_id"`
	CreatedAt float64 `crud:"property:created_at" json:"created_at"`
}

// CommentPatch carries the optional fields of a comment update.
type CommentPatch struct {
	Content *string `json:"content"`
}

// IsEmpty reports whether the patch supplies no field at all.
func (p CommentPatch) IsEmpty() bool { return p.Content == nil }

// Apply merges the patch onto c.
func (p CommentPatch) Apply(c *Comment) {
	overwrite(&c.Content, p.Content)
}

// commentLinks completes a query that has bound `c` with its author and post.
const commentLinks = "\nOPTIONAL MATCH (author:User)-[:" + RelCreated + "]->(c)" +
	"\nOPTIONAL MATCH (post:Post)-[:" + RelHasComment + "]->(c)" +
	"\nRETURN c, author.id AS author_id, post.id AS post_id"

// CommentMapper persists comments and their likes.
type CommentMapper struct {
	pm   *neopersist.PersistenceManager
	repo *neopersist.Repository[Comment]
	opts options
}

// NewCommentMapper returns a CommentMapper backed by pm.
func NewCommentMapper(pm *neopersist.PersistenceManager, opts ...Option) (*CommentMapper, error) {
	repo, err := neopersist.RepositoryFor[Comment](pm)
	if err != nil {
		return nil, err
	}
	return &CommentMapper{pm: pm, repo: repo, opts: buildOptions(opts)}, nil
}

// New builds an unsaved comment with a fresh id and timestamp.
func (m *CommentMapper) New(content, authorID, postID string) *Comment {
	return &Comment{
		ID:        m.opts.newID(),
		Content:   content,
		AuthorID:  authorID,
		PostID:    postID,
		CreatedAt: m.opts.timestamp(),
	}
}

// Create builds a comment and links it to its author and post in a single
// statement. Nothing is written when either of them is missing.
func (m *CommentMapper) Create(ctx context.Context, content, authorID, postID string) (*Comment, error) {
	c := m.New(content, authorID, postID)
	if err := m.insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *CommentMapper) insert(ctx context.Context, c *Comment) error {
	query := "MATCH (author:User {id: $author_id}), (post:Post {id: $post_id})\n" +
		"CREATE (c:Comment {id: $id, content: $content, created_at: $created_at})\n" +
		"CREATE (author)-[:" + RelCreated + "]->(c)\n" +
		"CREATE (post)-[:" + RelHasComment + "]->(c)\n" +
		"RETURN c, author.id AS author_id, post.id AS post_id"
	params := m.repo.Props(c)
	params["author_id"] = c.AuthorID
	params["post_id"] = c.PostID

	created, err := m.repo.QueryOne(ctx, query, params)
	if errors.Is(err, neopersist.ErrNotFound) {
		return fmt.Errorf("comment %s: author %q or post %q: %w", c.ID, c.AuthorID, c.PostID, neopersist.ErrNotFound)
	}
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

// Save stores a new comment through the linked create path and overwrites
// the properties of an existing one.
func (m *CommentMapper) Save(ctx context.Context, c *Comment) error {
	n, err := m.repo.CountByProperty(ctx, "id", c.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return m.insert(ctx, c)
	}
	return m.repo.Save(ctx, c)
}

// GetAll returns every comment, oldest first.
func (m *CommentMapper) GetAll(ctx context.Context) ([]*Comment, error) {
	return m.repo.Query(ctx, "MATCH (c:Comment)"+commentLinks+"\nORDER BY c.created_at", nil)
}

// FindByID returns the comment with the given id.
func (m *CommentMapper) FindByID(ctx context.Context, id string) (*Comment, error) {
	return m.repo.QueryOne(ctx, "MATCH (c:Comment {id: $id})"+commentLinks, map[string]interface{}{"id": id})
}

// GetPostComments returns the comments of postID, oldest first.
func (m *CommentMapper) GetPostComments(ctx context.Context, postID string) ([]*Comment, error) {
	return postComments(ctx, m.repo, postID)
}

// Update merges patch onto c and writes the content back.
func (m *CommentMapper) Update(ctx context.Context, c *Comment, patch CommentPatch) error {
	patch.Apply(c)
	updated, err := m.repo.QueryOne(ctx,
		"MATCH (c:Comment {id: $id})\nSET c.content = $content\nWITH c"+commentLinks,
		map[string]interface{}{"id": c.ID, "content": c.Content})
	if err != nil {
		return err
	}
	*c = *updated
	return nil
}

// Delete removes the comment and every relationship attached to it.
func (m *CommentMapper) Delete(ctx context.Context, id string) error {
	return m.repo.Delete(ctx, id)
}

// AddLike records that userID likes the comment. Liking twice is a no-op.
func (m *CommentMapper) AddLike(ctx context.Context, commentID, userID string) (bool, error) {
	return m.pm.MergeRelation(ctx, &User{ID: userID}, &Comment{ID: commentID}, RelLikes)
}

// RemoveLike deletes the like of userID, reporting whether there was one.
func (m *CommentMapper) RemoveLike(ctx context.Context, commentID, userID string) (bool, error) {
	n, err := m.pm.DeleteRelation(ctx, &User{ID: userID}, &Comment{ID: commentID}, RelLikes, neopersist.Outgoing)
	return n > 0, err
}

// GetLikesCount returns how many users like the comment.
func (m *CommentMapper) GetLikesCount(ctx context.Context, commentID string) (int64, error) {
	return countLikes(ctx, m.pm.Runner(), m.repo.Label(), commentID)
}

func postComments(ctx context.Context, repo *neopersist.Repository[Comment], postID string) ([]*Comment, error) {
	query := "MATCH (post:Post {id: $post_id})-[:" + RelHasComment + "]->(c:Comment)\n" +
		"OPTIONAL MATCH (author:User)-[:" + RelCreated + "]->(c)\n" +
		"RETURN c, author.id AS author_id, post.id AS post_id\nORDER BY c.created_at"
	return repo.Query(ctx, query, map[string]interface{}{"post_id": postID})
}
