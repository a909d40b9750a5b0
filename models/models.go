// Package models contains the social graph entities (users, posts and
// comments) and the mappers that persist them through neopersist.
//
// Every entity is stored as a node labelled with its struct name and keyed by
// an `id` property. Authorship and post membership are relationships, so the
// author_id and post_id fields are derived from the graph on read.
package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

// Relationship types of the social graph.
const (
	RelCreated     = "CREATED"
	RelFriendsWith = "FRIENDS_WITH"
	RelLikes       = "LIKES"
	RelHasComment  = "HAS_COMMENT"
)

// ErrAuthorNotFound is returned when content is created for a user that does
// not exist. It matches neopersist.ErrNotFound.
var ErrAuthorNotFound = fmt.Errorf("author %w", neopersist.ErrNotFound)

// IDGenerator returns a new random entity identifier.
type IDGenerator func() string

// NewUUID generates a random (version 4) UUID string.
func NewUUID() string { return uuid.NewString() }

// NewULID generates a lexically sortable ULID string.
func NewULID() string { return ulid.Make().String() }

// IDGeneratorFor resolves an id format name ("uuid" or "ulid").
func IDGeneratorFor(format string) (IDGenerator, error) {
	switch format {
	case "", "uuid":
		return NewUUID, nil
	case "ulid":
		return NewULID, nil
	default:
		return nil, fmt.Errorf("unknown id format %q", format)
	}
}

// Clock returns the current time.
type Clock func() time.Time

// Option configures a mapper.
type Option func(*options)

type options struct {
	newID IDGenerator
	now   Clock
}

// WithIDGenerator overrides how new entity ids are generated.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.newID = g
		}
	}
}

// WithClock overrides the clock used to stamp created_at.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.now = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{newID: NewUUID, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// timestamp returns the current time as fractional epoch seconds.
func (o options) timestamp() float64 {
	return float64(o.now().UnixNano()) / float64(time.Second)
}

// Constraints lists the schema constraints the social graph relies on.
func Constraints() []neopersist.Constraint {
	return []neopersist.Constraint{
		neopersist.UniqueConstraint("user_email", "User", "email"),
		neopersist.UniqueConstraint("user_id", "User", "id"),
		neopersist.UniqueConstraint("post_id", "Post", "id"),
		neopersist.UniqueConstraint("comment_id", "Comment", "id"),
	}
}

// overwrite replaces dst with *src when src is supplied and non-empty.
func overwrite(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

// countLikes counts the users with a LIKES edge to the node of label with the given id.
func countLikes(ctx context.Context, runner neopersist.DBRunner, label, id string) (int64, error) {
	query := fmt.Sprintf("MATCH (u:User)-[:%s]->(n:%s {id: $id})\nRETURN count(u) AS total", RelLikes, label)
	result, err := runner.Run(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return 0, err
	}
	return neopersist.Int64(result, "total")
}
