package neopersist

import (
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("constraint violation", func(t *testing.T) {
		err := classify(&neo4j.Neo4jError{
			Code: constraintViolationCode,
			Msg:  "Node(1) already exists with label `User` and property `email`",
		})
		assert.ErrorIs(t, err, ErrConstraintViolation)

		var neoErr *neo4j.Neo4jError
		assert.True(t, errors.As(err, &neoErr))
	})

	t.Run("other driver error", func(t *testing.T) {
		err := classify(&neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError"})
		assert.NotErrorIs(t, err, ErrConstraintViolation)
		assert.ErrorContains(t, err, "error executing neo4j query")
	})

	t.Run("plain error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := classify(cause)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrConstraintViolation)
	})
}
