package neopersist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagged struct {
	Key       string  `crud:"pk,property:key"`
	Title     string  `crud:"property:title"`
	CreatedAt float64 `crud:""`
	OwnerID   string  `crud:"derived"`
	Ignored   string
	Skipped   string `crud:"-"`
}

func TestParseTags(t *testing.T) {
	meta, err := parseTags[tagged]()
	require.NoError(t, err)

	assert.Equal(t, "tagged", meta.Label)
	assert.Equal(t, "Key", meta.PKField)
	assert.Equal(t, "key", meta.PKProp)
	assert.Equal(t, map[string]string{
		"Key":       "key",
		"Title":     "title",
		"CreatedAt": "created_at",
	}, meta.Mappings)
	assert.Equal(t, map[string]string{"OwnerID": "owner_id"}, meta.Derived)
	assert.Equal(t, map[string]string{
		"Title":     "title",
		"CreatedAt": "created_at",
	}, meta.stored())
}

func TestParseTagsErrors(t *testing.T) {
	t.Run("no primary key", func(t *testing.T) {
		type noPK struct {
			Name string `crud:"property:name"`
		}
		_, err := parseTags[noPK]()
		assert.ErrorContains(t, err, "no primary key")
	})

	t.Run("two primary keys", func(t *testing.T) {
		type twoPK struct {
			A string `crud:"pk"`
			B string `crud:"pk"`
		}
		_, err := parseTags[twoPK]()
		assert.ErrorContains(t, err, "more than one primary key")
	})

	t.Run("derived primary key", func(t *testing.T) {
		type derivedPK struct {
			A string `crud:"pk,derived"`
		}
		_, err := parseTags[derivedPK]()
		assert.Error(t, err)
	})

	t.Run("not a struct", func(t *testing.T) {
		_, err := parseTags[string]()
		assert.ErrorContains(t, err, "not a struct")
	})
}
