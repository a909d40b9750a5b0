// Package neopersisttest provides an in-process neopersist.DBRunner for unit
// tests. Results are bound ahead of time and handed out in call order.
package neopersisttest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/neopersist"
)

var _ neopersist.DBRunner = (*Runner)(nil)

// Call is one recorded Run invocation.
type Call struct {
	Query  string
	Params map[string]interface{}
}

type response struct {
	result *neo4j.EagerResult
	err    error
}

// Runner records every query and replays bound responses in order. When no
// response is queued it returns an empty result.
type Runner struct {
	mu    sync.Mutex
	calls []Call
	queue []response
}

// New returns an empty Runner.
func New() *Runner { return &Runner{} }

// Bind queues a result made of the given records. Each record maps a column
// name to its value.
func (r *Runner) Bind(records ...map[string]any) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, response{result: Result(records...)})
	return r
}

// BindEmpty queues a result with no records.
func (r *Runner) BindEmpty() *Runner {
	return r.Bind()
}

// Fail queues an error.
func (r *Runner) Fail(err error) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, response{err: err})
	return r
}

// Run implements neopersist.DBRunner.
func (r *Runner) Run(_ context.Context, query string, params map[string]interface{}) (*neo4j.EagerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Query: query, Params: params})
	if len(r.queue) == 0 {
		return Result(), nil
	}
	next := r.queue[0]
	r.queue = r.queue[1:]
	return next.result, next.err
}

// Calls returns a copy of every recorded call.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the most recent call.
func (r *Runner) Last() Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}
	}
	return r.calls[len(r.calls)-1]
}

// Pending reports how many bound responses have not been consumed.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Contains reports whether the call's query contains every fragment.
func (c Call) Contains(fragments ...string) bool {
	for _, f := range fragments {
		if !strings.Contains(c.Query, f) {
			return false
		}
	}
	return true
}

// Result builds an EagerResult from record maps. Columns are sorted by name
// so results are deterministic.
func Result(records ...map[string]any) *neo4j.EagerResult {
	res := &neo4j.EagerResult{Records: make([]*neo4j.Record, 0, len(records))}
	for i, m := range records {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rec := &neo4j.Record{Keys: keys, Values: make([]any, len(keys))}
		for j, k := range keys {
			rec.Values[j] = m[k]
		}
		if i == 0 {
			res.Keys = keys
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// Node builds a node value with the given label and properties. The element
// id is derived from the "id" property when present.
func Node(label string, props map[string]any) neo4j.Node {
	elementID := label
	if id, ok := props["id"].(string); ok {
		elementID = label + ":" + id
	}
	return neo4j.Node{ElementId: elementID, Labels: []string{label}, Props: props}
}

// Rel builds a relationship value between two nodes.
func Rel(id, relType string, from, to neo4j.Node) neo4j.Relationship {
	return neo4j.Relationship{
		ElementId:      id,
		StartElementId: from.ElementId,
		EndElementId:   to.ElementId,
		Type:           relType,
		Props:          map[string]any{},
	}
}
