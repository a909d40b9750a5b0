package neopersist

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

// Direction selects how a relationship pattern is matched.
type Direction int

const (
	// Outgoing matches (from)-[r]->(to) only.
	Outgoing Direction = iota
	// Undirected matches the relationship whichever way it points.
	Undirected
)

func (d Direction) arrow() string {
	if d == Undirected {
		return "-"
	}
	return "->"
}

// PersistenceManager is the central orchestrator for the persistence layer.
// It manages the database connection and provides access to repositories and
// cross-entity operations such as creating and removing relationships.
type PersistenceManager struct {
	runner DBRunner
	// metaCache stores parsed entityMetadata to avoid costly reflection on every call.
	metaCache sync.Map
}

// NewPersistenceManager creates a new instance of the PersistenceManager.
func NewPersistenceManager(runner DBRunner) *PersistenceManager {
	return &PersistenceManager{runner: runner}
}

// Runner returns the executor shared by the manager and its repositories.
func (pm *PersistenceManager) Runner() DBRunner { return pm.runner }

// RepositoryFor is a generic function that creates and returns a repository
// for a specific struct type T, managed by the given PersistenceManager.
func RepositoryFor[T any](pm *PersistenceManager) (*Repository[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	meta, err := pm.metadataFor(typ)
	if err != nil {
		return nil, err
	}
	return &Repository[T]{runner: pm.runner, meta: meta}, nil
}

// CreateRelation creates a directed relationship between two existing entities in the database.
// It uses reflection to find the entities' primary keys and labels to build the query.
// Unlike MergeRelation it always creates a new relationship.
func (pm *PersistenceManager) CreateRelation(ctx context.Context, fromEntity any, toEntity any, relType string, relProps map[string]interface{}) error {
	fromMeta, fromPKVal, err := pm.getEntityMetaAndPK(fromEntity)
	if err != nil {
		return err
	}
	toMeta, toPKVal, err := pm.getEntityMetaAndPK(toEntity)
	if err != nil {
		return err
	}

	qb := gocypher.NewQueryBuilder().
		Match(gocypher.N("a", fromMeta.Label).WithProperties(map[string]interface{}{fromMeta.PKProp: fromPKVal})).
		Match(gocypher.N("b", toMeta.Label).WithProperties(map[string]interface{}{toMeta.PKProp: toPKVal})).
		Create(
			gocypher.N("a", ""), // Reference the 'a' alias without its label
			gocypher.R("r", relType).To().WithProperties(relProps),
			gocypher.N("b", ""), // Reference the 'b' alias without its label
		)

	query, params, err := qb.Build()
	if err != nil {
		return err
	}

	_, err = pm.runner.Run(ctx, query, params)
	return err
}

// MergeRelation creates the directed relationship (from)-[:relType]->(to)
// unless it already exists. It reports false when either endpoint is missing,
// in which case nothing is written.
func (pm *PersistenceManager) MergeRelation(ctx context.Context, fromEntity, toEntity any, relType string) (bool, error) {
	query, params, err := pm.relationQuery(fromEntity, toEntity,
		"MATCH (a:%[1]s {`%[2]s`: $from}), (b:%[3]s {`%[4]s`: $to})\n"+
			"MERGE (a)-[r:%[5]s]->(b)\n"+
			"RETURN count(r) AS total", relType)
	if err != nil {
		return false, err
	}
	result, err := pm.runner.Run(ctx, query, params)
	if err != nil {
		return false, err
	}
	n, err := Int64(result, "total")
	return n > 0, err
}

// DeleteRelation removes every relType relationship between the two entities
// matching direction and returns how many were deleted.
func (pm *PersistenceManager) DeleteRelation(ctx context.Context, fromEntity, toEntity any, relType string, direction Direction) (int64, error) {
	query, params, err := pm.relationQuery(fromEntity, toEntity,
		"MATCH (a:%[1]s {`%[2]s`: $from})-[r:%[5]s]"+direction.arrow()+"(b:%[3]s {`%[4]s`: $to})\n"+
			"DELETE r\n"+
			"RETURN count(r) AS total", relType)
	if err != nil {
		return 0, err
	}
	result, err := pm.runner.Run(ctx, query, params)
	if err != nil {
		return 0, err
	}
	return Int64(result, "total")
}

// RelationExists reports whether a relType relationship links the two entities.
func (pm *PersistenceManager) RelationExists(ctx context.Context, fromEntity, toEntity any, relType string, direction Direction) (bool, error) {
	query, params, err := pm.relationQuery(fromEntity, toEntity,
		"MATCH (a:%[1]s {`%[2]s`: $from})-[r:%[5]s]"+direction.arrow()+"(b:%[3]s {`%[4]s`: $to})\n"+
			"RETURN count(r) > 0 AS related", relType)
	if err != nil {
		return false, err
	}
	result, err := pm.runner.Run(ctx, query, params)
	if err != nil {
		return false, err
	}
	return Bool(result, "related")
}

// CountNodes returns the total number of nodes in the database.
func (pm *PersistenceManager) CountNodes(ctx context.Context) (int64, error) {
	result, err := pm.runner.Run(ctx, "MATCH (n) RETURN count(n) AS total", nil)
	if err != nil {
		return 0, err
	}
	return Int64(result, "total")
}

// relationQuery fills a pattern template with both entities' labels and pk
// properties (%[1]s..%[4]s) and the relationship type (%[5]s).
func (pm *PersistenceManager) relationQuery(fromEntity, toEntity any, tmpl, relType string) (string, map[string]interface{}, error) {
	fromMeta, fromPKVal, err := pm.getEntityMetaAndPK(fromEntity)
	if err != nil {
		return "", nil, err
	}
	toMeta, toPKVal, err := pm.getEntityMetaAndPK(toEntity)
	if err != nil {
		return "", nil, err
	}
	query := fmt.Sprintf(tmpl, fromMeta.Label, fromMeta.PKProp, toMeta.Label, toMeta.PKProp, relType)
	return query, map[string]interface{}{"from": fromPKVal, "to": toPKVal}, nil
}

// getEntityMetaAndPK is an internal helper that retrieves an entity's metadata and primary key value.
func (pm *PersistenceManager) getEntityMetaAndPK(entity any) (*entityMetadata, any, error) {
	val := reflect.ValueOf(entity)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return nil, nil, fmt.Errorf("entity must be a non-nil pointer")
	}

	meta, err := pm.metadataFor(val.Elem().Type())
	if err != nil {
		return nil, nil, err
	}
	pkValue := val.Elem().FieldByName(meta.PKField).Interface()
	return meta, pkValue, nil
}

// metadataFor loads a type's metadata from the cache, parsing tags on first use.
func (pm *PersistenceManager) metadataFor(typ reflect.Type) (*entityMetadata, error) {
	if cached, ok := pm.metaCache.Load(typ); ok {
		return cached.(*entityMetadata), nil
	}
	meta, err := parseTagsFromType(typ)
	if err != nil {
		return nil, err
	}
	actual, _ := pm.metaCache.LoadOrStore(typ, meta)
	return actual.(*entityMetadata), nil
}

// FindGraph executes a graph query defined by a gocypher.QueryBuilder and maps the result
// into a generic graph structure composed of nodes and edges.
//
// The caller is responsible for constructing a valid query via the QueryBuilder, including
// a RETURN clause that specifies which nodes and relationships should be included in the
// final graph. For example, `RETURN u, r, p`.
//
// Returns:
//   - A GraphResult containing the de-duplicated nodes and edges from the query.
//   - ErrNotFound if the query executes successfully but returns zero records.
//   - Any other error encountered during query building or execution.
func (pm *PersistenceManager) FindGraph(ctx context.Context, qb *gocypher.QueryBuilder) (*GraphResult, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}
	return pm.FindGraphCypher(ctx, query, params)
}

// FindGraphCypher is FindGraph for a raw parameterized Cypher statement.
// Null values produced by OPTIONAL MATCH are skipped.
func (pm *PersistenceManager) FindGraphCypher(ctx context.Context, query string, params map[string]interface{}) (*GraphResult, error) {
	eagerResult, err := pm.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}

	if len(eagerResult.Records) == 0 {
		return nil, ErrNotFound
	}

	graph := &GraphResult{
		Nodes: make([]*GraphNode, 0),
		Edges: make([]*Edge, 0),
	}
	seenNodeIDs := make(map[string]bool)
	seenEdgeIDs := make(map[string]bool)

	for _, record := range eagerResult.Records {
		for _, value := range record.Values {
			switch v := value.(type) {
			case neo4j.Node:
				if !seenNodeIDs[v.ElementId] {
					graph.Nodes = append(graph.Nodes, &GraphNode{
						ID:         v.ElementId,
						Labels:     v.Labels,
						Properties: v.Props,
					})
					seenNodeIDs[v.ElementId] = true
				}

			case neo4j.Relationship:
				if !seenEdgeIDs[v.ElementId] {
					graph.Edges = append(graph.Edges, &Edge{
						ID:         v.ElementId,
						Source:     v.StartElementId,
						Target:     v.EndElementId,
						Type:       v.Type,
						Properties: v.Props,
					})
					seenEdgeIDs[v.ElementId] = true
				}
			}
		}
	}

	return graph, nil
}
