package neopersist

import (
	"context"
	"fmt"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

// Repository provides a generic abstraction for CRUD operations for a specific
// entity type T. It relies on struct tags to map struct fields to node properties.
type Repository[T any] struct {
	runner DBRunner
	meta   *entityMetadata
}

// NewRepository creates a new generic repository for the type T.
// It parses the struct tags of T to understand its mapping to a Neo4j node.
//
// Parameters:
//   - runner: An instance of DBRunner, used to execute all Cypher queries.
//
// Returns:
//
//	A new Repository instance or an error if the struct tags are invalid.
func NewRepository[T any](runner DBRunner) (*Repository[T], error) {
	meta, err := parseTags[T]()
	if err != nil {
		return nil, err
	}
	return &Repository[T]{
		runner: runner,
		meta:   meta,
	}, nil
}

// Label returns the node label T is stored under.
func (r *Repository[T]) Label() string { return r.meta.Label }

// Runner returns the executor the repository issues its queries through.
func (r *Repository[T]) Runner() DBRunner { return r.runner }

// Props returns the stored properties of entity keyed by property name, pk included.
func (r *Repository[T]) Props(entity *T) map[string]interface{} {
	return propsOf(entity, r.meta)
}

// Save creates a new node or updates an existing one.
// It uses a MERGE query based on the struct's primary key (`pk` tag).
// All other stored fields are set on the node, so the full current state is
// persisted on every call. Derived fields are never written.
//
// Parameters:
//   - ctx: The context for the query execution.
//   - entity: A pointer to the struct instance to be saved.
//
// Returns:
//
//	An error if the query building or execution fails.
func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	val := reflect.ValueOf(entity).Elem()
	pkValue := val.FieldByName(r.meta.PKField).Interface()
	mergeProps := map[string]interface{}{r.meta.PKProp: pkValue}

	setProps := make(map[string]interface{})
	for fieldName, propName := range r.meta.stored() {
		// The property is prefixed with 'n.' for the SET clause.
		setProps["n."+propName] = val.FieldByName(fieldName).Interface()
	}

	qb := gocypher.NewQueryBuilder().
		Merge(gocypher.N("n", r.meta.Label).WithProperties(mergeProps)).
		Set(setProps).
		Return("n")

	query, params, err := qb.Build()
	if err != nil {
		return err
	}
	_, err = r.runner.Run(ctx, query, params)
	return err
}

// FindByID retrieves a single entity from the database by its primary key.
//
// Returns:
//
//	A pointer to the found entity, ErrNotFound if no record is found, or another
//	error if the query or mapping fails.
func (r *Repository[T]) FindByID(ctx context.Context, id interface{}) (*T, error) {
	props := map[string]interface{}{r.meta.PKProp: id}
	return r.FindOne(ctx, gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.meta.Label).WithProperties(props)).
		Return("n"))
}

// FindAll retrieves every node carrying T's label.
func (r *Repository[T]) FindAll(ctx context.Context) ([]*T, error) {
	return r.Find(ctx, gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.meta.Label)).
		Return("n"))
}

// FindByProperty retrieves every node of T's label whose property prop equals value.
func (r *Repository[T]) FindByProperty(ctx context.Context, prop string, value interface{}) ([]*T, error) {
	props := map[string]interface{}{prop: value}
	return r.Find(ctx, gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.meta.Label).WithProperties(props)).
		Return("n"))
}

// Find executes a caller-built query and maps every record to a T.
// The query must return the T node; extra columns feed derived fields.
func (r *Repository[T]) Find(ctx context.Context, qb *gocypher.QueryBuilder) ([]*T, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}
	return r.Query(ctx, query, params)
}

// FindOne is Find for queries that must match exactly one entity.
// It returns ErrNotFound for zero records and ErrMultipleResults for more than one.
func (r *Repository[T]) FindOne(ctx context.Context, qb *gocypher.QueryBuilder) (*T, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}
	return r.QueryOne(ctx, query, params)
}

// Query runs a raw parameterized Cypher statement and maps every record to a T.
func (r *Repository[T]) Query(ctx context.Context, query string, params map[string]interface{}) ([]*T, error) {
	result, err := r.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return r.mapAll(result)
}

// QueryOne runs a raw parameterized Cypher statement expected to yield one entity.
func (r *Repository[T]) QueryOne(ctx context.Context, query string, params map[string]interface{}) (*T, error) {
	result, err := r.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}
	if len(result.Records) > 1 {
		// A primary key lookup returning several rows is a data integrity issue.
		return nil, fmt.Errorf("%w: found %d", ErrMultipleResults, len(result.Records))
	}
	entity := new(T)
	if err := mapRecordToStruct(result.Records[0], entity, r.meta); err != nil {
		return nil, err
	}
	return entity, nil
}

// Count returns the number of nodes carrying T's label.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS total", r.meta.Label)
	result, err := r.runner.Run(ctx, query, nil)
	if err != nil {
		return 0, err
	}
	return Int64(result, "total")
}

// CountByProperty returns the number of T nodes whose property prop equals value.
func (r *Repository[T]) CountByProperty(ctx context.Context, prop string, value interface{}) (int64, error) {
	query := fmt.Sprintf("MATCH (n:%s) WHERE n.`%s` = $value RETURN count(n) AS total", r.meta.Label, prop)
	result, err := r.runner.Run(ctx, query, map[string]interface{}{"value": value})
	if err != nil {
		return 0, err
	}
	return Int64(result, "total")
}

// Delete removes a node from the database by its primary key.
// It uses a DETACH DELETE query to also remove any relationships connected to the node.
func (r *Repository[T]) Delete(ctx context.Context, id interface{}) error {
	props := map[string]interface{}{r.meta.PKProp: id}
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.meta.Label).WithProperties(props)).
		DetachDelete("n").
		Build()
	if err != nil {
		return err
	}
	_, err = r.runner.Run(ctx, query, params)
	return err
}

func (r *Repository[T]) mapAll(result *neo4j.EagerResult) ([]*T, error) {
	entities := make([]*T, 0, len(result.Records))
	for _, record := range result.Records {
		entity := new(T)
		if err := mapRecordToStruct(record, entity, r.meta); err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
