package neopersist

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
)

const crudTag = "crud"

// entityMetadata holds the parsed `crud` tag information for a specific struct type.
// This metadata is cached by the PersistenceManager to avoid costly reflection on every operation.
type entityMetadata struct {
	// Label is the graph node label, defaulting to the struct's name.
	Label string
	// PKField is the name of the struct field marked as the primary key.
	PKField string
	// PKProp is the property name of the primary key in the database.
	PKProp string
	// Mappings maps struct field names to their corresponding database property names.
	Mappings map[string]string
	// Derived maps struct field names to record columns that are computed by a
	// query (typically through a relationship) and never stored on the node.
	Derived map[string]string
}

// stored returns the property name of every non-derived field, pk excluded.
func (m *entityMetadata) stored() map[string]string {
	out := make(map[string]string, len(m.Mappings))
	for field, prop := range m.Mappings {
		if field == m.PKField {
			continue
		}
		out[field] = prop
	}
	return out
}

// parseTagsFromType inspects a reflect.Type and extracts persistence metadata
// from `crud` struct tags.
//
// Recognised tag components:
//   - pk: the field is the primary key used by MERGE and MATCH.
//   - property:<name>: the node property; defaults to the snake_case field name.
//   - derived: the value comes from a same-named record column and is read only.
func parseTagsFromType(typ reflect.Type) (*entityMetadata, error) {
	// If the type is a pointer, get the underlying element's type.
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("type %s is not a struct", typ.Name())
	}

	meta := &entityMetadata{
		Label:    typ.Name(),
		Mappings: make(map[string]string),
		Derived:  make(map[string]string),
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag, ok := field.Tag.Lookup(crudTag)

		// Skip fields that are not part of the persistence mapping.
		if !ok || tag == "-" {
			continue
		}

		isPk, isDerived := false, false
		propName := ""

		for _, part := range strings.Split(tag, ",") {
			part = strings.TrimSpace(part)
			switch {
			case part == "pk":
				isPk = true
			case part == "derived":
				isDerived = true
			case strings.HasPrefix(part, "property:"):
				propName = strings.TrimPrefix(part, "property:")
			}
		}

		if propName == "" {
			propName = strcase.ToSnake(field.Name)
		}
		if isPk && isDerived {
			return nil, fmt.Errorf("field %s cannot be both 'pk' and 'derived'", field.Name)
		}

		if isDerived {
			meta.Derived[field.Name] = propName
			continue
		}
		if isPk {
			if meta.PKField != "" {
				return nil, fmt.Errorf("struct %s declares more than one primary key", typ.Name())
			}
			meta.PKField = field.Name
			meta.PKProp = propName
		}
		meta.Mappings[field.Name] = propName
	}

	if meta.PKField == "" {
		return nil, fmt.Errorf("no primary key ('pk') tag defined for struct %s", typ.Name())
	}

	return meta, nil
}

// parseTags is a generic convenience wrapper around parseTagsFromType.
func parseTags[T any]() (*entityMetadata, error) {
	return parseTagsFromType(reflect.TypeOf((*T)(nil)).Elem())
}
