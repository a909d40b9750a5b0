package neopersist

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cast"
)

// mapRecordToStruct populates entity from a result record. The node carrying
// the entity's label supplies stored properties; derived fields are read from
// record columns with the same name as their property.
func mapRecordToStruct(record *neo4j.Record, entity any, meta *entityMetadata) error {
	node, ok := nodeWithLabel(record, meta.Label)
	if !ok {
		return fmt.Errorf("no %s node in query result", meta.Label)
	}
	if err := mapNodeToStruct(node, entity, meta); err != nil {
		return err
	}

	val := reflect.ValueOf(entity).Elem()
	for fieldName, column := range meta.Derived {
		raw, ok := record.Get(column)
		if !ok || raw == nil {
			continue
		}
		if err := setField(val.FieldByName(fieldName), raw); err != nil {
			return fmt.Errorf("column %s: %w", column, err)
		}
	}
	return nil
}

// mapNodeToStruct populates a struct's fields from a neo4j.Node's properties,
// based on the parsed metadata.
func mapNodeToStruct(node neo4j.Node, entity any, meta *entityMetadata) error {
	val := reflect.ValueOf(entity).Elem()

	for fieldName, propName := range meta.Mappings {
		propValue, ok := node.Props[propName]
		if !ok || propValue == nil {
			continue // Skip if the property does not exist on the node.
		}
		if err := setField(val.FieldByName(fieldName), propValue); err != nil {
			return fmt.Errorf("property %s: %w", propName, err)
		}
	}
	return nil
}

// nodeWithLabel returns the first node value in the record labelled label.
func nodeWithLabel(record *neo4j.Record, label string) (neo4j.Node, bool) {
	for _, v := range record.Values {
		if node, ok := v.(neo4j.Node); ok && slices.Contains(node.Labels, label) {
			return node, true
		}
	}
	return neo4j.Node{}, false
}

// setField coerces a driver value into the field's kind. Neo4j hands back
// int64/float64 for every number, so plain reflect.Set is not enough.
func setField(field reflect.Value, value any) error {
	if !field.IsValid() || !field.CanSet() {
		return nil
	}
	var (
		out any
		err error
	)
	switch field.Kind() {
	case reflect.String:
		out, err = cast.ToStringE(value)
	case reflect.Bool:
		out, err = cast.ToBoolE(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		n, err = cast.ToInt64E(value)
		if err == nil {
			field.SetInt(n)
		}
		return err
	case reflect.Float32, reflect.Float64:
		var f float64
		f, err = cast.ToFloat64E(value)
		if err == nil {
			field.SetFloat(f)
		}
		return err
	default:
		rv := reflect.ValueOf(value)
		if !rv.Type().AssignableTo(field.Type()) {
			return fmt.Errorf("cannot assign %T to %s", value, field.Type())
		}
		field.Set(rv)
		return nil
	}
	if err != nil {
		return err
	}
	field.Set(reflect.ValueOf(out).Convert(field.Type()))
	return nil
}

// propsOf reads the stored (non-derived) properties of entity, pk included.
func propsOf(entity any, meta *entityMetadata) map[string]interface{} {
	val := reflect.ValueOf(entity)
	for val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	props := make(map[string]interface{}, len(meta.Mappings))
	for fieldName, propName := range meta.Mappings {
		props[propName] = val.FieldByName(fieldName).Interface()
	}
	return props
}

// scalar extracts a single column from the first record of a result.
func scalar(result *neo4j.EagerResult, key string) (any, bool) {
	if result == nil || len(result.Records) == 0 {
		return nil, false
	}
	return result.Records[0].Get(key)
}

// Int64 reads an integer column from the first record, defaulting to zero
// when the result is empty.
func Int64(result *neo4j.EagerResult, key string) (int64, error) {
	v, ok := scalar(result, key)
	if !ok || v == nil {
		return 0, nil
	}
	return cast.ToInt64E(v)
}

// Bool reads a boolean column from the first record, defaulting to false
// when the result is empty.
func Bool(result *neo4j.EagerResult, key string) (bool, error) {
	v, ok := scalar(result, key)
	if !ok || v == nil {
		return false, nil
	}
	return cast.ToBoolE(v)
}
