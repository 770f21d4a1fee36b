package storage

import (
	"fmt"
	"reflect"
)

type opKind int

const (
	opSetAdd opKind = iota
	opSetRemove
	opIncrement
	opAppend
)

// Op is a field-level mutation. A batch of ops passed to Update or returned
// from an Apply callback commits as one atomic unit.
type Op struct {
	kind  opKind
	field string
	value any
	delta int64
}

// SetAdd adds value to the set-valued field unless already present.
func SetAdd(field string, value any) Op {
	return Op{kind: opSetAdd, field: field, value: value}
}

// SetRemove removes value from the set-valued field if present.
func SetRemove(field string, value any) Op {
	return Op{kind: opSetRemove, field: field, value: value}
}

// Increment adds delta to the numeric field, treating an absent field as 0.
func Increment(field string, delta int64) Op {
	return Op{kind: opIncrement, field: field, delta: delta}
}

// Append appends value to the list-valued field, preserving insertion order.
func Append(field string, value any) Op {
	return Op{kind: opAppend, field: field, value: value}
}

// ApplyOps mutates doc in place. Backends share it so every implementation
// agrees on op semantics. Set and list fields absent from the document are
// treated as empty.
func ApplyOps(doc Document, ops []Op) error {
	for _, op := range ops {
		switch op.kind {
		case opSetAdd:
			items, err := listField(doc, op.field)
			if err != nil {
				return err
			}
			if !contains(items, op.value) {
				doc[op.field] = append(items, op.value)
			}
		case opSetRemove:
			items, err := listField(doc, op.field)
			if err != nil {
				return err
			}
			kept := items[:0]
			for _, item := range items {
				if !reflect.DeepEqual(item, op.value) {
					kept = append(kept, item)
				}
			}
			doc[op.field] = kept
		case opIncrement:
			current, err := numericField(doc, op.field)
			if err != nil {
				return err
			}
			doc[op.field] = current + op.delta
		case opAppend:
			items, err := listField(doc, op.field)
			if err != nil {
				return err
			}
			doc[op.field] = append(items, op.value)
		}
	}
	return nil
}

func listField(doc Document, field string) ([]any, error) {
	raw, ok := doc[field]
	if !ok || raw == nil {
		return []any{}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("storage: field %q is not a list", field)
	}
	return items, nil
}

func numericField(doc Document, field string) (int64, error) {
	raw, ok := doc[field]
	if !ok || raw == nil {
		return 0, nil
	}
	switch n := raw.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("storage: field %q is not numeric", field)
	}
}

func contains(items []any, value any) bool {
	for _, item := range items {
		if reflect.DeepEqual(item, value) {
			return true
		}
	}
	return false
}

// CloneDocument returns a deep copy so callers can never reach the stored
// state through a returned document.
func CloneDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneDocument(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
