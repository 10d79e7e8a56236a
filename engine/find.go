package engine

import (
	"fmt"

	"github.com/SierraSoftworks/connor"
	json2 "github.com/go-json-experiment/json"
)

// Find scans the child map objects of a map object and returns the entries
// whose materialized document matches the filter. Filters use the connor
// operator language ({"name": "Sara"}, {"age": {"$gt": 18}}, ...).
func (d *Doc) Find(obj ObjID, filter map[string]any) ([]MapEntry, error) {
	o, err := d.object(obj, KindMap)
	if err != nil {
		return nil, err
	}

	matches := []MapEntry{}
	var scanErr error
	o.entries.Ascend(func(e *entry) bool {
		child, isObj := e.value.(ObjID)
		if !isObj {
			return true
		}
		if d.objects[child].kind != KindMap {
			return true
		}
		doc, err := d.materializeJSON(child)
		if err != nil {
			scanErr = fmt.Errorf("find '%s': %w", e.key, err)
			return false
		}
		match, err := connor.Match(filter, doc)
		if err != nil {
			scanErr = fmt.Errorf("match '%s': %w", e.key, err)
			return false
		}
		if match {
			matches = append(matches, MapEntry{Key: e.key, Value: child})
		}
		return true
	})
	if scanErr != nil {
		return nil, scanErr
	}
	return matches, nil
}

// materialize converts an object tree into plain Go values: maps, slices
// and scalars, text as a string.
func (d *Doc) materialize(id ObjID) (any, error) {
	o, exists := d.objects[id]
	if !exists {
		return nil, fmt.Errorf("object '%s': %w", id, ErrNotFound)
	}
	switch o.kind {
	case KindMap:
		doc := map[string]any{}
		var err error
		o.entries.Ascend(func(e *entry) bool {
			value := e.value
			if child, isObj := value.(ObjID); isObj {
				value, err = d.materialize(child)
				if err != nil {
					return false
				}
			}
			doc[e.key] = value
			return true
		})
		if err != nil {
			return nil, err
		}
		return doc, nil
	case KindList:
		list := make([]any, 0, len(o.elems))
		for _, e := range o.elems {
			value := e.value
			if child, isObj := value.(ObjID); isObj {
				materialized, err := d.materialize(child)
				if err != nil {
					return nil, err
				}
				value = materialized
			}
			list = append(list, value)
		}
		return list, nil
	case KindText:
		return d.Text(id)
	}
	return nil, fmt.Errorf("object '%s' kind: %w", id, ErrTypeMismatch)
}

// materializeJSON flattens a map object to pure JSON types (string,
// float64, bool, nil, map, slice) by a marshal/unmarshal round trip, the
// shape connor and json-patch operate on.
func (d *Doc) materializeJSON(id ObjID) (map[string]any, error) {
	materialized, err := d.materialize(id)
	if err != nil {
		return nil, err
	}
	data, err := json2.Marshal(materialized)
	if err != nil {
		return nil, fmt.Errorf("remarshal: %w", err)
	}
	doc := map[string]any{}
	err = json2.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("remarshal: %w", err)
	}
	return doc, nil
}
