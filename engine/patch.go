package engine

import (
	"fmt"
	"reflect"

	jsonpatch "github.com/evanphx/json-patch"
	json2 "github.com/go-json-experiment/json"
)

// PatchMap applies an RFC 7386 merge patch to the scalar entries of a map
// object: changed keys are re-put, keys patched to null are deleted.
// Entries holding child objects cannot be patched and are left alone;
// naming one in the patch is an error.
func (d *Doc) PatchMap(obj ObjID, patch []byte) error {
	o, err := d.object(obj, KindMap)
	if err != nil {
		return err
	}

	children := map[string]bool{}
	scalars := map[string]any{}
	o.entries.Ascend(func(e *entry) bool {
		if _, isObj := e.value.(ObjID); isObj {
			children[e.key] = true
			return true
		}
		scalars[e.key] = e.value
		return true
	})

	before, err := json2.Marshal(scalars)
	if err != nil {
		return fmt.Errorf("patch marshal: %w", err)
	}
	after, err := jsonpatch.MergePatch(before, patch)
	if err != nil {
		return fmt.Errorf("cannot apply patch: %w", err)
	}
	patched := map[string]any{}
	err = json2.Unmarshal(after, &patched)
	if err != nil {
		return fmt.Errorf("patch unmarshal: %w", err)
	}

	flattened := map[string]any{}
	err = json2.Unmarshal(before, &flattened)
	if err != nil {
		return fmt.Errorf("patch unmarshal: %w", err)
	}

	for key, value := range patched {
		if children[key] {
			return fmt.Errorf("patch key '%s' holds an object: %w", key, ErrTypeMismatch)
		}
		if _, isDoc := value.(map[string]any); isDoc {
			return fmt.Errorf("patch key '%s' to an object: %w", key, ErrTypeMismatch)
		}
		if reflect.DeepEqual(flattened[key], value) {
			continue
		}
		err = d.MapPut(obj, key, value)
		if err != nil {
			return err
		}
	}
	for key := range flattened {
		if _, kept := patched[key]; kept {
			continue
		}
		err = d.MapDelete(obj, key)
		if err != nil {
			return err
		}
	}
	return nil
}
