package engine

import (
	"errors"
	"testing"

	. "github.com/fulldump/biff"
)

func TestPatchMapAddsChangesAndDeletes(t *testing.T) {

	// Setup
	d := NewDoc()
	AssertNil(d.MapPut(Root, "name", "Sara"))
	AssertNil(d.MapPut(Root, "age", 30.0))
	AssertNil(d.MapPut(Root, "tmp", "x"))

	// Run
	AssertNil(d.PatchMap(Root, []byte(`{"age":31,"tmp":null,"city":"Oslo"}`)))

	// Check
	age, err := d.MapGet(Root, "age")
	AssertNil(err)
	AssertEqual(age, 31.0)
	city, err := d.MapGet(Root, "city")
	AssertNil(err)
	AssertEqual(city, "Oslo")
	name, err := d.MapGet(Root, "name")
	AssertNil(err)
	AssertEqual(name, "Sara")
	_, err = d.MapGet(Root, "tmp")
	AssertTrue(errors.Is(err, ErrNotFound))
}

func TestPatchMapLeavesUntouchedKeysAlone(t *testing.T) {

	// Setup
	d := NewDoc()
	AssertNil(d.MapPut(Root, "keep", "me"))
	before := d.PendingOps()

	// Run: a patch that changes nothing records nothing
	AssertNil(d.PatchMap(Root, []byte(`{"keep":"me"}`)))

	// Check
	AssertEqual(d.PendingOps(), before)
}

func TestPatchMapRejectsObjects(t *testing.T) {

	// Setup
	d := NewDoc()
	_, err := d.MakeMap(Root, "nested", 0)
	AssertNil(err)

	// Run & Check: naming a child object or patching in a new one fails
	AssertTrue(errors.Is(d.PatchMap(Root, []byte(`{"nested":"flat"}`)), ErrTypeMismatch))
	AssertTrue(errors.Is(d.PatchMap(Root, []byte(`{"fresh":{"a":1}}`)), ErrTypeMismatch))
	AssertNotNil(d.PatchMap(Root, []byte(`not json`)))
}
