package engine

import (
	"testing"
	"time"

	. "github.com/fulldump/biff"
)

func TestSaveLoadPreservesTypes(t *testing.T) {

	// Setup
	d := NewDoc()
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	AssertNil(d.MapPut(Root, "b", false))
	AssertNil(d.MapPut(Root, "i", int64(-1)))
	AssertNil(d.MapPut(Root, "u", uint64(1)))
	AssertNil(d.MapPut(Root, "f", 0.5))
	AssertNil(d.MapPut(Root, "s", "str"))
	AssertNil(d.MapPut(Root, "raw", []byte{9, 8}))
	AssertNil(d.MapPut(Root, "at", stamp))
	AssertNil(d.MapPut(Root, "c", Counter(2)))
	_, err := d.Commit("fixture", stamp)
	AssertNil(err)

	// Run
	loaded, err := Load(d.Save())

	// Check
	AssertNil(err)
	AssertEqual(loaded.Actor(), d.Actor())
	entries, err := loaded.MapRange(Root, "", "", nil)
	AssertNil(err)
	original, _ := d.MapRange(Root, "", "", nil)
	AssertEqual(entries, original)
}

func TestSaveLoadKeepsHashes(t *testing.T) {

	// Setup
	d := NewDoc()
	AssertNil(d.MapPut(Root, "k", "v"))
	hash, err := d.Commit("first", time.UnixMilli(1700000000000))
	AssertNil(err)

	// Run
	loaded, err := Load(d.Save())

	// Check: the hash is recomputed from the canonical bytes, not stored
	AssertNil(err)
	heads := loaded.Heads()
	AssertEqual(len(heads), 1)
	AssertEqual(heads[0], hash)
}

func TestSaveLoadCarriesPendingOps(t *testing.T) {

	// Setup: committed history plus uncommitted work
	d := NewDoc()
	AssertNil(d.MapPut(Root, "done", "yes"))
	_, err := d.Commit("first", time.Now())
	AssertNil(err)
	AssertNil(d.MapPut(Root, "draft", "still"))

	// Run
	loaded, err := Load(d.Save())

	// Check
	AssertNil(err)
	AssertEqual(loaded.PendingOps(), 1)
	draft, err := loaded.MapGet(Root, "draft")
	AssertNil(err)
	AssertEqual(draft, "still")
	_, err = loaded.Commit("second", time.Now())
	AssertNil(err)
	AssertEqual(len(loaded.Changes()), 2)
}

func TestSaveLoadNestedObjects(t *testing.T) {

	// Setup
	d := NewDoc()
	list, err := d.MakeList(Root, "rows", 0)
	AssertNil(err)
	row, err := d.MakeMap(list, "", 0)
	AssertNil(err)
	AssertNil(d.MapPut(row, "cell", "value"))
	text, err := d.MakeText(Root, "note", 0)
	AssertNil(err)
	AssertNil(d.SpliceText(text, 0, 0, "remember"))

	// Run
	loaded, err := Load(d.Save())

	// Check: object ids are stable across the round trip
	AssertNil(err)
	cell, err := loaded.MapGet(row, "cell")
	AssertNil(err)
	AssertEqual(cell, "value")
	note, err := loaded.Text(text)
	AssertNil(err)
	AssertEqual(note, "remember")
}

func TestLoadNormalizesNegativeSplice(t *testing.T) {

	// Setup: a payload whose splice op still carries a negative del
	payload := []byte(`{
		"format": 1,
		"actor": "11111111-2222-3333-4444-555555555555",
		"changes": [],
		"pending": [
			{"action": "make", "obj": "_root", "in_map": true, "key": "t", "kind": 3, "new_obj": "t1"},
			{"action": "splice", "obj": "t1", "text": "abc", "elems": ["e1", "e2", "e3"]},
			{"action": "splice", "obj": "t1", "pos": 3, "del": -2}
		],
		"seq": 0
	}`)

	// Run
	loaded, err := Load(payload)

	// Check: the deletion ends at pos, no panic, no duplication
	AssertNil(err)
	content, err := loaded.Text(ObjID("t1"))
	AssertNil(err)
	AssertEqual(content, "a")

	// An out-of-range negative del in a payload is an error, not a crash
	payload = []byte(`{
		"format": 1,
		"actor": "11111111-2222-3333-4444-555555555555",
		"changes": [],
		"pending": [
			{"action": "make", "obj": "_root", "in_map": true, "key": "t", "kind": 3, "new_obj": "t1"},
			{"action": "splice", "obj": "t1", "pos": 0, "del": -1}
		],
		"seq": 0
	}`)
	_, err = Load(payload)
	AssertNotNil(err)
}

func TestSaveLoadKeepsEmptyBytes(t *testing.T) {

	// Setup
	d := NewDoc()
	AssertNil(d.MapPut(Root, "empty", []byte{}))

	// Run
	loaded, err := Load(d.Save())

	// Check: empty, not absent
	AssertNil(err)
	value, err := loaded.MapGet(Root, "empty")
	AssertNil(err)
	AssertEqual(value, []byte{})
}

func TestLoadRejectsGarbage(t *testing.T) {

	// Run & Check
	_, err := Load([]byte("not a document"))
	AssertNotNil(err)

	_, err = Load([]byte(`{"format":99,"actor":"00000000-0000-0000-0000-000000000000"}`))
	AssertNotNil(err)
}
