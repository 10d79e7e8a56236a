package result

import (
	"github.com/quilldb/quilldb/engine"
)

func MapPut(doc *engine.Doc, obj engine.ObjID, key string, value any) *Result {
	err := doc.MapPut(obj, key, value)
	if err != nil {
		return errorResult(err)
	}
	return voidResult()
}

// MapPutObject creates a child object under key and returns its id as a
// single object item.
func MapPutObject(doc *engine.Doc, obj engine.ObjID, key string, kind engine.ObjKind) *Result {
	child, err := makeObject(doc, obj, key, 0, kind)
	if err != nil {
		return errorResult(err)
	}
	return okResult(itemFromValue(child, obj))
}

// MapGet is a point lookup: the returned item carries no index annotation
// even though a range query over the same key would annotate it.
func MapGet(doc *engine.Doc, obj engine.ObjID, key string) *Result {
	value, err := doc.MapGet(obj, key)
	if err != nil {
		return errorResult(err)
	}
	return okResult(itemFromValue(value, obj))
}

func MapDelete(doc *engine.Doc, obj engine.ObjID, key string) *Result {
	err := doc.MapDelete(obj, key)
	if err != nil {
		return errorResult(err)
	}
	return voidResult()
}

// MapRange returns the entries with begin <= key < end in lexical order,
// each item annotated with its key. Empty bounds are unbounded. A
// non-empty heads reads a past state.
func MapRange(doc *engine.Doc, obj engine.ObjID, begin, end string, heads []engine.ChangeHash) *Result {
	entries, err := doc.MapRange(obj, begin, end, heads)
	if err != nil {
		return errorResult(err)
	}
	items := make([]*Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, itemFromValue(e.Value, obj).withKey(e.Key))
	}
	return okResult(items...)
}

// Increment adds delta to the counter at key.
func Increment(doc *engine.Doc, obj engine.ObjID, key string, delta int64) *Result {
	err := doc.Increment(obj, key, delta)
	if err != nil {
		return errorResult(err)
	}
	return voidResult()
}

func makeObject(doc *engine.Doc, parent engine.ObjID, key string, pos int, kind engine.ObjKind) (engine.ObjID, error) {
	switch kind {
	case engine.KindList:
		return doc.MakeList(parent, key, pos)
	case engine.KindText:
		return doc.MakeText(parent, key, pos)
	default:
		return doc.MakeMap(parent, key, pos)
	}
}
