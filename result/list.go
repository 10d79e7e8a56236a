package result

import (
	"github.com/quilldb/quilldb/engine"
)

// ListPut writes a value into a list: with insert the value is inserted
// before pos (pos == length appends), without it the element at pos is
// overwritten.
func ListPut(doc *engine.Doc, obj engine.ObjID, pos int, insert bool, value any) *Result {
	err := doc.ListPut(obj, pos, insert, value)
	if err != nil {
		return errorResult(err)
	}
	return voidResult()
}

// ListPutObject creates a child object at pos and returns its id as a
// single object item.
func ListPutObject(doc *engine.Doc, obj engine.ObjID, pos int, kind engine.ObjKind) *Result {
	child, err := makeObject(doc, obj, "", pos, kind)
	if err != nil {
		return errorResult(err)
	}
	return okResult(itemFromValue(child, obj))
}

// ListGet is a point lookup; the returned item carries no index
// annotation.
func ListGet(doc *engine.Doc, obj engine.ObjID, pos int) *Result {
	value, err := doc.ListGet(obj, pos)
	if err != nil {
		return errorResult(err)
	}
	return okResult(itemFromValue(value, obj))
}

func ListDelete(doc *engine.Doc, obj engine.ObjID, pos int) *Result {
	err := doc.ListDelete(obj, pos)
	if err != nil {
		return errorResult(err)
	}
	return voidResult()
}

// ListRange returns the elements with begin <= pos < end in position
// order, each item annotated with its position. end < 0 means the end of
// the list. A non-empty heads reads a past state.
func ListRange(doc *engine.Doc, obj engine.ObjID, begin, end int, heads []engine.ChangeHash) *Result {
	entries, err := doc.ListRange(obj, begin, end, heads)
	if err != nil {
		return errorResult(err)
	}
	items := make([]*Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, itemFromValue(e.Value, obj).withPos(e.Pos))
	}
	return okResult(items...)
}

// NewCursor captures a stable reference to the list element at pos.
func NewCursor(doc *engine.Doc, obj engine.ObjID, pos int) *Result {
	cursor, err := doc.NewCursor(obj, pos)
	if err != nil {
		return errorResult(err)
	}
	return okResult(itemFromValue(cursor, obj))
}

// CursorPosition resolves a cursor back to a position, as a uint item.
func CursorPosition(doc *engine.Doc, cursor engine.Cursor) *Result {
	pos, err := doc.CursorPosition(cursor)
	if err != nil {
		return errorResult(err)
	}
	return okResult(itemFromValue(uint64(pos), cursor.Obj))
}
