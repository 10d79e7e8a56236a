package result

import (
	"github.com/quilldb/quilldb/engine"
)

// SpliceText deletes del runes at pos and inserts text in their place.
func SpliceText(doc *engine.Doc, obj engine.ObjID, pos, del int, text string) *Result {
	err := doc.SpliceText(obj, pos, del, text)
	if err != nil {
		return errorResult(err)
	}
	return voidResult()
}

// Text returns the whole content of a text object as one string item. The
// string may contain NULs; its length is the rune content, not a scan.
func Text(doc *engine.Doc, obj engine.ObjID) *Result {
	s, err := doc.Text(obj)
	if err != nil {
		return errorResult(err)
	}
	return okResult(itemFromValue(s, obj))
}

// TextLen returns the length of a text object in runes as a uint item.
func TextLen(doc *engine.Doc, obj engine.ObjID) *Result {
	n, err := doc.TextLen(obj)
	if err != nil {
		return errorResult(err)
	}
	return okResult(itemFromValue(uint64(n), obj))
}

// Mark attaches a named annotation with a value to the range
// [start, end) of a text object.
func Mark(doc *engine.Doc, obj engine.ObjID, name string, start, end int, value any) *Result {
	err := doc.Mark(obj, name, start, end, value)
	if err != nil {
		return errorResult(err)
	}
	return voidResult()
}

// Marks returns every annotation on a text object as mark items.
func Marks(doc *engine.Doc, obj engine.ObjID) *Result {
	marks, err := doc.Marks(obj)
	if err != nil {
		return errorResult(err)
	}
	items := make([]*Item, 0, len(marks))
	for _, m := range marks {
		items = append(items, itemFromValue(m, obj))
	}
	return okResult(items...)
}
