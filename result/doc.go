package result

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/quilldb/quilldb/engine"
)

// Operation wrappers. Every engine call crosses the boundary as a Result:
// failures become StatusError Results carrying the message, successes
// carry the output values as tagged items, and plain mutations yield a
// single void item. Callers route the Results through a Stack.

func NewDoc() *Result {
	return okResult(itemFromValue(engine.NewDoc(), ""))
}

// LoadDoc rebuilds a document from a SaveDoc payload.
func LoadDoc(data []byte) *Result {
	doc, err := engine.Load(data)
	if err != nil {
		return errorResult(err)
	}
	return okResult(itemFromValue(doc, ""))
}

// SaveDoc serializes the document into an opaque byte payload.
func SaveDoc(doc *engine.Doc) *Result {
	return okResult(itemFromValue(doc.Save(), ""))
}

func ForkDoc(doc *engine.Doc) *Result {
	forked, err := doc.Fork()
	if err != nil {
		return errorResult(err)
	}
	return okResult(itemFromValue(forked, ""))
}

func ActorID(doc *engine.Doc) *Result {
	return okResult(itemFromValue(doc.Actor(), ""))
}

func SetActorID(doc *engine.Doc, actor uuid.UUID) *Result {
	doc.SetActor(actor)
	return voidResult()
}

func NewActorID() *Result {
	return okResult(itemFromValue(uuid.New(), ""))
}

func ActorIDFromString(s string) *Result {
	actor, err := uuid.Parse(s)
	if err != nil {
		return errorResult(fmt.Errorf("parse actor id: %w", err))
	}
	return okResult(itemFromValue(actor, ""))
}

// Find returns the child map objects of obj whose content matches the
// filter, as key-indexed object items.
func Find(doc *engine.Doc, obj engine.ObjID, filter map[string]any) *Result {
	entries, err := doc.Find(obj, filter)
	if err != nil {
		return errorResult(err)
	}
	items := make([]*Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, itemFromValue(e.Value, obj).withKey(e.Key))
	}
	return okResult(items...)
}

// PatchMap applies an RFC 7386 merge patch to a map object.
func PatchMap(doc *engine.Doc, obj engine.ObjID, patch []byte) *Result {
	err := doc.PatchMap(obj, patch)
	if err != nil {
		return errorResult(err)
	}
	return voidResult()
}
