package result

import (
	"time"

	"github.com/quilldb/quilldb/engine"
)

// Commit seals the pending operations into a change and returns its hash
// as a single change-hash item. Committing with nothing pending fails.
func Commit(doc *engine.Doc, message string, t time.Time) *Result {
	hash, err := doc.Commit(message, t)
	if err != nil {
		return errorResult(err)
	}
	return okResult(itemFromValue(hash, ""))
}

// Heads returns the hashes identifying the document's current state.
func Heads(doc *engine.Doc) *Result {
	heads := doc.Heads()
	items := make([]*Item, 0, len(heads))
	for _, h := range heads {
		items = append(items, itemFromValue(h, ""))
	}
	return okResult(items...)
}

// Changes returns the document's committed changes in order, as change
// items.
func Changes(doc *engine.Doc) *Result {
	changes := doc.Changes()
	items := make([]*Item, 0, len(changes))
	for _, c := range changes {
		items = append(items, itemFromValue(c, ""))
	}
	return okResult(items...)
}

// ApplyChanges applies changes from another document, skipping any this
// one has already seen.
func ApplyChanges(doc *engine.Doc, changes []*engine.Change) *Result {
	err := doc.ApplyChanges(changes)
	if err != nil {
		return errorResult(err)
	}
	return voidResult()
}
