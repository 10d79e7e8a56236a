package result

import (
	"github.com/quilldb/quilldb/engine"
)

// NewSyncState starts a fresh per-peer synchronization session.
func NewSyncState() *Result {
	return okResult(itemFromValue(engine.NewSyncState(), ""))
}

// GenerateSyncMessage produces the next message to send to the peer, or a
// void item when the peer already has everything.
func GenerateSyncMessage(doc *engine.Doc, state *engine.SyncState) *Result {
	msg, ok := doc.GenerateSyncMessage(state)
	if !ok {
		return voidResult()
	}
	return okResult(itemFromValue(msg, ""))
}

// SyncHaves returns the have advertisements carried by a sync message.
func SyncHaves(msg *engine.SyncMessage) *Result {
	if msg == nil {
		return okResult()
	}
	items := make([]*Item, 0, len(msg.Haves))
	for _, have := range msg.Haves {
		items = append(items, itemFromValue(have, ""))
	}
	return okResult(items...)
}

// ReceiveSyncMessage folds a peer's message into the document and the
// session state.
func ReceiveSyncMessage(doc *engine.Doc, state *engine.SyncState, msg *engine.SyncMessage) *Result {
	err := doc.ReceiveSyncMessage(state, msg)
	if err != nil {
		return errorResult(err)
	}
	return voidResult()
}
