package result

import (
	"bytes"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/quilldb/quilldb/engine"
)

// IdxKind says how an Item is annotated: with a list position, a map key,
// or not at all. Only items produced by range queries carry an index;
// point lookups never do, even for the same underlying value.
type IdxKind int

const (
	IdxNone IdxKind = iota
	IdxPos
	IdxKey
)

// Item is one tagged output value inside a Result. Items are shared by
// reference counting: Duplicate hands the same storage to a second Result,
// and the storage is released only when the last holder is freed.
//
// Reference counts are not atomic; a Doc and everything derived from it
// belong to a single goroutine.
type Item struct {
	refs  int
	kind  Kind
	idx   IdxKind
	pos   int
	key   string
	obj   engine.ObjID // object the value was read from, "" when n/a
	freed bool

	b     bool
	i     int64
	u     uint64
	f     float64
	str   string
	bytes []byte
	t     time.Time
	ref   any // doc, obj id, actor id, change, cursor, mark, sync values
}

func newItem(kind Kind) *Item {
	return &Item{refs: 1, kind: kind}
}

func voidItem() *Item {
	return newItem(KindVoid)
}

// itemFromValue tags an engine value. The index annotation is attached by
// the range wrappers; point lookups leave it empty.
func itemFromValue(value any, obj engine.ObjID) *Item {
	item := newItem(KindVoid)
	item.obj = obj
	switch v := value.(type) {
	case nil:
		// kind stays void
	case bool:
		item.kind = KindBool
		item.b = v
	case int64:
		item.kind = KindInt
		item.i = v
	case uint64:
		item.kind = KindUint
		item.u = v
	case float64:
		item.kind = KindF64
		item.f = v
	case string:
		item.kind = KindStr
		item.str = v
	case []byte:
		item.kind = KindBytes
		item.bytes = v
	case time.Time:
		item.kind = KindTimestamp
		item.t = v
	case engine.Counter:
		item.kind = KindCounter
		item.i = int64(v)
	case engine.ObjID:
		item.kind = KindObj
		item.ref = v
	case *engine.Doc:
		item.kind = KindDoc
		item.ref = v
	case uuid.UUID:
		item.kind = KindActorID
		item.ref = v
	case *engine.Change:
		item.kind = KindChange
		item.ref = v
	case engine.ChangeHash:
		item.kind = KindChangeHash
		item.ref = v
	case engine.Cursor:
		item.kind = KindCursor
		item.ref = v
	case engine.Mark:
		item.kind = KindMark
		item.ref = v
	case *engine.SyncState:
		item.kind = KindSyncState
		item.ref = v
	case *engine.SyncMessage:
		item.kind = KindSyncMessage
		item.ref = v
	case engine.SyncHave:
		item.kind = KindSyncHave
		item.ref = v
	default:
		item.kind = KindVoid
	}
	return item
}

func (i *Item) withPos(pos int) *Item {
	i.idx = IdxPos
	i.pos = pos
	return i
}

func (i *Item) withKey(key string) *Item {
	i.idx = IdxKey
	i.key = key
	return i
}

// release drops one reference; the last one frees the shared storage.
func (i *Item) release() {
	i.refs--
	if i.refs > 0 {
		return
	}
	i.freed = true
	i.bytes = nil
	i.str = ""
	i.ref = nil
}

func (i *Item) Kind() Kind {
	if i == nil {
		return KindVoid
	}
	return i.kind
}

func (i *Item) IdxKind() IdxKind {
	if i == nil {
		return IdxNone
	}
	return i.idx
}

// Pos returns the position annotation of a list-range item.
func (i *Item) Pos() (int, bool) {
	if i == nil || i.idx != IdxPos {
		return 0, false
	}
	return i.pos, true
}

// Key returns the key annotation of a map-range item.
func (i *Item) Key() (string, bool) {
	if i == nil || i.idx != IdxKey {
		return "", false
	}
	return i.key, true
}

// Obj identifies the object the value was read from.
func (i *Item) Obj() engine.ObjID {
	if i == nil {
		return ""
	}
	return i.obj
}

// RefCount reports how many Results currently hold this item.
func (i *Item) RefCount() int {
	if i == nil {
		return 0
	}
	return i.refs
}

// Duplicate produces a new Result holding this same item. The storage is
// shared, not copied: the reference count goes up by one and both holders
// observe identical bytes. Free the new Result like any other.
func (i *Item) Duplicate() *Result {
	if i == nil || i.freed {
		return nil
	}
	i.refs++
	return &Result{status: StatusOk, items: []*Item{i}}
}

// Equal compares kind, value and owning object. The index annotation is
// deliberately ignored: a range item and a point-lookup item for the same
// value compare equal.
func (i *Item) Equal(other *Item) bool {
	if i == nil || other == nil {
		return false
	}
	if i == other {
		return true
	}
	if i.kind != other.kind || i.obj != other.obj {
		return false
	}
	switch i.kind {
	case KindVoid:
		return true
	case KindBool:
		return i.b == other.b
	case KindInt, KindCounter:
		return i.i == other.i
	case KindUint:
		return i.u == other.u
	case KindF64:
		return i.f == other.f
	case KindStr:
		return i.str == other.str
	case KindBytes:
		return bytes.Equal(i.bytes, other.bytes)
	case KindTimestamp:
		return i.t.Equal(other.t)
	case KindObj, KindActorID, KindChangeHash, KindCursor:
		return i.ref == other.ref
	case KindMark, KindSyncHave:
		return reflect.DeepEqual(i.ref, other.ref)
	}
	// Pointer-backed values (doc, change, sync state/message) compare by
	// identity.
	return i.ref == other.ref
}

func (i *Item) Bool() (bool, bool) {
	if i == nil || i.kind != KindBool {
		return false, false
	}
	return i.b, true
}

func (i *Item) Int() (int64, bool) {
	if i == nil || i.kind != KindInt {
		return 0, false
	}
	return i.i, true
}

func (i *Item) Uint() (uint64, bool) {
	if i == nil || i.kind != KindUint {
		return 0, false
	}
	return i.u, true
}

func (i *Item) F64() (float64, bool) {
	if i == nil || i.kind != KindF64 {
		return 0, false
	}
	return i.f, true
}

// Str returns the string value. The bytes may contain NULs; length is the
// string's own, never a NUL scan.
func (i *Item) Str() (string, bool) {
	if i == nil || i.kind != KindStr {
		return "", false
	}
	return i.str, true
}

func (i *Item) Bytes() ([]byte, bool) {
	if i == nil || i.kind != KindBytes {
		return nil, false
	}
	return i.bytes, true
}

func (i *Item) Timestamp() (time.Time, bool) {
	if i == nil || i.kind != KindTimestamp {
		return time.Time{}, false
	}
	return i.t, true
}

func (i *Item) Counter() (int64, bool) {
	if i == nil || i.kind != KindCounter {
		return 0, false
	}
	return i.i, true
}

func (i *Item) Doc() (*engine.Doc, bool) {
	if i == nil || i.kind != KindDoc {
		return nil, false
	}
	return i.ref.(*engine.Doc), true
}

func (i *Item) ObjID() (engine.ObjID, bool) {
	if i == nil || i.kind != KindObj {
		return "", false
	}
	return i.ref.(engine.ObjID), true
}

func (i *Item) ActorID() (uuid.UUID, bool) {
	if i == nil || i.kind != KindActorID {
		return uuid.UUID{}, false
	}
	return i.ref.(uuid.UUID), true
}

func (i *Item) Change() (*engine.Change, bool) {
	if i == nil || i.kind != KindChange {
		return nil, false
	}
	return i.ref.(*engine.Change), true
}

func (i *Item) ChangeHash() (engine.ChangeHash, bool) {
	if i == nil || i.kind != KindChangeHash {
		return engine.ChangeHash{}, false
	}
	return i.ref.(engine.ChangeHash), true
}

func (i *Item) Cursor() (engine.Cursor, bool) {
	if i == nil || i.kind != KindCursor {
		return engine.Cursor{}, false
	}
	return i.ref.(engine.Cursor), true
}

func (i *Item) Mark() (engine.Mark, bool) {
	if i == nil || i.kind != KindMark {
		return engine.Mark{}, false
	}
	return i.ref.(engine.Mark), true
}

func (i *Item) SyncState() (*engine.SyncState, bool) {
	if i == nil || i.kind != KindSyncState {
		return nil, false
	}
	return i.ref.(*engine.SyncState), true
}

func (i *Item) SyncMessage() (*engine.SyncMessage, bool) {
	if i == nil || i.kind != KindSyncMessage {
		return nil, false
	}
	return i.ref.(*engine.SyncMessage), true
}

func (i *Item) SyncHave() (engine.SyncHave, bool) {
	if i == nil || i.kind != KindSyncHave {
		return engine.SyncHave{}, false
	}
	return i.ref.(engine.SyncHave), true
}
