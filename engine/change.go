package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChangeHash identifies a committed change by the digest of its encoding.
type ChangeHash [sha256.Size]byte

func (h ChangeHash) String() string {
	return hex.EncodeToString(h[:])
}

func ParseChangeHash(s string) (ChangeHash, error) {
	var h ChangeHash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parse change hash: %w", err)
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("parse change hash: got %d bytes, want %d", len(raw), len(h))
	}
	copy(h[:], raw)
	return h, nil
}

// Change is a sealed group of ops, the unit of history and of sync.
type Change struct {
	Actor   uuid.UUID
	Seq     uint64
	Time    int64
	Message string
	Deps    []ChangeHash
	ops     []op
	hash    ChangeHash
}

func (c *Change) Hash() ChangeHash {
	return c.hash
}

func (c *Change) OpCount() int {
	return len(c.ops)
}

const (
	actionPut       = "put"
	actionDelete    = "del"
	actionInsert    = "ins"
	actionSet       = "set"
	actionMake      = "make"
	actionSplice    = "splice"
	actionMark      = "mark"
	actionIncrement = "inc"
)

// op is one mutation. Object and element ids are generated when the op is
// first recorded and stored in it, so replay is deterministic.
type op struct {
	Action string
	Obj    ObjID
	InMap  bool // Key addresses a map entry; otherwise Pos addresses a list element
	Key    string
	Pos    int
	Value  any
	Kind   ObjKind // make
	NewObj ObjID   // make
	Elem   string  // ins, make-in-list
	Del    int     // splice
	Text   string  // splice
	Elems  []string
	Name   string // mark
	Start  int
	End    int
}

// apply mutates the document state. It is the only writer; live mutations
// and log replay both go through it.
func (d *Doc) apply(o op) error {
	target, exists := d.objects[o.Obj]
	if !exists {
		return fmt.Errorf("object '%s': %w", o.Obj, ErrNotFound)
	}

	switch o.Action {

	case actionPut:
		if target.kind != KindMap {
			return fmt.Errorf("put on %s object: %w", target.kind, ErrTypeMismatch)
		}
		target.entries.ReplaceOrInsert(&entry{key: o.Key, value: o.Value})

	case actionDelete:
		if o.InMap {
			if target.kind != KindMap {
				return fmt.Errorf("delete on %s object: %w", target.kind, ErrTypeMismatch)
			}
			target.entries.Delete(&entry{key: o.Key})
			break
		}
		if target.kind != KindList && target.kind != KindText {
			return fmt.Errorf("delete on %s object: %w", target.kind, ErrTypeMismatch)
		}
		if o.Pos < 0 || o.Pos >= len(target.elems) {
			return fmt.Errorf("delete position %d: %w", o.Pos, ErrNotFound)
		}
		target.elems = append(target.elems[:o.Pos], target.elems[o.Pos+1:]...)

	case actionInsert:
		if target.kind != KindList {
			return fmt.Errorf("insert on %s object: %w", target.kind, ErrTypeMismatch)
		}
		if o.Pos < 0 || o.Pos > len(target.elems) {
			return fmt.Errorf("insert position %d: %w", o.Pos, ErrNotFound)
		}
		target.elems = append(target.elems, nil)
		copy(target.elems[o.Pos+1:], target.elems[o.Pos:])
		target.elems[o.Pos] = &elem{id: o.Elem, value: o.Value}

	case actionSet:
		if target.kind != KindList {
			return fmt.Errorf("set on %s object: %w", target.kind, ErrTypeMismatch)
		}
		if o.Pos < 0 || o.Pos >= len(target.elems) {
			return fmt.Errorf("set position %d: %w", o.Pos, ErrNotFound)
		}
		target.elems[o.Pos].value = o.Value

	case actionMake:
		child := newObject(o.NewObj, o.Kind)
		if o.InMap {
			if target.kind != KindMap {
				return fmt.Errorf("make on %s object: %w", target.kind, ErrTypeMismatch)
			}
			target.entries.ReplaceOrInsert(&entry{key: o.Key, value: o.NewObj})
		} else {
			if target.kind != KindList {
				return fmt.Errorf("make on %s object: %w", target.kind, ErrTypeMismatch)
			}
			if o.Pos < 0 || o.Pos > len(target.elems) {
				return fmt.Errorf("make position %d: %w", o.Pos, ErrNotFound)
			}
			target.elems = append(target.elems, nil)
			copy(target.elems[o.Pos+1:], target.elems[o.Pos:])
			target.elems[o.Pos] = &elem{id: o.Elem, value: o.NewObj}
		}
		d.objects[o.NewObj] = child

	case actionSplice:
		if target.kind != KindText {
			return fmt.Errorf("splice on %s object: %w", target.kind, ErrTypeMismatch)
		}
		pos, del := o.Pos, o.Del
		if del < 0 {
			// Ops recorded by SpliceText are already normalized; loaded
			// payloads may not be.
			pos += del
			del = -del
		}
		if pos < 0 || pos+del > len(target.elems) {
			return fmt.Errorf("splice %d+%d: %w", pos, del, ErrNotFound)
		}
		runes := []rune(o.Text)
		inserted := make([]*elem, len(runes))
		for i, r := range runes {
			inserted[i] = &elem{id: o.Elems[i], value: r}
		}
		tail := append(inserted, target.elems[pos+del:]...)
		target.elems = append(target.elems[:pos], tail...)

	case actionMark:
		if target.kind != KindText {
			return fmt.Errorf("mark on %s object: %w", target.kind, ErrTypeMismatch)
		}
		target.marks = append(target.marks, Mark{Name: o.Name, Start: o.Start, End: o.End, Value: o.Value})

	case actionIncrement:
		if target.kind != KindMap {
			return fmt.Errorf("increment on %s object: %w", target.kind, ErrTypeMismatch)
		}
		e, exists := target.entries.Get(&entry{key: o.Key})
		if !exists {
			return fmt.Errorf("key '%s': %w", o.Key, ErrNotFound)
		}
		counter, isCounter := e.value.(Counter)
		if !isCounter {
			return fmt.Errorf("key '%s' is not a counter: %w", o.Key, ErrTypeMismatch)
		}
		e.value = counter + Counter(o.Value.(int64))

	default:
		return fmt.Errorf("action '%s': %w", o.Action, ErrTypeMismatch)
	}

	return nil
}

// Commit seals the pending ops into a change and returns its hash.
func (d *Doc) Commit(message string, t time.Time) (ChangeHash, error) {
	if len(d.pending) == 0 {
		return ChangeHash{}, fmt.Errorf("commit: nothing pending")
	}
	d.seq++
	change := &Change{
		Actor:   d.actor,
		Seq:     d.seq,
		Time:    t.UnixMilli(),
		Message: message,
		Deps:    d.Heads(),
		ops:     d.pending,
	}
	encoded, err := encodeChange(change)
	if err != nil {
		d.seq--
		return ChangeHash{}, fmt.Errorf("commit: %w", err)
	}
	change.hash = sha256.Sum256(encoded)
	d.byHash[change.hash] = len(d.changes)
	d.changes = append(d.changes, change)
	d.pending = nil
	return change.hash, nil
}

func (d *Doc) PendingOps() int {
	return len(d.pending)
}

// Heads returns the hash of the newest committed change, or nothing for a
// document with no history yet.
func (d *Doc) Heads() []ChangeHash {
	if len(d.changes) == 0 {
		return []ChangeHash{}
	}
	return []ChangeHash{d.changes[len(d.changes)-1].hash}
}

func (d *Doc) Changes() []*Change {
	changes := make([]*Change, len(d.changes))
	copy(changes, d.changes)
	return changes
}

// ApplyChanges appends foreign changes to the log, skipping ones already
// present, and applies their ops to the live state.
func (d *Doc) ApplyChanges(changes []*Change) error {
	for _, change := range changes {
		if _, seen := d.byHash[change.hash]; seen {
			continue
		}
		for _, o := range change.ops {
			err := d.apply(o)
			if err != nil {
				return fmt.Errorf("apply change %s: %w", change.hash, err)
			}
		}
		d.byHash[change.hash] = len(d.changes)
		d.changes = append(d.changes, change)
	}
	return nil
}

// at returns the document as of the given heads: itself for empty heads, or
// a replay of the log up to the single named head. History is linear here,
// multiple heads are out of contract.
func (d *Doc) at(heads []ChangeHash) (*Doc, error) {
	if len(heads) == 0 {
		return d, nil
	}
	if len(heads) > 1 {
		return nil, fmt.Errorf("at %d heads: linear history has a single head", len(heads))
	}
	until, known := d.byHash[heads[0]]
	if !known {
		return nil, fmt.Errorf("head %s: %w", heads[0], ErrNotFound)
	}
	past := newDoc(d.actor)
	for _, change := range d.changes[:until+1] {
		for _, o := range change.ops {
			err := past.apply(o)
			if err != nil {
				return nil, fmt.Errorf("replay change %s: %w", change.hash, err)
			}
		}
		past.byHash[change.hash] = len(past.changes)
		past.changes = append(past.changes, change)
		past.seq = change.Seq
	}
	return past, nil
}
