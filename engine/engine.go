package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
)

// Doc is a single-threaded, in-memory document: a tree of map, list and
// text objects hanging from Root, plus a linear log of committed changes.
// It is the far side of the boundary that the result package wraps; it is
// not a CRDT, conflict resolution is last-write-wins in arrival order.
type Doc struct {
	actor   uuid.UUID
	objects map[ObjID]*object
	changes []*Change
	byHash  map[ChangeHash]int // change hash -> position in changes
	pending []op               // applied but not yet committed
	seq     uint64
}

type ObjKind int

const (
	KindMap ObjKind = iota + 1
	KindList
	KindText
)

func (k ObjKind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindList:
		return "list"
	case KindText:
		return "text"
	}
	return "unknown"
}

// ObjID identifies an object within a document. The root map always exists.
type ObjID string

const Root ObjID = "_root"

// Counter is a scalar that supports Increment.
type Counter int64

// Cursor is a stable reference to a list element that survives insertions
// and deletions around it.
type Cursor struct {
	Obj  ObjID
	elem string
}

// Mark annotates a range of a text object.
type Mark struct {
	Name  string
	Start int
	End   int
	Value any
}

type MapEntry struct {
	Key   string
	Value any
}

type ListEntry struct {
	Pos   int
	Value any
}

var (
	ErrNotFound     = errors.New("not found")
	ErrTypeMismatch = errors.New("type not supported")
)

type object struct {
	id      ObjID
	kind    ObjKind
	entries *btree.BTreeG[*entry] // map objects
	elems   []*elem               // list and text objects
	marks   []Mark                // text objects
}

type entry struct {
	key   string
	value any
}

type elem struct {
	id    string
	value any
}

func newObject(id ObjID, kind ObjKind) *object {
	o := &object{id: id, kind: kind}
	if kind == KindMap {
		o.entries = btree.NewG(32, func(a, b *entry) bool {
			return a.key < b.key
		})
	}
	return o
}

func NewDoc() *Doc {
	return newDoc(uuid.New())
}

func newDoc(actor uuid.UUID) *Doc {
	return &Doc{
		actor:   actor,
		objects: map[ObjID]*object{Root: newObject(Root, KindMap)},
		byHash:  map[ChangeHash]int{},
	}
}

func (d *Doc) Actor() uuid.UUID {
	return d.actor
}

func (d *Doc) SetActor(actor uuid.UUID) {
	d.actor = actor
}

func (d *Doc) object(id ObjID, kind ObjKind) (*object, error) {
	o, exists := d.objects[id]
	if !exists {
		return nil, fmt.Errorf("object '%s': %w", id, ErrNotFound)
	}
	if o.kind != kind {
		return nil, fmt.Errorf("object '%s' is a %s: %w", id, o.kind, ErrTypeMismatch)
	}
	return o, nil
}

// normalize widens the supported scalar types so that every value stored in
// a document (and recorded in its ops) has a canonical representation.
func normalize(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool, int64, uint64, float64, string, []byte, time.Time, Counter, ObjID:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case float32:
		return float64(v), nil
	}
	return nil, fmt.Errorf("value %T: %w", value, ErrTypeMismatch)
}

// record applies an op to the live document and appends it to the pending
// log. Every public mutator funnels through here so that replaying the log
// rebuilds the exact same state.
func (d *Doc) record(o op) error {
	err := d.apply(o)
	if err != nil {
		return err
	}
	d.pending = append(d.pending, o)
	return nil
}

func (d *Doc) MapPut(obj ObjID, key string, value any) error {
	value, err := normalize(value)
	if err != nil {
		return fmt.Errorf("map put '%s': %w", key, err)
	}
	if _, isObj := value.(ObjID); isObj {
		return fmt.Errorf("map put '%s': use MakeMap/MakeList/MakeText for objects", key)
	}
	return d.record(op{Action: actionPut, Obj: obj, InMap: true, Key: key, Value: value})
}

func (d *Doc) MapGet(obj ObjID, key string) (any, error) {
	o, err := d.object(obj, KindMap)
	if err != nil {
		return nil, err
	}
	e, exists := o.entries.Get(&entry{key: key})
	if !exists {
		return nil, fmt.Errorf("key '%s': %w", key, ErrNotFound)
	}
	return e.value, nil
}

func (d *Doc) MapDelete(obj ObjID, key string) error {
	o, err := d.object(obj, KindMap)
	if err != nil {
		return err
	}
	if !o.entries.Has(&entry{key: key}) {
		return fmt.Errorf("key '%s': %w", key, ErrNotFound)
	}
	return d.record(op{Action: actionDelete, Obj: obj, InMap: true, Key: key})
}

// MapRange returns the entries of a map object with begin <= key < end, in
// lexical key order. Empty bounds are unbounded. A non-empty heads names a
// past state to read instead of the present one.
func (d *Doc) MapRange(obj ObjID, begin, end string, heads []ChangeHash) ([]MapEntry, error) {
	at, err := d.at(heads)
	if err != nil {
		return nil, err
	}
	o, err := at.object(obj, KindMap)
	if err != nil {
		return nil, err
	}
	entries := []MapEntry{}
	iterator := func(e *entry) bool {
		if end != "" && e.key >= end {
			return false
		}
		entries = append(entries, MapEntry{Key: e.key, Value: e.value})
		return true
	}
	if begin == "" {
		o.entries.Ascend(iterator)
	} else {
		o.entries.AscendGreaterOrEqual(&entry{key: begin}, iterator)
	}
	return entries, nil
}

// ListPut writes a value into a list object. With insert the value is
// inserted before pos (pos == length appends); without it the element at
// pos is overwritten.
func (d *Doc) ListPut(obj ObjID, pos int, insert bool, value any) error {
	value, err := normalize(value)
	if err != nil {
		return fmt.Errorf("list put %d: %w", pos, err)
	}
	if _, isObj := value.(ObjID); isObj {
		return fmt.Errorf("list put %d: use MakeMap/MakeList/MakeText for objects", pos)
	}
	if insert {
		return d.record(op{Action: actionInsert, Obj: obj, Pos: pos, Value: value, Elem: uuid.NewString()})
	}
	return d.record(op{Action: actionSet, Obj: obj, Pos: pos, Value: value})
}

func (d *Doc) ListGet(obj ObjID, pos int) (any, error) {
	o, err := d.object(obj, KindList)
	if err != nil {
		return nil, err
	}
	if pos < 0 || pos >= len(o.elems) {
		return nil, fmt.Errorf("position %d: %w", pos, ErrNotFound)
	}
	return o.elems[pos].value, nil
}

func (d *Doc) ListDelete(obj ObjID, pos int) error {
	o, err := d.object(obj, KindList)
	if err != nil {
		return err
	}
	if pos < 0 || pos >= len(o.elems) {
		return fmt.Errorf("position %d: %w", pos, ErrNotFound)
	}
	return d.record(op{Action: actionDelete, Obj: obj, Pos: pos})
}

func (d *Doc) ListLen(obj ObjID) (int, error) {
	o, err := d.object(obj, KindList)
	if err != nil {
		return 0, err
	}
	return len(o.elems), nil
}

// ListRange returns the elements of a list object with begin <= pos < end,
// in position order. end < 0 means the end of the list.
func (d *Doc) ListRange(obj ObjID, begin, end int, heads []ChangeHash) ([]ListEntry, error) {
	at, err := d.at(heads)
	if err != nil {
		return nil, err
	}
	o, err := at.object(obj, KindList)
	if err != nil {
		return nil, err
	}
	if end < 0 || end > len(o.elems) {
		end = len(o.elems)
	}
	if begin < 0 {
		begin = 0
	}
	entries := []ListEntry{}
	for pos := begin; pos < end; pos++ {
		entries = append(entries, ListEntry{Pos: pos, Value: o.elems[pos].value})
	}
	return entries, nil
}

// MakeMap creates a map object under a map key (key != "") or at a list
// position and returns its id.
func (d *Doc) MakeMap(parent ObjID, key string, pos int) (ObjID, error) {
	return d.makeObject(parent, key, pos, KindMap)
}

func (d *Doc) MakeList(parent ObjID, key string, pos int) (ObjID, error) {
	return d.makeObject(parent, key, pos, KindList)
}

func (d *Doc) MakeText(parent ObjID, key string, pos int) (ObjID, error) {
	return d.makeObject(parent, key, pos, KindText)
}

func (d *Doc) makeObject(parent ObjID, key string, pos int, kind ObjKind) (ObjID, error) {
	id := ObjID(uuid.NewString())
	o := op{Action: actionMake, Obj: parent, Kind: kind, NewObj: id}
	if key != "" {
		o.InMap = true
		o.Key = key
	} else {
		o.Pos = pos
		o.Elem = uuid.NewString()
	}
	err := d.record(o)
	if err != nil {
		return "", err
	}
	return id, nil
}

// SpliceText deletes del characters at pos and inserts text there. A
// negative del deletes the characters ending at pos instead.
func (d *Doc) SpliceText(obj ObjID, pos, del int, text string) error {
	o, err := d.object(obj, KindText)
	if err != nil {
		return err
	}
	runes := []rune(text)
	if del < 0 {
		pos += del
		del = -del
	}
	if pos < 0 || pos+del > len(o.elems) {
		return fmt.Errorf("splice %d+%d: %w", pos, del, ErrNotFound)
	}
	elems := make([]string, len(runes))
	for i := range runes {
		elems[i] = uuid.NewString()
	}
	return d.record(op{Action: actionSplice, Obj: obj, Pos: pos, Del: del, Text: text, Elems: elems})
}

func (d *Doc) Text(obj ObjID) (string, error) {
	o, err := d.object(obj, KindText)
	if err != nil {
		return "", err
	}
	text := make([]rune, 0, len(o.elems))
	for _, e := range o.elems {
		text = append(text, e.value.(rune))
	}
	return string(text), nil
}

func (d *Doc) TextLen(obj ObjID) (int, error) {
	o, err := d.object(obj, KindText)
	if err != nil {
		return 0, err
	}
	return len(o.elems), nil
}

// Mark annotates [start, end) of a text object.
func (d *Doc) Mark(obj ObjID, name string, start, end int, value any) error {
	o, err := d.object(obj, KindText)
	if err != nil {
		return err
	}
	if start < 0 || end > len(o.elems) || start > end {
		return fmt.Errorf("mark %d..%d: %w", start, end, ErrNotFound)
	}
	value, err = normalize(value)
	if err != nil {
		return fmt.Errorf("mark '%s': %w", name, err)
	}
	return d.record(op{Action: actionMark, Obj: obj, Name: name, Start: start, End: end, Value: value})
}

func (d *Doc) Marks(obj ObjID) ([]Mark, error) {
	o, err := d.object(obj, KindText)
	if err != nil {
		return nil, err
	}
	marks := make([]Mark, len(o.marks))
	copy(marks, o.marks)
	return marks, nil
}

// Increment adds delta to the Counter stored at a map key.
func (d *Doc) Increment(obj ObjID, key string, delta int64) error {
	current, err := d.MapGet(obj, key)
	if err != nil {
		return err
	}
	if _, isCounter := current.(Counter); !isCounter {
		return fmt.Errorf("key '%s' is not a counter: %w", key, ErrTypeMismatch)
	}
	return d.record(op{Action: actionIncrement, Obj: obj, InMap: true, Key: key, Value: delta})
}

// NewCursor captures a stable reference to the list element at pos.
func (d *Doc) NewCursor(obj ObjID, pos int) (Cursor, error) {
	o, err := d.object(obj, KindList)
	if err != nil {
		return Cursor{}, err
	}
	if pos < 0 || pos >= len(o.elems) {
		return Cursor{}, fmt.Errorf("position %d: %w", pos, ErrNotFound)
	}
	return Cursor{Obj: obj, elem: o.elems[pos].id}, nil
}

// CursorPosition resolves a cursor back to the element's current position.
func (d *Doc) CursorPosition(c Cursor) (int, error) {
	o, err := d.object(c.Obj, KindList)
	if err != nil {
		return 0, err
	}
	for pos, e := range o.elems {
		if e.id == c.elem {
			return pos, nil
		}
	}
	return 0, fmt.Errorf("cursor element: %w", ErrNotFound)
}

// Fork clones the document under a fresh actor id by replaying its log.
func (d *Doc) Fork() (*Doc, error) {
	forked, err := Load(d.Save())
	if err != nil {
		return nil, fmt.Errorf("fork: %w", err)
	}
	forked.actor = uuid.New()
	return forked, nil
}
