package engine

import (
	"crypto/sha256"
	"fmt"
	"time"

	json2 "github.com/go-json-experiment/json"
	"github.com/google/uuid"
)

// The save format is an opaque, versioned encoding of the change log plus
// any pending ops. It is a byte payload to callers; only Load interprets it.

const saveFormat = 1

type savedDoc struct {
	Format  int           `json:"format"`
	Actor   string        `json:"actor"`
	Changes []savedChange `json:"changes"`
	Pending []savedOp     `json:"pending,omitempty"`
	Seq     uint64        `json:"seq"`
}

type savedChange struct {
	Actor   string    `json:"actor"`
	Seq     uint64    `json:"seq"`
	Time    int64     `json:"time"`
	Message string    `json:"message,omitempty"`
	Deps    []string  `json:"deps,omitempty"`
	Ops     []savedOp `json:"ops"`
}

type savedOp struct {
	Action string      `json:"action"`
	Obj    string      `json:"obj"`
	InMap  bool        `json:"in_map,omitempty"`
	Key    string      `json:"key,omitempty"`
	Pos    int         `json:"pos,omitempty"`
	Value  *savedValue `json:"value,omitempty"`
	Kind   int         `json:"kind,omitempty"`
	NewObj string      `json:"new_obj,omitempty"`
	Elem   string      `json:"elem,omitempty"`
	Del    int         `json:"del,omitempty"`
	Text   string      `json:"text,omitempty"`
	Elems  []string    `json:"elems,omitempty"`
	Name   string      `json:"name,omitempty"`
	Start  int         `json:"start,omitempty"`
	End    int         `json:"end,omitempty"`
}

// savedValue tags every scalar with its kind so that Load restores the
// exact Go type; a bare JSON value would collapse ints and floats.
// The value fields carry no omitempty: an empty payload (zero, "", empty
// bytes) must round-trip exactly, not collapse to absent.
type savedValue struct {
	Kind  string  `json:"kind"`
	Bool  bool    `json:"bool"`
	Int   int64   `json:"int"`
	Uint  uint64  `json:"uint"`
	F64   float64 `json:"f64"`
	Str   string  `json:"str"`
	Bytes []byte  `json:"bytes"`
}

func encodeValue(value any) (*savedValue, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return &savedValue{Kind: "bool", Bool: v}, nil
	case int64:
		return &savedValue{Kind: "int", Int: v}, nil
	case uint64:
		return &savedValue{Kind: "uint", Uint: v}, nil
	case float64:
		return &savedValue{Kind: "f64", F64: v}, nil
	case string:
		return &savedValue{Kind: "str", Str: v}, nil
	case []byte:
		return &savedValue{Kind: "bytes", Bytes: v}, nil
	case time.Time:
		return &savedValue{Kind: "time", Int: v.UnixMilli()}, nil
	case Counter:
		return &savedValue{Kind: "counter", Int: int64(v)}, nil
	}
	return nil, fmt.Errorf("encode value %T: %w", value, ErrTypeMismatch)
}

func decodeValue(v *savedValue) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch v.Kind {
	case "bool":
		return v.Bool, nil
	case "int":
		return v.Int, nil
	case "uint":
		return v.Uint, nil
	case "f64":
		return v.F64, nil
	case "str":
		return v.Str, nil
	case "bytes":
		return v.Bytes, nil
	case "time":
		return time.UnixMilli(v.Int).UTC(), nil
	case "counter":
		return Counter(v.Int), nil
	}
	return nil, fmt.Errorf("decode value kind '%s': %w", v.Kind, ErrTypeMismatch)
}

func encodeOp(o op) (savedOp, error) {
	value, err := encodeValue(o.Value)
	if err != nil {
		return savedOp{}, err
	}
	return savedOp{
		Action: o.Action,
		Obj:    string(o.Obj),
		InMap:  o.InMap,
		Key:    o.Key,
		Pos:    o.Pos,
		Value:  value,
		Kind:   int(o.Kind),
		NewObj: string(o.NewObj),
		Elem:   o.Elem,
		Del:    o.Del,
		Text:   o.Text,
		Elems:  o.Elems,
		Name:   o.Name,
		Start:  o.Start,
		End:    o.End,
	}, nil
}

func decodeOp(s savedOp) (op, error) {
	value, err := decodeValue(s.Value)
	if err != nil {
		return op{}, err
	}
	return op{
		Action: s.Action,
		Obj:    ObjID(s.Obj),
		InMap:  s.InMap,
		Key:    s.Key,
		Pos:    s.Pos,
		Value:  value,
		Kind:   ObjKind(s.Kind),
		NewObj: ObjID(s.NewObj),
		Elem:   s.Elem,
		Del:    s.Del,
		Text:   s.Text,
		Elems:  s.Elems,
		Name:   s.Name,
		Start:  s.Start,
		End:    s.End,
	}, nil
}

func encodeChangeRecord(c *Change) (savedChange, error) {
	record := savedChange{
		Actor:   c.Actor.String(),
		Seq:     c.Seq,
		Time:    c.Time,
		Message: c.Message,
		Ops:     make([]savedOp, 0, len(c.ops)),
	}
	for _, dep := range c.Deps {
		record.Deps = append(record.Deps, dep.String())
	}
	for _, o := range c.ops {
		encoded, err := encodeOp(o)
		if err != nil {
			return savedChange{}, err
		}
		record.Ops = append(record.Ops, encoded)
	}
	return record, nil
}

// encodeChange produces the canonical bytes a change hash is computed from.
func encodeChange(c *Change) ([]byte, error) {
	record, err := encodeChangeRecord(c)
	if err != nil {
		return nil, err
	}
	return json2.Marshal(record)
}

func decodeChange(record savedChange) (*Change, error) {
	actor, err := uuid.Parse(record.Actor)
	if err != nil {
		return nil, fmt.Errorf("decode change actor: %w", err)
	}
	change := &Change{
		Actor:   actor,
		Seq:     record.Seq,
		Time:    record.Time,
		Message: record.Message,
		ops:     make([]op, 0, len(record.Ops)),
	}
	for _, dep := range record.Deps {
		hash, err := ParseChangeHash(dep)
		if err != nil {
			return nil, err
		}
		change.Deps = append(change.Deps, hash)
	}
	for _, s := range record.Ops {
		decoded, err := decodeOp(s)
		if err != nil {
			return nil, err
		}
		change.ops = append(change.ops, decoded)
	}
	encoded, err := encodeChange(change)
	if err != nil {
		return nil, err
	}
	change.hash = sha256.Sum256(encoded)
	return change, nil
}

// Save serializes the document. The payload is opaque; pass it to Load.
func (d *Doc) Save() []byte {
	saved := savedDoc{
		Format:  saveFormat,
		Actor:   d.actor.String(),
		Changes: make([]savedChange, 0, len(d.changes)),
		Seq:     d.seq,
	}
	for _, change := range d.changes {
		record, err := encodeChangeRecord(change)
		if err != nil {
			// Everything in a change was normalized on the way in.
			panic(fmt.Sprintf("save: %s", err))
		}
		saved.Changes = append(saved.Changes, record)
	}
	for _, o := range d.pending {
		record, err := encodeOp(o)
		if err != nil {
			panic(fmt.Sprintf("save: %s", err))
		}
		saved.Pending = append(saved.Pending, record)
	}
	data, err := json2.Marshal(saved)
	if err != nil {
		panic(fmt.Sprintf("save: %s", err))
	}
	return data
}

// Load rebuilds a document from a Save payload by replaying its log.
func Load(data []byte) (*Doc, error) {
	saved := savedDoc{}
	err := json2.Unmarshal(data, &saved)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if saved.Format != saveFormat {
		return nil, fmt.Errorf("load: format %d not supported", saved.Format)
	}
	actor, err := uuid.Parse(saved.Actor)
	if err != nil {
		return nil, fmt.Errorf("load actor: %w", err)
	}
	d := newDoc(actor)
	for _, record := range saved.Changes {
		change, err := decodeChange(record)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		for _, o := range change.ops {
			err = d.apply(o)
			if err != nil {
				return nil, fmt.Errorf("load change %s: %w", change.hash, err)
			}
		}
		d.byHash[change.hash] = len(d.changes)
		d.changes = append(d.changes, change)
	}
	for _, record := range saved.Pending {
		o, err := decodeOp(record)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		err = d.record(o)
		if err != nil {
			return nil, fmt.Errorf("load pending: %w", err)
		}
	}
	d.seq = saved.Seq
	return d, nil
}
