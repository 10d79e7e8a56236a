package result

import (
	"strings"
)

// Status is the outcome of the operation that produced a Result.
type Status int

const (
	StatusOk Status = iota
	StatusError
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusError:
		return "error"
	case StatusInvalid:
		return "invalid"
	}
	return "unknown"
}

// Kind tags the type of value an Item holds. Kinds are bit flags so that a
// validator expectation can name several at once (KindStr|KindVoid).
type Kind uint32

const (
	KindVoid Kind = 1 << iota
	KindBool
	KindBytes
	KindStr
	KindInt
	KindUint
	KindF64
	KindTimestamp
	KindCounter
	KindDoc
	KindObj
	KindActorID
	KindChange
	KindChangeHash
	KindCursor
	KindMark
	KindSyncState
	KindSyncMessage
	KindSyncHave
)

var kindNames = []struct {
	kind Kind
	name string
}{
	{KindVoid, "void"},
	{KindBool, "bool"},
	{KindBytes, "bytes"},
	{KindStr, "str"},
	{KindInt, "int"},
	{KindUint, "uint"},
	{KindF64, "f64"},
	{KindTimestamp, "timestamp"},
	{KindCounter, "counter"},
	{KindDoc, "doc"},
	{KindObj, "obj"},
	{KindActorID, "actor id"},
	{KindChange, "change"},
	{KindChangeHash, "change hash"},
	{KindCursor, "cursor"},
	{KindMark, "mark"},
	{KindSyncState, "sync state"},
	{KindSyncMessage, "sync message"},
	{KindSyncHave, "sync have"},
}

// String renders a single kind by name and a mask as "a|b|c".
func (k Kind) String() string {
	if k == 0 {
		return "none"
	}
	names := []string{}
	for _, entry := range kindNames {
		if k&entry.kind != 0 {
			names = append(names, entry.name)
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, "|")
}
