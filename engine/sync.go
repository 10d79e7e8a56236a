package engine

import (
	"fmt"
)

// Two-peer synchronization: each side tracks which changes it believes the
// other one has and sends whatever is missing. The transport is up to the
// caller; messages are plain values.

// SyncState is one peer's view of the other. Create one per connection and
// keep it for the connection's lifetime.
type SyncState struct {
	sharedHeads []ChangeHash
	theirs      map[ChangeHash]bool // changes the peer is known to have
}

func NewSyncState() *SyncState {
	return &SyncState{theirs: map[ChangeHash]bool{}}
}

func (s *SyncState) SharedHeads() []ChangeHash {
	heads := make([]ChangeHash, len(s.sharedHeads))
	copy(heads, s.sharedHeads)
	return heads
}

// SyncHave advertises the heads a peer had at its last sync point.
type SyncHave struct {
	LastSync []ChangeHash
}

// SyncMessage carries the sender's heads and the changes it believes the
// receiver lacks.
type SyncMessage struct {
	Heads   []ChangeHash
	Haves   []SyncHave
	Changes []*Change
}

// GenerateSyncMessage builds the next message for the peer, or reports
// false when the peer already has everything.
func (d *Doc) GenerateSyncMessage(s *SyncState) (*SyncMessage, bool) {
	missing := []*Change{}
	for _, change := range d.changes {
		if !s.theirs[change.hash] {
			missing = append(missing, change)
		}
	}
	heads := d.Heads()
	if len(missing) == 0 && headsEqual(heads, s.sharedHeads) {
		return nil, false
	}
	for _, change := range missing {
		s.theirs[change.hash] = true
	}
	s.sharedHeads = heads
	return &SyncMessage{
		Heads:   heads,
		Haves:   []SyncHave{{LastSync: s.SharedHeads()}},
		Changes: missing,
	}, true
}

// ReceiveSyncMessage applies the changes from a peer's message and records
// what the peer now has.
func (d *Doc) ReceiveSyncMessage(s *SyncState, m *SyncMessage) error {
	if m == nil {
		return fmt.Errorf("receive sync message: nil message")
	}
	err := d.ApplyChanges(m.Changes)
	if err != nil {
		return fmt.Errorf("receive sync message: %w", err)
	}
	for _, change := range m.Changes {
		s.theirs[change.hash] = true
	}
	for _, head := range m.Heads {
		s.theirs[head] = true
	}
	s.sharedHeads = m.Heads
	return nil
}

func headsEqual(a, b []ChangeHash) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
