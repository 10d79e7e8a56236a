package result

// Items is a double-ended, repositionable cursor over the items of a
// Result. It is a value type: copies advance independently while sharing
// the same backing storage.
//
// Position is a single offset. A forward cursor keeps it in [0, n]: the
// index of the next item to yield, n meaning exhausted. A reversed cursor
// keeps it in [-(n+1), -1]: offset+n is the index of the next item to
// yield, -(n+1) meaning exhausted. Reversed negates to -(offset+1), which
// maps each state onto its mirror, so a forward cursor at the start turns
// into a reversed cursor at the back and vice versa.
type Items struct {
	items  []*Item
	offset int
}

// Size is the total element count of the backing storage, regardless of
// how far the cursor has advanced or in which direction it runs.
func (it *Items) Size() int {
	return len(it.items)
}

func (it *Items) index() int {
	if it.offset < 0 {
		return it.offset + len(it.items)
	}
	return it.offset
}

func (it *Items) stopped() bool {
	n := len(it.items)
	return it.offset < -n || it.offset == n
}

// advance moves the cursor n positions in its own direction; negative n
// moves against it. The offset is clipped at both stops.
func (it *Items) advance(n int) {
	if n == 0 {
		return
	}
	size := len(it.items)
	if it.offset < 0 {
		// Reversed: its own direction decreases the offset.
		unclipped := it.offset - n
		if unclipped >= 0 {
			// Walked backwards off the front; clip to the forward stop.
			it.offset = size
			return
		}
		it.offset = min(max(-(size+1), unclipped), -1)
		return
	}
	unclipped := it.offset + n
	if unclipped < 0 {
		// Walked backwards off the back; clip to the reverse stop.
		it.offset = -(size + 1)
		return
	}
	it.offset = max(0, min(unclipped, size))
}

// Next yields the item at the current position and then advances by at
// most n positions in the cursor's direction. It returns nil once the
// cursor has been driven past its limit.
func (it *Items) Next(n int) *Item {
	if it.stopped() {
		return nil
	}
	item := it.items[it.index()]
	it.advance(n)
	return item
}

// Prev moves the cursor n positions against its direction and yields the
// item it lands on, or nil when that walks past the start. Prev after a
// run of Next steps back over the items just yielded.
func (it *Items) Prev(n int) *Item {
	it.advance(-n)
	if it.stopped() {
		return nil
	}
	return it.items[it.index()]
}

// Reversed returns a cursor over the same backing storage with the
// opposite direction and mirrored position. No items are copied.
func (it Items) Reversed() Items {
	return Items{items: it.items, offset: -(it.offset + 1)}
}

// Rewound returns a cursor at the starting position of this cursor's own
// orientation: the first element for a forward cursor, the last for a
// reversed one.
func (it Items) Rewound() Items {
	offset := 0
	if it.offset < 0 {
		offset = -1
	}
	return Items{items: it.items, offset: offset}
}
