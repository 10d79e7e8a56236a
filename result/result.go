package result

// Result is an owned bundle of items produced by one operation. Every
// Result must be freed exactly once: directly with Free, by popping it off
// a Stack and freeing it, or by Stack.Free tearing everything down.
type Result struct {
	status  Status
	message string
	items   []*Item
	freed   bool
}

func okResult(items ...*Item) *Result {
	return &Result{status: StatusOk, items: items}
}

func voidResult() *Result {
	return okResult(voidItem())
}

func errorResult(err error) *Result {
	return &Result{status: StatusError, message: err.Error()}
}

func (r *Result) Status() Status {
	if r == nil {
		return StatusInvalid
	}
	return r.status
}

// Message is the error message; empty unless Status is StatusError.
func (r *Result) Message() string {
	if r == nil {
		return ""
	}
	return r.message
}

func (r *Result) Size() int {
	if r == nil {
		return 0
	}
	return len(r.items)
}

// Item returns the first item, or nil for an empty or failed Result.
func (r *Result) Item() *Item {
	if r == nil || len(r.items) == 0 {
		return nil
	}
	return r.items[0]
}

// Items returns a fresh iterator over the Result's items. The iterator
// borrows the storage; it never outlives the Result meaningfully.
func (r *Result) Items() Items {
	if r == nil {
		return Items{}
	}
	return Items{items: r.items}
}

// Free releases the Result's hold on every item. Safe to call on nil and
// on an already freed Result.
func (r *Result) Free() {
	if r == nil || r.freed {
		return
	}
	r.freed = true
	for _, item := range r.items {
		item.release()
	}
}

// FromResults concatenates the items of the given Results into one new
// Result and frees every source, success or not. If any source is missing
// or failed, the combination fails (returns nil) but the sources are still
// freed, so the caller never cleans up after a failed combination.
func FromResults(results ...*Result) *Result {
	ok := true
	for _, r := range results {
		if r == nil || r.Status() != StatusOk {
			ok = false
		}
	}
	if !ok {
		for _, r := range results {
			r.Free()
		}
		return nil
	}
	combined := &Result{status: StatusOk}
	for _, r := range results {
		for _, item := range r.items {
			item.refs++
			combined.items = append(combined.items, item)
		}
	}
	for _, r := range results {
		r.Free()
	}
	return combined
}
