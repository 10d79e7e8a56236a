package result

import (
	"fmt"
	"io"
	"os"
)

// Stack is a registry of Results pending release. Push registers every
// Result it is handed, even failed ones, so a single Free call at the end
// of a batch releases everything no matter how the batch went. A zero
// Stack is empty and ready to use; a nil *Stack means "no registry" and
// turns Push into validate-then-free.
type Stack struct {
	top *node
}

type node struct {
	result *Result
	prev   *node
}

// Validator examines the Result just pushed (the stack's top) against the
// expected kind mask. Returning false rejects the Result; it stays on the
// stack so teardown still frees it.
type Validator func(s *Stack, expected Kind) bool

// warnings receives the best-effort diagnostics of the nil-validator path.
var warnings io.Writer = os.Stderr

// SetWarnings redirects the diagnostic channel; tests point it at a buffer.
func SetWarnings(w io.Writer) {
	warnings = w
}

// Top is the most recently pushed Result; validators read it.
func (s *Stack) Top() *Result {
	if s == nil || s.top == nil {
		return nil
	}
	return s.top.result
}

// Push registers the Result as the new top and validates it.
//
// With a nil receiver the Result is still validated, so diagnostics fire,
// and then freed immediately; nothing is returned. Use that for calls
// whose only output is a void marker. With a nil validator a failing
// status is reported to the warnings channel but the Result is returned
// anyway for external examination. With a validator that rejects, Push
// returns nil while the Result stays registered; validation failure never
// leaks.
func (s *Stack) Push(r *Result, validate Validator, expected Kind) *Result {
	if s == nil {
		if validate != nil {
			scratch := &Stack{top: &node{result: r}}
			validate(scratch, expected)
		} else {
			// Nothing validates and nothing is returned; a caller doing
			// this by design still wants failures to be visible.
			if r.Status() != StatusOk && r.Message() != "" {
				fmt.Fprintf(warnings, "WARNING: %s\n", r.Message())
			}
		}
		r.Free()
		return nil
	}
	s.top = &node{result: r, prev: s.top}
	if validate != nil {
		if !validate(s, expected) {
			return nil
		}
		return r
	}
	if r == nil {
		fmt.Fprintln(warnings, "ERROR: nil result")
		return nil
	}
	if r.Status() != StatusOk && r.Message() != "" {
		fmt.Fprintf(warnings, "WARNING: %s\n", r.Message())
	}
	return r
}

// Item pushes the Result and returns its first item, or nil when there is
// none or validation failed.
func (s *Stack) Item(r *Result, validate Validator, expected Kind) *Item {
	items := s.Items(r, validate, expected)
	return items.Next(1)
}

// Items pushes the Result and returns an iterator over its items; the
// iterator is empty when validation failed.
func (s *Stack) Items(r *Result, validate Validator, expected Kind) Items {
	if s.Push(r, validate, expected) == nil {
		return Items{}
	}
	return r.Items()
}

// Pop detaches and returns the named Result, or the top when target is
// nil. The caller owns the returned Result and must free it. Popping from
// an empty stack or naming an absent Result returns nil; callers treat
// that as nothing to free.
func (s *Stack) Pop(target *Result) *Result {
	if s == nil {
		return nil
	}
	link := &s.top
	if target != nil {
		for *link != nil && (*link).result != target {
			link = &(*link).prev
		}
	}
	if *link == nil {
		return nil
	}
	detached := *link
	*link = detached.prev
	return detached.result
}

// Free pops and frees every remaining Result. Idempotent.
func (s *Stack) Free() {
	if s == nil {
		return
	}
	for s.top != nil {
		s.Pop(nil).Free()
	}
}

// Size counts the registered Results by walking the chain; diagnostics
// only, not a hot path.
func (s *Stack) Size() int {
	if s == nil {
		return 0
	}
	count := 0
	for n := s.top; n != nil; n = n.prev {
		count++
	}
	return count
}

// NewFailFast builds the default validator: any status or kind mismatch is
// a programming error in the calling code, so it reports expected versus
// actual to out, frees the whole stack, and exits. The exit hook makes the
// fatal path testable; the diagnostic is formatted per call, there is no
// shared buffer.
func NewFailFast(out io.Writer, exit func(int)) Validator {
	return func(s *Stack, expected Kind) bool {
		r := s.Top()
		if r == nil {
			fmt.Fprintln(out, "ERROR: nil result")
			s.Free()
			exit(1)
			return false
		}
		if r.Status() != StatusOk {
			fmt.Fprintf(out, "ERROR: %s\n", r.Message())
			s.Free()
			exit(1)
			return false
		}
		items := r.Items()
		for item := items.Next(1); item != nil; item = items.Next(1) {
			if item.Kind()&expected == 0 {
				fmt.Fprintf(out, "ERROR: unexpected value kind %s (expected %s)\n", item.Kind(), expected)
				s.Free()
				exit(1)
				return false
			}
		}
		return true
	}
}

// FailFast is the operational instance of NewFailFast: diagnostics to
// stderr, then the process terminates. Continuing past a shape mismatch
// would interpret storage as the wrong type.
var FailFast = NewFailFast(os.Stderr, os.Exit)
