package headers

import (
	"strings"

	"github.com/sjanel/aeronet-go/buffer"
)

// Range is a half-open [Start, End) byte range, relative to the live
// region of the owning buffer.Bytes (i.e. stable across EraseFront calls,
// but invalidated the instant the buffer's live region itself shifts the
// bytes the range points at — which is exactly what Merge does, and why
// Merge is the one piece of code allowed to rewrite ranges after a splice).
type Range struct {
	Start, End int
}

func (r Range) Len() int { return r.End - r.Start }

// Field is one parsed header occurrence's current location.
type Field struct {
	Name  Range
	Value Range
}

// List is an insertion-ordered header map whose names and values are
// borrowed byte ranges into a shared buffer.Bytes. It is built once by the
// HTTP/1.1 head parser and is live only for the duration of one request.
type List struct {
	buf    *buffer.Bytes
	fields []Field
}

// NewList returns a List borrowing from buf.
func NewList(buf *buffer.Bytes) *List {
	return &List{buf: buf}
}

// Len returns the number of distinct header names currently present.
func (l *List) Len() int { return len(l.fields) }

// Name returns the header name text at index i.
func (l *List) Name(i int) string {
	r := l.fields[i].Name
	return string(l.buf.Slice(r.Start, r.End))
}

// Value returns the header value text at index i.
func (l *List) Value(i int) string {
	r := l.fields[i].Value
	return string(l.buf.Slice(r.Start, r.End))
}

// Fields exposes the raw field table (read-only use expected).
func (l *List) Fields() []Field { return l.fields }

// indexOf returns the index of an existing field with the given name
// (case-insensitive), or -1.
func (l *List) indexOf(name string) int {
	for i := range l.fields {
		if strings.EqualFold(l.Name(i), name) {
			return i
		}
	}
	return -1
}

// Get returns the merged value for name, or "" and false if absent.
func (l *List) Get(name string) (string, bool) {
	i := l.indexOf(name)
	if i < 0 {
		return "", false
	}
	return l.Value(i), true
}

// ErrDuplicateForbidden is returned by Add when a header whose policy
// forbids duplicates (SentinelReject) is seen a second time.
type ErrDuplicateForbidden struct{ Name string }

func (e *ErrDuplicateForbidden) Error() string {
	return "headers: duplicate " + e.Name + " forbidden"
}

// Add records a freshly parsed header occurrence at [nameRange, valueRange)
// (absolute offsets into buf's current live region). If name was already
// seen, it merges the new value into the existing field per the policy
// table and, for the list/cookie/space sentinels, performs the in-place
// splice of buf so every previously recorded Range for fields positioned
// after the merge point stays correct.
//
// Add returns the number of bytes the splice inserted into buf's live
// region (0 if no splice happened) and the offset it was inserted at, so
// a caller still holding byte ranges into buf's *old* snapshot — such as
// a parser's precomputed header-line table — can shift the ranges of
// everything at or past that offset before trusting them again.
func (l *List) Add(nameRange, valueRange Range) (shift int, insertAt int, err error) {
	name := string(l.buf.Slice(nameRange.Start, nameRange.End))
	idx := l.indexOf(name)

	if idx < 0 {
		l.fields = append(l.fields, Field{Name: nameRange, Value: valueRange})
		return 0, 0, nil
	}

	sentinel := Policy(name)
	if sentinel == SentinelReject {
		return 0, 0, &ErrDuplicateForbidden{Name: name}
	}

	existing := l.fields[idx].Value

	if sentinel == SentinelOverride {
		l.fields[idx].Value = valueRange
		return 0, 0, nil
	}

	if existing.Len() == 0 {
		l.fields[idx].Value = valueRange
		return 0, 0, nil
	}
	if valueRange.Len() == 0 {
		return 0, 0, nil
	}

	delta, at := l.mergeSplice(idx, byte(sentinel), valueRange)
	return delta, at, nil
}

// mergeSplice performs the shift-and-copy in-place merge: it inserts
// `sep` + the new value's bytes immediately after the existing value of
// field idx, then rewrites every Range (across all fields, including the
// Name ranges of fields recorded after the insertion point) that lies at
// or past the insertion point by the shift delta. It returns that delta
// and the insertion offset so the caller can apply the same shift to any
// byte ranges it holds outside of l.fields (e.g. a parser's own
// not-yet-consumed header-line table).
func (l *List) mergeSplice(idx int, sep byte, newValue Range) (delta, insertAt int) {
	existing := l.fields[idx].Value
	insertAt = existing.End
	newLen := newValue.Len()
	delta = 1 + newLen // separator byte + new value bytes

	// Capture the new value bytes before the splice moves them.
	tmp := make([]byte, newLen)
	copy(tmp, l.buf.Slice(newValue.Start, newValue.End))

	l.buf.Splice(insertAt, delta)

	window := l.buf.Slice(insertAt, insertAt+delta)
	window[0] = sep
	copy(window[1:], tmp)

	// Rewrite every range whose Start lies at or after the insertion
	// point: the merged field's own End is adjusted separately below
	// since its Start precedes insertAt but its End must grow to cover
	// the newly spliced-in bytes.
	shift := func(r *Range) {
		if r.Start >= insertAt {
			r.Start += delta
			r.End += delta
		}
	}

	for i := range l.fields {
		if i == idx {
			continue
		}
		shift(&l.fields[i].Name)
		shift(&l.fields[i].Value)
	}

	l.fields[idx].Value.End += delta
	return delta, insertAt
}
