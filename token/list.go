package token

import "sort"

// List is the structure-of-arrays token sequence produced by the lexer. The
// parallel slices always have equal length and are insertion-ordered.
// LineStarts holds the byte offset following each newline (index 0 is the
// implicit start of line 1) and stays sorted, enabling O(log n) line/column
// lookup for any byte offset.
type List struct {
	Kinds   []Kind
	Starts  []uint32
	Lengths []uint16
	Flags   []Flags

	LineStarts []uint32
}

// NewList returns a list with capacity hints of roughly one token per
// four source bytes, which tracks typical source density closely enough
// to avoid most growth reallocations.
func NewList(srcLen int) *List {
	return &List{
		Kinds:      make([]Kind, 0, srcLen/4+1),
		Starts:     make([]uint32, 0, srcLen/4+1),
		Lengths:    make([]uint16, 0, srcLen/4+1),
		Flags:      make([]Flags, 0, srcLen/4+1),
		LineStarts: append(make([]uint32, 0, srcLen/40+1), 0),
	}
}

// Len returns the number of tokens in the list.
func (l *List) Len() int { return len(l.Kinds) }

// Push appends a token.
func (l *List) Push(t Token) {
	l.Kinds = append(l.Kinds, t.Kind)
	l.Starts = append(l.Starts, t.Start)
	l.Lengths = append(l.Lengths, t.Length)
	l.Flags = append(l.Flags, t.Flags)
}

// At reassembles the token at index i.
func (l *List) At(i int) Token {
	return Token{
		Kind:   l.Kinds[i],
		Start:  l.Starts[i],
		Length: l.Lengths[i],
		Flags:  l.Flags[i],
	}
}

// Text returns the raw source slice for token i. The returned slice aliases
// src; callers that need the text beyond the life of the buffer must copy.
func (l *List) Text(src []byte, i int) []byte {
	start := l.Starts[i]
	return src[start : start+uint32(l.Lengths[i])]
}

// LineCol converts a byte offset into a 1-based line and column using an
// upper-bound search over LineStarts.
func (l *List) LineCol(offset uint32) (line, col uint32) {
	i := sort.Search(len(l.LineStarts), func(i int) bool {
		return l.LineStarts[i] > offset
	})
	return uint32(i), offset - l.LineStarts[i-1] + 1
}

// MarkLine records the start offset of a new line. Offsets must be pushed in
// increasing order; the lexer encounters newlines front to back so this holds
// by construction.
func (l *List) MarkLine(offset uint32) {
	l.LineStarts = append(l.LineStarts, offset)
}
