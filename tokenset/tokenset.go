// Package tokenset answers "is this token kind one of these kinds" for the
// small fixed candidate sets the parser probes in its hot loops.
//
// Two backends produce identical results: a portable scalar scan and a
// packed-word path that compares eight kinds per 64-bit operation. The
// packed path is selected at init on 64-bit targets; tests cross-check the
// two so whichever backend is active carries the same semantics.
package tokenset

import (
	"runtime"

	"github.com/loom-lang/loom/token"
)

// padByte fills the tail of a packed word. It is outside the Kind value
// space, so padding can never equal a real candidate.
const padByte = 0xFF

const (
	lowBytes  = 0x0101010101010101
	highBytes = 0x8080808080808080
)

var (
	contains  func(token.Kind, []token.Kind) bool
	usePacked bool
)

func init() {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		usePacked = true
		contains = containsPacked
	default:
		contains = containsScalar
	}
}

// Contains reports whether kind appears in set.
func Contains(kind token.Kind, set []token.Kind) bool {
	return contains(kind, set)
}

func containsScalar(kind token.Kind, set []token.Kind) bool {
	for _, k := range set {
		if k == kind {
			return true
		}
	}
	return false
}

// containsPacked compares eight candidates at a time: the probe kind is
// broadcast across a word, XORed against packed candidates, and a zero
// byte in the result signals a match.
func containsPacked(kind token.Kind, set []token.Kind) bool {
	if kind == padByte {
		return containsScalar(kind, set)
	}
	broadcast := uint64(kind) * lowBytes

	i := 0
	for ; i+8 <= len(set); i += 8 {
		if hasZeroByte(packFull(set[i:]) ^ broadcast) {
			return true
		}
	}
	if i < len(set) {
		if hasZeroByte(packTail(set[i:]) ^ broadcast) {
			return true
		}
	}
	return false
}

func packFull(kinds []token.Kind) uint64 {
	_ = kinds[7]
	return uint64(kinds[0]) |
		uint64(kinds[1])<<8 |
		uint64(kinds[2])<<16 |
		uint64(kinds[3])<<24 |
		uint64(kinds[4])<<32 |
		uint64(kinds[5])<<40 |
		uint64(kinds[6])<<48 |
		uint64(kinds[7])<<56
}

func packTail(kinds []token.Kind) uint64 {
	word := uint64(0)
	for i := 0; i < 8; i++ {
		b := uint64(padByte)
		if i < len(kinds) {
			b = uint64(kinds[i])
		}
		word |= b << (8 * i)
	}
	return word
}

// hasZeroByte reports whether any byte of v is zero.
func hasZeroByte(v uint64) bool {
	return (v-lowBytes)&^v&highBytes != 0
}

// Set is a candidate set packed once for repeated probes. The parser keeps
// one Set per production whose leading tokens it tests on every statement.
type Set struct {
	kinds []token.Kind
	words []uint64
}

// New packs kinds into a reusable Set.
func New(kinds ...token.Kind) Set {
	words := make([]uint64, 0, (len(kinds)+7)/8)
	i := 0
	for ; i+8 <= len(kinds); i += 8 {
		words = append(words, packFull(kinds[i:]))
	}
	if i < len(kinds) {
		words = append(words, packTail(kinds[i:]))
	}
	return Set{kinds: kinds, words: words}
}

// Contains reports whether kind is in the set, using the backend selected
// at init.
func (s Set) Contains(kind token.Kind) bool {
	if !usePacked || kind == padByte || len(s.words) == 0 {
		return containsScalar(kind, s.kinds)
	}
	broadcast := uint64(kind) * lowBytes
	for _, word := range s.words {
		if hasZeroByte(word ^ broadcast) {
			return true
		}
	}
	return false
}

// Kinds returns the candidate kinds in insertion order.
func (s Set) Kinds() []token.Kind {
	return s.kinds
}
