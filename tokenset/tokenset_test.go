package tokenset

import (
	"math/rand"
	"testing"

	"github.com/loom-lang/loom/token"
)

var statementStarts = []token.Kind{
	token.IF, token.FOR, token.WHILE, token.RETURN,
	token.VAR, token.CONST, token.BREAK, token.CONTINUE,
}

func TestContains(t *testing.T) {
	for _, kind := range statementStarts {
		if !Contains(kind, statementStarts) {
			t.Errorf("Contains(%v) = false, want true", kind)
		}
	}
	for _, kind := range []token.Kind{token.CLASS, token.IDENTIFIER, token.EOF, token.PLUS} {
		if Contains(kind, statementStarts) {
			t.Errorf("Contains(%v) = true, want false", kind)
		}
	}
}

func TestContainsEmptySet(t *testing.T) {
	if Contains(token.IF, nil) {
		t.Error("Contains on empty set = true, want false")
	}
	if New().Contains(token.IF) {
		t.Error("Set.Contains on empty set = true, want false")
	}
}

// TestBackendsAgree probes every kind value against randomized sets of
// every size crossing the packed-word boundary, requiring the packed and
// scalar backends to answer identically.
func TestBackendsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for size := 0; size <= 20; size++ {
		set := make([]token.Kind, size)
		for i := range set {
			set[i] = token.Kind(rng.Intn(90))
		}

		for probe := 0; probe < 256; probe++ {
			kind := token.Kind(probe)
			scalar := containsScalar(kind, set)
			packed := containsPacked(kind, set)
			if scalar != packed {
				t.Fatalf("size %d, probe %v: scalar=%v packed=%v (set=%v)",
					size, kind, scalar, packed, set)
			}
			if got := New(set...).Contains(kind); got != scalar {
				t.Fatalf("size %d, probe %v: Set.Contains=%v scalar=%v (set=%v)",
					size, kind, got, scalar, set)
			}
		}
	}
}

// TestSetBackendSelection verifies Set.Contains honors the backend switch
// chosen at init, answering identically on the packed and scalar routes.
func TestSetBackendSelection(t *testing.T) {
	saved := usePacked
	defer func() { usePacked = saved }()

	s := New(statementStarts...)
	for probe := 0; probe < 256; probe++ {
		kind := token.Kind(probe)
		usePacked = true
		packed := s.Contains(kind)
		usePacked = false
		scalar := s.Contains(kind)
		if packed != scalar {
			t.Errorf("probe %v: packed=%v scalar=%v", kind, packed, scalar)
		}
		if want := containsScalar(kind, statementStarts); scalar != want {
			t.Errorf("probe %v: Set.Contains=%v, want %v", kind, scalar, want)
		}
	}
}

// TestPaddingNeverMatches pins the tail-padding rule: a partial final word
// must not report kinds that are only present as padding.
func TestPaddingNeverMatches(t *testing.T) {
	set := []token.Kind{token.IF}
	for probe := 0; probe < 256; probe++ {
		kind := token.Kind(probe)
		want := kind == token.IF
		if got := containsPacked(kind, set); got != want {
			t.Errorf("probe %d: containsPacked = %v, want %v", probe, got, want)
		}
	}
}

func TestSetKinds(t *testing.T) {
	s := New(statementStarts...)
	if len(s.Kinds()) != len(statementStarts) {
		t.Fatalf("Kinds() len = %d, want %d", len(s.Kinds()), len(statementStarts))
	}
}

func BenchmarkContainsPacked(b *testing.B) {
	for i := 0; i < b.N; i++ {
		containsPacked(token.SEMICOLON, statementStarts)
	}
}

func BenchmarkContainsScalar(b *testing.B) {
	for i := 0; i < b.N; i++ {
		containsScalar(token.SEMICOLON, statementStarts)
	}
}
