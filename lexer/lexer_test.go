package lexer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/loom-lang/loom/token"
)

// tokenExpectation represents an expected token for testing
type tokenExpectation struct {
	Kind token.Kind
	Text string
}

// assertTokens compares actual tokens with expected, providing clear error messages
func assertTokens(t *testing.T, name string, input string, expected []tokenExpectation) {
	t.Helper()

	lx, err := New([]byte(input))
	if err != nil {
		t.Fatalf("%s: New: %v", name, err)
	}
	list := lx.Tokenize()

	var actual []tokenExpectation
	for i := 0; i < list.Len(); i++ {
		actual = append(actual, tokenExpectation{
			Kind: list.Kinds[i],
			Text: string(list.Text([]byte(input), i)),
		})
	}

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("%s: token mismatch (-expected +actual):\n%s", name, diff)
	}
}

func TestSourceTooLarge(t *testing.T) {
	saved := maxSourceLen
	maxSourceLen = 8
	defer func() { maxSourceLen = saved }()

	if _, err := New([]byte("var x = 5;")); err != ErrSourceTooLarge {
		t.Fatalf("expected ErrSourceTooLarge, got %v", err)
	}
	if _, err := New([]byte("var x;")); err != nil {
		t.Fatalf("expected source within limit to lex, got %v", err)
	}
}

func TestEmptyInput(t *testing.T) {
	assertTokens(t, "empty input", "", []tokenExpectation{
		{token.EOF, ""},
	})
}

func TestSimpleDeclaration(t *testing.T) {
	assertTokens(t, "var declaration", "var x = 5;", []tokenExpectation{
		{token.VAR, "var"},
		{token.IDENTIFIER, "x"},
		{token.EQUAL, "="},
		{token.NUM_LITERAL, "5"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	})
}

// TestMaximalMunch verifies that operator matching always prefers the
// longest form, even with no whitespace between operands.
func TestMaximalMunch(t *testing.T) {
	assertTokens(t, "packed operators", "a+=b<<=c>>d", []tokenExpectation{
		{token.IDENTIFIER, "a"},
		{token.PLUS_EQUAL, "+="},
		{token.IDENTIFIER, "b"},
		{token.LEFT_SHIFT_EQUAL, "<<="},
		{token.IDENTIFIER, "c"},
		{token.RIGHT_SHIFT, ">>"},
		{token.IDENTIFIER, "d"},
		{token.EOF, ""},
	})
}

// TestNestedGenericBrackets verifies that the closing brackets of a nested
// generic type lex as two GREATER tokens, never as one RIGHT_SHIFT.
func TestNestedGenericBrackets(t *testing.T) {
	assertTokens(t, "nested generics", "var matrix: Array<Array<f32>>;", []tokenExpectation{
		{token.VAR, "var"},
		{token.IDENTIFIER, "matrix"},
		{token.COLON, ":"},
		{token.IDENTIFIER, "Array"},
		{token.LESS, "<"},
		{token.IDENTIFIER, "Array"},
		{token.LESS, "<"},
		{token.F32, "f32"},
		{token.GREATER, ">"},
		{token.GREATER, ">"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	})
}

// TestShiftAfterIdentifier verifies the bracket automaton does not break
// ordinary shift expressions, which also follow an identifier.
func TestShiftAfterIdentifier(t *testing.T) {
	assertTokens(t, "shift expression", "x << 2 >> y", []tokenExpectation{
		{token.IDENTIFIER, "x"},
		{token.LEFT_SHIFT, "<<"},
		{token.NUM_LITERAL, "2"},
		{token.RIGHT_SHIFT, ">>"},
		{token.IDENTIFIER, "y"},
		{token.EOF, ""},
	})
}

func TestKeywordsAndAnnotations(t *testing.T) {
	assertTokens(t, "annotated class", "@packed class Point { }", []tokenExpectation{
		{token.ANNOT_PACKED, "@packed"},
		{token.CLASS, "class"},
		{token.IDENTIFIER, "Point"},
		{token.LEFT_BRACE, "{"},
		{token.RIGHT_BRACE, "}"},
		{token.EOF, ""},
	})

	assertTokens(t, "keyword prefix stays identifier", "variable iff", []tokenExpectation{
		{token.IDENTIFIER, "variable"},
		{token.IDENTIFIER, "iff"},
		{token.EOF, ""},
	})
}

func TestComments(t *testing.T) {
	input := "// header\nvar x; /* mid\ncomment */ var y;"
	assertTokens(t, "comments skipped", input, []tokenExpectation{
		{token.VAR, "var"},
		{token.IDENTIFIER, "x"},
		{token.SEMICOLON, ";"},
		{token.VAR, "var"},
		{token.IDENTIFIER, "y"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	})
}

func TestNumberLiterals(t *testing.T) {
	assertTokens(t, "number forms", "0xFF 0b1010 3.14 1e-9 42", []tokenExpectation{
		{token.NUM_LITERAL, "0xFF"},
		{token.NUM_LITERAL, "0b1010"},
		{token.NUM_LITERAL, "3.14"},
		{token.NUM_LITERAL, "1e-9"},
		{token.NUM_LITERAL, "42"},
		{token.EOF, ""},
	})
}

func TestNumberFlags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		flag  token.Flags
	}{
		{"multiple decimal points", "1.2.3", token.FlagMultipleDecimalPoints},
		{"bare exponent", "1e", token.FlagInvalidExponent},
		{"signed bare exponent", "2E+", token.FlagInvalidExponent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, err := New([]byte(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			list := lx.Tokenize()
			if list.Kinds[0] != token.NUM_LITERAL {
				t.Fatalf("kind = %v, want NUM_LITERAL", list.Kinds[0])
			}
			if !list.Flags[0].Has(tt.flag) {
				t.Errorf("flags = %v, want %v set", list.Flags[0], tt.flag)
			}
		})
	}
}

func TestStringLiterals(t *testing.T) {
	assertTokens(t, "escapes", `"a\n\t\x41" "b"`, []tokenExpectation{
		{token.STR_LITERAL, `"a\n\t\x41"`},
		{token.STR_LITERAL, `"b"`},
		{token.EOF, ""},
	})
}

func TestStringFlags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		flag  token.Flags
	}{
		{"unterminated at end of input", `"abc`, token.FlagUnterminatedString},
		{"unknown escape", `"\q"`, token.FlagInvalidEscape},
		{"short hex escape", `"\x4"`, token.FlagInvalidEscape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, err := New([]byte(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			list := lx.Tokenize()
			if list.Kinds[0] != token.STR_LITERAL {
				t.Fatalf("kind = %v, want STR_LITERAL", list.Kinds[0])
			}
			if !list.Flags[0].Has(tt.flag) {
				t.Errorf("flags = %v, want %v set", list.Flags[0], tt.flag)
			}
		})
	}
}

func TestInvalidAnnotationStart(t *testing.T) {
	lx, err := New([]byte("@1x"))
	if err != nil {
		t.Fatal(err)
	}
	list := lx.Tokenize()
	if list.Kinds[0] != token.IDENTIFIER {
		t.Fatalf("kind = %v, want IDENTIFIER", list.Kinds[0])
	}
	if !list.Flags[0].Has(token.FlagInvalidIdentifierStart) {
		t.Errorf("flags = %v, want FlagInvalidIdentifierStart set", list.Flags[0])
	}
}

// TestUnknownBytesDropped verifies that bytes outside the language's
// alphabet never reach the token stream.
func TestUnknownBytesDropped(t *testing.T) {
	assertTokens(t, "stray bytes", "a $ # b", []tokenExpectation{
		{token.IDENTIFIER, "a"},
		{token.IDENTIFIER, "b"},
		{token.EOF, ""},
	})
}

func TestLineColumnTracking(t *testing.T) {
	input := "var a;\n\nvar b; // note\nvar c;"
	lx, err := New([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	list := lx.Tokenize()

	wantLines := map[string]uint32{"a": 1, "b": 3, "c": 4}
	src := []byte(input)
	for i := 0; i < list.Len(); i++ {
		if list.Kinds[i] != token.IDENTIFIER {
			continue
		}
		name := string(list.Text(src, i))
		line, _ := list.LineCol(list.Starts[i])
		if line != wantLines[name] {
			t.Errorf("identifier %q: line = %d, want %d", name, line, wantLines[name])
		}
	}

	line, col := list.LineCol(list.Starts[0])
	if line != 1 || col != 1 {
		t.Errorf("first token at %d:%d, want 1:1", line, col)
	}
}

// TestStreamBatchConsistency verifies the streaming interface and Tokenize
// agree, minus the UNKNOWN tokens only Tokenize filters.
func TestStreamBatchConsistency(t *testing.T) {
	input := strings.Repeat("var total: i64 = base + offset * 2;\nif total >= limit { return total; }\n", 50)

	streamLx, err := New([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	var streamKinds []token.Kind
	for {
		tok := streamLx.Next()
		streamKinds = append(streamKinds, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}

	batchLx, err := New([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	list := batchLx.Tokenize()

	if diff := cmp.Diff(streamKinds, list.Kinds); diff != "" {
		t.Errorf("stream/batch kind mismatch (-stream +batch):\n%s", diff)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, err := New([]byte("Array<f32>"))
	if err != nil {
		t.Fatal(err)
	}

	first := lx.Peek()
	if got := lx.Next(); got != first {
		t.Errorf("Next after Peek = %+v, want %+v", got, first)
	}

	// Peek must also preserve the bracket automaton.
	lx.Peek()
	if got := lx.Next(); got.Kind != token.LESS {
		t.Errorf("kind after identifier = %v, want LESS", got.Kind)
	}
}

// TestPeekDoesNotDuplicateLineStarts verifies peeking across a newline
// leaves line tracking untouched, so the real scan records each newline
// exactly once.
func TestPeekDoesNotDuplicateLineStarts(t *testing.T) {
	lx, err := New([]byte("a\nb"))
	if err != nil {
		t.Fatal(err)
	}

	lx.Next()
	lx.Peek()
	list := lx.Tokenize()

	want := []uint32{0, 2}
	if diff := cmp.Diff(want, list.LineStarts); diff != "" {
		t.Errorf("LineStarts mismatch (-want +got):\n%s", diff)
	}
	if line, _ := list.LineCol(2); line != 2 {
		t.Errorf("LineCol(2) line = %d, want 2", line)
	}
}

// TestTokenizeIdempotent verifies re-lexing the text of every token
// reproduces the same kinds, so tokens faithfully span their lexemes.
func TestTokenizeIdempotent(t *testing.T) {
	input := "class Vec { public function dot(other: Vec) -> f64 { return self.x * other.x; } }"
	src := []byte(input)

	lx, err := New(src)
	if err != nil {
		t.Fatal(err)
	}
	list := lx.Tokenize()

	var rebuilt []string
	for i := 0; i < list.Len()-1; i++ {
		rebuilt = append(rebuilt, string(list.Text(src, i)))
	}

	relx, err := New([]byte(strings.Join(rebuilt, " ")))
	if err != nil {
		t.Fatal(err)
	}
	relist := relx.Tokenize()

	if diff := cmp.Diff(list.Kinds, relist.Kinds); diff != "" {
		t.Errorf("re-lex mismatch (-first +second):\n%s", diff)
	}
}
