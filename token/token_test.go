package token

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{EOF, "END_OF_FILE"},
		{IDENTIFIER, "IDENTIFIER"},
		{LEFT_SHIFT_EQUAL, "LEFT_SHIFT_EQUAL"},
		{ANNOT_PACKED, "ANNOT_PACKED"},
		{ARROW, "ARROW"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindPredicates(t *testing.T) {
	if !VAR.IsKeyword() || !F32.IsKeyword() || !ANNOT_PURE.IsKeyword() {
		t.Error("keyword kinds must report IsKeyword")
	}
	if IDENTIFIER.IsKeyword() || PLUS.IsKeyword() {
		t.Error("non-keyword kinds must not report IsKeyword")
	}
	if !I8.IsPrimitiveType() || !AUTO.IsPrimitiveType() {
		t.Error("primitive kinds must report IsPrimitiveType")
	}
	if VAR.IsPrimitiveType() || IDENTIFIER.IsPrimitiveType() {
		t.Error("non-primitive kinds must not report IsPrimitiveType")
	}
}

func TestKeywordTable(t *testing.T) {
	tests := map[string]Kind{
		"var":         VAR,
		"const":       CONST,
		"function":    FUNCTION,
		"i32":         I32,
		"boolean":     BOOLEAN,
		"true":        TRUE,
		"@packed":     ANNOT_PACKED,
		"@deprecated": ANNOT_DEPRECATED,
	}
	for text, want := range tests {
		if got, ok := Keywords[text]; !ok || got != want {
			t.Errorf("Keywords[%q] = %v, %v; want %v", text, got, ok, want)
		}
	}
	if _, ok := Keywords["variable"]; ok {
		t.Error("keyword table must only match exact lexemes")
	}
}

func TestOperatorTables(t *testing.T) {
	if SingleCharTokens['+'] != PLUS || SingleCharTokens[';'] != SEMICOLON {
		t.Error("single-char table mismapped")
	}
	if SingleCharTokens['$'] != UNKNOWN {
		t.Error("bytes outside the alphabet must map to UNKNOWN")
	}
	if TwoCharTokens["<<"] != LEFT_SHIFT || TwoCharTokens["->"] != ARROW {
		t.Error("two-char table mismapped")
	}
	if ThreeCharTokens[">>="] != RIGHT_SHIFT_EQUAL {
		t.Error("three-char table mismapped")
	}
}

func TestListPushAndText(t *testing.T) {
	src := []byte("var x")
	list := NewList(len(src))

	list.Push(Token{Kind: VAR, Start: 0, Length: 3})
	list.Push(Token{Kind: IDENTIFIER, Start: 4, Length: 1})

	if list.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", list.Len())
	}
	if got := string(list.Text(src, 0)); got != "var" {
		t.Errorf("Text(0) = %q, want \"var\"", got)
	}
	if diff := cmp.Diff(Token{Kind: IDENTIFIER, Start: 4, Length: 1}, list.At(1)); diff != "" {
		t.Errorf("At(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestLineCol(t *testing.T) {
	// Offsets:  0123 456 789
	// Source:  "ab\n cd\n\nef"
	list := NewList(10)
	list.MarkLine(3)
	list.MarkLine(7)
	list.MarkLine(8)

	tests := []struct {
		offset    uint32
		line, col uint32
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{4, 2, 2},
		{7, 3, 1},
		{8, 4, 1},
		{9, 4, 2},
	}
	for _, tt := range tests {
		line, col := list.LineCol(tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("LineCol(%d) = %d:%d, want %d:%d",
				tt.offset, line, col, tt.line, tt.col)
		}
	}
}

func TestFlagsString(t *testing.T) {
	flags := FlagUnterminatedString | FlagInvalidEscape
	if !flags.Has(FlagUnterminatedString) || !flags.Has(FlagInvalidEscape) {
		t.Error("Has must report set flags")
	}
	if flags.Has(FlagInvalidExponent) {
		t.Error("Has must not report unset flags")
	}
	s := flags.String()
	if s == "" {
		t.Error("String of set flags must not be empty")
	}
}
