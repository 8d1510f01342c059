// Package token defines the lexical vocabulary of the loom language: token
// kinds, per-token diagnostic flags, and the structure-of-arrays token list
// produced by the lexer and consumed by the parser.
package token

// Kind identifies a lexical token class. It fits in a byte so the parser can
// narrow it into IR operator payloads.
type Kind uint8

const (
	// Special tokens
	EOF Kind = iota
	UNKNOWN

	// Literals
	NUM_LITERAL
	STR_LITERAL
	TRUE
	FALSE

	IDENTIFIER

	// Declaration keywords
	VAR
	CONST
	CLASS
	FUNCTION

	// Visibility
	PUBLIC
	PRIVATE
	PROTECTED

	// Control flow
	IF
	ELSE
	FOR
	WHILE
	RETURN
	BREAK
	CONTINUE

	// Primitive type names
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	STRING
	BOOLEAN
	VOID
	AUTO

	// Modules and misc keywords
	IMPORT
	FROM
	NEW
	SELF
	STATIC
	INLINE
	PTR

	// Punctuation
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	LEFT_BRACKET
	RIGHT_BRACKET
	COMMA
	COLON
	SEMICOLON
	QUESTION
	DOT

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	AMPERSAND
	PIPE
	CARET
	TILDE
	BANG
	LESS
	GREATER
	LEFT_SHIFT
	RIGHT_SHIFT
	AND
	OR
	EQUAL_EQUAL
	BANG_EQUAL
	LESS_EQUAL
	GREATER_EQUAL
	EQUAL
	PLUS_EQUAL
	MINUS_EQUAL
	STAR_EQUAL
	SLASH_EQUAL
	PERCENT_EQUAL
	AND_EQUAL
	OR_EQUAL
	XOR_EQUAL
	LEFT_SHIFT_EQUAL
	RIGHT_SHIFT_EQUAL

	ARROW

	// Annotations
	ANNOT_PACKED
	ANNOT_ALIGNED
	ANNOT_DEPRECATED
	ANNOT_PURE

	kindCount
)

// Flags is a bitset of soft lexical diagnostics attached to a token. A
// flagged token is still emitted with best-effort boundaries; flags never
// stop tokenization.
type Flags uint8

const (
	FlagUnterminatedString Flags = 1 << iota
	FlagInvalidEscape
	FlagMultipleDecimalPoints
	FlagInvalidExponent
	FlagInvalidIdentifierStart
	FlagInvalidIdentifierChar
)

// Token is a classified, positioned unit of source text. Start and Length
// index into the immutable source buffer handed to the lexer; the text is
// never copied at lex time.
type Token struct {
	Kind   Kind
	Start  uint32
	Length uint16
	Flags  Flags
}

// Has reports whether f contains the given flag.
func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var out string
	add := func(s string) {
		if out != "" {
			out += "|"
		}
		out += s
	}
	if f.Has(FlagUnterminatedString) {
		add("UnterminatedString")
	}
	if f.Has(FlagInvalidEscape) {
		add("InvalidEscapeSequence")
	}
	if f.Has(FlagMultipleDecimalPoints) {
		add("MultipleDecimalPoints")
	}
	if f.Has(FlagInvalidExponent) {
		add("InvalidExponent")
	}
	if f.Has(FlagInvalidIdentifierStart) {
		add("InvalidIdentifierStart")
	}
	if f.Has(FlagInvalidIdentifierChar) {
		add("InvalidIdentifierChar")
	}
	return out
}

// IsKeyword reports whether k is a reserved word. Primitive type names and
// annotations count as keywords since they share the keyword table.
func (k Kind) IsKeyword() bool {
	return k >= VAR && k <= PTR || k >= ANNOT_PACKED && k < kindCount
}

// IsPrimitiveType reports whether k names one of the built-in value types.
func (k Kind) IsPrimitiveType() bool { return k >= I8 && k <= AUTO }

// String returns the canonical name of the token kind.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "END_OF_FILE"
	case UNKNOWN:
		return "UNKNOWN"
	case NUM_LITERAL:
		return "NUM_LITERAL"
	case STR_LITERAL:
		return "STR_LITERAL"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case IDENTIFIER:
		return "IDENTIFIER"
	case VAR:
		return "VAR"
	case CONST:
		return "CONST"
	case CLASS:
		return "CLASS"
	case FUNCTION:
		return "FUNCTION"
	case PUBLIC:
		return "PUBLIC"
	case PRIVATE:
		return "PRIVATE"
	case PROTECTED:
		return "PROTECTED"
	case IF:
		return "IF"
	case ELSE:
		return "ELSE"
	case FOR:
		return "FOR"
	case WHILE:
		return "WHILE"
	case RETURN:
		return "RETURN"
	case BREAK:
		return "BREAK"
	case CONTINUE:
		return "CONTINUE"
	case I8:
		return "I8"
	case I16:
		return "I16"
	case I32:
		return "I32"
	case I64:
		return "I64"
	case U8:
		return "U8"
	case U16:
		return "U16"
	case U32:
		return "U32"
	case U64:
		return "U64"
	case F32:
		return "F32"
	case F64:
		return "F64"
	case STRING:
		return "STRING"
	case BOOLEAN:
		return "BOOLEAN"
	case VOID:
		return "VOID"
	case AUTO:
		return "AUTO"
	case IMPORT:
		return "IMPORT"
	case FROM:
		return "FROM"
	case NEW:
		return "NEW"
	case SELF:
		return "SELF"
	case STATIC:
		return "STATIC"
	case INLINE:
		return "INLINE"
	case PTR:
		return "PTR"
	case LEFT_PAREN:
		return "LEFT_PAREN"
	case RIGHT_PAREN:
		return "RIGHT_PAREN"
	case LEFT_BRACE:
		return "LEFT_BRACE"
	case RIGHT_BRACE:
		return "RIGHT_BRACE"
	case LEFT_BRACKET:
		return "LEFT_BRACKET"
	case RIGHT_BRACKET:
		return "RIGHT_BRACKET"
	case COMMA:
		return "COMMA"
	case COLON:
		return "COLON"
	case SEMICOLON:
		return "SEMICOLON"
	case QUESTION:
		return "QUESTION"
	case DOT:
		return "DOT"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case STAR:
		return "STAR"
	case SLASH:
		return "SLASH"
	case PERCENT:
		return "PERCENT"
	case AMPERSAND:
		return "AMPERSAND"
	case PIPE:
		return "PIPE"
	case CARET:
		return "CARET"
	case TILDE:
		return "TILDE"
	case BANG:
		return "BANG"
	case LESS:
		return "LESS"
	case GREATER:
		return "GREATER"
	case LEFT_SHIFT:
		return "LEFT_SHIFT"
	case RIGHT_SHIFT:
		return "RIGHT_SHIFT"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case EQUAL_EQUAL:
		return "EQUAL_EQUAL"
	case BANG_EQUAL:
		return "BANG_EQUAL"
	case LESS_EQUAL:
		return "LESS_EQUAL"
	case GREATER_EQUAL:
		return "GREATER_EQUAL"
	case EQUAL:
		return "EQUAL"
	case PLUS_EQUAL:
		return "PLUS_EQUAL"
	case MINUS_EQUAL:
		return "MINUS_EQUAL"
	case STAR_EQUAL:
		return "STAR_EQUAL"
	case SLASH_EQUAL:
		return "SLASH_EQUAL"
	case PERCENT_EQUAL:
		return "PERCENT_EQUAL"
	case AND_EQUAL:
		return "AND_EQUAL"
	case OR_EQUAL:
		return "OR_EQUAL"
	case XOR_EQUAL:
		return "XOR_EQUAL"
	case LEFT_SHIFT_EQUAL:
		return "LEFT_SHIFT_EQUAL"
	case RIGHT_SHIFT_EQUAL:
		return "RIGHT_SHIFT_EQUAL"
	case ARROW:
		return "ARROW"
	case ANNOT_PACKED:
		return "ANNOT_PACKED"
	case ANNOT_ALIGNED:
		return "ANNOT_ALIGNED"
	case ANNOT_DEPRECATED:
		return "ANNOT_DEPRECATED"
	case ANNOT_PURE:
		return "ANNOT_PURE"
	default:
		return "UNKNOWN"
	}
}
