package token

// Keywords maps reserved words (including primitive type names and
// annotation markers) to their token kinds. Lookup is exact length plus
// byte match, performed by the lexer after an identifier scan.
var Keywords = map[string]Kind{
	"var":       VAR,
	"const":     CONST,
	"class":     CLASS,
	"function":  FUNCTION,
	"public":    PUBLIC,
	"private":   PRIVATE,
	"protected": PROTECTED,
	"if":        IF,
	"else":      ELSE,
	"for":       FOR,
	"while":     WHILE,
	"return":    RETURN,
	"break":     BREAK,
	"continue":  CONTINUE,
	"true":      TRUE,
	"false":     FALSE,
	"i8":        I8,
	"i16":       I16,
	"i32":       I32,
	"i64":       I64,
	"u8":        U8,
	"u16":       U16,
	"u32":       U32,
	"u64":       U64,
	"f32":       F32,
	"f64":       F64,
	"string":    STRING,
	"boolean":   BOOLEAN,
	"void":      VOID,
	"auto":      AUTO,
	"import":    IMPORT,
	"from":      FROM,
	"new":       NEW,
	"self":      SELF,
	"static":    STATIC,
	"inline":    INLINE,
	"Ptr":       PTR,

	"@packed":     ANNOT_PACKED,
	"@aligned":    ANNOT_ALIGNED,
	"@deprecated": ANNOT_DEPRECATED,
	"@pure":       ANNOT_PURE,
}

// SingleCharTokens resolves single-byte operators and punctuation. UNKNOWN
// entries mean the byte is not a token on its own.
var SingleCharTokens [256]Kind

func init() {
	for i := range SingleCharTokens {
		SingleCharTokens[i] = UNKNOWN
	}
	SingleCharTokens['('] = LEFT_PAREN
	SingleCharTokens[')'] = RIGHT_PAREN
	SingleCharTokens['{'] = LEFT_BRACE
	SingleCharTokens['}'] = RIGHT_BRACE
	SingleCharTokens['['] = LEFT_BRACKET
	SingleCharTokens[']'] = RIGHT_BRACKET
	SingleCharTokens[','] = COMMA
	SingleCharTokens[':'] = COLON
	SingleCharTokens[';'] = SEMICOLON
	SingleCharTokens['?'] = QUESTION
	SingleCharTokens['.'] = DOT
	SingleCharTokens['+'] = PLUS
	SingleCharTokens['-'] = MINUS
	SingleCharTokens['*'] = STAR
	SingleCharTokens['/'] = SLASH
	SingleCharTokens['%'] = PERCENT
	SingleCharTokens['&'] = AMPERSAND
	SingleCharTokens['|'] = PIPE
	SingleCharTokens['^'] = CARET
	SingleCharTokens['~'] = TILDE
	SingleCharTokens['!'] = BANG
	SingleCharTokens['<'] = LESS
	SingleCharTokens['>'] = GREATER
	SingleCharTokens['='] = EQUAL
}

// TwoCharTokens resolves two-byte operators. The lexer tries three-byte
// sequences first, then these, then SingleCharTokens (maximal munch).
var TwoCharTokens = map[string]Kind{
	"<<": LEFT_SHIFT,
	">>": RIGHT_SHIFT,
	"&&": AND,
	"||": OR,
	"==": EQUAL_EQUAL,
	"!=": BANG_EQUAL,
	"<=": LESS_EQUAL,
	">=": GREATER_EQUAL,
	"+=": PLUS_EQUAL,
	"-=": MINUS_EQUAL,
	"*=": STAR_EQUAL,
	"/=": SLASH_EQUAL,
	"%=": PERCENT_EQUAL,
	"&=": AND_EQUAL,
	"|=": OR_EQUAL,
	"^=": XOR_EQUAL,
	"->": ARROW,
}

// ThreeCharTokens resolves three-byte operators.
var ThreeCharTokens = map[string]Kind{
	"<<=": LEFT_SHIFT_EQUAL,
	">>=": RIGHT_SHIFT_EQUAL,
}
