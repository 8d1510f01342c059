// Package lexer converts raw source bytes into a token stream.
//
// The lexer is table driven: a 256-entry classification table built at init
// time routes every byte to one scanner (identifier, number, string,
// operator) without per-byte branching on character ranges. Tokens carry
// byte offsets into the source rather than copies of their text, so the
// token stream stays compact and the source buffer is the single owner of
// all lexeme bytes.
package lexer

import (
	"errors"
	"log/slog"
	"math"
	"os"

	"github.com/loom-lang/loom/internal/invariant"
	"github.com/loom-lang/loom/token"
)

// ErrSourceTooLarge is returned by New when the input exceeds the 4 GiB
// addressable by 32-bit token offsets.
var ErrSourceTooLarge = errors.New("lexer: source exceeds 4 GiB offset limit")

// maxSourceLen is a var so tests can exercise the limit without a 4 GiB
// allocation.
var maxSourceLen = math.MaxUint32

// class is the coarse character classification used to dispatch scanners.
type class uint8

const (
	classOther class = iota
	classSpace
	classSlash
	classStar
	classIdentStart
	classDigit
	classQuote
)

// classTable maps every byte value to its scanner class.
var classTable [256]class

func init() {
	for _, c := range []byte{' ', '\t', '\r', '\n'} {
		classTable[c] = classSpace
	}
	classTable['/'] = classSlash
	classTable['*'] = classStar
	for c := byte('a'); c <= 'z'; c++ {
		classTable[c] = classIdentStart
	}
	for c := byte('A'); c <= 'Z'; c++ {
		classTable[c] = classIdentStart
	}
	classTable['_'] = classIdentStart
	classTable['@'] = classIdentStart
	for c := byte('0'); c <= '9'; c++ {
		classTable[c] = classDigit
	}
	classTable['"'] = classQuote
}

// Option configures a Lexer.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger overrides the default stderr debug logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Lexer scans one source buffer. It is not safe for concurrent use.
type Lexer struct {
	src  []byte
	pos  int
	list *token.List

	// Generic-bracket disambiguation state.
	tmpl       tmplState
	angleDepth int

	logger *slog.Logger
}

// New creates a Lexer over src. The source buffer is aliased, not copied;
// callers must not mutate it while tokens are in use.
func New(src []byte, opts ...Option) (*Lexer, error) {
	if len(src) > maxSourceLen {
		return nil, ErrSourceTooLarge
	}

	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = newDebugLogger("LOOM_DEBUG_LEXER")
	}

	return &Lexer{
		src:    src,
		list:   token.NewList(len(src)),
		logger: cfg.logger,
	}, nil
}

// newDebugLogger builds a text logger whose debug level is gated by the
// named environment variable. Timestamps and levels are stripped so traces
// line up with source offsets.
func newDebugLogger(envVar string) *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv(envVar) != "" {
		logLevel = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Tokenize scans the entire source and returns the completed token list.
// Unknown bytes are dropped from the stream after being logged; the list
// always ends with a zero-length END_OF_FILE token.
func (l *Lexer) Tokenize() *token.List {
	for {
		prev := l.pos
		tok := l.Next()
		if tok.Kind == token.EOF {
			break
		}
		invariant.Invariant(l.pos > prev, "lexer must advance past offset %d", prev)
		if tok.Kind == token.UNKNOWN {
			l.logger.Debug("dropping unknown byte",
				"offset", tok.Start,
				"byte", string(l.src[tok.Start]))
			continue
		}
		l.list.Push(tok)
	}

	l.list.Push(token.Token{
		Kind:   token.EOF,
		Start:  uint32(len(l.src)),
		Length: 0,
	})
	return l.list
}

// Next scans and returns the next token, including UNKNOWN tokens that
// Tokenize would drop. At end of input it returns EOF indefinitely.
func (l *Lexer) Next() token.Token {
	l.skipWhitespaceAndComments()
	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Start: uint32(len(l.src))}
	}

	start := l.pos
	var tok token.Token
	switch classTable[l.src[l.pos]] {
	case classIdentStart:
		tok = l.scanIdentifier(start)
	case classDigit:
		tok = l.scanNumber(start)
	case classQuote:
		tok = l.scanString(start)
	default:
		tok = l.scanOperator(start)
	}

	l.observeToken(tok.Kind)
	return tok
}

// Peek returns the next token without consuming it. Line starts recorded
// while skipping ahead are rolled back so the following Next does not mark
// the same newlines twice.
func (l *Lexer) Peek() token.Token {
	savedPos := l.pos
	savedTmpl := l.tmpl
	savedDepth := l.angleDepth
	savedLines := len(l.list.LineStarts)
	tok := l.Next()
	l.pos = savedPos
	l.tmpl = savedTmpl
	l.angleDepth = savedDepth
	l.list.LineStarts = l.list.LineStarts[:savedLines]
	return tok
}

// skipWhitespaceAndComments advances past whitespace, line comments and
// block comments, recording a line start after every newline so that later
// diagnostics can map offsets back to line and column.
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch classTable[c] {
		case classSpace:
			l.pos++
			if c == '\n' {
				l.list.MarkLine(uint32(l.pos))
			}
		case classSlash:
			if l.pos+1 >= len(l.src) {
				return
			}
			switch l.src[l.pos+1] {
			case '/':
				l.skipLineComment()
			case '*':
				l.skipBlockComment()
			default:
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	l.pos += 2
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

// skipBlockComment consumes through the closing */. An unterminated block
// comment silently runs to end of input.
func (l *Lexer) skipBlockComment() {
	l.pos += 2
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		l.pos++
		if c == '\n' {
			l.list.MarkLine(uint32(l.pos))
			continue
		}
		if c == '*' && l.pos < len(l.src) && l.src[l.pos] == '/' {
			l.pos++
			return
		}
	}
}

// scanIdentifier reads an identifier, keyword or @annotation starting at
// start. Keywords and annotations are resolved through a single table
// lookup on the full lexeme.
func (l *Lexer) scanIdentifier(start int) token.Token {
	var flags token.Flags

	if l.src[l.pos] == '@' {
		l.pos++
		if l.pos >= len(l.src) || !isIdentByte(l.src[l.pos]) || isDigitByte(l.src[l.pos]) {
			flags |= token.FlagInvalidIdentifierStart
		}
	}
	for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) {
		next := l.src[l.pos]
		if classTable[next] == classOther && token.SingleCharTokens[next] == token.UNKNOWN {
			flags |= token.FlagInvalidIdentifierChar
		}
	}

	kind := token.IDENTIFIER
	if kw, ok := token.Keywords[string(l.src[start:l.pos])]; ok {
		kind = kw
	}

	l.logger.Debug("scanned identifier",
		"text", string(l.src[start:l.pos]),
		"kind", kind.String())

	return l.make(kind, start, flags)
}

// scanNumber reads a numeric literal: hex (0x), binary (0b), or decimal
// with optional fraction and exponent. Malformed shapes still produce a
// NUM_LITERAL token, with the problem recorded in the token flags.
func (l *Lexer) scanNumber(start int) token.Token {
	var flags token.Flags

	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) {
		switch l.src[l.pos+1] {
		case 'x', 'X':
			l.pos += 2
			for l.pos < len(l.src) && isHexByte(l.src[l.pos]) {
				l.pos++
			}
			return l.make(token.NUM_LITERAL, start, 0)
		case 'b', 'B':
			l.pos += 2
			for l.pos < len(l.src) && (l.src[l.pos] == '0' || l.src[l.pos] == '1') {
				l.pos++
			}
			return l.make(token.NUM_LITERAL, start, 0)
		}
	}

	seenDot := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isDigitByte(c) {
			l.pos++
			continue
		}
		if c == '.' && l.pos+1 < len(l.src) && isDigitByte(l.src[l.pos+1]) {
			if seenDot {
				flags |= token.FlagMultipleDecimalPoints
			}
			seenDot = true
			l.pos++
			continue
		}
		break
	}

	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.src) || !isDigitByte(l.src[l.pos]) {
			flags |= token.FlagInvalidExponent
			return l.make(token.NUM_LITERAL, start, flags)
		}
		for l.pos < len(l.src) && isDigitByte(l.src[l.pos]) {
			l.pos++
		}
	}

	return l.make(token.NUM_LITERAL, start, flags)
}

// scanString reads a double-quoted string literal. Escape sequences are
// validated but not decoded here; decoding is the consumer's job since the
// token only records offsets. The scan stops at the closing quote, at the
// first invalid escape, or at an unescaped newline or end of input, the
// latter cases recording the problem in the token flags.
func (l *Lexer) scanString(start int) token.Token {
	var flags token.Flags
	l.pos++ // opening quote

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\n' {
			// Unescaped newline ends the token but is not part of it.
			flags |= token.FlagUnterminatedString
			return l.make(token.STR_LITERAL, start, flags)
		}
		l.pos++
		switch c {
		case '"':
			return l.make(token.STR_LITERAL, start, flags)
		case '\\':
			if l.pos >= len(l.src) {
				break
			}
			esc := l.src[l.pos]
			l.pos++
			switch esc {
			case 'n', 't', 'r', '\\', '"', '0':
			case 'x':
				if l.pos+1 < len(l.src) && isHexByte(l.src[l.pos]) && isHexByte(l.src[l.pos+1]) {
					l.pos += 2
				} else {
					flags |= token.FlagInvalidEscape
					return l.make(token.STR_LITERAL, start, flags)
				}
			default:
				flags |= token.FlagInvalidEscape
				return l.make(token.STR_LITERAL, start, flags)
			}
		}
	}

	flags |= token.FlagUnterminatedString
	return l.make(token.STR_LITERAL, start, flags)
}

// scanOperator matches the longest operator at start, trying three-byte,
// then two-byte, then single-byte forms. Inside generic-bracket context a
// '>' is always emitted as a single GREATER so nested generics close one
// bracket at a time.
func (l *Lexer) scanOperator(start int) token.Token {
	if l.src[start] == '>' && l.inTemplate() {
		l.pos++
		return l.make(token.GREATER, start, 0)
	}

	if start+3 <= len(l.src) {
		if kind, ok := token.ThreeCharTokens[string(l.src[start:start+3])]; ok {
			l.pos += 3
			return l.make(kind, start, 0)
		}
	}
	if start+2 <= len(l.src) {
		if kind, ok := token.TwoCharTokens[string(l.src[start:start+2])]; ok {
			l.pos += 2
			return l.make(kind, start, 0)
		}
	}

	l.pos++
	kind := token.SingleCharTokens[l.src[start]]
	if kind == token.UNKNOWN {
		l.logger.Debug("unknown byte",
			"offset", start,
			"byte", string(l.src[start]))
	}
	return l.make(kind, start, 0)
}

func (l *Lexer) make(kind token.Kind, start int, flags token.Flags) token.Token {
	invariant.Postcondition(l.pos > start, "token at offset %d must have nonzero width", start)
	return token.Token{
		Kind:   kind,
		Start:  uint32(start),
		Length: uint16(l.pos - start),
		Flags:  flags,
	}
}

func isIdentByte(c byte) bool {
	return classTable[c] == classIdentStart && c != '@' || isDigitByte(c)
}

func isDigitByte(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexByte(c byte) bool {
	return isDigitByte(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
