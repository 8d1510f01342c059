// Package parser builds an IR tree from the lexer's token stream using
// recursive descent with explicit backtracking.
//
// Every production that can fail snapshots the token cursor on entry and
// restores it before reporting failure, so a caller can try an alternative
// production at the same position. Nodes built during a failed attempt are
// simply dropped; nothing from a failed production ever reaches the final
// tree. Inside brace-delimited scopes a failed member or statement is
// downgraded to a recovered skip by resynchronizing on the closing brace.
package parser

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/loom-lang/loom/internal/invariant"
	"github.com/loom-lang/loom/token"
	"github.com/loom-lang/loom/tokenset"
)

// Candidate sets probed on hot paths. Packed once at init.
var (
	visibilityKinds = tokenset.New(token.PUBLIC, token.PRIVATE, token.PROTECTED)
	declStarts      = tokenset.New(token.VAR, token.CONST)
	primitiveTypes  = tokenset.New(
		token.I8, token.I16, token.I32, token.I64,
		token.U8, token.U16, token.U32, token.U64,
		token.F32, token.F64, token.STRING, token.BOOLEAN,
		token.VOID, token.AUTO,
	)

	orOps         = tokenset.New(token.OR)
	andOps        = tokenset.New(token.AND)
	equalityOps   = tokenset.New(token.EQUAL_EQUAL, token.BANG_EQUAL)
	comparisonOps = tokenset.New(token.LESS, token.GREATER)
	termOps       = tokenset.New(token.PLUS, token.MINUS)
	factorOps     = tokenset.New(token.STAR, token.SLASH, token.PERCENT)
	unaryOps      = tokenset.New(token.BANG, token.MINUS)
)

// Tree is the result of a successful parse: the root node plus any syntax
// errors that were recovered via resynchronization along the way.
type Tree struct {
	Root   *Node
	Errors []ParseError
}

// Release detaches the whole tree; see Node.Release.
func (t *Tree) Release() {
	if t != nil {
		t.Root.Release()
	}
}

type parser struct {
	src    []byte
	tokens *token.List
	pos    int

	depth    int
	maxDepth int
	depthHit bool
	inError  bool

	scopes []string
	errors []ParseError
	logger *slog.Logger
}

// Parse builds an IR tree for the token stream. The returned Tree carries
// any errors that resynchronization recovered from; a parse that cannot
// produce a trustworthy tree returns nil and one of ErrNoParse,
// ErrDepthExceeded, or the first recorded ParseError.
func Parse(src []byte, tokens *token.List, opts ...Option) (*Tree, error) {
	if tokens == nil || tokens.Len() == 0 {
		return nil, ErrNoParse
	}

	cfg := config{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = newDebugLogger("LOOM_DEBUG_PARSER")
	}

	p := &parser{
		src:      src,
		tokens:   tokens,
		maxDepth: cfg.maxDepth,
		logger:   cfg.logger,
	}

	root, ok := p.parseClass()
	if p.depthHit {
		return nil, fmt.Errorf("%w (limit %d)", ErrDepthExceeded, p.maxDepth)
	}
	invariant.Postcondition(p.depth == 0, "production depth must unwind to zero, got %d", p.depth)
	if !ok || p.inError {
		if len(p.errors) > 0 {
			return nil, &p.errors[0]
		}
		return nil, ErrNoParse
	}
	return &Tree{Root: root, Errors: p.errors}, nil
}

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

// Cursor helpers. current past the end behaves as EOF so productions never
// index out of range.

func (p *parser) mark() int { return p.pos }

func (p *parser) restore(m int) { p.pos = m }

func (p *parser) current() token.Kind {
	if p.pos >= p.tokens.Len() {
		return token.EOF
	}
	return p.tokens.Kinds[p.pos]
}

func (p *parser) at(kind token.Kind) bool { return p.current() == kind }

func (p *parser) match(kind token.Kind) bool {
	if p.at(kind) {
		p.pos++
		return true
	}
	return false
}

// matchAny consumes the current token if its kind is in set, returning the
// matched kind.
func (p *parser) matchAny(set tokenset.Set) (token.Kind, bool) {
	kind := p.current()
	if kind != token.EOF && set.Contains(kind) {
		p.pos++
		return kind, true
	}
	return token.EOF, false
}

// text copies the lexeme of token i out of the source buffer. Nodes own
// their text; they never alias the buffer.
func (p *parser) text(i int) string {
	return string(p.tokens.Text(p.src, i))
}

func (p *parser) offset() uint32 {
	if p.pos >= p.tokens.Len() {
		return uint32(len(p.src))
	}
	return p.tokens.Starts[p.pos]
}

// Depth ceiling. enter returns false once nesting passes the limit; the
// failure then unwinds like any other and Parse reports ErrDepthExceeded.

func (p *parser) enter() bool {
	if p.depth >= p.maxDepth {
		p.depthHit = true
		return false
	}
	p.depth++
	return true
}

func (p *parser) leave() { p.depth-- }

func (p *parser) pushScope(name string) { p.scopes = append(p.scopes, name) }

func (p *parser) popScope() { p.scopes = p.scopes[:len(p.scopes)-1] }

// syncError records a syntax error and advances to the sync token without
// consuming it, so the enclosing loop can close its scope normally.
// Returns false when the stream ends first; that failure is unrecoverable.
func (p *parser) syncError(sync token.Kind) bool {
	if p.depthHit {
		p.inError = true
		return false
	}

	context := ""
	if len(p.scopes) > 0 {
		context = p.scopes[len(p.scopes)-1]
	}
	line, col := p.tokens.LineCol(p.offset())
	p.errors = append(p.errors, ParseError{
		Message:  "unexpected " + p.current().String(),
		Context:  context,
		Expected: []token.Kind{sync},
		Got:      p.current(),
		Offset:   p.offset(),
		Line:     line,
		Column:   col,
	})
	p.logger.Debug("resynchronizing",
		"context", context,
		"sync", sync.String(),
		"offset", p.offset())

	for !p.at(token.EOF) {
		if p.at(sync) {
			return true
		}
		p.pos++
	}
	p.inError = true
	return false
}

// parseClass is the entry production:
// 'class' IDENTIFIER generic_params? '{' class_member* '}'.
func (p *parser) parseClass() (*Node, bool) {
	m := p.mark()

	if !p.match(token.CLASS) {
		return nil, false
	}
	if !p.match(token.IDENTIFIER) {
		p.restore(m)
		return nil, false
	}
	class := &Node{Kind: NodeClass}
	class.Children = append(class.Children, &Node{
		Kind: NodeIdentifier,
		Text: p.text(p.pos - 1),
	})

	if p.match(token.LESS) {
		params, ok := p.parseGenericParams()
		if !ok || !p.match(token.GREATER) {
			p.restore(m)
			return nil, false
		}
		class.Children = append(class.Children, params)
	}

	body, ok := p.parseClassBody()
	if !ok {
		p.restore(m)
		return nil, false
	}
	class.Children = append(class.Children, body)
	return class, true
}

func (p *parser) parseClassBody() (*Node, bool) {
	if !p.match(token.LEFT_BRACE) {
		return nil, false
	}
	p.pushScope("class body")
	defer p.popScope()

	body := &Node{Kind: NodeBlock}
	for !p.at(token.EOF) {
		if p.match(token.RIGHT_BRACE) {
			return body, true
		}

		prev := p.pos
		member, ok := p.parseClassMember()
		if !ok {
			if !p.syncError(token.RIGHT_BRACE) {
				return nil, false
			}
			continue
		}
		invariant.Invariant(p.pos > prev, "class member must consume tokens")
		body.Children = append(body.Children, member)
	}
	return nil, false
}

// parseClassMember tries a method, then a field:
// visibility? ('function' method | 'var' field).
func (p *parser) parseClassMember() (*Node, bool) {
	m := p.mark()

	vis, _ := p.matchAny(visibilityKinds)
	switch {
	case p.match(token.FUNCTION):
		if method, ok := p.parseMethod(vis); ok {
			return method, true
		}
	case p.match(token.VAR):
		if field, ok := p.parseField(vis); ok {
			return field, true
		}
	}
	p.restore(m)
	return nil, false
}

// parseMethod parses after the 'function' keyword:
// IDENTIFIER '(' (param (',' param)*)? ')' ('->' Type)? block.
func (p *parser) parseMethod(vis token.Kind) (*Node, bool) {
	m := p.mark()

	if !p.match(token.IDENTIFIER) {
		p.restore(m)
		return nil, false
	}
	method := &Node{Kind: NodeMethod, Op: vis}
	method.Children = append(method.Children, &Node{
		Kind: NodeIdentifier,
		Text: p.text(p.pos - 1),
	})

	if !p.match(token.LEFT_PAREN) {
		p.restore(m)
		return nil, false
	}
	for !p.match(token.RIGHT_PAREN) {
		param, ok := p.parseVarFragment(0)
		if !ok {
			p.restore(m)
			return nil, false
		}
		method.Children = append(method.Children, param)

		if !p.match(token.COMMA) && !p.at(token.RIGHT_PAREN) {
			p.restore(m)
			return nil, false
		}
	}

	if p.match(token.ARROW) {
		ret, ok := p.parseType()
		if !ok {
			p.restore(m)
			return nil, false
		}
		method.Children = append(method.Children, ret)
	}

	body, ok := p.parseBlock()
	if !ok {
		p.restore(m)
		return nil, false
	}
	method.Children = append(method.Children, body)
	return method, true
}

// parseField parses after the 'var' keyword:
// IDENTIFIER ':' Type ('=' expression)? ';'. Unlike local variables the
// type annotation is mandatory.
func (p *parser) parseField(vis token.Kind) (*Node, bool) {
	m := p.mark()

	if !p.match(token.IDENTIFIER) {
		p.restore(m)
		return nil, false
	}
	field := &Node{Kind: NodeField, Op: vis}
	field.Children = append(field.Children, &Node{
		Kind: NodeIdentifier,
		Text: p.text(p.pos - 1),
	})

	if !p.match(token.COLON) {
		p.restore(m)
		return nil, false
	}
	typ, ok := p.parseType()
	if !ok {
		p.restore(m)
		return nil, false
	}
	field.Children = append(field.Children, typ)

	if p.match(token.EQUAL) {
		init, ok := p.parseExpression()
		if !ok {
			p.restore(m)
			return nil, false
		}
		field.Children = append(field.Children, init)
	}

	if !p.match(token.SEMICOLON) {
		p.restore(m)
		return nil, false
	}
	return field, true
}

func (p *parser) parseBlock() (*Node, bool) {
	if !p.match(token.LEFT_BRACE) {
		return nil, false
	}
	p.pushScope("block")
	defer p.popScope()

	block := &Node{Kind: NodeBlock}
	for !p.at(token.EOF) {
		if p.match(token.RIGHT_BRACE) {
			return block, true
		}

		prev := p.pos
		stmt, ok := p.parseStatement()
		if !ok {
			if !p.syncError(token.RIGHT_BRACE) {
				return nil, false
			}
			continue
		}
		invariant.Invariant(p.pos > prev, "statement must consume tokens")
		block.Children = append(block.Children, stmt)
	}
	return nil, false
}

// parseStatement dispatches on the leading token:
// if | for | while | return | var-decl | expression.
func (p *parser) parseStatement() (*Node, bool) {
	if !p.enter() {
		return nil, false
	}
	defer p.leave()

	m := p.mark()
	var (
		stmt *Node
		ok   bool
	)
	switch {
	case p.match(token.IF):
		stmt, ok = p.parseIf()
	case p.match(token.FOR):
		stmt, ok = p.parseFor()
	case p.match(token.WHILE):
		stmt, ok = p.parseWhile()
	case p.match(token.RETURN):
		stmt, ok = p.parseReturn()
	default:
		if kw, matched := p.matchAny(declStarts); matched {
			stmt, ok = p.parseVarFragment(kw)
			if ok && !p.match(token.SEMICOLON) {
				ok = false
			}
		} else {
			var expr *Node
			expr, ok = p.parseExpression()
			if ok && p.match(token.SEMICOLON) {
				stmt = &Node{Kind: NodeExpression, Children: []*Node{expr}}
			} else {
				ok = false
			}
		}
	}

	if !ok {
		p.restore(m)
		return nil, false
	}
	return stmt, true
}

// parseIf parses after the 'if' keyword:
// '(' expression ')' statement ('else' statement)?.
func (p *parser) parseIf() (*Node, bool) {
	m := p.mark()

	if !p.match(token.LEFT_PAREN) {
		return nil, false
	}
	cond, ok := p.parseExpression()
	if !ok || !p.match(token.RIGHT_PAREN) {
		p.restore(m)
		return nil, false
	}

	then, ok := p.parseStatement()
	if !ok {
		p.restore(m)
		return nil, false
	}

	ifNode := &Node{Kind: NodeIf, Children: []*Node{cond, then}}
	if p.match(token.ELSE) {
		alt, ok := p.parseStatement()
		if !ok {
			p.restore(m)
			return nil, false
		}
		ifNode.Children = append(ifNode.Children, alt)
	}
	return ifNode, true
}

// parseFor parses after the 'for' keyword. All three header clauses are
// independently omissible: '(' init? ';' cond? ';' incr? ')' statement.
// The init clause is a var-decl-shaped fragment without a leading keyword
// and consumes its own semicolon.
func (p *parser) parseFor() (*Node, bool) {
	m := p.mark()

	if !p.match(token.LEFT_PAREN) {
		return nil, false
	}
	loop := &Node{Kind: NodeLoop, Op: token.FOR}

	if !p.match(token.SEMICOLON) {
		init, ok := p.parseVarFragment(0)
		if !ok || !p.match(token.SEMICOLON) {
			p.restore(m)
			return nil, false
		}
		loop.Children = append(loop.Children, init)
	}

	if !p.match(token.SEMICOLON) {
		cond, ok := p.parseExpression()
		if !ok || !p.match(token.SEMICOLON) {
			p.restore(m)
			return nil, false
		}
		loop.Children = append(loop.Children, cond)
	}

	if !p.match(token.RIGHT_PAREN) {
		incr, ok := p.parseExpression()
		if !ok || !p.match(token.RIGHT_PAREN) {
			p.restore(m)
			return nil, false
		}
		loop.Children = append(loop.Children, incr)
	}

	body, ok := p.parseStatement()
	if !ok {
		p.restore(m)
		return nil, false
	}
	loop.Children = append(loop.Children, body)
	return loop, true
}

// parseWhile parses after the 'while' keyword:
// '(' expression ')' statement.
func (p *parser) parseWhile() (*Node, bool) {
	m := p.mark()

	if !p.match(token.LEFT_PAREN) {
		return nil, false
	}
	cond, ok := p.parseExpression()
	if !ok || !p.match(token.RIGHT_PAREN) {
		p.restore(m)
		return nil, false
	}

	body, ok := p.parseStatement()
	if !ok {
		p.restore(m)
		return nil, false
	}
	return &Node{Kind: NodeLoop, Op: token.WHILE, Children: []*Node{cond, body}}, true
}

// parseReturn parses after the 'return' keyword: expression? ';'.
func (p *parser) parseReturn() (*Node, bool) {
	m := p.mark()

	ret := &Node{Kind: NodeReturn}
	if p.match(token.SEMICOLON) {
		return ret, true
	}

	value, ok := p.parseExpression()
	if !ok || !p.match(token.SEMICOLON) {
		p.restore(m)
		return nil, false
	}
	ret.Children = append(ret.Children, value)
	return ret, true
}

// parseVarFragment parses the var-decl shape shared by local variables,
// fields in for-loop headers, and method parameters:
// IDENTIFIER (':' Type)? ('=' expression)?. The caller supplies the
// introducing keyword (VAR, CONST, or zero for none) and any terminator.
func (p *parser) parseVarFragment(kw token.Kind) (*Node, bool) {
	m := p.mark()

	if !p.match(token.IDENTIFIER) {
		return nil, false
	}
	variable := &Node{Kind: NodeVariable, Op: kw}
	variable.Children = append(variable.Children, &Node{
		Kind: NodeIdentifier,
		Text: p.text(p.pos - 1),
	})

	if p.match(token.COLON) {
		typ, ok := p.parseType()
		if !ok {
			p.restore(m)
			return nil, false
		}
		variable.Children = append(variable.Children, typ)
	}

	if p.match(token.EQUAL) {
		init, ok := p.parseExpression()
		if !ok {
			p.restore(m)
			return nil, false
		}
		variable.Children = append(variable.Children, init)
	}
	return variable, true
}

// parseType parses primitive_type | IDENTIFIER, optionally followed by
// '<' generic_params '>'. The base type name goes in Text; generic
// arguments become child Type nodes.
func (p *parser) parseType() (*Node, bool) {
	if !p.enter() {
		return nil, false
	}
	defer p.leave()

	m := p.mark()

	typ := &Node{Kind: NodeType}
	if _, ok := p.matchAny(primitiveTypes); ok {
		typ.Text = p.text(p.pos - 1)
	} else if p.match(token.IDENTIFIER) || p.match(token.PTR) {
		typ.Text = p.text(p.pos - 1)
	} else {
		return nil, false
	}

	if p.match(token.LESS) {
		params, ok := p.parseGenericParams()
		if !ok || !p.match(token.GREATER) {
			p.restore(m)
			return nil, false
		}
		typ.Children = params.Children
	}
	return typ, true
}

// parseGenericParams parses type (',' type)* and returns the list as a
// Type node whose children are the argument types.
func (p *parser) parseGenericParams() (*Node, bool) {
	m := p.mark()

	list := &Node{Kind: NodeType}
	for {
		typ, ok := p.parseType()
		if !ok {
			p.restore(m)
			return nil, false
		}
		list.Children = append(list.Children, typ)
		if !p.match(token.COMMA) {
			return list, true
		}
	}
}

// Expression precedence ladder, lowest to highest binding. Each level is
// left-associative except assignment, which recurses into itself for the
// right-hand side.

func (p *parser) parseExpression() (*Node, bool) {
	if !p.enter() {
		return nil, false
	}
	defer p.leave()
	return p.parseAssignment()
}

func (p *parser) parseAssignment() (*Node, bool) {
	m := p.mark()

	left, ok := p.parseLogicalOr()
	if !ok {
		return nil, false
	}

	if p.match(token.EQUAL) {
		right, ok := p.parseAssignment()
		if !ok {
			p.restore(m)
			return nil, false
		}
		return &Node{
			Kind:     NodeBinaryOp,
			Op:       token.EQUAL,
			Children: []*Node{left, right},
		}, true
	}
	return left, true
}

func (p *parser) parseLogicalOr() (*Node, bool) {
	return p.parseBinaryLevel(p.parseLogicalAnd, orOps)
}

func (p *parser) parseLogicalAnd() (*Node, bool) {
	return p.parseBinaryLevel(p.parseEquality, andOps)
}

func (p *parser) parseEquality() (*Node, bool) {
	return p.parseBinaryLevel(p.parseComparison, equalityOps)
}

func (p *parser) parseComparison() (*Node, bool) {
	return p.parseBinaryLevel(p.parseTerm, comparisonOps)
}

func (p *parser) parseTerm() (*Node, bool) {
	return p.parseBinaryLevel(p.parseFactor, termOps)
}

func (p *parser) parseFactor() (*Node, bool) {
	return p.parseBinaryLevel(p.parseUnary, factorOps)
}

// parseBinaryLevel folds next (ops next)* into a left-leaning chain of
// BinaryOp nodes.
func (p *parser) parseBinaryLevel(next func() (*Node, bool), ops tokenset.Set) (*Node, bool) {
	m := p.mark()

	left, ok := next()
	if !ok {
		return nil, false
	}
	for {
		op, matched := p.matchAny(ops)
		if !matched {
			return left, true
		}
		right, ok := next()
		if !ok {
			p.restore(m)
			return nil, false
		}
		left = &Node{Kind: NodeBinaryOp, Op: op, Children: []*Node{left, right}}
	}
}

func (p *parser) parseUnary() (*Node, bool) {
	if !p.enter() {
		return nil, false
	}
	defer p.leave()

	m := p.mark()
	if op, matched := p.matchAny(unaryOps); matched {
		operand, ok := p.parseUnary()
		if !ok {
			p.restore(m)
			return nil, false
		}
		return &Node{Kind: NodeUnaryOp, Op: op, Children: []*Node{operand}}, true
	}
	return p.parsePrimary()
}

// parsePrimary parses TRUE | FALSE | NUM_LITERAL | STR_LITERAL |
// IDENTIFIER | '(' expression ')'.
func (p *parser) parsePrimary() (*Node, bool) {
	m := p.mark()

	switch {
	case p.match(token.TRUE):
		return &Node{Kind: NodeLiteral, Bool: true}, true
	case p.match(token.FALSE):
		return &Node{Kind: NodeLiteral, Bool: false}, true
	case p.match(token.NUM_LITERAL):
		return &Node{Kind: NodeLiteral, Num: decodeNumber(p.text(p.pos - 1))}, true
	case p.match(token.STR_LITERAL):
		return &Node{Kind: NodeLiteral, Text: decodeString(p.text(p.pos - 1))}, true
	case p.match(token.IDENTIFIER):
		return &Node{Kind: NodeIdentifier, Text: p.text(p.pos - 1)}, true
	case p.match(token.LEFT_PAREN):
		expr, ok := p.parseExpression()
		if ok && p.match(token.RIGHT_PAREN) {
			return expr, true
		}
	}
	p.restore(m)
	return nil, false
}

// decodeNumber converts a numeric lexeme to its value. Hex and binary
// prefixes select the matching integer base; anything unparseable decodes
// to zero since the lexer already flagged the token.
func decodeNumber(text string) float64 {
	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			if v, err := strconv.ParseUint(text[2:], 16, 64); err == nil {
				return float64(v)
			}
			return 0
		case 'b', 'B':
			if v, err := strconv.ParseUint(text[2:], 2, 64); err == nil {
				return float64(v)
			}
			return 0
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return v
}

// decodeString strips the surrounding quotes and resolves escape
// sequences. Invalid escapes pass through verbatim; the lexer has already
// flagged them.
func decodeString(raw string) string {
	raw = strings.TrimPrefix(raw, `"`)
	raw = strings.TrimSuffix(raw, `"`)

	if !strings.ContainsRune(raw, '\\') {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			b.WriteByte(c)
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '0':
			b.WriteByte(0)
		case 'x':
			if i+3 <= len(raw) {
				if v, err := strconv.ParseUint(raw[i+1:i+3], 16, 8); err == nil {
					b.WriteByte(byte(v))
					i += 2
					break
				}
			}
			b.WriteByte('\\')
			b.WriteByte('x')
		default:
			b.WriteByte('\\')
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}
