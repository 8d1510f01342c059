package lexer

import "github.com/loom-lang/loom/token"

// tmplState tracks whether '<' and '>' are currently generic-type brackets
// or plain operators. The automaton is purely local: it is seeded by the
// most recent identifier or type name and torn down by the first token
// that cannot appear inside a generic argument list.
type tmplState uint8

const (
	tmplNone tmplState = iota
	tmplIdent
	tmplTemplate
	tmplDone
)

// inTemplate reports whether the lexer is inside an open generic bracket,
// in which case '>' must close one bracket rather than merge into '>>'.
func (l *Lexer) inTemplate() bool {
	return l.tmpl == tmplTemplate && l.angleDepth > 0
}

// observeToken advances the bracket automaton after a token is produced.
//
// An identifier or type name arms the automaton. A lone '<' that follows
// an armed or open state opens a bracket. Compound operators beginning
// with '<' (<<, <=, <<=) never reach this path as LESS, so shifts after an
// identifier keep their maximal-munch form. Inside an open bracket only
// the tokens of a generic argument list keep the context alive.
func (l *Lexer) observeToken(kind token.Kind) {
	switch {
	case kind == token.IDENTIFIER || kind == token.PTR || kind.IsPrimitiveType():
		if l.tmpl != tmplTemplate {
			l.tmpl = tmplIdent
		}
	case kind == token.LESS:
		if l.tmpl == tmplIdent || l.tmpl == tmplTemplate {
			l.angleDepth++
			l.tmpl = tmplTemplate
		} else {
			l.reset()
		}
	case kind == token.GREATER:
		if l.tmpl == tmplTemplate {
			l.angleDepth--
			if l.angleDepth == 0 {
				l.tmpl = tmplDone
			}
		} else {
			l.reset()
		}
	case kind == token.COMMA || kind == token.DOT:
		if l.tmpl != tmplTemplate {
			l.reset()
		}
	default:
		l.reset()
	}
}

func (l *Lexer) reset() {
	l.tmpl = tmplNone
	l.angleDepth = 0
}
