package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/loom-lang/loom/token"
)

// ErrNoParse is returned when the entry production fails or the parser
// ends in an unrecovered error state. There is no partial tree to trust.
var ErrNoParse = errors.New("parser: source did not parse")

// ErrDepthExceeded is returned when expression or statement nesting goes
// past the configured ceiling. The limit protects against stack
// exhaustion on adversarial input.
var ErrDepthExceeded = errors.New("parser: maximum nesting depth exceeded")

// ParseError describes one syntax error with enough context for a
// diagnostics layer to render a positioned message.
type ParseError struct {
	Message  string
	Context  string
	Expected []token.Kind
	Got      token.Kind
	Offset   uint32
	Line     uint32
	Column   uint32
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d: %s", e.Line, e.Column, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, " in %s", e.Context)
	}
	if len(e.Expected) > 0 {
		names := make([]string, len(e.Expected))
		for i, kind := range e.Expected {
			names[i] = kind.String()
		}
		fmt.Fprintf(&b, " (expected %s, got %s)", strings.Join(names, " or "), e.Got)
	}
	return b.String()
}
