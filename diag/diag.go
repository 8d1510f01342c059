// Package diag turns lexical flags and parse errors into positioned,
// human-readable messages. The frontend itself never prints anything;
// this layer owns all user-facing rendering.
package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/loom-lang/loom/parser"
	"github.com/loom-lang/loom/token"
)

// Severity ranks a diagnostic. Lexical flags are warnings since the
// parser may still make sense of the token; parse errors are errors.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one renderable finding, anchored to a byte offset.
type Diagnostic struct {
	Severity   Severity
	Message    string
	Suggestion string
	Offset     uint32
	Line       uint32
	Column     uint32
}

// Report collects diagnostics for one source buffer.
type Report struct {
	src   []byte
	list  *token.List
	diags []Diagnostic
}

// NewReport creates an empty report over src and its token list.
func NewReport(src []byte, list *token.List) *Report {
	return &Report{src: src, list: list}
}

// flagMessages maps each lexical flag to its rendered message.
var flagMessages = []struct {
	flag    token.Flags
	message string
}{
	{token.FlagUnterminatedString, "unterminated string literal"},
	{token.FlagInvalidEscape, "invalid escape sequence in string literal"},
	{token.FlagMultipleDecimalPoints, "number has more than one decimal point"},
	{token.FlagInvalidExponent, "exponent has no digits"},
	{token.FlagInvalidIdentifierStart, "annotation must start with a letter"},
	{token.FlagInvalidIdentifierChar, "unexpected symbol after identifier"},
}

// CollectTokenFlags adds one warning per flag carried by any token.
func (r *Report) CollectTokenFlags() {
	for i := 0; i < r.list.Len(); i++ {
		flags := r.list.Flags[i]
		if flags == 0 {
			continue
		}
		for _, fm := range flagMessages {
			if !flags.Has(fm.flag) {
				continue
			}
			line, col := r.list.LineCol(r.list.Starts[i])
			r.diags = append(r.diags, Diagnostic{
				Severity: SeverityWarning,
				Message:  fm.message,
				Offset:   r.list.Starts[i],
				Line:     line,
				Column:   col,
			})
		}
	}
}

// AddParseErrors converts parse errors into error diagnostics. When the
// offending token is an identifier that nearly matches a keyword, a
// did-you-mean suggestion is attached.
func (r *Report) AddParseErrors(errs []parser.ParseError) {
	for _, pe := range errs {
		d := Diagnostic{
			Severity: SeverityError,
			Message:  pe.Message,
			Offset:   pe.Offset,
			Line:     pe.Line,
			Column:   pe.Column,
		}
		if pe.Context != "" {
			d.Message += " in " + pe.Context
		}
		if pe.Got == token.IDENTIFIER {
			if suggestion := closestKeyword(r.tokenTextAt(pe.Offset)); suggestion != "" {
				d.Suggestion = fmt.Sprintf("did you mean '%s'?", suggestion)
			}
		}
		r.diags = append(r.diags, d)
	}
}

// tokenTextAt returns the lexeme of the token starting at offset, or "".
func (r *Report) tokenTextAt(offset uint32) string {
	for i := 0; i < r.list.Len(); i++ {
		if r.list.Starts[i] == offset {
			return string(r.list.Text(r.src, i))
		}
	}
	return ""
}

// keywordNames is the suggestion vocabulary, sorted once for stable
// ranking ties.
var keywordNames = func() []string {
	names := make([]string, 0, len(token.Keywords))
	for name := range token.Keywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// closestKeyword finds the best fuzzy keyword match for text, or "" when
// nothing is close.
func closestKeyword(text string) string {
	if text == "" {
		return ""
	}
	ranks := fuzzy.RankFindFold(text, keywordNames)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// Diagnostics returns the collected findings in insertion order.
func (r *Report) Diagnostics() []Diagnostic {
	return r.diags
}

// HasErrors reports whether any diagnostic is an error.
func (r *Report) HasErrors() bool {
	for _, d := range r.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Render writes every diagnostic with its source snippet to w.
func (r *Report) Render(w io.Writer) {
	for _, d := range r.diags {
		fmt.Fprintf(w, "%s: %s\n", d.Severity, d.Message)
		fmt.Fprint(w, snippet(r.src, d.Line, d.Column))
		if d.Suggestion != "" {
			fmt.Fprintf(w, "   = %s\n", d.Suggestion)
		}
		fmt.Fprintln(w)
	}
}

// snippet renders the offending source line with a caret under the
// diagnostic's column.
func snippet(src []byte, line, column uint32) string {
	if len(src) == 0 || line == 0 {
		return ""
	}

	lines := strings.Split(string(src), "\n")
	if int(line) > len(lines) {
		return ""
	}
	lineContent := lines[line-1]

	var b strings.Builder
	fmt.Fprintf(&b, "  --> %d:%d\n", line, column)
	b.WriteString("   |\n")
	fmt.Fprintf(&b, "%2d | %s\n", line, lineContent)
	b.WriteString("   | ")
	if column > 0 && int(column) <= len(lineContent)+1 {
		b.WriteString(strings.Repeat(" ", int(column)-1) + "^")
	}
	b.WriteString("\n")
	return b.String()
}
