// Command loom is the developer frontend for loom source files: it
// tokenizes, parses, and checks them, printing tokens, IR trees, or
// positioned diagnostics.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/loom-lang/loom/diag"
	"github.com/loom-lang/loom/lexer"
	"github.com/loom-lang/loom/parser"
	"github.com/loom-lang/loom/token"
)

// Exit code constants
const (
	ExitSuccess          = 0
	ExitInvalidArguments = 1
	ExitIOError          = 2
	ExitParseError       = 3
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "loom",
		Short:         "Tokenize, parse and check loom source files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newTokensCmd(), newParseCmd(), newCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return ExitInvalidArguments
}

// readSource handles the three input modes: explicit stdin with "-",
// piped input when no file is given, and plain file input.
func readSource(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		if len(args) == 0 && !hasPipedInput() {
			return nil, &exitError{ExitInvalidArguments,
				fmt.Errorf("no input: pass a file or pipe source on stdin")}
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, &exitError{ExitIOError, fmt.Errorf("reading stdin: %w", err)}
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, &exitError{ExitIOError, fmt.Errorf("reading %s: %w", args[0], err)}
	}
	return data, nil
}

// hasPipedInput detects if there's data piped to stdin
func hasPipedInput() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func tokenizeSource(src []byte) (*token.List, error) {
	lx, err := lexer.New(src)
	if err != nil {
		return nil, &exitError{ExitIOError, err}
	}
	return lx.Tokenize(), nil
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the token stream for a source file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args)
			if err != nil {
				return err
			}
			list, err := tokenizeSource(src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i := 0; i < list.Len(); i++ {
				line, col := list.LineCol(list.Starts[i])
				fmt.Fprintf(out, "%4d:%-3d %-18s %q", line, col,
					list.Kinds[i], list.Text(src, i))
				if flags := list.Flags[i]; flags != 0 {
					fmt.Fprintf(out, "  [%s]", flags)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newParseCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a source file and dump its IR tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args)
			if err != nil {
				return err
			}
			list, err := tokenizeSource(src)
			if err != nil {
				return err
			}

			tree, err := parser.Parse(src, list)
			if err != nil {
				return &exitError{ExitParseError, err}
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				writeTreeText(out, tree.Root)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(tree.Root); err != nil {
					return &exitError{ExitIOError, err}
				}
			case "cbor":
				data, err := cbor.Marshal(tree.Root)
				if err != nil {
					return &exitError{ExitIOError, err}
				}
				if _, err := out.Write(data); err != nil {
					return &exitError{ExitIOError, err}
				}
			default:
				return &exitError{ExitInvalidArguments,
					fmt.Errorf("unknown format %q (want text, json, or cbor)", format)}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Tree output format: text, json, or cbor")
	return cmd
}

// writeTreeText renders the tree one node per line, indented by depth.
func writeTreeText(w io.Writer, root *parser.Node) {
	root.Walk(func(n *parser.Node, depth int) bool {
		fmt.Fprintf(w, "%*s%s", depth*2, "", n.Kind)
		if n.Op != 0 {
			fmt.Fprintf(w, " op=%s", n.Op)
		}
		if n.Text != "" {
			fmt.Fprintf(w, " %q", n.Text)
		}
		if n.Kind == parser.NodeLiteral && n.Text == "" {
			if n.Bool {
				fmt.Fprint(w, " true")
			} else {
				fmt.Fprintf(w, " %g", n.Num)
			}
		}
		fmt.Fprintln(w)
		return true
	})
}

func renderDiagnostics(w io.Writer, src []byte, list *token.List, tree *parser.Tree, parseErr error) bool {
	report := diag.NewReport(src, list)
	report.CollectTokenFlags()
	if tree != nil {
		report.AddParseErrors(tree.Errors)
	}
	report.Render(w)

	if parseErr != nil {
		fmt.Fprintf(w, "error: %v\n", parseErr)
		return false
	}
	return !report.HasErrors()
}
