package main

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/loom-lang/loom/parser"
)

func newCheckCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check a source file and report diagnostics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				if len(args) == 0 || args[0] == "-" {
					return &exitError{ExitInvalidArguments,
						fmt.Errorf("--watch needs a file argument")}
				}
				return watchAndCheck(cmd, args[0])
			}

			src, err := readSource(args)
			if err != nil {
				return err
			}
			if !checkSource(cmd, src) {
				return &exitError{ExitParseError, fmt.Errorf("source has errors")}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Re-check the file whenever it changes")
	return cmd
}

// checkSource runs the full pipeline on src and renders everything it
// finds. Returns true when the source is clean.
func checkSource(cmd *cobra.Command, src []byte) bool {
	out := cmd.OutOrStdout()

	list, err := tokenizeSource(src)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return false
	}

	tree, parseErr := parser.Parse(src, list)
	ok := renderDiagnostics(out, src, list, tree, parseErr)
	if ok {
		fmt.Fprintln(out, "ok")
	}
	return ok
}

// watchAndCheck re-runs the check whenever the file is written. Editors
// often replace files instead of writing in place, so the watch is on the
// directory and events are filtered by name.
func watchAndCheck(cmd *cobra.Command, file string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &exitError{ExitIOError, err}
	}
	defer watcher.Close()

	abs, err := filepath.Abs(file)
	if err != nil {
		return &exitError{ExitIOError, err}
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return &exitError{ExitIOError, err}
	}

	runOnce := func() {
		src, err := readSource([]string{file})
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "error: %v\n", err)
			return
		}
		checkSource(cmd, src)
	}

	runOnce()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "--- %s changed\n", file)
				runOnce()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "watch error: %v\n", err)
		}
	}
}
