// Command srctree prints, searches, diffs and browses heuristic outlines of
// source files, and indexes whole trees of them.
//
// Commands:
//   - outline  <file>            print the outline tree
//   - locate   <file> <line>     print the node owning a line
//   - search   <file> <query>    print the nodes whose subtree matches
//   - diff     <old> <new>       unified diff of two outlines
//   - watch    <file>            re-print the outline on every change
//   - browse   <file>            interactive outline browser
//   - index    <dir>             outline a tree with cache reuse
//   - settings [list|get|set|toggle]
//
// Errors are printed as "ERROR: <message>" on stderr. The exit code is 1 for
// runtime failures and 2 for usage errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "ERROR:", err)
		var ue usageError
		if errors.As(err, &ue) {
			return 2
		}
		return 1
	}
	return 0
}
