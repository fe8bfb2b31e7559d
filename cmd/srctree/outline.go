package main

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"srctree/internal/diff"
	"srctree/internal/outline"
	"srctree/internal/treeview"
)

func newOutlineCmd(a *app) *cobra.Command {
	var vf viewFlags
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the outline of a file",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			vf.resolve(cmd, a.store.Values())
			res, err := a.parseFile(argv[0], vf.lang, vf.htmlFilter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.stdout, res)
			}
			return treeview.New(res, vf.options()).Render(a.stdout, a.theme())
		},
	}
	vf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw nodes and line map as JSON")
	return cmd
}

func newLocateCmd(a *app) *cobra.Command {
	var lang string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "locate <file> <line>",
		Short: "Print the node owning a 1-based line and its ancestors",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			line, err := strconv.Atoi(argv[1])
			if err != nil || line < 1 {
				return usagef("line must be a positive integer, got %q", argv[1])
			}
			res, err := a.parseFile(argv[0], lang, false)
			if err != nil {
				return err
			}
			if line > len(res.LineToNode) {
				return fmt.Errorf("%s has %d lines, asked for %d", argv[0], len(res.LineToNode), line)
			}
			chain := ancestry(res, res.Locate(line))
			if asJSON {
				return writeJSON(a.stdout, chain)
			}
			if len(chain) == 0 {
				fmt.Fprintf(a.stdout, "%s:%d: (top level)\n", argv[0], line)
				return nil
			}
			for i, n := range chain {
				fmt.Fprintf(a.stdout, "%s%s [%s] :%d\n", strings.Repeat("  ", i), n.Text, n.Kind, n.Line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language tag (default: from the file extension)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the node chain as JSON")
	return cmd
}

// ancestry returns the chain from the top-level ancestor down to id.
func ancestry(res *outline.Result, id int) []outline.Node {
	var chain []outline.Node
	for id != 0 {
		n, ok := res.NodeByID(id)
		if !ok {
			break
		}
		chain = append([]outline.Node{n}, chain...)
		id = n.ParentID
	}
	return chain
}

func newSearchCmd(a *app) *cobra.Command {
	var lang string
	var useRegex bool
	cmd := &cobra.Command{
		Use:   "search <file> <query>",
		Short: "Print the nodes whose label, or a descendant's label, matches",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			match, err := matcher(argv[1], useRegex)
			if err != nil {
				return err
			}
			res, err := a.parseFile(argv[0], lang, false)
			if err != nil {
				return err
			}
			hits := &outline.Result{Language: res.Language}
			for _, n := range res.Nodes {
				if match(res, n.ID) {
					hits.Nodes = append(hits.Nodes, n)
				}
			}
			if len(hits.Nodes) == 0 {
				fmt.Fprintln(a.stderr, "no matches")
				return nil
			}
			return treeview.New(hits, treeview.Options{Expand: true}).Render(a.stdout, a.theme())
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language tag (default: from the file extension)")
	cmd.Flags().BoolVar(&useRegex, "regex", false, "treat the query as a regular expression")
	return cmd
}

func matcher(query string, useRegex bool) (func(*outline.Result, int) bool, error) {
	if !useRegex {
		return func(r *outline.Result, id int) bool { return r.SearchText(query, id) }, nil
	}
	re, err := regexp.Compile(query)
	if err != nil {
		return nil, usagef("bad --regex query: %v", err)
	}
	return func(r *outline.Result, id int) bool { return r.SearchPattern(re, id) }, nil
}

func newDiffCmd(a *app) *cobra.Command {
	var lang string
	var opt diff.Options
	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Unified diff between the outlines of two files",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			before, err := a.parseFile(argv[0], lang, false)
			if err != nil {
				return err
			}
			after, err := a.parseFile(argv[1], lang, false)
			if err != nil {
				return err
			}
			patch, err := diff.Outlines(argv[0], argv[1], before, after, opt)
			if err != nil {
				return err
			}
			_, err = io.WriteString(a.stdout, patch)
			return err
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language tag for both files (default: from each extension)")
	cmd.Flags().IntVar(&opt.Context, "context", 3, "context lines per hunk")
	cmd.Flags().BoolVar(&opt.Lines, "lines", false, "compare line numbers too")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
