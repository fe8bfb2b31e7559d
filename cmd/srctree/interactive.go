package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"srctree/internal/browse"
	"srctree/internal/treeview"
	"srctree/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var vf viewFlags
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Print the outline and print it again after every change",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			vf.resolve(cmd, a.store.Values())
			if !cmd.Flags().Changed("debounce") {
				debounce = a.cfg.WatchDebounce
			}
			path := argv[0]
			render := func(context.Context) error {
				res, err := a.parseFile(path, vf.lang, vf.htmlFilter)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "== %s (%d nodes) ==\n", path, len(res.Nodes))
				return treeview.New(res, vf.options()).Render(a.stdout, a.theme())
			}
			if err := render(cmd.Context()); err != nil {
				return err
			}
			a.log.Info("watching", "path", path, "debounce", debounce)
			return watch.Run(cmd.Context(), path, watch.Options{Debounce: debounce, Logger: a.log}, render)
		},
	}
	vf.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before re-parsing (default: watchDebounce from config)")
	return cmd
}

func newBrowseCmd(a *app) *cobra.Command {
	var vf viewFlags
	var line int
	cmd := &cobra.Command{
		Use:   "browse <file>",
		Short: "Browse the outline interactively and print the chosen location",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			s := a.store.Values()
			vf.resolve(cmd, s)
			res, err := a.parseFile(argv[0], vf.lang, vf.htmlFilter)
			if err != nil {
				return err
			}
			if !s.Locate {
				line = 0
			}
			m := browse.New(argv[0], treeview.New(res, vf.options()), a.theme(), vf.sort, line)
			n, ok, err := browse.Run(cmd.Context(), m)
			if err != nil || !ok {
				return err
			}
			fmt.Fprintf(a.stdout, "%s:%d\n", argv[0], n.Line)
			return nil
		},
	}
	vf.register(cmd)
	cmd.Flags().IntVar(&line, "line", 0, "start on the row owning this line (needs the locate setting)")
	return cmd
}
