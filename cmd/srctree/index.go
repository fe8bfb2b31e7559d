package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"srctree/internal/bundle"
	"srctree/internal/cache"
	"srctree/internal/index"
	"srctree/internal/validate"
	"srctree/internal/walkwalk"
)

func newIndexCmd(a *app) *cobra.Command {
	var (
		out, zipOut    string
		fresh, noCache bool
		htmlFilter     bool
		include        []string
		exclude        []string
	)
	cmd := &cobra.Command{
		Use:   "index <dir>",
		Short: "Outline every supported file under a directory",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			root := filepath.Clean(argv[0])
			if fi, err := os.Stat(root); err != nil {
				return err
			} else if !fi.IsDir() {
				return usagef("%s is not a directory", root)
			}
			if !cmd.Flags().Changed("html-filter") {
				htmlFilter = a.store.Values().HTMLFilter
			}
			wopt := walkwalk.Options{
				Include:      append(append([]string{}, a.cfg.Include...), include...),
				Exclude:      append(append([]string{}, a.cfg.Exclude...), exclude...),
				MaxFileBytes: a.cfg.MaxFileBytes,
				UseGitignore: a.cfg.UseGitignore,
			}
			files, total, err := walkwalk.CollectFiles(root, wopt)
			if err != nil {
				return err
			}
			a.log.Debug("collected", "root", root, "files", len(files), "bytes", total)

			opt := index.Options{
				Parse:   a.cfg.ParseOptions(htmlFilter),
				Workers: a.cfg.Workers,
				Logger:  a.log,
			}
			if !noCache {
				abs, err := filepath.Abs(root)
				if err != nil {
					return err
				}
				opt.CacheDir = cache.Dir(a.cfg.CacheDir, abs)
				if fresh {
					if err := cache.Clear(opt.CacheDir); err != nil {
						return fmt.Errorf("reset cache: %w", err)
					}
				}
			}
			art, err := index.Build(cmd.Context(), root, files, opt)
			if errors.Is(err, index.ErrNoFiles) {
				fmt.Fprintln(a.stderr, "No files matched filters.")
				return nil
			}
			if err != nil {
				return err
			}
			if err := errors.Join(validate.Manifest(art.Manifest), validate.Symbols(art.Symbols, art.Manifest)); err != nil {
				return fmt.Errorf("index failed validation:\n%w", err)
			}
			if zipOut != "" {
				if err := bundle.WriteFile(zipOut, art); err != nil {
					return fmt.Errorf("write %s: %w", zipOut, err)
				}
			}
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := writeJSON(f, art.Manifest); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.stdout, "%d files, %d symbols, %d reused; +%d ~%d -%d >%d  id %s\n",
				len(art.Manifest.Files), len(art.Symbols.Symbols), art.Reused,
				len(art.Delta.Added), len(art.Delta.Changed), len(art.Delta.Removed), len(art.Delta.Renamed),
				art.Manifest.IndexID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "", "write the manifest JSON here")
	f.StringVar(&zipOut, "zip", "", "write a reproducible ZIP with manifest, symbols and pointers")
	f.BoolVar(&fresh, "new", false, "clear this tree's cache first")
	f.BoolVar(&noCache, "no-cache", false, "parse everything and keep no snapshot")
	f.BoolVar(&htmlFilter, "html-filter", false, "apply the HTML selector filter (default: HTMLfilter setting)")
	f.StringSliceVar(&include, "include", nil, "extra doublestar include patterns")
	f.StringSliceVar(&exclude, "exclude", nil, "extra doublestar exclude patterns")
	return cmd
}
