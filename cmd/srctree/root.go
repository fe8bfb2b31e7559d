package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"srctree/internal/config"
	"srctree/internal/logging"
	"srctree/internal/outline"
	"srctree/internal/settings"
	"srctree/internal/textutil"
	"srctree/internal/treeview"
)

// usageError marks failures caused by the command line itself.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// args wraps a cobra argument validator so its failures count as usage errors.
func args(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := v(cmd, a); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// app carries what every command needs once the persistent flags are parsed.
type app struct {
	stdout, stderr io.Writer

	configPath   string
	settingsPath string
	logLevel     string
	logFormat    string
	color        string

	cfg   config.Config
	store *settings.Store
	log   *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "srctree",
		Short:         "Heuristic source outlines",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&a.settingsPath, "settings", "", "settings file (default <user config dir>/srctree/settings.yaml)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	pf.StringVar(&a.logFormat, "log-format", "", "text or json (overrides config)")
	pf.StringVar(&a.color, "color", "auto", "auto, always or never")

	root.AddCommand(
		newOutlineCmd(a),
		newLocateCmd(a),
		newSearchCmd(a),
		newDiffCmd(a),
		newWatchCmd(a),
		newBrowseCmd(a),
		newIndexCmd(a),
		newSettingsCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	log, err := logging.New(a.stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return usageError{err}
	}
	path := a.settingsPath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("locate settings: %w", err)
		}
		path = filepath.Join(dir, "srctree", "settings.yaml")
	}
	store, err := settings.Open(path)
	if err != nil {
		return err
	}
	switch a.color {
	case "auto", "always", "never":
	default:
		return usagef("--color must be auto, always or never, got %q", a.color)
	}
	a.cfg, a.store, a.log = cfg, store, log
	return nil
}

// theme decides on color: forced by --color, otherwise only for terminals.
func (a *app) theme() treeview.Theme {
	switch a.color {
	case "always":
		return treeview.Theme{Color: true}
	case "never":
		return treeview.Theme{}
	}
	f, ok := a.stdout.(*os.File)
	if !ok {
		return treeview.Theme{}
	}
	return treeview.Theme{Color: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

// resolveLanguage prefers an explicit tag and falls back to the extension.
func resolveLanguage(tag, path string) (outline.Language, error) {
	if strings.TrimSpace(tag) != "" {
		l := outline.ParseLanguage(tag)
		if l == outline.LangNone {
			return l, usagef("unknown language %q", tag)
		}
		return l, nil
	}
	l := outline.LanguageForExt(filepath.Ext(path))
	if l == outline.LangNone {
		return l, usagef("cannot tell the language of %s, use --lang", path)
	}
	return l, nil
}

// parseFile reads and outlines path.
func (a *app) parseFile(path, tag string, htmlFilter bool) (*outline.Result, error) {
	lang, err := resolveLanguage(tag, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res := outline.Parse(string(textutil.NormalizeUTF8LF(data)), lang, a.cfg.ParseOptions(htmlFilter))
	a.log.Debug("parsed", "path", path, "language", lang.String(), "nodes", len(res.Nodes))
	return res, nil
}

// viewFlags are the display switches shared by outline, watch and browse.
// Each one defaults to the persisted setting unless given on the command line.
type viewFlags struct {
	lang       string
	sort       bool
	expand     bool
	htmlFilter bool
	filter     string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&v.lang, "lang", "", "language tag (default: from the file extension)")
	f.BoolVar(&v.sort, "sort", false, "sort siblings by kind and label (default: sort setting)")
	f.BoolVar(&v.expand, "expand", false, "expand every row (default: expand setting)")
	f.BoolVar(&v.htmlFilter, "html-filter", false, "keep only HTML nodes with #id, .class or [attr] (default: HTMLfilter setting)")
	f.StringVar(&v.filter, "filter", "", "keep nodes whose label or descendants contain this text")
}

func (v *viewFlags) resolve(cmd *cobra.Command, s settings.Values) {
	f := cmd.Flags()
	if !f.Changed("sort") {
		v.sort = s.Sort
	}
	if !f.Changed("expand") {
		v.expand = s.Expand
	}
	if !f.Changed("html-filter") {
		v.htmlFilter = s.HTMLFilter
	}
}

func (v *viewFlags) options() treeview.Options {
	return treeview.Options{Sort: v.sort, Expand: v.expand, Query: v.filter}
}
