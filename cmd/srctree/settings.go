package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"srctree/internal/settings"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the persisted view settings",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listSettings(a)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print every setting",
			Args:  args(cobra.NoArgs),
			RunE:  func(*cobra.Command, []string) error { return listSettings(a) },
		},
		&cobra.Command{
			Use:   "get <name>",
			Short: "Print one setting",
			Args:  args(cobra.ExactArgs(1)),
			RunE: func(_ *cobra.Command, argv []string) error {
				v, err := a.store.Get(argv[0])
				if err != nil {
					return usageError{err}
				}
				fmt.Fprintln(a.stdout, v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <name> <value>",
			Short: "Change one setting",
			Args:  args(cobra.ExactArgs(2)),
			RunE: func(_ *cobra.Command, argv []string) error {
				if _, err := a.store.Get(argv[0]); err != nil {
					return usageError{err}
				}
				return a.store.SetString(argv[0], argv[1])
			},
		},
		&cobra.Command{
			Use:   "toggle <name>",
			Short: "Flip one setting and print the new value",
			Args:  args(cobra.ExactArgs(1)),
			RunE: func(_ *cobra.Command, argv []string) error {
				if _, err := a.store.Get(argv[0]); err != nil {
					return usageError{err}
				}
				v, err := a.store.Toggle(argv[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, v)
				return nil
			},
		},
	)
	return cmd
}

func listSettings(a *app) error {
	for _, name := range settings.Names() {
		v, err := a.store.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s%s: %t\n", settings.Prefix, name, v)
	}
	return nil
}
