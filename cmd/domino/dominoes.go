package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/domino/internal/app"
	"github.com/aretw0/domino/internal/cli"
	"github.com/aretw0/domino/pkg/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// withApp opens the application around run.
func withApp(opts *rootOptions, run func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := opts.open()
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, a, args)
	}
}

func render(cmd *cobra.Command, format, id string, d *domain.Domino) error {
	return cli.NewRenderer(cmd.OutOrStdout(), cli.WithWidth(terminalWidth(cmd))).Render(format, id, d)
}

func newNewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new [id] [key=value...]",
		Short: "Create a domino from default values",
		Long: `Creates a domino holding the given defaults and prints its id.
A random id is generated when the first argument is an assignment.
Creating an id that already exists leaves it untouched.`,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			id := uuid.NewString()
			if len(args) > 0 && !strings.Contains(args[0], "=") {
				id, args = args[0], args[1:]
			}
			defaults, err := cli.ParseAssignments(args)
			if err != nil {
				return err
			}
			if _, err := a.Manager.LoadOrCreate(cmd.Context(), id, defaults); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		}),
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored dominoes",
		Args:    cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			ids, err := a.Manager.List(cmd.Context())
			if err != nil {
				return err
			}
			slices.Sort(ids)
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}),
	}
}

func newInspectCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "inspect <id>",
		Short: "Show a domino's values, defaults and mutations",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			d, err := a.Manager.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd, output, args[0], d)
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", cli.FormatText, "Output format ("+strings.Join(cli.Formats, ", ")+")")
	return cmd
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <key=value>...",
		Short: "Override values",
		Args:  cobra.MinimumNArgs(2),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			values, err := cli.ParseAssignments(args[1:])
			if err != nil {
				return err
			}
			return apply(cmd, a, args[0], domain.OpUpdate, func(d *domain.Domino) *domain.Domino {
				return d.Update(values)
			})
		}),
	}
}

func newDefaultsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults <id> <key=value>...",
		Short: "Merge new default values",
		Long:  `Merges into the defaults. Existing overrides keep winning over the new defaults.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			values, err := cli.ParseAssignments(args[1:])
			if err != nil {
				return err
			}
			return apply(cmd, a, args[0], domain.OpSetDefaults, func(d *domain.Domino) *domain.Domino {
				return d.SetDefaults(values)
			})
		}),
	}
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	var restoreInitial bool
	cmd := &cobra.Command{
		Use:   "reset <id> [field...]",
		Short: "Drop overrides",
		Long: `Drops the overrides of the named fields, or all of them when no field is given.
With --clear the defaults are also restored to the ones the domino was created with.`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			id, fields := args[0], args[1:]
			switch {
			case restoreInitial:
				if len(fields) > 0 {
					return errors.New("--clear does not take fields")
				}
				return apply(cmd, a, id, domain.OpClear, (*domain.Domino).Clear)
			case len(fields) == 0:
				return apply(cmd, a, id, domain.OpReset, (*domain.Domino).Reset)
			default:
				return apply(cmd, a, id, domain.OpResetField, func(d *domain.Domino) *domain.Domino {
					for _, f := range fields {
						d = d.ResetField(f)
					}
					return d
				})
			}
		}),
	}
	cmd.Flags().BoolVar(&restoreInitial, "clear", false, "Also restore the initial defaults")
	return cmd
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Delete dominoes",
		Args:    cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			for _, id := range args {
				if err := a.Manager.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("remove %s: %w", id, err)
				}
			}
			return nil
		}),
	}
}

func apply(cmd *cobra.Command, a *app.App, id string, op domain.Op, fn func(*domain.Domino) *domain.Domino) error {
	d, err := a.Manager.Apply(cmd.Context(), id, op, fn)
	if err != nil {
		return err
	}
	return render(cmd, cli.FormatText, id, d)
}
