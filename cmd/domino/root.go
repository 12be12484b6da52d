package main

import (
	"github.com/aretw0/domino/internal/app"
	"github.com/aretw0/domino/internal/config"
	"github.com/aretw0/domino/internal/logging"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	backend    string
	dir        string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "domino",
		Short:         "Domino keeps immutable settings with defaults, overrides and computed fields",
		Long:          `Domino stores named dominoes: default values, the mutations layered over them, and the values derived from both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVar(&opts.backend, "backend", "", "Store backend (memory, file, redis); overrides the config")
	flags.StringVar(&opts.dir, "dir", "", "Snapshot directory for the file backend; overrides the config")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newNewCmd(opts),
		newListCmd(opts),
		newInspectCmd(opts),
		newSetCmd(opts),
		newResetCmd(opts),
		newDefaultsCmd(opts),
		newRemoveCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig reads the config file and environment, then applies flag overrides.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.backend != "" {
		cfg.Store.Backend = o.backend
	}
	if o.dir != "" {
		cfg.Store.Dir = o.dir
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// open builds the application for one command run. Callers must Close it.
func (o *rootOptions) open() (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logging.New(level))
}
