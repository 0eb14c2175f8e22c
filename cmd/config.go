package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/recents/internal/config"
	"github.com/zjrosen/recents/internal/log"
	"github.com/zjrosen/recents/internal/paths"
)

var errNoConfigPath = errors.New("no config path: pass --config")

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the recents configuration",
		Long: `Inspect and edit the recents configuration.

These commands still run when the config file holds an invalid value, so
'recents config set' can repair it.`,
		PersistentPreRunE: opts.setupLenient,
	}
	cmd.AddCommand(
		newConfigInitCmd(opts),
		newConfigShowCmd(opts),
		newConfigSetCmd(opts),
		newConfigPathCmd(opts),
	)
	return cmd
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.configPath == "" {
				return errNoConfigPath
			}
			if err := config.WriteDefaultConfig(opts.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
			return nil
		},
	}
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long: `Print the effective configuration as YAML: defaults, then the config
file, then RECENTS_* environment variables, then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if cfg.DataDir == "" {
				if dir, err := paths.ResolveDataDir(""); err == nil {
					cfg.DataDir = dir
				}
			}

			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(cfg); err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			return encoder.Close()
		},
	}
}

func newConfigSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one option in the config file",
		Long: `Set one option in the config file, keeping comments and other options.

Keys use dots for nesting, for example tracing.enabled. A value that would
make the file invalid is rejected and the file is left unchanged.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath == "" {
				return errNoConfigPath
			}
			key, value := args[0], args[1]
			if err := config.SetValue(opts.configPath, key, value); err != nil {
				return err
			}
			log.Info(log.CatConfig, "Config value set", "key", key, "path", opts.configPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, opts.configPath)
			return nil
		},
	}
}

func newConfigPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.configPath == "" {
				return errNoConfigPath
			}
			fmt.Fprintln(cmd.OutOrStdout(), opts.configPath)
			return nil
		},
	}
}
