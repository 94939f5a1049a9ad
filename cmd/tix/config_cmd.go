package main

import (
	"github.com/spf13/cobra"

	"github.com/lfrick/tix/internal/config"
	"github.com/lfrick/tix/internal/log"
	"github.com/lfrick/tix/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage tix configuration.

Config location: ~/.config/tix/config.toml`,
		Example: `  tix config init   # Create default config
  tix config path   # Print config file location
  tix config show   # Show effective config`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Example: `  tix config init      # Create config with commented defaults
  tix config init -f   # Overwrite existing config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			l := log.FromContext(cmd.Context())

			path, err := config.Init(force)
			if err != nil {
				return err
			}

			l.Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := output.FromContext(cmd.Context())
			p.Println(config.Path())
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := output.FromContext(cmd.Context())

			if asJSON {
				return p.JSON(cfg)
			}

			provider := cfg.Provider
			if provider == "" {
				provider = "(default)"
			}
			base := cfg.BaseBranch
			if base == "" {
				base = "(repository default)"
			}

			p.Printf("provider: %s\n", provider)
			if cfg.Pattern != "" {
				p.Printf("pattern: %s\n", cfg.Pattern)
			}
			p.Printf("base_branch: %s\n", base)
			p.Printf("git_timeout_seconds: %d\n", cfg.GitTimeoutSeconds)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
