package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/dunkbonds/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage dunkbonds configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  dunkbonds config init -o dunkbonds.yaml
  dunkbonds config validate -f dunkbonds.yaml`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Default().SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created default configuration: %s\n", output)
			fmt.Fprintln(out, "\nEdit the goals and run with:")
			fmt.Fprintf(out, "  dunkbonds -c %s account treasury <goal-id>\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "dunkbonds.yaml", "output config file path")

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			goals, err := cfg.Registry()
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(out, "  Ledger: %s (%s, overdraft %t)\n", cfg.Ledger.DBPath, cfg.Ledger.Currency, cfg.Ledger.AllowOverdraft)
			for _, g := range goals.All() {
				fmt.Fprintf(out, "  Goal: %s face %s valid %t\n", g.ID, g.FaceValue.Format(cfg.Ledger.Currency), g.Valid)
			}
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("file")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

const version = "0.3.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dunkbonds version %s\n", version)
		},
	}
}
