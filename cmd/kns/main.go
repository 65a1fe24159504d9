// Command kns runs the KNS inventory server and its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "kns",
		Short: "KNS inventory server",
		Long: `KNS tracks the organization's inventory: items, their movements between
people and departments, and staff requests for stock.

Without a subcommand, kns serves the HTTP API. Settings are read from
flags, KNS_* environment variables, a .env file and kns.yaml, in that
order of precedence.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default: kns.yaml if present)")
	flags.StringP("db", "d", "kns.sqlite3", "database path or DSN")
	flags.String("driver", "sqlite", "database driver (sqlite, postgres)")
	flags.StringP("addr", "a", ":8080", "listen address")
	flags.StringP("user", "u", "admin@kns.local", "admin email on first run")
	flags.StringP("log", "l", "", "log file path (default: stdout/stderr only)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd, configPath)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create the database schema and the first admin account",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runInit(cmd, configPath)
			},
		},
		&cobra.Command{
			Use:   "import <file.yaml>",
			Short: "Create items from a YAML fixture file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runImport(cmd, configPath, args[0])
			},
		},
		exportCmd(&configPath),
	)

	return cmd
}
