// Command najdeno runs the lost and found service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// configFile is set by the --config flag.
	configFile string

	v        = config.New()
	cfg      *config.Config
	closeLog = func() {}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "najdeno",
	Short: "Lost and found service",
	Long: `najdeno keeps track of lost and found item reports. Users report items,
owners manage their own reports and administrators moderate them.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML config file (optional)")
	flags.StringP("db", "d", "najdeno.sqlite3", "SQLite database path")
	flags.StringP("log", "l", "", "log file path (default: stdout/stderr only)")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("admin-email", "admin@najdeno.local", "admin account email used when creating the database")

	bindFlag(rootCmd, config.KeyDB, "db")
	bindFlag(rootCmd, config.KeyLog, "log")
	bindFlag(rootCmd, config.KeyLogFormat, "log-format")
	bindFlag(rootCmd, config.KeyAdminEmail, "admin-email")

	rootCmd.AddCommand(serveCmd, initCmd, versionCmd)
}

// bindFlag lets a command-line flag override the config key.
func bindFlag(cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

// loadConfig resolves the configuration and sets up logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.Load(v, configFile)
	if err != nil {
		return err
	}

	closeLog, err = setupLogger(cfg.Log, cfg.LogFormat, os.Stdout, os.Stderr)
	return err
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "najdeno", version)
	},
}
