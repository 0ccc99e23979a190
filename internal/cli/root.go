// Package cli implements the sqlitekit command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/sqlitekit/config"
	"github.com/viant/sqlitekit/database"
	"github.com/viant/sqlitekit/functions"
	"github.com/viant/sqlitekit/logging"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath  string
	dbPath      string
	mode        string
	busyTimeout int
	logLevel    string
	noFunctions bool
}

// NewRootCmd creates the sqlitekit command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "sqlitekit",
		Short: "Run SQL against an embedded SQLite database",
		Long: `sqlitekit opens a SQLite database file (or an in-memory database) and runs
statements against it with named parameter binding.

Settings come from an optional YAML file (--config), SQLITEKIT_* environment
variables and the flags below, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVarP(&opts.dbPath, "db", "d", "", "Database path or :memory:")
	flags.StringVar(&opts.mode, "mode", "", "Open mode (ro, rw, rwc)")
	flags.IntVar(&opts.busyTimeout, "busy-timeout", -1, "Busy timeout in milliseconds")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.noFunctions, "no-functions", false, "Do not install the bundled SQL functions")

	cmd.AddCommand(newExecCmd(opts))
	cmd.AddCommand(newQueryCmd(opts))
	cmd.AddCommand(newInsertCmd(opts))
	cmd.AddCommand(newEscapeCmd(opts))
	cmd.AddCommand(newFunctionsCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// load resolves configuration with flag overrides applied.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.mode != "" {
		cfg.Database.Mode = o.mode
	}
	if o.busyTimeout >= 0 {
		cfg.Database.BusyTimeoutMS = o.busyTimeout
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.noFunctions {
		cfg.Database.Functions = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open connects to the configured database. The caller closes the returned
// connection.
func (o *rootOptions) open(cmd *cobra.Command) (*database.Conn, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	logger := logging.WithComponent(logging.New(cfg.Logging, cmd.ErrOrStderr()), "cli")

	openOpts, err := cfg.Database.OpenOptions(logger)
	if err != nil {
		return nil, err
	}
	conn, err := database.Open(cfg.Database.Path, openOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Database.Functions {
		if err := functions.Register(conn); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to register functions: %w", err)
		}
	}
	return conn, nil
}
