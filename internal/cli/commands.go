package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/sqlitekit/database"
	"github.com/viant/sqlitekit/engine"
)

func newExecCmd(opts *rootOptions) *cobra.Command {
	var bindPairs []string

	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run statements that return no rows",
		Long: `Runs SQL that returns no rows and prints the number of rows changed.

Without --bind the argument may hold several semicolon-separated statements.
With --bind it must be a single statement.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			binds, err := parseBinds(bindPairs)
			if err != nil {
				return err
			}
			conn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			var n int
			if binds == nil {
				n, err = conn.ExecuteForAffectedRowCount(args[0])
			} else {
				n, err = conn.SafeModify(args[0], binds)
			}
			if err != nil {
				return fmt.Errorf("exec failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows affected\n", n)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&bindPairs, "bind", "b", nil, "Named parameter as key=value (repeatable)")
	return cmd
}

func newInsertCmd(opts *rootOptions) *cobra.Command {
	var bindPairs []string

	cmd := &cobra.Command{
		Use:   "insert <sql>",
		Short: "Run an INSERT and print the new row id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			binds, err := parseBinds(bindPairs)
			if err != nil {
				return err
			}
			conn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			id, err := conn.SafeInsert(args[0], binds)
			if err != nil {
				return fmt.Errorf("insert failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&bindPairs, "bind", "b", nil, "Named parameter as key=value (repeatable)")
	return cmd
}

func newEscapeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "escape <text>",
		Short: "Escape text for a single-quoted SQL literal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			escaped, err := conn.Escape(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), escaped)
			return nil
		},
	}
}

func newFunctionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the functions and collations installed on open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			for _, r := range conn.Registrations() {
				if r.Kind == database.KindCollation {
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", r.Kind, r.Name)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s/%s\n", r.Kind, r.Name, arity(r.ArgumentCount))
			}
			return nil
		},
	}
}

func arity(n int) string {
	if n < 0 {
		return "*"
	}
	return fmt.Sprint(n)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the linked SQLite version",
		Run: func(cmd *cobra.Command, _ []string) {
			v := engine.Version()
			fmt.Fprintf(cmd.OutOrStdout(), "SQLite %s (%d)\n", v.VersionString, v.VersionNumber)
		},
	}
}
