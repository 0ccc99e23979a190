package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/viant/sqlitekit/database"
)

// resultSet is a fully read query result.
type resultSet struct {
	columns []string
	rows    []database.Row
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var format string
	var bindPairs []string

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query and print its rows",
		Long: `Runs a single SQL statement and prints the rows it returns.

Examples:
  # Table output
  sqlitekit query -d app.db "SELECT id, name FROM company"

  # Named parameters
  sqlitekit query -d app.db "SELECT * FROM company WHERE age > :age" --bind age=30

  # CSV or JSON output
  sqlitekit query -d app.db "SELECT * FROM company" --format csv`,
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

			result, err := database.SafeExecute(conn, args[0], binds, readAll)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "table":
				return printTable(out, result)
			case "csv":
				return printCSV(out, result)
			case "json":
				return printJSON(out, result)
			default:
				return fmt.Errorf("invalid format: %s (must be table, csv, or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, csv, json)")
	cmd.Flags().StringArrayVarP(&bindPairs, "bind", "b", nil, "Named parameter as key=value (repeatable)")
	return cmd
}

func readAll(cur *database.Cursor) (resultSet, error) {
	result := resultSet{columns: cur.Columns()}
	for {
		row, ok, err := cur.Next()
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result.rows = append(result.rows, row)
	}
}

func printTable(out io.Writer, result resultSet) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	for i, col := range result.columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)

	for i := range result.columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, "---")
	}
	fmt.Fprintln(w)

	for _, row := range result.rows {
		for i, val := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, formatValue(val))
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\n(%d rows)\n", len(result.rows))
	return err
}

func printCSV(out io.Writer, result resultSet) error {
	w := csv.NewWriter(out)

	if err := w.Write(result.columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range result.rows {
		record := make([]string, len(row))
		for i, val := range row {
			record[i] = formatValue(val)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func printJSON(out io.Writer, result resultSet) error {
	records := make([]map[string]any, 0, len(result.rows))
	for _, row := range result.rows {
		rec := make(map[string]any, len(row))
		for i, col := range result.columns {
			rec[col] = row[i]
		}
		records = append(records, rec)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// formatValue formats a value for table or CSV output. BLOBs are shown in
// hex.
func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("x'%x'", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
