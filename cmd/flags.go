package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/starlay/internal/builtins"
	"github.com/conneroisu/starlay/internal/semantics"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Show semantics flags and their Starlark values",
	Long: `Show every semantics flag from the configuration together with the
Starlark value get_flag would return for it. Flags whose native value
has no Starlark representation are reported as errors, matching the
strictness of get_flag itself.

Examples:
  starlay flags              # Table of flags
  starlay flags -f json      # Output as JSON`,
	RunE: runFlags,
}

var flagsFormat string

func init() {
	rootCmd.AddCommand(flagsCmd)

	flagsCmd.Flags().StringVarP(&flagsFormat, "format", "f", "table", "Output format (table, json)")
}

// flagRow is one line of flags output.
type flagRow struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

func runFlags(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	store := semantics.NewStore(cfg.Flags)

	rows := make([]flagRow, 0, store.Len())
	for _, name := range store.Names() {
		raw, _ := store.Lookup(name)

		row := flagRow{Name: name}
		value, convErr := builtins.ToStarlark(name, raw)
		if convErr != nil {
			row.Error = convErr.Error()
		} else {
			row.Value = value.String()
			row.Type = value.Type()
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		fmt.Println("No semantics flags set.")
		return nil
	}

	switch strings.ToLower(flagsFormat) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FLAG\tVALUE\tTYPE")
		for _, row := range rows {
			if row.Error != "" {
				fmt.Fprintf(w, "%s\t<error: %s>\t\n", row.Name, row.Error)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", row.Name, row.Value, row.Type)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown format: %s (expected table or json)", flagsFormat)
	}
}
