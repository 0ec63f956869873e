package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/starlay/internal/registry"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List built-in symbols per namespace",
	Long: `List the built-in symbols of each namespace with their Starlark type
and whether a trusted exports script overrides them.

Examples:
  starlay list                    # List all namespaces in table format
  starlay list -n native          # Only the native rule namespace
  starlay list -f json            # Output as JSON
  starlay list -f yaml            # Output as YAML`,
	RunE: runList,
}

var (
	listNamespace string
	listFormat    string
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listNamespace, "namespace", "n", "all", "Namespace to list (native, toplevel, internal, all)")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json, yaml)")
}

// symbolRow is one line of list output.
type symbolRow struct {
	Namespace  string `json:"namespace" yaml:"namespace"`
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Overridden bool   `json:"overridden" yaml:"overridden"`
}

func runList(cmd *cobra.Command, args []string) error {
	_, result, err := buildEnvironment(context.Background())
	if err != nil {
		return err
	}

	namespaces, err := selectedNamespaces(listNamespace)
	if err != nil {
		return err
	}

	var rows []symbolRow
	for _, ns := range namespaces {
		for _, name := range result.Snapshot.Names(ns) {
			value, _ := result.Snapshot.Get(ns, name)

			overridden := false
			switch ns {
			case registry.NamespaceNative:
				overridden = result.Native.Overridden(name)
			case registry.NamespaceToplevel:
				overridden = result.Toplevel.Overridden(name)
			}

			rows = append(rows, symbolRow{
				Namespace:  string(ns),
				Name:       name,
				Type:       value.Type(),
				Overridden: overridden,
			})
		}
	}

	if len(rows) == 0 {
		fmt.Println("No symbols found.")
		return nil
	}

	switch strings.ToLower(listFormat) {
	case "json":
		return outputListJSON(rows)
	case "yaml":
		return outputListYAML(rows)
	case "table":
		return outputListTable(rows)
	default:
		return fmt.Errorf("unknown format: %s (expected table, json, or yaml)", listFormat)
	}
}

func selectedNamespaces(selector string) ([]registry.Namespace, error) {
	if selector == "all" || selector == "" {
		return registry.Namespaces(), nil
	}

	ns := registry.Namespace(selector)
	if !ns.Valid() {
		return nil, fmt.Errorf("unknown namespace: %s (expected native, toplevel, internal, or all)", selector)
	}
	return []registry.Namespace{ns}, nil
}

func outputListTable(rows []symbolRow) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAMESPACE\tNAME\tTYPE\tOVERRIDDEN")
	for _, row := range rows {
		overridden := ""
		if row.Overridden {
			overridden = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Namespace, row.Name, row.Type, overridden)
	}
	return w.Flush()
}

func outputListJSON(rows []symbolRow) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

func outputListYAML(rows []symbolRow) error {
	data, err := yaml.Marshal(rows)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
