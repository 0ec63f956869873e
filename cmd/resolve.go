package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/starlay/internal/overrides"
	"github.com/conneroisu/starlay/internal/registry"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve a symbol as ordinary user scripts would",
	Long: `Resolve a symbol through the override table: the replacement from a
trusted exports script if one is installed, otherwise the original
built-in definition. Also shows the original definition the privileged
view would expose.

Examples:
  starlay resolve filegroup            # Resolve in the native namespace
  starlay resolve -n toplevel struct   # Resolve a toplevel symbol`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var resolveNamespace string

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveNamespace, "namespace", "n", "native", "Namespace to resolve in (native, toplevel)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	name := args[0]

	_, result, err := buildEnvironment(context.Background())
	if err != nil {
		return err
	}

	var table *overrides.Table
	var ns registry.Namespace
	switch resolveNamespace {
	case "native":
		table, ns = result.Native, registry.NamespaceNative
	case "toplevel":
		table, ns = result.Toplevel, registry.NamespaceToplevel
	default:
		return fmt.Errorf("unknown namespace: %s (only native and toplevel are resolvable)", resolveNamespace)
	}

	value, err := table.Resolve(name)
	if err != nil {
		return err
	}

	source := "builtin"
	if table.Overridden(name) {
		source = "override"
	}

	fmt.Printf("%s.%s = %s (%s, source: %s)\n", ns, name, value.String(), value.Type(), source)

	if table.Overridden(name) {
		original, ok := result.Snapshot.Get(ns, name)
		if ok {
			fmt.Printf("original: %s (%s)\n", original.String(), original.Type())
		}
	}

	return nil
}
