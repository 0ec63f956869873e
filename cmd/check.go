package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/starlay/internal/registry"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configured trusted exports scripts",
	Long: `Run the full injection sequence: evaluate every configured exports
script with the privileged _builtins binding, install the declared
overrides against the frozen built-in registry, and report the result.

Fails if an exports script does not evaluate, exports a malformed dict,
or names a symbol that does not exist in the registry.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, result, err := buildEnvironment(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("OK: %d exports script(s), %d native override(s), %d toplevel override(s)\n",
		len(cfg.Exports.Paths), result.Native.Len(), result.Toplevel.Len())
	fmt.Printf("registry: %d native, %d toplevel, %d internal symbol(s)\n",
		result.Snapshot.Count(registry.NamespaceNative),
		result.Snapshot.Count(registry.NamespaceToplevel),
		result.Snapshot.Count(registry.NamespaceInternal))

	for _, name := range result.Native.OverriddenNames() {
		fmt.Printf("  native.%s overridden\n", name)
	}
	for _, name := range result.Toplevel.OverriddenNames() {
		fmt.Printf("  toplevel.%s overridden\n", name)
	}

	return nil
}
