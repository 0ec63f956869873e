// Package cmd provides the command-line interface for starlay with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration with clear precedence:
//	1. Command-line flags (--config, --log-level, etc.) - highest priority
//	2. STARLAY_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (STARLAY_LOG_LEVEL, etc.)
//	4. Configuration files (.starlay.yml) - lowest priority
//
// Environment Variables:
//
//	STARLAY_CONFIG_FILE: Path to custom configuration file
//	STARLAY_LOG_LEVEL: Override log level
//	STARLAY_EXPORTS_PATHS: Override trusted exports script paths
//	And more following the STARLAY_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "starlay",
	Short: "Builtins injection for Starlark build scripts",
	Long: `Starlay manages builtins injection for a Starlark-based build runtime:
trusted exports scripts may override built-in rule and toplevel symbols,
and receive a privileged _builtins object exposing the original
(pre-override) definitions, internal-only symbols, and semantics flags.

Quick Start:
  starlay list                    List built-in symbols per namespace
  starlay check                   Validate the configured exports scripts
  starlay resolve filegroup       Show what user scripts see for a symbol
  starlay flags                   Show semantics flags and their values
  starlay watch                   Re-validate exports scripts on change`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .starlay.yml, can also use STARLAY_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Accept snake_case spellings of flags for consistency with the
	// config file keys.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. STARLAY_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .starlay.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envFile := os.Getenv("STARLAY_CONFIG_FILE"); envFile != "" {
		viper.SetConfigFile(envFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yml")
		viper.SetConfigName(".starlay")
	}

	viper.SetEnvPrefix("STARLAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is worth a warning.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Warning: failed to read config file: %v\n", err)
		}
	}
}
