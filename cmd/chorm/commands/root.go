// Package commands implements the chorm CLI. The CLI renders and
// validates schemas; it never talks to a database itself.
package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chorm-dev/chorm/internal/debug"
)

var (
	schemaPath string
	debugLogs  bool
)

var rootCmd = &cobra.Command{
	Use:   "chorm",
	Short: "Schema tooling for the chorm ClickHouse query layer",
	Long: `chorm validates YAML table definitions and renders ClickHouse DDL.

Examples:

  chorm validate -f schema.yaml
  chorm ddl -f schema.yaml --engine "ReplacingMergeTree()"
  chorm drop -f schema.yaml --if-exists
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file is optional; env and config file settings merge
		// through viper.
		_ = godotenv.Load()
		debug.Init(debugLogs || viper.GetBool("debug"))
		if schemaPath == "" {
			schemaPath = viper.GetString("schema")
		}
		if schemaPath == "" {
			schemaPath = "schema.yaml"
		}
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "file", "f", "", "path to the YAML schema file")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "enable debug logging")
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(ddlCmd)
	rootCmd.AddCommand(dropCmd)
}

func initConfig() {
	viper.SetConfigName("chorm")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("CHORM")
	viper.AutomaticEnv()
	// Missing config file is fine; flags and env cover everything.
	_ = viper.ReadInConfig()
}
