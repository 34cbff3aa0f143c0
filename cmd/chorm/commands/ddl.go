package commands

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chorm-dev/chorm/internal/core/schema"
	"github.com/chorm-dev/chorm/internal/loader"
)

var (
	ddlEngine      string
	ddlPartitionBy string
	ddlIfNotExists bool
)

var ddlCmd = &cobra.Command{
	Use:   "ddl",
	Short: "Render CREATE TABLE statements for a YAML schema file",
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := loader.New(afero.NewOsFs()).Load(schemaPath)
		if err != nil {
			return err
		}

		engine := ddlEngine
		if engine == "" {
			engine = viper.GetString("engine")
		}

		for _, table := range tables {
			var opts []schema.DDLOption
			if engine != "" {
				opts = append(opts, schema.WithEngine(engine))
			}
			if ddlPartitionBy != "" {
				opts = append(opts, schema.WithPartitionBy(ddlPartitionBy))
			}
			if ddlIfNotExists {
				opts = append(opts, schema.WithIfNotExists())
			}
			ddl, err := table.CreateDDL(opts...)
			if err != nil {
				return fmt.Errorf("table %s: %w", table.Name(), err)
			}
			fmt.Println(ddl + ";")
		}
		return nil
	},
}

func init() {
	ddlCmd.Flags().StringVar(&ddlEngine, "engine", "", "storage engine clause")
	ddlCmd.Flags().StringVar(&ddlPartitionBy, "partition-by", "", "partitioning expression")
	ddlCmd.Flags().BoolVar(&ddlIfNotExists, "if-not-exists", false, "emit IF NOT EXISTS")
}
