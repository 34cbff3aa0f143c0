package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/chorm-dev/chorm/internal/debug"
	"github.com/chorm-dev/chorm/internal/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a YAML schema file",
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := loader.New(afero.NewOsFs()).Load(schemaPath)
		if err != nil {
			return err
		}
		debug.Debug("schema loaded", "path", schemaPath, "tables", len(tables))
		for _, table := range tables {
			required := table.Required()
			fmt.Printf("%s %s (%d columns, %d required)\n",
				color.GreenString("ok"), table.Name(), len(table.ColumnNames()), len(required))
		}
		return nil
	},
}
