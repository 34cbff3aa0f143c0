package commands

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/chorm-dev/chorm/internal/loader"
)

var dropIfExists bool

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Render DROP TABLE statements for a YAML schema file",
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := loader.New(afero.NewOsFs()).Load(schemaPath)
		if err != nil {
			return err
		}
		for _, table := range tables {
			fmt.Println(table.DropDDL(dropIfExists) + ";")
		}
		return nil
	},
}

func init() {
	dropCmd.Flags().BoolVar(&dropIfExists, "if-exists", false, "emit IF EXISTS")
}
