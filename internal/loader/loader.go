// Package loader reads YAML table definitions and turns them into
// validated schema tables.
package loader

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/chorm-dev/chorm/internal/core/schema"
	"github.com/chorm-dev/chorm/internal/core/schema/domain"
)

type yamlFile struct {
	Tables []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name    string       `yaml:"name"`
	Columns []yamlColumn `yaml:"columns"`
}

type yamlColumn struct {
	Name          string       `yaml:"name"`
	Type          string       `yaml:"type"`
	Nullable      bool         `yaml:"nullable"`
	PrimaryKey    bool         `yaml:"primaryKey"`
	Unique        bool         `yaml:"unique"`
	AutoIncrement bool         `yaml:"autoIncrement"`
	Default       *interface{} `yaml:"default"`
	Comment       string       `yaml:"comment"`
	Length        int          `yaml:"length"`
	Precision     int          `yaml:"precision"`
	Scale         int          `yaml:"scale"`
	Element       *yamlColumn  `yaml:"element"`
	EnumValues    []string     `yaml:"enumValues"`
}

// Loader reads schema files from a filesystem.
type Loader struct {
	fs afero.Fs
}

// New creates a loader over fs.
func New(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Load parses a YAML schema file into validated tables. Any invalid
// table fails the whole load.
func (l *Loader) Load(path string) ([]*schema.Table, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}
	if len(file.Tables) == 0 {
		return nil, fmt.Errorf("schema file %s defines no tables", path)
	}

	tables := make([]*schema.Table, 0, len(file.Tables))
	for _, yt := range file.Tables {
		table, err := buildTable(yt)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", yt.Name, err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func buildTable(yt yamlTable) (*schema.Table, error) {
	entries := make([]domain.ColumnEntry, 0, len(yt.Columns))
	for _, yc := range yt.Columns {
		col, err := buildColumn(yc)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", yc.Name, err)
		}
		entries = append(entries, domain.Col(yc.Name, col))
	}
	def, err := domain.NewDefinition(entries...)
	if err != nil {
		return nil, err
	}
	return schema.New(yt.Name, def)
}

func buildColumn(yc yamlColumn) (*domain.Column, error) {
	col := &domain.Column{
		Type:          domain.ColumnType(yc.Type),
		Nullable:      yc.Nullable,
		PrimaryKey:    yc.PrimaryKey,
		Unique:        yc.Unique,
		AutoIncrement: yc.AutoIncrement,
		Comment:       yc.Comment,
		Length:        yc.Length,
		Precision:     yc.Precision,
		Scale:         yc.Scale,
		EnumValues:    yc.EnumValues,
	}
	if yc.Type == "" {
		return nil, fmt.Errorf("type is required")
	}
	if yc.Default != nil {
		col.Default = domain.Literal(*yc.Default)
	}
	if yc.Element != nil {
		elem, err := buildColumn(*yc.Element)
		if err != nil {
			return nil, err
		}
		col.ElementType = elem
	}
	return col, nil
}
