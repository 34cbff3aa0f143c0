package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/chorm-dev/chorm/internal/core/schema/domain"
	"github.com/chorm-dev/chorm/internal/core/schema/typemap"
	"github.com/chorm-dev/chorm/internal/core/sqlgen"
)

// DefaultEngine is the storage engine used when none is configured.
const DefaultEngine = "MergeTree()"

// DDLOptions configure CREATE TABLE rendering.
type DDLOptions struct {
	Engine      string
	OrderBy     []string
	PartitionBy string
	Settings    map[string]string
	IfNotExists bool
}

// DDLOption mutates DDLOptions.
type DDLOption func(*DDLOptions)

// WithEngine sets the storage engine clause.
func WithEngine(engine string) DDLOption {
	return func(o *DDLOptions) { o.Engine = engine }
}

// WithOrderBy sets an explicit ordering key.
func WithOrderBy(columns ...string) DDLOption {
	return func(o *DDLOptions) { o.OrderBy = columns }
}

// WithPartitionBy sets a partitioning expression.
func WithPartitionBy(expr string) DDLOption {
	return func(o *DDLOptions) { o.PartitionBy = expr }
}

// WithSettings sets engine settings.
func WithSettings(settings map[string]string) DDLOption {
	return func(o *DDLOptions) { o.Settings = settings }
}

// WithIfNotExists makes the statement idempotent.
func WithIfNotExists() DDLOption {
	return func(o *DDLOptions) { o.IfNotExists = true }
}

// CreateDDL renders the full CREATE TABLE statement. The ordering key is
// the explicit OrderBy list, else the primary-key column, else the first
// declared column.
func (t *Table) CreateDDL(opts ...DDLOption) (string, error) {
	options := DDLOptions{Engine: DefaultEngine}
	for _, opt := range opts {
		opt(&options)
	}

	var columns []string
	var renderErr error
	t.def.Each(func(name string, col *domain.Column) {
		if renderErr != nil {
			return
		}
		fragment, err := renderColumn(name, col)
		if err != nil {
			renderErr = err
			return
		}
		columns = append(columns, fragment)
	})
	if renderErr != nil {
		return "", renderErr
	}

	orderBy := options.OrderBy
	if len(orderBy) == 0 {
		if pk, ok := t.def.PrimaryKey(); ok {
			orderBy = []string{pk}
		} else {
			orderBy = t.def.Names()[:1]
		}
	}
	orderQuoted, err := sqlgen.QuoteAll(orderBy)
	if err != nil {
		return "", err
	}

	tableName, err := sqlgen.QuoteIdentifier(t.name)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if options.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(tableName)
	b.WriteString(" (\n  ")
	b.WriteString(strings.Join(columns, ",\n  "))
	b.WriteString("\n) ENGINE = ")
	b.WriteString(options.Engine)
	b.WriteString(" ORDER BY (")
	b.WriteString(strings.Join(orderQuoted, ", "))
	b.WriteString(")")
	if options.PartitionBy != "" {
		b.WriteString(" PARTITION BY ")
		b.WriteString(options.PartitionBy)
	}
	if len(options.Settings) > 0 {
		keys := make([]string, 0, len(options.Settings))
		for k := range options.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s = %s", k, options.Settings[k]))
		}
		b.WriteString(" SETTINGS ")
		b.WriteString(strings.Join(pairs, ", "))
	}
	return b.String(), nil
}

// DropDDL renders the DROP TABLE statement.
func (t *Table) DropDDL(ifExists bool) string {
	name, _ := sqlgen.QuoteIdentifier(t.name)
	if ifExists {
		return "DROP TABLE IF EXISTS " + name
	}
	return "DROP TABLE " + name
}

// ColumnDDL renders a single column's full definition fragment for use
// in ALTER-style statements.
func (t *Table) ColumnDDL(name string) (string, error) {
	col, ok := t.def.Column(name)
	if !ok {
		return "", domain.NewValidationError(name, "unknown column")
	}
	return renderColumn(name, col)
}

func renderColumn(name string, col *domain.Column) (string, error) {
	quoted, err := sqlgen.QuoteIdentifier(name)
	if err != nil {
		return "", err
	}
	typeText, err := typemap.RenderType(col)
	if err != nil {
		return "", err
	}
	fragment := quoted + " " + typeText
	if col.Default != nil && col.Default.Kind == domain.DefaultLiteral {
		fragment += " DEFAULT " + quoteDefault(col.Default.Value)
	}
	if col.Comment != "" {
		fragment += fmt.Sprintf(" COMMENT '%s'", strings.ReplaceAll(col.Comment, "'", "\\'"))
	}
	return fragment, nil
}

// quoteDefault renders a default literal per host value type: strings
// are quote-escaped and single-quoted, numbers and booleans are bare,
// everything else is JSON-stringified and quoted.
func quoteDefault(value interface{}) string {
	switch v := value.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "\\'") + "'"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", v)
	case nil:
		return "NULL"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "''"
		}
		return "'" + strings.ReplaceAll(string(data), "'", "\\'") + "'"
	}
}
