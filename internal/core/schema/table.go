// Package schema provides the validated table aggregate: column
// lookups, required/optional field sets, default computation and DDL
// rendering.
package schema

import (
	"github.com/chorm-dev/chorm/internal/core/schema/domain"
	"github.com/chorm-dev/chorm/internal/core/schema/validator"
)

// Table is a named, validated table schema. Construction fails closed:
// an invalid Table can never exist. All mutating operations return a new
// validated Table.
type Table struct {
	name string
	def  *domain.Definition
}

// New validates the table name and definition and constructs a Table.
func New(name string, def *domain.Definition) (*Table, error) {
	if err := validator.ValidateTableName(name); err != nil {
		return nil, err
	}
	if err := validator.ValidateDefinition(def); err != nil {
		return nil, err
	}
	return &Table{name: name, def: def}, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Definition returns the underlying column definition.
func (t *Table) Definition() *domain.Definition { return t.def }

// Column looks up a column by name.
func (t *Table) Column(name string) (*domain.Column, bool) {
	return t.def.Column(name)
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	return t.def.Names()
}

// Required returns the names of columns a create payload must spell
// out: non-nullable, no default, not auto-increment and not the primary
// key. Primary keys are listed separately since they are typically
// supplied by the caller's key strategy rather than the record body.
func (t *Table) Required() []string {
	var required []string
	t.def.Each(func(name string, col *domain.Column) {
		if !col.Nullable && col.Default == nil && !col.AutoIncrement && !col.PrimaryKey {
			required = append(required, name)
		}
	})
	return required
}

// Optional returns the names of columns a create payload may omit.
func (t *Table) Optional() []string {
	var optional []string
	t.def.Each(func(name string, col *domain.Column) {
		if col.Nullable || col.Default != nil || col.AutoIncrement {
			optional = append(optional, name)
		}
	})
	return optional
}

// Defaults computes the default-value mapping, invoking generator
// defaults at call time.
func (t *Table) Defaults() map[string]interface{} {
	defaults := make(map[string]interface{})
	t.def.Each(func(name string, col *domain.Column) {
		if col.Default != nil {
			defaults[name] = col.Default.Resolve()
		}
	})
	return defaults
}

// ValidateData validates a full record against the table, as on create.
func (t *Table) ValidateData(record map[string]interface{}) error {
	return validator.ValidateData(t.def, record)
}

// ValidatePartialData validates a partial record, as on update.
func (t *Table) ValidatePartialData(record map[string]interface{}) error {
	return validator.ValidatePartialData(t.def, record)
}

// AddColumn returns a new Table with the column appended.
func (t *Table) AddColumn(name string, col *domain.Column) (*Table, error) {
	def, err := t.def.Add(name, col)
	if err != nil {
		return nil, err
	}
	return New(t.name, def)
}

// RemoveColumn returns a new Table without the named column.
func (t *Table) RemoveColumn(name string) (*Table, error) {
	def, err := t.def.Remove(name)
	if err != nil {
		return nil, err
	}
	return New(t.name, def)
}

// ModifyColumn returns a new Table with the named column replaced.
func (t *Table) ModifyColumn(name string, col *domain.Column) (*Table, error) {
	def, err := t.def.Modify(name, col)
	if err != nil {
		return nil, err
	}
	return New(t.name, def)
}
