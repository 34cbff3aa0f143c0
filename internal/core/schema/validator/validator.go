// Package validator implements structural and semantic validation of
// schema definitions, column definitions and record payloads. All
// functions are pure; failures are returned, never logged or swallowed.
package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/chorm-dev/chorm/internal/core/schema/domain"
	"github.com/chorm-dev/chorm/internal/core/schema/typemap"
)

// identifierPattern is the exact identifier grammar for column and
// table names.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// MaxTableNameLength bounds table names on top of the identifier
// grammar.
const MaxTableNameLength = 64

// ValidIdentifier reports whether s matches the identifier grammar.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// ValidateTableName checks a table name against the identifier grammar
// and the maximum-length bound.
func ValidateTableName(name string) error {
	if !ValidIdentifier(name) {
		return domain.NewValidationError(name, "invalid table name")
	}
	if len(name) > MaxTableNameLength {
		return domain.NewValidationError(name, "table name exceeds %d characters", MaxTableNameLength)
	}
	return nil
}

// ValidateDefinition checks a whole table definition: non-empty, at most
// one primary key, every column individually valid. A duplicate
// primary-key declaration names every offending column.
func ValidateDefinition(def *domain.Definition) error {
	if def == nil || def.Len() == 0 {
		return domain.NewValidationError("", "definition must have at least one column")
	}

	var primaryKeys []string
	var firstErr error
	def.Each(func(name string, col *domain.Column) {
		if col.PrimaryKey {
			primaryKeys = append(primaryKeys, name)
		}
		if firstErr == nil {
			firstErr = ValidateColumn(name, col)
		}
	})
	if len(primaryKeys) > 1 {
		return domain.NewValidationError(strings.Join(primaryKeys, ", "),
			"multiple primary keys declared")
	}
	return firstErr
}

// ValidateColumn checks a single column definition against the kind
// invariants.
func ValidateColumn(name string, col *domain.Column) error {
	if !ValidIdentifier(name) {
		return domain.NewValidationError(name, "invalid column name")
	}
	if col == nil {
		return domain.NewValidationError(name, "column is nil")
	}
	if col.PrimaryKey && col.Nullable {
		return domain.NewValidationError(name, "primary key cannot be nullable")
	}
	if col.AutoIncrement && !col.Type.IsInteger() {
		return domain.NewValidationError(name, "auto increment requires an integer kind, got %s", col.Type)
	}
	switch col.Type {
	case domain.TypeFixedString:
		if col.Length <= 0 {
			return domain.NewValidationError(name, "FixedString requires a positive length")
		}
	case domain.TypeDecimal:
		if col.Precision <= 0 {
			return domain.NewValidationError(name, "Decimal requires a positive precision")
		}
		if col.Scale < 0 || col.Scale > col.Precision {
			return domain.NewValidationError(name, "Decimal scale must be between 0 and precision")
		}
	case domain.TypeArray, domain.TypeLowCardinality:
		if col.ElementType == nil {
			return domain.NewValidationError(name, "%s requires an element type", col.Type)
		}
	case domain.TypeEnum8:
		if len(col.EnumValues) > 256 {
			return domain.NewValidationError(name, "Enum8 supports at most 256 values, got %d", len(col.EnumValues))
		}
	case domain.TypeEnum16:
		if len(col.EnumValues) > 65536 {
			return domain.NewValidationError(name, "Enum16 supports at most 65536 values, got %d", len(col.EnumValues))
		}
	}
	return nil
}

// ValidateData validates a full record against a definition, as used on
// create. Unknown fields fail; every column without a value must be
// nullable, defaulted or auto-increment; every present value must
// satisfy the column's validity check.
func ValidateData(def *domain.Definition, record map[string]interface{}) error {
	for field := range record {
		if _, ok := def.Column(field); !ok {
			return domain.NewValidationError(field, "unknown field")
		}
	}

	var err error
	def.Each(func(name string, col *domain.Column) {
		if err != nil {
			return
		}
		value, present := record[name]
		if !present {
			if col.Nullable || col.Default != nil || col.AutoIncrement {
				return
			}
			err = domain.NewValidationError(name, "field is required")
			return
		}
		valid, checkErr := typemap.IsValid(value, col)
		if checkErr != nil {
			if errors.Is(checkErr, domain.ErrNotNullable) {
				err = domain.NewValidationError(name, "null value for non-nullable field")
				return
			}
			err = fmt.Errorf("%s: %w", name, checkErr)
			return
		}
		if !valid {
			err = domain.NewValidationError(name, "value %v does not match column type %s", value, col.Type)
		}
	})
	return err
}

// ValidatePartialData validates a partial record against a definition,
// as used on update. The primary-key field must not appear at all, and
// null is accepted for every field regardless of nullability: at update
// time a null is a "no opinion" signal, not a constraint violation.
func ValidatePartialData(def *domain.Definition, record map[string]interface{}) error {
	pk, hasPK := def.PrimaryKey()
	for field, value := range record {
		col, ok := def.Column(field)
		if !ok {
			return domain.NewValidationError(field, "unknown field")
		}
		if hasPK && field == pk {
			return domain.NewValidationError(field, "primary key cannot be updated")
		}
		if value == nil {
			continue
		}
		valid, err := typemap.IsValid(value, col)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if !valid {
			return domain.NewValidationError(field, "value %v does not match column type %s", value, col.Type)
		}
	}
	return nil
}
