// Package compiler turns condition trees and query state into
// parameterized SQL text plus an ordered parameter map.
package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chorm-dev/chorm/internal/core/query/domain"
	schemadomain "github.com/chorm-dev/chorm/internal/core/schema/domain"
	"github.com/chorm-dev/chorm/internal/core/schema/typemap"
	"github.com/chorm-dev/chorm/internal/core/sqlgen"
)

// operatorOrder fixes the compilation order of operator keys within one
// field entry so repeated builds are byte-identical.
var operatorOrder = []domain.Operator{
	domain.OpEq, domain.OpNe,
	domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte,
	domain.OpIn, domain.OpNotIn,
	domain.OpLike, domain.OpNotLike, domain.OpILike,
	domain.OpBetween,
	domain.OpIsNull, domain.OpNotNull,
}

// BuildWhere compiles a condition tree into a SQL boolean expression and
// an ordered parameter map. Parameters are named sequentially from
// startIndex so a WHERE clause can be concatenated with other
// parameterized fragments compiled elsewhere without name collisions.
// An empty tree compiles to the always-true predicate.
func BuildWhere(cond domain.Condition, startIndex int) (string, *sqlgen.Params, error) {
	w := &whereCompiler{params: sqlgen.NewParams(), index: startIndex}
	sql, err := w.compile(cond)
	if err != nil {
		return "", nil, err
	}
	if sql == "" {
		sql = sqlgen.TruePredicate
	}
	return sql, w.params, nil
}

type whereCompiler struct {
	params *sqlgen.Params
	index  int
}

// bind binds the next sequential parameter and returns its placeholder,
// with the wire type inferred from the value.
func (w *whereCompiler) bind(value interface{}) string {
	name := sqlgen.ParamName(w.index)
	w.index++
	w.params.Bind(name, value)
	return sqlgen.Placeholder(name, typemap.WireToken(value))
}

func (w *whereCompiler) compile(cond domain.Condition) (string, error) {
	switch node := cond.(type) {
	case nil:
		return "", nil
	case domain.Fields:
		return w.compileFields(node)
	case domain.And:
		return w.compileGroup([]domain.Condition(node), " AND ")
	case domain.Or:
		return w.compileGroup([]domain.Condition(node), " OR ")
	case domain.Not:
		child, err := w.compile(node.Cond)
		if err != nil {
			return "", err
		}
		if child == "" {
			return "", nil
		}
		return "NOT (" + child + ")", nil
	default:
		return "", schemadomain.NewValidationError("", "unsupported condition node %T", cond)
	}
}

func (w *whereCompiler) compileFields(fields domain.Fields) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var clauses []string
	for _, name := range names {
		clause, err := w.compileField(name, fields[name])
		if err != nil {
			return "", err
		}
		if clause != "" {
			clauses = append(clauses, clause)
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return "(" + strings.Join(clauses, " AND ") + ")", nil
}

func (w *whereCompiler) compileGroup(children []domain.Condition, joiner string) (string, error) {
	var parts []string
	for _, child := range children {
		sql, err := w.compile(child)
		if err != nil {
			return "", err
		}
		if sql != "" {
			parts = append(parts, sql)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, joiner) + ")", nil
}

// compileField dispatches on the field value's tag: raw SQL is emitted
// verbatim, literal nil becomes IS NULL, operator sets delegate to
// operator compilation and everything else is simple equality.
func (w *whereCompiler) compileField(field string, fv domain.FieldValue) (string, error) {
	if raw, ok := fv.(domain.Raw); ok {
		return raw.SQL, nil
	}

	quoted, err := sqlgen.QuoteIdentifier(field)
	if err != nil {
		return "", schemadomain.NewValidationError(field, "invalid field name")
	}

	switch v := fv.(type) {
	case domain.Literal:
		if v.Value == nil {
			return quoted + " IS NULL", nil
		}
		return fmt.Sprintf("%s = %s", quoted, w.bind(v.Value)), nil
	case domain.OperatorSet:
		return w.compileOperators(field, quoted, v)
	default:
		return "", schemadomain.NewValidationError(field, "unsupported field value %T", fv)
	}
}

func (w *whereCompiler) compileOperators(field, quoted string, set domain.OperatorSet) (string, error) {
	for op := range set {
		if !domain.Operators[op] {
			return "", schemadomain.NewValidationError(field, "unknown operator %q", string(op))
		}
	}

	var clauses []string
	for _, op := range operatorOrder {
		value, present := set[op]
		if !present {
			continue
		}
		clause, err := w.compileOperator(field, quoted, op, value)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, " AND "), nil
}

func (w *whereCompiler) compileOperator(field, quoted string, op domain.Operator, value interface{}) (string, error) {
	switch op {
	case domain.OpEq:
		if value == nil {
			return quoted + " IS NULL", nil
		}
		return fmt.Sprintf("%s = %s", quoted, w.bind(value)), nil
	case domain.OpNe:
		if value == nil {
			return quoted + " IS NOT NULL", nil
		}
		return fmt.Sprintf("%s != %s", quoted, w.bind(value)), nil
	case domain.OpGt:
		return fmt.Sprintf("%s > %s", quoted, w.bind(value)), nil
	case domain.OpGte:
		return fmt.Sprintf("%s >= %s", quoted, w.bind(value)), nil
	case domain.OpLt:
		return fmt.Sprintf("%s < %s", quoted, w.bind(value)), nil
	case domain.OpLte:
		return fmt.Sprintf("%s <= %s", quoted, w.bind(value)), nil
	case domain.OpIn, domain.OpNotIn:
		return w.compileMembership(field, quoted, op, value)
	case domain.OpLike:
		return fmt.Sprintf("%s LIKE %s", quoted, w.bind(value)), nil
	case domain.OpNotLike:
		return fmt.Sprintf("%s NOT LIKE %s", quoted, w.bind(value)), nil
	case domain.OpILike:
		return fmt.Sprintf("%s ILIKE %s", quoted, w.bind(value)), nil
	case domain.OpBetween:
		items, ok := toSlice(value)
		if !ok || len(items) != 2 {
			return "", schemadomain.NewValidationError(field, "between requires exactly two endpoints, got %v", value)
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", quoted, w.bind(items[0]), w.bind(items[1])), nil
	case domain.OpIsNull:
		b, ok := value.(bool)
		if !ok {
			return "", schemadomain.NewValidationError(field, "isNull requires a boolean, got %T", value)
		}
		if b {
			return quoted + " IS NULL", nil
		}
		return quoted + " IS NOT NULL", nil
	case domain.OpNotNull:
		b, ok := value.(bool)
		if !ok {
			return "", schemadomain.NewValidationError(field, "notNull requires a boolean, got %T", value)
		}
		if b {
			return quoted + " IS NOT NULL", nil
		}
		return quoted + " IS NULL", nil
	default:
		return "", schemadomain.NewValidationError(field, "unknown operator %q", string(op))
	}
}

// compileMembership compiles in/notIn. Empty input short-circuits to a
// constant predicate with zero parameters bound.
func (w *whereCompiler) compileMembership(field, quoted string, op domain.Operator, value interface{}) (string, error) {
	items, ok := toSlice(value)
	if !ok {
		return "", schemadomain.NewValidationError(field, "%s requires an array, got %T", string(op), value)
	}
	if len(items) == 0 {
		if op == domain.OpIn {
			return sqlgen.FalsePredicate, nil
		}
		return sqlgen.TruePredicate, nil
	}
	placeholders := make([]string, 0, len(items))
	for _, item := range items {
		placeholders = append(placeholders, w.bind(item))
	}
	keyword := "IN"
	if op == domain.OpNotIn {
		keyword = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", quoted, keyword, strings.Join(placeholders, ", ")), nil
}

func toSlice(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		return v, true
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []int64:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	}
	return nil, false
}
