// Package sqlgen is the low-level statement assembler: identifier
// quoting, ordered parameter maps, placeholder rendering and statement
// fragments. It knows nothing about schemas or condition trees.
package sqlgen

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern is the identifier grammar. Quoting fails closed on
// anything outside it; this is the injection defense for field and table
// names. Values are defended by parameter binding, never interpolation.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Constant predicates used for empty and short-circuited conditions.
const (
	// TruePredicate is the always-true WHERE fragment.
	TruePredicate = "1 = 1"
	// FalsePredicate is the always-false WHERE fragment.
	FalsePredicate = "1 = 0"
)

// ValidIdentifier reports whether s matches the identifier grammar.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// QuoteIdentifier backtick-quotes an identifier, rejecting anything
// outside the identifier grammar.
func QuoteIdentifier(s string) (string, error) {
	if !ValidIdentifier(s) {
		return "", fmt.Errorf("invalid identifier %q", s)
	}
	return "`" + s + "`", nil
}

// ParamName returns the sequential parameter name for index i.
func ParamName(i int) string {
	return fmt.Sprintf("param%d", i)
}

// Placeholder renders the named-placeholder syntax {name:Type} that the
// execution collaborator substitutes at the wire level.
func Placeholder(name, typeToken string) string {
	return fmt.Sprintf("{%s:%s}", name, typeToken)
}

// Params is an insertion-ordered parameter map. Iteration order is the
// bind order, which matches placeholder numbering in the generated SQL.
type Params struct {
	names  []string
	values map[string]interface{}
}

// NewParams creates an empty parameter map.
func NewParams() *Params {
	return &Params{values: make(map[string]interface{})}
}

// Bind adds a named parameter. Rebinding an existing name is a
// programming error and panics; names are generated sequentially so a
// collision means the caller mismanaged its offset.
func (p *Params) Bind(name string, value interface{}) {
	if _, exists := p.values[name]; exists {
		panic(fmt.Sprintf("sqlgen: parameter %q bound twice", name))
	}
	p.names = append(p.names, name)
	p.values[name] = value
}

// Merge appends all parameters from other, preserving order.
func (p *Params) Merge(other *Params) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		p.Bind(name, other.values[name])
	}
}

// Len returns the number of bound parameters.
func (p *Params) Len() int { return len(p.names) }

// Names returns parameter names in bind order.
func (p *Params) Names() []string {
	return append([]string(nil), p.names...)
}

// Get returns the value bound to name.
func (p *Params) Get(name string) (interface{}, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Map returns the parameters as a plain map for the execution
// collaborator.
func (p *Params) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(p.names))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// QuoteAll quotes a list of identifiers, failing on the first invalid
// one.
func QuoteAll(names []string) ([]string, error) {
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		q, err := QuoteIdentifier(n)
		if err != nil {
			return nil, err
		}
		quoted = append(quoted, q)
	}
	return quoted, nil
}

// SelectClause renders "SELECT a, b" or "SELECT *" when fields is empty.
func SelectClause(fields []string) (string, error) {
	if len(fields) == 0 {
		return "SELECT *", nil
	}
	quoted, err := QuoteAll(fields)
	if err != nil {
		return "", err
	}
	return "SELECT " + strings.Join(quoted, ", "), nil
}

// FromClause renders "FROM `table`".
func FromClause(table string) (string, error) {
	q, err := QuoteIdentifier(table)
	if err != nil {
		return "", err
	}
	return "FROM " + q, nil
}

// InsertStmt renders "INSERT INTO `table` (`a`, `b`) VALUES (p1, p2)"
// from pre-rendered value placeholders.
func InsertStmt(table string, columns []string, placeholders []string) (string, error) {
	q, err := QuoteIdentifier(table)
	if err != nil {
		return "", err
	}
	quoted, err := QuoteAll(columns)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		q, strings.Join(quoted, ", "), strings.Join(placeholders, ", ")), nil
}

// UpdateStmt renders "UPDATE `table` SET `a` = p1, ... WHERE cond".
func UpdateStmt(table string, assignments []string, where string) (string, error) {
	q, err := QuoteIdentifier(table)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		q, strings.Join(assignments, ", "), where), nil
}

// DeleteStmt renders "DELETE FROM `table` WHERE cond".
func DeleteStmt(table, where string) (string, error) {
	q, err := QuoteIdentifier(table)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s", q, where), nil
}
