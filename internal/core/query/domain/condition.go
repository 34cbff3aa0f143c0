// Package domain contains the condition-tree and query-state entities
// of the query layer.
package domain

// Operator is one comparison, membership, pattern, range or nullness
// operator of a field's operator set.
type Operator string

const (
	// OpEq checks equality.
	OpEq Operator = "eq"
	// OpNe checks inequality.
	OpNe Operator = "ne"
	// OpGt checks greater than.
	OpGt Operator = "gt"
	// OpGte checks greater than or equal.
	OpGte Operator = "gte"
	// OpLt checks less than.
	OpLt Operator = "lt"
	// OpLte checks less than or equal.
	OpLte Operator = "lte"
	// OpIn checks set membership.
	OpIn Operator = "in"
	// OpNotIn checks set non-membership.
	OpNotIn Operator = "notIn"
	// OpLike matches a pattern. The pattern travels as-is; no wildcard
	// insertion happens here.
	OpLike Operator = "like"
	// OpNotLike is the negated pattern match.
	OpNotLike Operator = "notLike"
	// OpILike is the case-insensitive pattern match.
	OpILike Operator = "ilike"
	// OpBetween checks an inclusive range with exactly two endpoints.
	OpBetween Operator = "between"
	// OpIsNull checks nullness; a false value flips to IS NOT NULL.
	OpIsNull Operator = "isNull"
	// OpNotNull checks non-nullness; a false value flips to IS NULL.
	// OpIsNull and OpNotNull are logical complements, not independent
	// flags.
	OpNotNull Operator = "notNull"
)

// Operators is the fixed operator vocabulary.
var Operators = map[Operator]bool{
	OpEq: true, OpNe: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	OpIn: true, OpNotIn: true, OpLike: true, OpNotLike: true, OpILike: true,
	OpBetween: true, OpIsNull: true, OpNotNull: true,
}

// IsOperator reports whether s is in the operator vocabulary.
func IsOperator(s string) bool {
	return Operators[Operator(s)]
}

// FieldValue is the closed set of shapes a field condition can take:
// Literal, OperatorSet or Raw. The explicit tag removes the ambiguity
// between a record value that happens to look like an operator map and
// an actual operator map.
type FieldValue interface {
	fieldValue()
}

// Literal compares a field for equality against a value. A nil value
// compiles to IS NULL.
type Literal struct {
	Value interface{}
}

func (Literal) fieldValue() {}

// Value wraps v as a Literal field value.
func Value(v interface{}) Literal {
	return Literal{Value: v}
}

// OperatorSet is one field's set of operators. Multiple operators on one
// field combine with AND.
type OperatorSet map[Operator]interface{}

func (OperatorSet) fieldValue() {}

// Raw is an escape-hatch value carrying literal SQL text. The compiler
// emits it verbatim and never re-interprets its contents; aligning the
// optional values with the surrounding statement is the caller's
// responsibility.
type Raw struct {
	SQL    string
	Values []interface{}
}

func (Raw) fieldValue() {}

// RawExpr constructs a Raw expression.
func RawExpr(sql string, values ...interface{}) Raw {
	return Raw{SQL: sql, Values: values}
}

// Condition is a node of a where tree: a Fields map or a logical
// combinator.
type Condition interface {
	condition()
}

// Fields maps field names to their condition values. Entries combine
// with AND.
type Fields map[string]FieldValue

func (Fields) condition() {}

// And joins child conditions with AND.
type And []Condition

func (And) condition() {}

// Or joins child conditions with OR.
type Or []Condition

func (Or) condition() {}

// Not negates a single child condition.
type Not struct {
	Cond Condition
}

func (Not) condition() {}

// CloneCondition deep-copies a condition tree so branched query chains
// never alias each other's nodes.
func CloneCondition(c Condition) Condition {
	switch node := c.(type) {
	case nil:
		return nil
	case Fields:
		out := make(Fields, len(node))
		for field, fv := range node {
			out[field] = cloneFieldValue(fv)
		}
		return out
	case And:
		out := make(And, len(node))
		for i, child := range node {
			out[i] = CloneCondition(child)
		}
		return out
	case Or:
		out := make(Or, len(node))
		for i, child := range node {
			out[i] = CloneCondition(child)
		}
		return out
	case Not:
		return Not{Cond: CloneCondition(node.Cond)}
	default:
		return c
	}
}

func cloneFieldValue(fv FieldValue) FieldValue {
	switch v := fv.(type) {
	case OperatorSet:
		out := make(OperatorSet, len(v))
		for op, val := range v {
			out[op] = cloneValue(val)
		}
		return out
	case Raw:
		return Raw{SQL: v.SQL, Values: append([]interface{}(nil), v.Values...)}
	case Literal:
		return Literal{Value: cloneValue(v.Value)}
	default:
		return fv
	}
}

func cloneValue(v interface{}) interface{} {
	if items, ok := v.([]interface{}); ok {
		return append([]interface{}(nil), items...)
	}
	return v
}
