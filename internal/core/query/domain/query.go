package domain

// SortDirection represents sort direction.
type SortDirection string

const (
	// Asc sorts ascending.
	Asc SortDirection = "ASC"
	// Desc sorts descending.
	Desc SortDirection = "DESC"
)

// OrderBy is one (field, direction) sort pair.
type OrderBy struct {
	Field     string
	Direction SortDirection
}

// Query is the per-builder-chain state accumulator: accumulated where
// trees (ANDed together), select fields, sort pairs, limit/offset and
// group-by fields. It is never shared: every chainable call clones it.
type Query struct {
	Table      string
	Conditions []Condition
	Fields     []string
	Ordering   []OrderBy
	Limit      *int
	Offset     *int
	GroupBy    []string
}

// NewQuery creates an empty query state for a table.
func NewQuery(table string) *Query {
	return &Query{Table: table}
}

// Clone deep-copies the query state, including every condition tree and
// field list, so branched chains are provably independent.
func (q *Query) Clone() *Query {
	out := &Query{Table: q.Table}
	if q.Conditions != nil {
		out.Conditions = make([]Condition, len(q.Conditions))
		for i, c := range q.Conditions {
			out.Conditions[i] = CloneCondition(c)
		}
	}
	if q.Fields != nil {
		out.Fields = append([]string(nil), q.Fields...)
	}
	if q.Ordering != nil {
		out.Ordering = append([]OrderBy(nil), q.Ordering...)
	}
	if q.Limit != nil {
		limit := *q.Limit
		out.Limit = &limit
	}
	if q.Offset != nil {
		offset := *q.Offset
		out.Offset = &offset
	}
	if q.GroupBy != nil {
		out.GroupBy = append([]string(nil), q.GroupBy...)
	}
	return out
}

// WhereCondition returns the accumulated where trees as a single
// condition: nil for none, the sole tree for one, an And group
// otherwise.
func (q *Query) WhereCondition() Condition {
	switch len(q.Conditions) {
	case 0:
		return nil
	case 1:
		return q.Conditions[0]
	default:
		return And(q.Conditions)
	}
}
