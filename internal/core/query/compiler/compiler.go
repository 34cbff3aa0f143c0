package compiler

import (
	"fmt"
	"strings"

	"github.com/chorm-dev/chorm/internal/core/query/domain"
	schemadomain "github.com/chorm-dev/chorm/internal/core/schema/domain"
	"github.com/chorm-dev/chorm/internal/core/schema/typemap"
	"github.com/chorm-dev/chorm/internal/core/sqlgen"
)

// Statement is one compiled SQL statement plus its ordered parameters.
type Statement struct {
	SQL    string
	Params *sqlgen.Params
}

// Select compiles the full SELECT statement for a query state:
// SELECT fields FROM table [WHERE] [GROUP BY] [ORDER BY] [LIMIT]
// [OFFSET].
func Select(q *domain.Query) (*Statement, error) {
	selectClause, err := sqlgen.SelectClause(q.Fields)
	if err != nil {
		return nil, err
	}
	return selectWith(q, selectClause)
}

// Count compiles a SELECT count() statement for a query state. Ordering
// and pagination are dropped; the WHERE clause is preserved.
func Count(q *domain.Query) (*Statement, error) {
	counted := q.Clone()
	counted.Fields = nil
	counted.Ordering = nil
	counted.Limit = nil
	counted.Offset = nil
	return selectWith(counted, "SELECT count() AS count")
}

func selectWith(q *domain.Query, selectClause string) (*Statement, error) {
	fromClause, err := sqlgen.FromClause(q.Table)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(selectClause)
	b.WriteString(" ")
	b.WriteString(fromClause)

	params := sqlgen.NewParams()
	if cond := q.WhereCondition(); cond != nil {
		where, whereParams, err := BuildWhere(cond, 0)
		if err != nil {
			return nil, err
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params.Merge(whereParams)
	}

	if len(q.GroupBy) > 0 {
		quoted, err := sqlgen.QuoteAll(q.GroupBy)
		if err != nil {
			return nil, err
		}
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(quoted, ", "))
	}

	if len(q.Ordering) > 0 {
		pairs := make([]string, 0, len(q.Ordering))
		for _, order := range q.Ordering {
			quoted, err := sqlgen.QuoteIdentifier(order.Field)
			if err != nil {
				return nil, err
			}
			direction := order.Direction
			if direction != domain.Desc {
				direction = domain.Asc
			}
			pairs = append(pairs, quoted+" "+string(direction))
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(pairs, ", "))
	}

	if q.Limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *q.Limit)
	}
	if q.Offset != nil {
		fmt.Fprintf(&b, " OFFSET %d", *q.Offset)
	}

	return &Statement{SQL: b.String(), Params: params}, nil
}

// Insert compiles an INSERT statement for one record. Columns renders in
// the caller-supplied order so statement text is deterministic.
func Insert(table string, columns []string, record map[string]interface{}) (*Statement, error) {
	if len(columns) == 0 {
		return nil, schemadomain.NewValidationError(table, "insert requires at least one column")
	}
	params := sqlgen.NewParams()
	placeholders := make([]string, 0, len(columns))
	for i, column := range columns {
		value, ok := record[column]
		if !ok {
			return nil, schemadomain.NewValidationError(column, "missing value for insert column")
		}
		name := sqlgen.ParamName(i)
		params.Bind(name, value)
		placeholders = append(placeholders, sqlgen.Placeholder(name, typemap.WireToken(value)))
	}
	sql, err := sqlgen.InsertStmt(table, columns, placeholders)
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: sql, Params: params}, nil
}

// Update compiles an UPDATE statement. SET parameters come first; the
// WHERE clause continues parameter numbering from the SET clause's
// offset so names never collide within the statement.
func Update(table string, columns []string, record map[string]interface{}, cond domain.Condition) (*Statement, error) {
	if len(columns) == 0 {
		return nil, schemadomain.NewValidationError(table, "update requires at least one assignment")
	}
	params := sqlgen.NewParams()
	assignments := make([]string, 0, len(columns))
	for i, column := range columns {
		value, ok := record[column]
		if !ok {
			return nil, schemadomain.NewValidationError(column, "missing value for update column")
		}
		quoted, err := sqlgen.QuoteIdentifier(column)
		if err != nil {
			return nil, err
		}
		name := sqlgen.ParamName(i)
		params.Bind(name, value)
		assignments = append(assignments, quoted+" = "+sqlgen.Placeholder(name, typemap.WireToken(value)))
	}

	where, whereParams, err := BuildWhere(cond, len(columns))
	if err != nil {
		return nil, err
	}
	params.Merge(whereParams)

	sql, err := sqlgen.UpdateStmt(table, assignments, where)
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: sql, Params: params}, nil
}

// Delete compiles a DELETE statement.
func Delete(table string, cond domain.Condition) (*Statement, error) {
	where, params, err := BuildWhere(cond, 0)
	if err != nil {
		return nil, err
	}
	sql, err := sqlgen.DeleteStmt(table, where)
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: sql, Params: params}, nil
}

// InsertMany compiles a single multi-row INSERT statement. Parameter
// numbering runs sequentially across rows.
func InsertMany(table string, columns []string, records []map[string]interface{}) (*Statement, error) {
	if len(columns) == 0 {
		return nil, schemadomain.NewValidationError(table, "insert requires at least one column")
	}
	if len(records) == 0 {
		return nil, schemadomain.NewValidationError(table, "insert requires at least one record")
	}

	quotedTable, err := sqlgen.QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}
	quotedColumns, err := sqlgen.QuoteAll(columns)
	if err != nil {
		return nil, err
	}

	params := sqlgen.NewParams()
	index := 0
	rows := make([]string, 0, len(records))
	for _, record := range records {
		placeholders := make([]string, 0, len(columns))
		for _, column := range columns {
			value, ok := record[column]
			if !ok {
				return nil, schemadomain.NewValidationError(column, "missing value for insert column")
			}
			name := sqlgen.ParamName(index)
			index++
			params.Bind(name, value)
			placeholders = append(placeholders, sqlgen.Placeholder(name, typemap.WireToken(value)))
		}
		rows = append(rows, "("+strings.Join(placeholders, ", ")+")")
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quotedTable, strings.Join(quotedColumns, ", "), strings.Join(rows, ", "))
	return &Statement{SQL: sql, Params: params}, nil
}
