package runtime

import (
	"context"
	"fmt"

	"github.com/chorm-dev/chorm/internal/core/query/compiler"
	querydomain "github.com/chorm-dev/chorm/internal/core/query/domain"
	"github.com/chorm-dev/chorm/internal/core/schema"
	"github.com/chorm-dev/chorm/internal/core/schema/typemap"
)

// Model is the chainable query orchestrator over one registered table.
// Every chainable call returns a new Model with a deep-copied query
// state, so a chain can branch without the branches contaminating each
// other.
type Model struct {
	client *Client
	table  *schema.Table
	query  *querydomain.Query
	// err defers a chain-time failure (a malformed WhereMap document)
	// until a terminal operation runs, keeping the chain fluent.
	err error
}

func newModel(client *Client, table *schema.Table) *Model {
	return &Model{
		client: client,
		table:  table,
		query:  querydomain.NewQuery(table.Name()),
	}
}

func (m *Model) clone() *Model {
	return &Model{
		client: m.client,
		table:  m.table,
		query:  m.query.Clone(),
		err:    m.err,
	}
}

// Where appends a condition tree. Multiple Where calls AND together.
func (m *Model) Where(cond querydomain.Condition) *Model {
	next := m.clone()
	next.query.Conditions = append(next.query.Conditions, querydomain.CloneCondition(cond))
	return next
}

// WhereMap appends a loose map-form condition document, supporting the
// and/$and, or/$or and not/$not combinator spellings. A malformed
// document surfaces as an error from the terminal operation.
func (m *Model) WhereMap(doc map[string]interface{}) *Model {
	cond, err := querydomain.ParseTree(doc)
	if err != nil {
		next := m.clone()
		next.err = err
		return next
	}
	return m.Where(cond)
}

// Select restricts the returned fields.
func (m *Model) Select(fields ...string) *Model {
	next := m.clone()
	next.query.Fields = append([]string(nil), fields...)
	return next
}

// OrderBy appends a sort pair.
func (m *Model) OrderBy(field string, direction querydomain.SortDirection) *Model {
	next := m.clone()
	next.query.Ordering = append(next.query.Ordering, querydomain.OrderBy{
		Field:     field,
		Direction: direction,
	})
	return next
}

// Limit caps the number of returned rows.
func (m *Model) Limit(n int) *Model {
	next := m.clone()
	next.query.Limit = &n
	return next
}

// Offset skips rows.
func (m *Model) Offset(n int) *Model {
	next := m.clone()
	next.query.Offset = &n
	return next
}

// GroupBy sets the grouping fields.
func (m *Model) GroupBy(fields ...string) *Model {
	next := m.clone()
	next.query.GroupBy = append([]string(nil), fields...)
	return next
}

func (m *Model) checkConditions() error {
	return m.err
}

// Find compiles and executes the SELECT statement, converting result
// values back to host representations column by column.
func (m *Model) Find(ctx context.Context) ([]Row, error) {
	if err := m.checkConditions(); err != nil {
		return nil, err
	}
	stmt, err := compiler.Select(m.query)
	if err != nil {
		return nil, err
	}
	exec, err := m.client.executor()
	if err != nil {
		return nil, err
	}
	m.client.logQuery(stmt.SQL, stmt.Params.Map())
	rows, err := exec.Query(ctx, stmt.SQL, stmt.Params.Map())
	if err != nil {
		return nil, NewQueryError("find", m.table.Name(), err)
	}
	return m.convertRows(rows)
}

// First returns the first matching row or ErrNotFound.
func (m *Model) First(ctx context.Context) (Row, error) {
	rows, err := m.Limit(1).Find(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, m.table.Name())
	}
	return rows[0], nil
}

// Count executes SELECT count() with the accumulated WHERE clause.
func (m *Model) Count(ctx context.Context) (int64, error) {
	if err := m.checkConditions(); err != nil {
		return 0, err
	}
	stmt, err := compiler.Count(m.query)
	if err != nil {
		return 0, err
	}
	exec, err := m.client.executor()
	if err != nil {
		return 0, err
	}
	m.client.logQuery(stmt.SQL, stmt.Params.Map())
	rows, err := exec.Query(ctx, stmt.SQL, stmt.Params.Map())
	if err != nil {
		return 0, NewQueryError("count", m.table.Name(), err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return countValue(rows[0])
}

// Create validates a record, applies defaults, converts values to wire
// form and executes the INSERT.
func (m *Model) Create(ctx context.Context, record map[string]interface{}) error {
	columns, wire, err := m.prepareInsert(record)
	if err != nil {
		return err
	}
	stmt, err := compiler.Insert(m.table.Name(), columns, wire)
	if err != nil {
		return err
	}
	return m.execute(ctx, "create", stmt.SQL, stmt.Params.Map())
}

// CreateMany inserts a batch of records in a single statement. All
// records must cover the same effective column set after defaults.
func (m *Model) CreateMany(ctx context.Context, records []map[string]interface{}) error {
	if len(records) == 0 {
		return nil
	}
	var columns []string
	wires := make([]map[string]interface{}, 0, len(records))
	for i, record := range records {
		cols, wire, err := m.prepareInsert(record)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if columns == nil {
			columns = cols
		} else if !equalStrings(columns, cols) {
			return fmt.Errorf("record %d: column set differs from first record", i)
		}
		wires = append(wires, wire)
	}
	stmt, err := compiler.InsertMany(m.table.Name(), columns, wires)
	if err != nil {
		return err
	}
	return m.execute(ctx, "createMany", stmt.SQL, stmt.Params.Map())
}

// Update validates a partial record and executes UPDATE against the
// accumulated WHERE clause. Nil values are "no opinion" and are dropped
// from the SET clause.
func (m *Model) Update(ctx context.Context, record map[string]interface{}) error {
	if err := m.checkConditions(); err != nil {
		return err
	}
	if err := m.table.ValidatePartialData(record); err != nil {
		return err
	}

	var columns []string
	wire := make(map[string]interface{})
	for _, name := range m.table.ColumnNames() {
		value, present := record[name]
		if !present || value == nil {
			continue
		}
		col, _ := m.table.Column(name)
		converted, err := typemap.ToWire(value, col)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		columns = append(columns, name)
		wire[name] = converted
	}

	stmt, err := compiler.Update(m.table.Name(), columns, wire, m.query.WhereCondition())
	if err != nil {
		return err
	}
	return m.execute(ctx, "update", stmt.SQL, stmt.Params.Map())
}

// Delete executes DELETE against the accumulated WHERE clause.
func (m *Model) Delete(ctx context.Context) error {
	if err := m.checkConditions(); err != nil {
		return err
	}
	stmt, err := compiler.Delete(m.table.Name(), m.query.WhereCondition())
	if err != nil {
		return err
	}
	return m.execute(ctx, "delete", stmt.SQL, stmt.Params.Map())
}

// CreateTable renders and executes the CREATE TABLE DDL.
func (m *Model) CreateTable(ctx context.Context, opts ...schema.DDLOption) error {
	ddl, err := m.table.CreateDDL(opts...)
	if err != nil {
		return err
	}
	return m.execute(ctx, "createTable", ddl, nil)
}

// DropTable renders and executes the DROP TABLE DDL.
func (m *Model) DropTable(ctx context.Context, ifExists bool) error {
	return m.execute(ctx, "dropTable", m.table.DropDDL(ifExists), nil)
}

func (m *Model) prepareInsert(record map[string]interface{}) ([]string, map[string]interface{}, error) {
	full := make(map[string]interface{}, len(record))
	for k, v := range record {
		full[k] = v
	}
	for name, value := range m.table.Defaults() {
		if _, present := full[name]; !present {
			full[name] = value
		}
	}
	if err := m.table.ValidateData(full); err != nil {
		return nil, nil, err
	}

	var columns []string
	wire := make(map[string]interface{}, len(full))
	for _, name := range m.table.ColumnNames() {
		value, present := full[name]
		if !present {
			continue
		}
		col, _ := m.table.Column(name)
		converted, err := typemap.ToWire(value, col)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		columns = append(columns, name)
		wire[name] = converted
	}
	return columns, wire, nil
}

// convertRows maps wire values back to host values for columns the
// schema knows about; unknown columns pass through untouched.
func (m *Model) convertRows(rows []Row) ([]Row, error) {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		converted := make(Row, len(row))
		for name, value := range row {
			col, ok := m.table.Column(name)
			if !ok {
				converted[name] = value
				continue
			}
			hostValue, err := typemap.FromWire(value, col)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			converted[name] = hostValue
		}
		out = append(out, converted)
	}
	return out, nil
}

func (m *Model) execute(ctx context.Context, op, sql string, params map[string]interface{}) error {
	exec, err := m.client.executor()
	if err != nil {
		return err
	}
	m.client.logQuery(sql, params)
	if err := exec.Exec(ctx, sql, params); err != nil {
		return NewQueryError(op, m.table.Name(), err)
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func countValue(row Row) (int64, error) {
	for _, key := range []string{"count", "count()"} {
		if v, ok := row[key]; ok {
			switch n := v.(type) {
			case int64:
				return n, nil
			case int:
				return int64(n), nil
			case float64:
				return int64(n), nil
			case string:
				var parsed int64
				if _, err := fmt.Sscan(n, &parsed); err == nil {
					return parsed, nil
				}
			}
		}
	}
	return 0, fmt.Errorf("count result missing count column")
}
