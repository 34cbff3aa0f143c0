package runtime

import "context"

// Row is one result record keyed by column name.
type Row map[string]interface{}

// Executor is the external execution collaborator. It must substitute
// the {paramN:Type} named-placeholder syntax embedded in generated SQL
// with the matching entries of the parameter map. The core never touches
// network I/O itself; pooling, retry and timeouts all live behind this
// interface.
type Executor interface {
	// Query runs a read statement and returns its rows.
	Query(ctx context.Context, sql string, params map[string]interface{}) ([]Row, error)

	// Exec runs a write or DDL statement. No result rows are expected.
	Exec(ctx context.Context, sql string, params map[string]interface{}) error
}
