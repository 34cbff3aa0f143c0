package runtime_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	querydomain "github.com/chorm-dev/chorm/internal/core/query/domain"
	"github.com/chorm-dev/chorm/internal/core/schema"
	"github.com/chorm-dev/chorm/internal/core/schema/domain"
	"github.com/chorm-dev/chorm/runtime"
)

// fakeExecutor records every statement routed to it and serves canned
// rows back.
type fakeExecutor struct {
	queries []executed
	execs   []executed
	rows    []runtime.Row
	err     error
}

type executed struct {
	sql    string
	params map[string]interface{}
}

func (f *fakeExecutor) Query(_ context.Context, sql string, params map[string]interface{}) ([]runtime.Row, error) {
	f.queries = append(f.queries, executed{sql: sql, params: params})
	return f.rows, f.err
}

func (f *fakeExecutor) Exec(_ context.Context, sql string, params map[string]interface{}) error {
	f.execs = append(f.execs, executed{sql: sql, params: params})
	return f.err
}

func newTestClient(t *testing.T) (*runtime.Client, *fakeExecutor) {
	t.Helper()
	def, err := domain.NewDefinition(
		domain.Col("id", &domain.Column{Type: domain.TypeUInt64, PrimaryKey: true}),
		domain.Col("name", &domain.Column{Type: domain.TypeString}),
		domain.Col("age", &domain.Column{Type: domain.TypeUInt8, Nullable: true}),
		domain.Col("plan", &domain.Column{Type: domain.TypeString, Default: domain.Literal("free")}),
	)
	require.NoError(t, err)
	table, err := schema.New("users", def)
	require.NoError(t, err)

	exec := &fakeExecutor{}
	client := runtime.NewClient(runtime.WithExecutor(exec))
	client.Register(table)
	return client, exec
}

func TestClient_ModelUnregisteredTable(t *testing.T) {
	client := runtime.NewClient()
	_, err := client.Model("ghosts")
	require.Error(t, err)
	assert.ErrorIs(t, err, runtime.ErrTableNotRegistered)
}

func TestModel_FindWithoutExecutor(t *testing.T) {
	def, err := domain.NewDefinition(
		domain.Col("id", &domain.Column{Type: domain.TypeUInt64}),
	)
	require.NoError(t, err)
	table, err := schema.New("users", def)
	require.NoError(t, err)

	client := runtime.NewClient()
	client.Register(table)
	model, err := client.Model("users")
	require.NoError(t, err)

	_, err = model.Find(context.Background())
	assert.ErrorIs(t, err, runtime.ErrNoExecutor)
}

func TestModel_FindCompilesChain(t *testing.T) {
	client, exec := newTestClient(t)
	model, err := client.Model("users")
	require.NoError(t, err)

	_, err = model.
		Where(querydomain.Fields{"age": querydomain.OperatorSet{querydomain.OpGte: 18}}).
		Select("id", "name").
		OrderBy("name", querydomain.Asc).
		Limit(10).
		Offset(5).
		Find(context.Background())
	require.NoError(t, err)

	require.Len(t, exec.queries, 1)
	assert.Equal(t,
		"SELECT `id`, `name` FROM `users` WHERE `age` >= {param0:Int32} "+
			"ORDER BY `name` ASC LIMIT 10 OFFSET 5",
		exec.queries[0].sql)
	assert.Equal(t, 18, exec.queries[0].params["param0"])
}

func TestModel_ChainBranchesAreIndependent(t *testing.T) {
	client, exec := newTestClient(t)
	model, err := client.Model("users")
	require.NoError(t, err)

	base := model.Where(querydomain.Fields{"plan": querydomain.Value("free")})
	left := base.Limit(1)
	right := base.OrderBy("name", querydomain.Desc)

	_, err = left.Find(context.Background())
	require.NoError(t, err)
	_, err = right.Find(context.Background())
	require.NoError(t, err)

	require.Len(t, exec.queries, 2)
	assert.Contains(t, exec.queries[0].sql, "LIMIT 1")
	assert.NotContains(t, exec.queries[0].sql, "ORDER BY")
	assert.Contains(t, exec.queries[1].sql, "ORDER BY `name` DESC")
	assert.NotContains(t, exec.queries[1].sql, "LIMIT")
}

func TestModel_FindConvertsWireValues(t *testing.T) {
	client, exec := newTestClient(t)
	exec.rows = []runtime.Row{
		{"id": "9223372036854775808", "name": "alice", "age": "30"},
	}
	model, err := client.Model("users")
	require.NoError(t, err)

	rows, err := model.Find(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	id, ok := rows[0]["id"].(*big.Int)
	require.True(t, ok, "id above int64 range must come back as *big.Int, got %T", rows[0]["id"])
	assert.Equal(t, "9223372036854775808", id.String())
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, int64(30), rows[0]["age"])
}

func TestModel_First(t *testing.T) {
	client, exec := newTestClient(t)
	exec.rows = []runtime.Row{{"name": "alice"}}
	model, err := client.Model("users")
	require.NoError(t, err)

	row, err := model.First(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", row["name"])
	assert.Contains(t, exec.queries[0].sql, "LIMIT 1")

	exec.rows = nil
	_, err = model.First(context.Background())
	require.Error(t, err)
	assert.True(t, runtime.IsNotFound(err))
}

func TestModel_Count(t *testing.T) {
	client, exec := newTestClient(t)
	exec.rows = []runtime.Row{{"count": "42"}}
	model, err := client.Model("users")
	require.NoError(t, err)

	n, err := model.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.Contains(t, exec.queries[0].sql, "SELECT count() AS count FROM `users`")
}

func TestModel_CreateAppliesDefaultsAndValidates(t *testing.T) {
	client, exec := newTestClient(t)
	model, err := client.Model("users")
	require.NoError(t, err)

	err = model.Create(context.Background(), map[string]interface{}{
		"id":   uint64(1),
		"name": "alice",
	})
	require.NoError(t, err)

	require.Len(t, exec.execs, 1)
	assert.Equal(t,
		"INSERT INTO `users` (`id`, `name`, `plan`) VALUES "+
			"({param0:Int64}, {param1:String}, {param2:String})",
		exec.execs[0].sql)
	assert.Equal(t, "free", exec.execs[0].params["param2"])

	err = model.Create(context.Background(), map[string]interface{}{"id": uint64(2)})
	require.Error(t, err, "missing required name must fail before execution")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, exec.execs, 1)
}

func TestModel_CreateMany(t *testing.T) {
	client, exec := newTestClient(t)
	model, err := client.Model("users")
	require.NoError(t, err)

	err = model.CreateMany(context.Background(), []map[string]interface{}{
		{"id": uint64(1), "name": "alice"},
		{"id": uint64(2), "name": "bob"},
	})
	require.NoError(t, err)

	require.Len(t, exec.execs, 1)
	assert.Contains(t, exec.execs[0].sql, "VALUES ({param0:")
	assert.Contains(t, exec.execs[0].sql, "), ({param3:")

	require.NoError(t, model.CreateMany(context.Background(), nil))
	assert.Len(t, exec.execs, 1, "empty batch must not reach the executor")
}

func TestModel_CreateManyMismatchedColumns(t *testing.T) {
	client, _ := newTestClient(t)
	model, err := client.Model("users")
	require.NoError(t, err)

	err = model.CreateMany(context.Background(), []map[string]interface{}{
		{"id": uint64(1), "name": "alice"},
		{"id": uint64(2), "name": "bob", "age": 30},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column set")
}

func TestModel_Update(t *testing.T) {
	client, exec := newTestClient(t)
	model, err := client.Model("users")
	require.NoError(t, err)

	err = model.
		Where(querydomain.Fields{"id": querydomain.Value(int64(7))}).
		Update(context.Background(), map[string]interface{}{
			"name": "bob",
			"age":  nil, // no opinion, dropped from SET
		})
	require.NoError(t, err)

	require.Len(t, exec.execs, 1)
	assert.Equal(t,
		"UPDATE `users` SET `name` = {param0:String} WHERE `id` = {param1:Int64}",
		exec.execs[0].sql)
}

func TestModel_UpdatePrimaryKeyRejected(t *testing.T) {
	client, exec := newTestClient(t)
	model, err := client.Model("users")
	require.NoError(t, err)

	err = model.Update(context.Background(), map[string]interface{}{"id": uint64(9)})
	require.Error(t, err)
	assert.Len(t, exec.execs, 0)
}

func TestModel_Delete(t *testing.T) {
	client, exec := newTestClient(t)
	model, err := client.Model("users")
	require.NoError(t, err)

	err = model.
		Where(querydomain.Fields{"plan": querydomain.Value("free")}).
		Delete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `users` WHERE `plan` = {param0:String}", exec.execs[0].sql)
}

func TestModel_WhereMapDefersParseFailure(t *testing.T) {
	client, exec := newTestClient(t)
	model, err := client.Model("users")
	require.NoError(t, err)

	bad := model.WhereMap(map[string]interface{}{
		"age": map[string]interface{}{"regexp": "x"},
	})
	_, err = bad.Find(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regexp")
	assert.Len(t, exec.queries, 0)
}

func TestModel_WhereMap(t *testing.T) {
	client, exec := newTestClient(t)
	model, err := client.Model("users")
	require.NoError(t, err)

	_, err = model.WhereMap(map[string]interface{}{
		"age": map[string]interface{}{"gt": 18},
	}).Find(context.Background())
	require.NoError(t, err)
	assert.Contains(t, exec.queries[0].sql, "`age` > {param0:Int32}")
}

func TestModel_QueryErrorWrapsCause(t *testing.T) {
	client, exec := newTestClient(t)
	cause := errors.New("connection refused")
	exec.err = cause
	model, err := client.Model("users")
	require.NoError(t, err)

	_, err = model.Find(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	var qerr *runtime.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "find", qerr.Operation)
	assert.Equal(t, "users", qerr.Table)
}

func TestModel_DDLOperations(t *testing.T) {
	client, exec := newTestClient(t)
	model, err := client.Model("users")
	require.NoError(t, err)

	require.NoError(t, model.CreateTable(context.Background(), schema.WithIfNotExists()))
	require.NoError(t, model.DropTable(context.Background(), true))

	require.Len(t, exec.execs, 2)
	assert.Contains(t, exec.execs[0].sql, "CREATE TABLE IF NOT EXISTS `users`")
	assert.Equal(t, "DROP TABLE IF EXISTS `users`", exec.execs[1].sql)
}
