package compiler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorm-dev/chorm/internal/core/query/compiler"
	"github.com/chorm-dev/chorm/internal/core/query/domain"
	schemadomain "github.com/chorm-dev/chorm/internal/core/schema/domain"
)

func TestBuildWhere_EmptyTree(t *testing.T) {
	sql, params, err := compiler.BuildWhere(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", sql)
	assert.Equal(t, 0, params.Len())

	sql, params, err = compiler.BuildWhere(domain.Fields{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", sql)
	assert.Equal(t, 0, params.Len())
}

func TestBuildWhere_NullLiteral(t *testing.T) {
	sql, params, err := compiler.BuildWhere(domain.Fields{
		"age": domain.Value(nil),
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "`age` IS NULL", sql)
	assert.Equal(t, 0, params.Len())
}

func TestBuildWhere_Equality(t *testing.T) {
	sql, params, err := compiler.BuildWhere(domain.Fields{
		"name": domain.Value("alice"),
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "`name` = {param0:String}", sql)
	v, ok := params.Get("param0")
	require.True(t, ok)
	assert.Equal(t, "alice", v)
}

func TestBuildWhere_Operators(t *testing.T) {
	tests := []struct {
		name    string
		set     domain.OperatorSet
		wantSQL string
		wantLen int
	}{
		{
			name:    "gt",
			set:     domain.OperatorSet{domain.OpGt: 18},
			wantSQL: "`f` > {param0:Int32}",
			wantLen: 1,
		},
		{
			name:    "gte",
			set:     domain.OperatorSet{domain.OpGte: 18},
			wantSQL: "`f` >= {param0:Int32}",
			wantLen: 1,
		},
		{
			name:    "lt",
			set:     domain.OperatorSet{domain.OpLt: 65},
			wantSQL: "`f` < {param0:Int32}",
			wantLen: 1,
		},
		{
			name:    "lte",
			set:     domain.OperatorSet{domain.OpLte: 65},
			wantSQL: "`f` <= {param0:Int32}",
			wantLen: 1,
		},
		{
			name:    "ne",
			set:     domain.OperatorSet{domain.OpNe: "x"},
			wantSQL: "`f` != {param0:String}",
			wantLen: 1,
		},
		{
			name:    "eq null reroutes to IS NULL",
			set:     domain.OperatorSet{domain.OpEq: nil},
			wantSQL: "`f` IS NULL",
			wantLen: 0,
		},
		{
			name:    "ne null reroutes to IS NOT NULL",
			set:     domain.OperatorSet{domain.OpNe: nil},
			wantSQL: "`f` IS NOT NULL",
			wantLen: 0,
		},
		{
			name:    "like binds pattern as-is",
			set:     domain.OperatorSet{domain.OpLike: "%ali%"},
			wantSQL: "`f` LIKE {param0:String}",
			wantLen: 1,
		},
		{
			name:    "notLike",
			set:     domain.OperatorSet{domain.OpNotLike: "a%"},
			wantSQL: "`f` NOT LIKE {param0:String}",
			wantLen: 1,
		},
		{
			name:    "ilike",
			set:     domain.OperatorSet{domain.OpILike: "A%"},
			wantSQL: "`f` ILIKE {param0:String}",
			wantLen: 1,
		},
		{
			name:    "between",
			set:     domain.OperatorSet{domain.OpBetween: []interface{}{1, 10}},
			wantSQL: "`f` BETWEEN {param0:Int32} AND {param1:Int32}",
			wantLen: 2,
		},
		{
			name:    "isNull true",
			set:     domain.OperatorSet{domain.OpIsNull: true},
			wantSQL: "`f` IS NULL",
			wantLen: 0,
		},
		{
			name:    "isNull false flips polarity",
			set:     domain.OperatorSet{domain.OpIsNull: false},
			wantSQL: "`f` IS NOT NULL",
			wantLen: 0,
		},
		{
			name:    "notNull true",
			set:     domain.OperatorSet{domain.OpNotNull: true},
			wantSQL: "`f` IS NOT NULL",
			wantLen: 0,
		},
		{
			name:    "notNull false flips polarity",
			set:     domain.OperatorSet{domain.OpNotNull: false},
			wantSQL: "`f` IS NULL",
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := compiler.BuildWhere(domain.Fields{"f": tt.set}, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantLen, params.Len())
		})
	}
}

func TestBuildWhere_In(t *testing.T) {
	sql, params, err := compiler.BuildWhere(domain.Fields{
		"id": domain.OperatorSet{domain.OpIn: []interface{}{1, 2, 3}},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "`id` IN ({param0:Int32}, {param1:Int32}, {param2:Int32})", sql)
	require.Equal(t, 3, params.Len())
	for i, want := range []int{1, 2, 3} {
		v, ok := params.Get(params.Names()[i])
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
}

func TestBuildWhere_EmptyMembershipShortCircuits(t *testing.T) {
	sql, params, err := compiler.BuildWhere(domain.Fields{
		"id": domain.OperatorSet{domain.OpIn: []interface{}{}},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "1 = 0", sql)
	assert.Equal(t, 0, params.Len())

	sql, params, err = compiler.BuildWhere(domain.Fields{
		"id": domain.OperatorSet{domain.OpNotIn: []interface{}{}},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", sql)
	assert.Equal(t, 0, params.Len())
}

func TestBuildWhere_MembershipRequiresArray(t *testing.T) {
	_, _, err := compiler.BuildWhere(domain.Fields{
		"id": domain.OperatorSet{domain.OpIn: 42},
	}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, schemadomain.ErrValidation)
}

func TestBuildWhere_BetweenRequiresTwoEndpoints(t *testing.T) {
	for _, value := range []interface{}{42, []interface{}{1}, []interface{}{1, 2, 3}} {
		_, _, err := compiler.BuildWhere(domain.Fields{
			"id": domain.OperatorSet{domain.OpBetween: value},
		}, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, schemadomain.ErrValidation)
	}
}

func TestBuildWhere_UnknownOperator(t *testing.T) {
	_, _, err := compiler.BuildWhere(domain.Fields{
		"id": domain.OperatorSet{domain.Operator("regexp"): "x"},
	}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regexp")
}

func TestBuildWhere_MultipleOperatorsCombineWithAND(t *testing.T) {
	sql, params, err := compiler.BuildWhere(domain.Fields{
		"age": domain.OperatorSet{domain.OpGt: 18, domain.OpLt: 65},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "`age` > {param0:Int32} AND `age` < {param1:Int32}", sql)
	assert.Equal(t, 2, params.Len())
}

func TestBuildWhere_AndGroup(t *testing.T) {
	sql, params, err := compiler.BuildWhere(domain.And{
		domain.Fields{"age": domain.OperatorSet{domain.OpGt: 18}},
		domain.Fields{"age": domain.OperatorSet{domain.OpLt: 65}},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "(`age` > {param0:Int32} AND `age` < {param1:Int32})", sql)
	assert.Equal(t, 2, params.Len())
}

func TestBuildWhere_OrGroup(t *testing.T) {
	sql, _, err := compiler.BuildWhere(domain.Or{
		domain.Fields{"status": domain.Value("active")},
		domain.Fields{"status": domain.Value("pending")},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "(`status` = {param0:String} OR `status` = {param1:String})", sql)
}

func TestBuildWhere_NotWrapsChild(t *testing.T) {
	sql, _, err := compiler.BuildWhere(domain.Not{
		Cond: domain.Fields{"deleted": domain.Value(true)},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "NOT (`deleted` = {param0:UInt8})", sql)
}

func TestBuildWhere_NotWithEmptyChildEmitsNothing(t *testing.T) {
	sql, params, err := compiler.BuildWhere(domain.Not{Cond: domain.Fields{}}, 0)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", sql)
	assert.Equal(t, 0, params.Len())
}

func TestBuildWhere_CombinatorDropsEmptyChildren(t *testing.T) {
	sql, _, err := compiler.BuildWhere(domain.And{
		domain.Fields{},
		domain.Fields{"id": domain.Value(1)},
		domain.Fields{},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "(`id` = {param0:Int32})", sql)
}

func TestBuildWhere_RawEmittedVerbatim(t *testing.T) {
	sql, params, err := compiler.BuildWhere(domain.Fields{
		"created": domain.RawExpr("toDate(created) = today()"),
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "toDate(created) = today()", sql)
	assert.Equal(t, 0, params.Len())
}

func TestBuildWhere_StartingOffset(t *testing.T) {
	sql, params, err := compiler.BuildWhere(domain.Fields{
		"age": domain.OperatorSet{domain.OpGt: 18},
	}, 5)
	require.NoError(t, err)
	assert.Equal(t, "`age` > {param5:Int32}", sql)
	assert.Equal(t, []string{"param5"}, params.Names())
}

func TestBuildWhere_Idempotent(t *testing.T) {
	tree := domain.And{
		domain.Fields{
			"age":  domain.OperatorSet{domain.OpGt: 18, domain.OpLt: 65},
			"name": domain.OperatorSet{domain.OpLike: "a%"},
		},
		domain.Or{
			domain.Fields{"id": domain.OperatorSet{domain.OpIn: []interface{}{1, 2}}},
			domain.Fields{"deleted": domain.Value(nil)},
		},
	}

	sql1, params1, err := compiler.BuildWhere(tree, 0)
	require.NoError(t, err)
	sql2, params2, err := compiler.BuildWhere(tree, 0)
	require.NoError(t, err)

	assert.Equal(t, sql1, sql2)
	assert.Equal(t, params1.Names(), params2.Names())
	assert.Equal(t, params1.Map(), params2.Map())
}

func TestBuildWhere_ValuesNeverInterpolated(t *testing.T) {
	hostile := "x'; DROP TABLE users; --"
	sql, params, err := compiler.BuildWhere(domain.Fields{
		"name": domain.Value(hostile),
	}, 0)
	require.NoError(t, err)
	assert.NotContains(t, sql, hostile)
	assert.False(t, strings.Contains(sql, "'"))
	v, _ := params.Get("param0")
	assert.Equal(t, hostile, v)
}

func TestBuildWhere_InvalidFieldNameFailsClosed(t *testing.T) {
	for _, field := range []string{"bad-name", "1start", "a b", "x;y", "na`me"} {
		_, _, err := compiler.BuildWhere(domain.Fields{
			field: domain.Value(1),
		}, 0)
		require.Error(t, err, "field %q should be rejected", field)
	}
}
