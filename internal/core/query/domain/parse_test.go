package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorm-dev/chorm/internal/core/query/domain"
)

func TestParseTree_Empty(t *testing.T) {
	cond, err := domain.ParseTree(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Fields{}, cond)

	cond, err = domain.ParseTree(map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, domain.Fields{}, cond)
}

func TestParseTree_LiteralAndOperatorSet(t *testing.T) {
	cond, err := domain.ParseTree(map[string]interface{}{
		"name": "alice",
		"age":  map[string]interface{}{"gte": 18, "lt": 65},
	})
	require.NoError(t, err)

	fields, ok := cond.(domain.Fields)
	require.True(t, ok, "expected Fields, got %T", cond)
	assert.Equal(t, domain.Literal{Value: "alice"}, fields["name"])
	assert.Equal(t, domain.OperatorSet{
		domain.OpGte: 18,
		domain.OpLt:  65,
	}, fields["age"])
}

func TestParseTree_MixedOperatorAndPlainKeysRejected(t *testing.T) {
	_, err := domain.ParseTree(map[string]interface{}{
		"age": map[string]interface{}{"gte": 18, "unit": "years"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit")
}

func TestParseTree_CombinatorAliases(t *testing.T) {
	for _, key := range []string{"and", "$and"} {
		cond, err := domain.ParseTree(map[string]interface{}{
			key: []map[string]interface{}{
				{"a": 1},
				{"b": 2},
			},
		})
		require.NoError(t, err)
		group, ok := cond.(domain.And)
		require.True(t, ok, "key %q: expected And, got %T", key, cond)
		assert.Len(t, group, 2)
	}

	for _, key := range []string{"or", "$or"} {
		cond, err := domain.ParseTree(map[string]interface{}{
			key: []map[string]interface{}{
				{"a": 1},
				{"b": 2},
			},
		})
		require.NoError(t, err)
		_, ok := cond.(domain.Or)
		require.True(t, ok, "key %q: expected Or, got %T", key, cond)
	}

	for _, key := range []string{"not", "$not"} {
		cond, err := domain.ParseTree(map[string]interface{}{
			key: map[string]interface{}{"deleted": true},
		})
		require.NoError(t, err)
		_, ok := cond.(domain.Not)
		require.True(t, ok, "key %q: expected Not, got %T", key, cond)
	}
}

func TestParseTree_LooseInterfaceSlices(t *testing.T) {
	// JSON decoding produces []interface{} rather than
	// []map[string]interface{}; both must be accepted.
	cond, err := domain.ParseTree(map[string]interface{}{
		"or": []interface{}{
			map[string]interface{}{"status": "active"},
			map[string]interface{}{"status": "pending"},
		},
	})
	require.NoError(t, err)
	group, ok := cond.(domain.Or)
	require.True(t, ok)
	assert.Len(t, group, 2)
}

func TestParseTree_CombinatorShapeErrors(t *testing.T) {
	_, err := domain.ParseTree(map[string]interface{}{"and": "not-a-list"})
	require.Error(t, err)

	_, err = domain.ParseTree(map[string]interface{}{
		"or": []interface{}{"not-a-map"},
	})
	require.Error(t, err)

	_, err = domain.ParseTree(map[string]interface{}{"not": []interface{}{}})
	require.Error(t, err)
}

func TestParseTree_FieldsAndCombinatorsMix(t *testing.T) {
	cond, err := domain.ParseTree(map[string]interface{}{
		"active": true,
		"or": []map[string]interface{}{
			{"role": "admin"},
			{"role": "owner"},
		},
	})
	require.NoError(t, err)

	group, ok := cond.(domain.And)
	require.True(t, ok, "expected And wrapper, got %T", cond)
	assert.Len(t, group, 2)
}

func TestParseTree_NestedDepth(t *testing.T) {
	cond, err := domain.ParseTree(map[string]interface{}{
		"and": []map[string]interface{}{
			{"$or": []map[string]interface{}{
				{"a": 1},
				{"not": map[string]interface{}{"b": 2}},
			}},
			{"c": map[string]interface{}{"in": []interface{}{1, 2}}},
		},
	})
	require.NoError(t, err)
	group, ok := cond.(domain.And)
	require.True(t, ok)
	require.Len(t, group, 2)
	_, ok = group[0].(domain.Or)
	assert.True(t, ok)
}

func TestParseTree_MixedCombinatorsParseDeterministically(t *testing.T) {
	doc := map[string]interface{}{
		"or": []map[string]interface{}{
			{"role": "admin"},
			{"role": "owner"},
		},
		"and": []map[string]interface{}{
			{"active": true},
		},
		"not":    map[string]interface{}{"deleted": true},
		"status": "open",
	}

	// Combinator children follow sorted key order (and, not, or), with
	// the plain field entries appended last, on every parse.
	for i := 0; i < 10; i++ {
		cond, err := domain.ParseTree(doc)
		require.NoError(t, err)

		group, ok := cond.(domain.And)
		require.True(t, ok, "expected And wrapper, got %T", cond)
		require.Len(t, group, 4)
		_, ok = group[0].(domain.And)
		assert.True(t, ok, "child 0 should be the and group, got %T", group[0])
		_, ok = group[1].(domain.Not)
		assert.True(t, ok, "child 1 should be the not group, got %T", group[1])
		_, ok = group[2].(domain.Or)
		assert.True(t, ok, "child 2 should be the or group, got %T", group[2])
		fields, ok := group[3].(domain.Fields)
		require.True(t, ok, "child 3 should be the field map, got %T", group[3])
		assert.Equal(t, domain.Literal{Value: "open"}, fields["status"])
	}
}

func TestParseTree_TypedValuesPassThrough(t *testing.T) {
	raw := domain.RawExpr("toDate(created) = today()")
	cond, err := domain.ParseTree(map[string]interface{}{
		"created": raw,
		"age":     domain.OperatorSet{domain.OpGt: 18},
		"name":    domain.Value("alice"),
	})
	require.NoError(t, err)

	fields, ok := cond.(domain.Fields)
	require.True(t, ok)
	assert.Equal(t, raw, fields["created"])
	assert.Equal(t, domain.OperatorSet{domain.OpGt: 18}, fields["age"])
	assert.Equal(t, domain.Literal{Value: "alice"}, fields["name"])
}

func TestCloneCondition_Independence(t *testing.T) {
	original := domain.And{
		domain.Fields{
			"id":   domain.OperatorSet{domain.OpIn: []interface{}{1, 2}},
			"name": domain.Value("alice"),
		},
		domain.Not{Cond: domain.Fields{"deleted": domain.Value(true)}},
	}

	cloned := domain.CloneCondition(original).(domain.And)

	fields := cloned[0].(domain.Fields)
	set := fields["id"].(domain.OperatorSet)
	set[domain.OpIn].([]interface{})[0] = 99
	fields["name"] = domain.Value("mallory")

	originalFields := original[0].(domain.Fields)
	originalSet := originalFields["id"].(domain.OperatorSet)
	assert.Equal(t, 1, originalSet[domain.OpIn].([]interface{})[0])
	assert.Equal(t, domain.Value("alice"), originalFields["name"])
}

func TestQueryClone_Independence(t *testing.T) {
	limit := 10
	q := domain.NewQuery("users")
	q.Conditions = []domain.Condition{domain.Fields{"id": domain.Value(1)}}
	q.Fields = []string{"id"}
	q.Ordering = []domain.OrderBy{{Field: "id", Direction: domain.Asc}}
	q.Limit = &limit

	clone := q.Clone()
	clone.Fields[0] = "name"
	*clone.Limit = 99
	clone.Conditions[0].(domain.Fields)["id"] = domain.Value(2)

	assert.Equal(t, "id", q.Fields[0])
	assert.Equal(t, 10, *q.Limit)
	assert.Equal(t, domain.Value(1), q.Conditions[0].(domain.Fields)["id"])
}

func TestWhereCondition(t *testing.T) {
	q := domain.NewQuery("users")
	assert.Nil(t, q.WhereCondition())

	single := domain.Fields{"a": domain.Value(1)}
	q.Conditions = []domain.Condition{single}
	assert.Equal(t, single, q.WhereCondition())

	q.Conditions = append(q.Conditions, domain.Fields{"b": domain.Value(2)})
	_, ok := q.WhereCondition().(domain.And)
	assert.True(t, ok)
}
