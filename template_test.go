package dbhandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	cases := []struct {
		name     string
		template string
		params   Params
		expected string
	}{
		{
			"numeric parameter",
			"SELECT * FROM t WHERE id = :id",
			Params{"id": 7},
			"SELECT * FROM t WHERE id = 7",
		},
		{
			"prefix keys",
			"SELECT * FROM t WHERE id = :id OR idx = :idx",
			Params{"id": 1, "idx": 2},
			"SELECT * FROM t WHERE id = 1 OR idx = 2",
		},
		{
			"repeated parameter",
			"SELECT :a, :a",
			Params{"a": "x"},
			`SELECT "x", "x"`,
		},
		{
			"cast untouched",
			"SELECT :v::int, a::text FROM t",
			Params{"v": "5", "text": "no", "int": "no"},
			"SELECT 5::int, a::text FROM t",
		},
		{
			"quoted text untouched",
			"SELECT ':x', \":x\", `:x`, :x",
			Params{"x": "a"},
			"SELECT ':x', \":x\", `:x`, \"a\"",
		},
		{
			"time literal untouched",
			"SELECT * FROM t WHERE at > '12:30' AND name = :name",
			Params{"name": "it's"},
			`SELECT * FROM t WHERE at > '12:30' AND name = "it\'s"`,
		},
		{
			"collections",
			"SELECT * FROM t WHERE id IN :ids AND tag IN :tags",
			Params{"ids": []int{1, 2, 3}, "tags": []string{"a", "b"}},
			`SELECT * FROM t WHERE id IN (1,2,3) AND tag IN ("a","b")`,
		},
		{
			"null and unused parameters",
			"UPDATE t SET a = :a",
			Params{"a": nil, "b": 2},
			"UPDATE t SET a = NULL",
		},
		{
			"injection payload",
			"SELECT * FROM users WHERE name = :name",
			Params{"name": `" OR "1"="1`},
			`SELECT * FROM users WHERE name = "\" OR \"1\"=\"1"`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			composed, err := Compose(c.template, c.params)
			require.NoError(t, err)
			assert.Equal(t, c.expected, composed)
		})
	}
}

func TestComposeErrors(t *testing.T) {
	_, err := Compose("SELECT * FROM t WHERE id = :id", Params{"idx": 1})
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = Compose("SELECT * FROM t WHERE id = ? AND a = :a", Params{"a": 1})
	assert.ErrorIs(t, err, ErrPositionalParam)

	composed, err := Compose("SELECT '?' AS q", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT '?' AS q", composed)
}

func TestBind(t *testing.T) {
	asSQL, bindings, err := Bind("SELECT * FROM t WHERE id = :id AND tag IN :tags AND note = ':id'", Params{
		"id":   7,
		"tags": []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND tag IN (?,?) AND note = ':id'", asSQL)
	assert.Equal(t, []interface{}{7, "a", "b"}, bindings)
}

func TestQueryStmt(t *testing.T) {
	runTests(t, func(h *Handler) []test {
		return []test{
			{
				"named parameters",
				h.Query("SELECT * FROM t WHERE a = :a AND b IN :b", Params{"a": "x", "b": []int{1, 2}}),
				"SELECT * FROM t WHERE a = ? AND b IN (?,?)",
				[]interface{}{"x", 1, 2},
			},
			{
				"empty collection",
				h.Query("SELECT * FROM t WHERE b IN :b", Params{"b": []int{}}),
				"SELECT * FROM t WHERE b IN (NULL)",
				[]interface{}{},
			},
		}
	})
}

func TestReturnsRows(t *testing.T) {
	rows := []string{
		"SELECT 1",
		"  select * from t",
		"/* comment */ SELECT 1",
		"-- comment\nSELECT 1",
		"(SELECT 1) UNION (SELECT 2)",
		"WITH x AS (SELECT 1) SELECT * FROM x",
		"SHOW TABLES",
		"DESCRIBE t",
		"EXPLAIN SELECT 1",
		"PRAGMA table_info(t)",
		"INSERT INTO t (a) VALUES (1) RETURNING id",
	}
	for _, q := range rows {
		assert.True(t, returnsRows(q), q)
	}

	commands := []string{
		"INSERT INTO t (a) VALUES (1)",
		"UPDATE t SET a = 'returning'",
		"DELETE FROM t",
		"SET SESSION a = 1",
		"SELECTED_THING()",
		"",
	}
	for _, q := range commands {
		assert.False(t, returnsRows(q), q)
	}
}
