package dbhandler

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	const query = "SELECT '?' AS q, `a?` AS c, \"b?\" AS d FROM t WHERE x = ? AND y IN (?,?) AND note = 'it''s ?'"

	tests := []struct {
		name     string
		bindType int
		expected string
	}{
		{
			"question",
			sqlx.QUESTION,
			query,
		},
		{
			"dollar",
			sqlx.DOLLAR,
			"SELECT '?' AS q, `a?` AS c, \"b?\" AS d FROM t WHERE x = $1 AND y IN ($2,$3) AND note = 'it''s ?'",
		},
		{
			"named",
			sqlx.NAMED,
			"SELECT '?' AS q, `a?` AS c, \"b?\" AS d FROM t WHERE x = :arg1 AND y IN (:arg2,:arg3) AND note = 'it''s ?'",
		},
		{
			"at",
			sqlx.AT,
			"SELECT '?' AS q, `a?` AS c, \"b?\" AS d FROM t WHERE x = @p1 AND y IN (@p2,@p3) AND note = 'it''s ?'",
		},
		{
			"unknown",
			sqlx.UNKNOWN,
			query,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, rebind(test.bindType, query))
		})
	}
}
