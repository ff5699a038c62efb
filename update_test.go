package dbhandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdate(t *testing.T) {
	runTests(t, func(h *Handler) []test {
		return []test{
			{
				"simple update",
				h.Update("users").Set("name", "x").Where(Eq("id", 1)),
				"UPDATE `users` SET `name` = ? WHERE (1 = 1) AND `id` = ?",
				[]interface{}{"x", 1},
			},
			{
				"update with set map",
				h.Update("users").SetMap(map[string]interface{}{"name": "x", "age": 3}).Where(In("id", []int64{1, 2})),
				"UPDATE `users` SET `age` = ?, `name` = ? WHERE (1 = 1) AND `id` IN (?,?)",
				[]interface{}{3, "x", int64(1), int64(2)},
			},
			{
				"update to null with trusted condition",
				h.Update("users").Set("banned_at", nil).Where(SQLCond("`last_login` < NOW() - INTERVAL ? DAY", 90)),
				"UPDATE `users` SET `banned_at` = ? WHERE (1 = 1) AND `last_login` < NOW() - INTERVAL ? DAY",
				[]interface{}{nil, 90},
			},
		}
	})
}

func TestUpdateLiteral(t *testing.T) {
	h, _ := newMockHandler(t, WithDialect(PostgreSQL))

	lit, err := h.Update("users").Set("name", "O'Brien").Set("age", 40).Where(Eq("id", "7")).Literal()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "name" = 'O''Brien', "age" = 40 WHERE (1 = 1) AND "id" = 7`, lit)
}

func TestUpdateErrors(t *testing.T) {
	h, _ := newMockHandler(t)

	_, _, err := h.Update("users").Set("name", "x").ToSQL(true)
	assert.ErrorIs(t, err, ErrNoConditions)

	_, _, err = h.Update("users").Set("name", "x").Where(nil, SQLCond("  ")).ToSQL(true)
	assert.ErrorIs(t, err, ErrNoConditions)

	_, _, err = h.Update("users").Where(Eq("id", 1)).ToSQL(true)
	assert.ErrorIs(t, err, ErrNoFields)

	_, _, err = h.Update("users").Set("tags", []string{"a"}).Where(Eq("id", 1)).ToSQL(true)
	assert.ErrorIs(t, err, ErrListNotAllowed)
}
