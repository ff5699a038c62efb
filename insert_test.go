package dbhandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert(t *testing.T) {
	runTests(t, func(h *Handler) []test {
		return []test{
			{
				"simple insert",
				h.InsertInto("users").Set("name", "Alice").Set("age", 30),
				"INSERT INTO `users` (`name`, `age`) VALUES (?, ?)",
				[]interface{}{"Alice", 30},
			},
			{
				"insert with value map",
				h.InsertInto("users").ValueMap(map[string]interface{}{"b": 2, "a": 1}),
				"INSERT INTO `users` (`a`, `b`) VALUES (?, ?)",
				[]interface{}{1, 2},
			},
			{
				"insert with null and returning",
				h.InsertInto("users").SetFields(Fields{F("name", "Alice"), F("parent_id", nil)}).Returning("id", "created_at"),
				"INSERT INTO `users` (`name`, `parent_id`) VALUES (?, ?) RETURNING `id`, `created_at`",
				[]interface{}{"Alice", nil},
			},
		}
	})
}

func TestInsertLiteral(t *testing.T) {
	h, _ := newMockHandler(t)

	lit, err := h.InsertInto("posts").
		Set("title", `<b>Hello</b> "world"`).
		Set("views", "10").
		Set("body", `back\slash`).
		Set("deleted_at", nil).
		Literal()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO `posts` (`title`, `views`, `body`, `deleted_at`) VALUES ("+`"Hello \"world\"", 10, "back\\slash", NULL)`,
		lit)
}

func TestInsertStripTags(t *testing.T) {
	h, _ := newMockHandler(t, WithStripTags(true))

	_, bindings, err := h.InsertInto("posts").Set("title", "<script>x</script>ok\x07").Set("views", 3).ToSQL(true)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"xok", 3}, bindings)
}

func TestInsertErrors(t *testing.T) {
	h, _ := newMockHandler(t)

	_, _, err := h.InsertInto("users").ToSQL(true)
	assert.ErrorIs(t, err, ErrNoFields)

	_, _, err = h.InsertInto("").Set("name", "x").ToSQL(true)
	assert.ErrorIs(t, err, ErrNoTable)

	_, _, err = h.InsertInto("users").Set("tags", []string{"a"}).ToSQL(true)
	assert.ErrorIs(t, err, ErrListNotAllowed)

	_, _, err = h.InsertInto("users").Set("name`) VALUES (1); --", "x").ToSQL(true)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, _, err = h.InsertInto("users").Set("name", "x").Returning("*").ToSQL(true)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}
