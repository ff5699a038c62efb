package dbhandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	runTests(t, func(h *Handler) []test {
		return []test{
			{
				name:        "string value",
				stmt:        h.Set("time_zone", "+00:00"),
				expectedSQL: `SET SESSION time_zone = "+00:00"`,
			},
			{
				name:        "numeric value",
				stmt:        h.Set("wait_timeout", 28800),
				expectedSQL: "SET SESSION wait_timeout = 28800",
			},
			{
				name:        "escaped value",
				stmt:        h.Set("sql_mode", `x" , autocommit = "0`),
				expectedSQL: `SET SESSION sql_mode = "x\" , autocommit = \"0"`,
			},
		}
	})
}

func TestSetDialects(t *testing.T) {
	runTests(t, func(h *Handler) []test {
		return []test{
			{
				name:        "postgres session",
				stmt:        h.Set("application_name", "it's"),
				expectedSQL: "SET SESSION application_name TO 'it''s'",
			},
		}
	}, WithDialect(PostgreSQL))

	runTests(t, func(h *Handler) []test {
		return []test{
			{
				name:        "sqlite pragma",
				stmt:        h.Set("foreign_keys", 1),
				expectedSQL: "PRAGMA foreign_keys = 1",
			},
		}
	}, WithDialect(SQLite))
}

func TestSetErrors(t *testing.T) {
	h, _ := newMockHandler(t)

	_, _, err := h.Set("a = 1; DROP TABLE x; SET b", 1).ToSQL(true)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = h.Set("names", []string{"utf8"}).Literal()
	assert.ErrorIs(t, err, ErrListNotAllowed)
}
