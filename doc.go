// Package dbhandler is a small database handler providing the basic CRUD
// operations most simple programs need, based on github.com/jmoiron/sqlx.
//
// The Handler provides single-table helpers: GetTableData (select with
// pagination), GetTableTotal (count), InsertData, UpdateData, DeleteData,
// and CustomQuery, which runs a template with ":name" placeholders. These
// helpers never return errors; a failed statement results in a neutral
// value (an empty slice, 0 or false), and the failure is logged. For
// callers that need to tell "no rows" from "failed", the same operations
// are available as statement objects (Select, InsertInto, Update,
// DeleteFrom, Query) that return errors.
//
// Values are always bound to placeholders when statements are executed.
// Every statement can also be rendered with its values inlined as escaped
// literals (Literal, Compose), where each value is classified as numeric
// or string: numbers are written unquoted, strings are stripped of tags
// and non-printable characters, escaped and quoted, and collections are
// written as parenthesized lists for IN clauses.
//
// Table and column names are never escaped. They must be plain SQL
// identifiers, and may be further restricted with WithAllowedTables and
// WithAllowedColumns. SQLCond and ExtraSQL append raw SQL to a statement's
// WHERE clause and must never contain user input.
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/ido50/dbhandler"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		file, err := dbhandler.LoadConfigFile("config.yaml")
//		if err != nil {
//			panic(err)
//		}
//
//		h, err := dbhandler.Open(ctx, dbhandler.ResolveConfig(dbhandler.DefaultConfig(), file, dbhandler.Config{}))
//		if err != nil {
//			panic(err)
//		}
//		defer h.Close()
//
//		id := h.InsertData(ctx, "users", dbhandler.Fields{
//			dbhandler.F("name", "Alice"),
//			dbhandler.F("age", 30),
//		})
//
//		rows := h.CustomQuery(ctx, "SELECT * FROM users WHERE id = :id", dbhandler.Params{"id": id}).Rows
//		fmt.Printf("%+v\n", rows)
//	}
package dbhandler
