// Package database wraps a single embedded SQLite connection with a
// safe-execute protocol: prepare, bind a named-parameter map, execute, hand
// the cursor to a row consumer, and finalize the statement on every exit
// path. Each stage fails with its own error type (PrepareError, BindError,
// QueryError), carrying the engine's code and message.
//
// Usage:
//
//	conn, err := database.Open("app.db")
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	id, err := conn.SafeInsert(`INSERT INTO company(name, age) VALUES(:name, :age)`,
//	    database.BindMap{":name": "Paul", ":age": 32})
//	rows, err := conn.SafeQueryAll(`SELECT id, name FROM company`, nil)
//
// Canned projections (SafeModify, SafeInsert, SafeQueryAll, SafeQueryOneRow,
// SafeQueryOneColumn, SafeQueryOneField) cover the common consumers; use
// SafeExecute directly for anything else. Absent rows are reported through
// an ok flag, never as an error.
//
// Custom scalar, aggregate and collation callbacks (package custom) are
// registered per connection and apply to statements prepared afterwards.
// Callbacks must not run statements on the connection that invokes them.
package database
