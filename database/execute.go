package database

import (
	"errors"
	"fmt"
	"math"

	"zombiezen.com/go/sqlite"
)

// BindMap maps named placeholders to values. Keys may carry their marker
// (":id", "@id", "$id"); a bare key ("id") is read as ":id". Values may be
// any Go integer or float kind, bool (stored as 0/1), string, []byte or nil.
type BindMap map[string]any

// errCursorReleased is wrapped when a cursor is used after SafeExecute
// returned.
var errCursorReleased = errors.New("database: cursor used after release")

// SafeExecute prepares template, binds binds, executes the statement and
// hands the cursor to consume, whose result it returns. A nil consume yields
// the zero R.
//
// Each stage fails with its own error: *PrepareError, *BindError or
// *QueryError. Whatever happens, including a failing or panicking consume,
// the statement is finalized before SafeExecute returns. The cursor must
// not be retained past consume.
func SafeExecute[R any](c *Conn, template string, binds BindMap, consume func(*Cursor) (R, error)) (R, error) {
	var zero R
	conn, err := c.raw()
	if err != nil {
		return zero, err
	}
	cur, err := c.prepare(conn, template)
	if err != nil {
		return zero, err
	}
	defer cur.release()

	if err := cur.bind(binds); err != nil {
		return zero, err
	}
	if err := cur.execute(); err != nil {
		return zero, err
	}
	if consume == nil {
		return zero, nil
	}
	return consume(cur)
}

func (c *Conn) prepare(conn *sqlite.Conn, template string) (*Cursor, error) {
	if skipBlank(template) == "" {
		c.setLastCode(codeMisuse, "empty statement")
		return nil, &PrepareError{SQL: template, EngineError: c.lastErr}
	}
	stmt, _, err := conn.PrepareTransient(template)
	if err != nil {
		c.setLastError(err)
		c.logger.Warn().Err(err).Str("sql", template).Msg("prepare failed")
		return nil, &PrepareError{SQL: template, EngineError: c.lastErr, Err: err}
	}
	c.open++
	return &Cursor{conn: c, stmt: stmt, sql: template}, nil
}

// Cursor is a forward-only view over the rows of an executing statement.
// It is only valid inside the consumer passed to SafeExecute.
type Cursor struct {
	conn     *Conn
	stmt     *sqlite.Stmt
	sql      string
	columns  []string
	pending  bool
	done     bool
	released bool
}

func (cur *Cursor) bind(binds BindMap) error {
	if len(binds) == 0 {
		return nil
	}
	params := make(map[string]int, cur.stmt.BindParamCount())
	for i := 1; i <= cur.stmt.BindParamCount(); i++ {
		if name := cur.stmt.BindParamName(i); name != "" {
			params[name] = i
		}
	}
	for key, value := range binds {
		pos, ok := params[placeholder(key)]
		if !ok {
			return cur.bindFailed(key, value, codeRange, "column index out of range: no parameter named "+placeholder(key))
		}
		if code, msg := bindValue(cur.stmt, pos, value); code != 0 {
			return cur.bindFailed(key, value, code, msg)
		}
	}
	return nil
}

func (cur *Cursor) bindFailed(key string, value any, code int, msg string) *BindError {
	cur.conn.setLastCode(code, msg)
	cur.conn.logger.Warn().Str("sql", cur.sql).Str("key", key).Int("code", code).Msg("bind failed")
	return &BindError{SQL: cur.sql, Key: key, Value: value, EngineError: cur.conn.lastErr}
}

// placeholder normalizes a bind key to the engine's parameter name.
func placeholder(key string) string {
	if key == "" {
		return key
	}
	switch key[0] {
	case ':', '@', '$':
		return key
	}
	return ":" + key
}

// bindValue binds value at pos. It returns a non-zero engine code and a
// message when value cannot be represented.
func bindValue(stmt *sqlite.Stmt, pos int, value any) (int, string) {
	switch v := value.(type) {
	case nil:
		stmt.BindNull(pos)
	case int64:
		stmt.BindInt64(pos, v)
	case int:
		stmt.BindInt64(pos, int64(v))
	case int32:
		stmt.BindInt64(pos, int64(v))
	case int16:
		stmt.BindInt64(pos, int64(v))
	case int8:
		stmt.BindInt64(pos, int64(v))
	case uint32:
		stmt.BindInt64(pos, int64(v))
	case uint16:
		stmt.BindInt64(pos, int64(v))
	case uint8:
		stmt.BindInt64(pos, int64(v))
	case uint:
		return bindUnsigned(stmt, pos, uint64(v))
	case uint64:
		return bindUnsigned(stmt, pos, v)
	case bool:
		if v {
			stmt.BindInt64(pos, 1)
		} else {
			stmt.BindInt64(pos, 0)
		}
	case float64:
		stmt.BindFloat(pos, v)
	case float32:
		stmt.BindFloat(pos, float64(v))
	case string:
		stmt.BindText(pos, v)
	case []byte:
		stmt.BindBytes(pos, v)
	default:
		return codeMismatch, fmt.Sprintf("datatype mismatch: cannot bind %T", value)
	}
	return 0, ""
}

func bindUnsigned(stmt *sqlite.Stmt, pos int, v uint64) (int, string) {
	if v > math.MaxInt64 {
		return codeRange, fmt.Sprintf("integer %d overflows INTEGER", v)
	}
	stmt.BindInt64(pos, int64(v))
	return 0, ""
}

// execute runs the statement up to its first row, or to completion for
// statements without rows.
func (cur *Cursor) execute() error {
	hasRow, err := cur.conn.step(cur.stmt)
	if err != nil {
		cur.done = true
		return cur.conn.queryFailed(cur.sql, err)
	}
	cur.pending = hasRow
	cur.done = !hasRow
	cur.columns = make([]string, cur.stmt.ColumnCount())
	for i := range cur.columns {
		cur.columns[i] = cur.stmt.ColumnName(i)
	}
	cur.conn.clearLastError()
	cur.conn.logger.Debug().Str("sql", cur.sql).Msg("executed")
	return nil
}

func (cur *Cursor) release() {
	if cur.released {
		return
	}
	cur.released = true
	cur.conn.finalize(cur.stmt, cur.sql)
}

// Columns returns the result column names in order.
func (cur *Cursor) Columns() []string { return cur.columns }

// advance moves to the next row. Exhaustion returns false with a nil error;
// an engine failure is a *QueryError.
func (cur *Cursor) advance() (bool, error) {
	if cur.released {
		return false, &QueryError{SQL: cur.sql, EngineError: EngineError{Code: codeMisuse, Message: errCursorReleased.Error()}, Err: errCursorReleased}
	}
	if cur.pending {
		cur.pending = false
		return true, nil
	}
	if cur.done {
		return false, nil
	}
	hasRow, err := cur.conn.step(cur.stmt)
	if err != nil {
		cur.done = true
		return false, cur.conn.queryFailed(cur.sql, err)
	}
	if !hasRow {
		cur.done = true
	}
	return hasRow, nil
}

// Next fetches the next row positionally. It returns false once the rows
// are exhausted.
func (cur *Cursor) Next() (Row, bool, error) {
	ok, err := cur.advance()
	if !ok || err != nil {
		return nil, false, err
	}
	row := make(Row, len(cur.columns))
	for i := range row {
		row[i] = cur.Value(i)
	}
	return row, true, nil
}

// NextRecord fetches the next row keyed by column name. When names repeat
// the rightmost column wins.
func (cur *Cursor) NextRecord() (Record, bool, error) {
	ok, err := cur.advance()
	if !ok || err != nil {
		return nil, false, err
	}
	rec := make(Record, len(cur.columns))
	for i, name := range cur.columns {
		rec[name] = cur.Value(i)
	}
	return rec, true, nil
}

// Value returns column i of the current row as int64, float64, string,
// []byte or nil. It returns nil once the cursor is released.
func (cur *Cursor) Value(i int) any {
	if cur.released {
		return nil
	}
	switch cur.stmt.ColumnType(i) {
	case sqlite.TypeInteger:
		return cur.stmt.ColumnInt64(i)
	case sqlite.TypeFloat:
		return cur.stmt.ColumnFloat(i)
	case sqlite.TypeText:
		return cur.stmt.ColumnText(i)
	case sqlite.TypeBlob:
		buf := make([]byte, cur.stmt.ColumnLen(i))
		cur.stmt.ColumnBytes(i, buf)
		return buf
	default:
		return nil
	}
}
