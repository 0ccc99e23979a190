package database

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"zombiezen.com/go/sqlite"

	"github.com/viant/sqlitekit/custom"
	"github.com/viant/sqlitekit/engine"
)

// codeMisuse is SQLITE_MISUSE.
const codeMisuse = 21

// Conn owns one connection to the embedded engine.
//
// A Conn is not safe for concurrent use: callers must serialize every
// operation, including the read-throughs. The busy timeout only governs
// contention with other connections and processes.
type Conn struct {
	conn     *sqlite.Conn
	path     string
	flags    engine.OpenFlags
	logger   zerolog.Logger
	lastErr  EngineError
	open     int
	registry map[registryKey]Registration
	failures custom.Failures
	seq      int
}

// Open opens the database at path (or ":memory:").
//
// Unless overridden by options, the database is opened read-write, created
// when missing, and given a busy timeout of DefaultBusyTimeout milliseconds.
func Open(path string, opts ...Option) (*Conn, error) {
	o := newOptions(opts)
	raw, err := engine.Open(path, o.flags)
	if err != nil {
		o.logger.Warn().Err(err).Str("path", path).Msg("open failed")
		return nil, &OpenError{Path: path, EngineError: engineError(err), Err: err}
	}
	c := &Conn{
		conn:     raw,
		path:     path,
		flags:    o.flags,
		logger:   o.logger.With().Str("db", path).Logger(),
		lastErr:  EngineError{Message: engine.NoError},
		registry: make(map[registryKey]Registration),
	}
	if err := c.SetBusyTimeout(o.busyTimeout); err != nil {
		_ = raw.Close()
		return nil, &OpenError{Path: path, EngineError: c.lastErr, Err: err}
	}
	if o.key != "" {
		if err := c.applyKey(o.key); err != nil {
			_ = raw.Close()
			return nil, &OpenError{Path: path, EngineError: c.lastErr, Err: err}
		}
	}
	c.logger.Info().
		Str("mode", o.flags.String()).
		Int("busy_timeout_ms", o.busyTimeout).
		Msg("database opened")
	return c, nil
}

// applyKey sets the encryption key. Engine builds without encryption
// ignore the pragma.
func (c *Conn) applyKey(key string) error {
	escaped, err := c.Escape(key)
	if err != nil {
		return err
	}
	return c.Execute("PRAGMA key = '" + escaped + "'")
}

func (c *Conn) raw() (*sqlite.Conn, error) {
	if c.conn == nil {
		return nil, ErrClosed
	}
	return c.conn, nil
}

// Path returns the path the connection was opened with.
func (c *Conn) Path() string { return c.path }

// Flags returns the flags the connection was opened with.
func (c *Conn) Flags() engine.OpenFlags { return c.flags }

// SetBusyTimeout sets how long, in milliseconds, a statement waits for a
// lock held by another connection before failing. A non-positive value
// turns off a previously set timeout.
func (c *Conn) SetBusyTimeout(ms int) error {
	if ms < 0 {
		ms = 0
	}
	return c.Execute("PRAGMA busy_timeout = " + strconv.Itoa(ms))
}

// Close closes the connection. Closing an already closed connection is a
// no-op.
func (c *Conn) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	if err != nil {
		c.setLastError(err)
		c.logger.Warn().Err(err).Msg("close failed")
		return err
	}
	c.conn = nil
	c.logger.Info().Msg("database closed")
	return nil
}

// Execute runs one or more semicolon-separated statements that return no
// rows (DDL, bulk DML, pragmas).
func (c *Conn) Execute(query string) error {
	conn, err := c.raw()
	if err != nil {
		return err
	}
	rest := skipBlank(query)
	for rest != "" {
		stmt, trailing, err := conn.PrepareTransient(rest)
		if err != nil {
			return c.queryFailed(query, err)
		}
		if stmt == nil {
			break
		}
		c.open++
		err = c.drain(stmt)
		c.finalize(stmt, query)
		if err != nil {
			return c.queryFailed(query, err)
		}
		used := len(rest) - trailing
		if used <= 0 {
			break
		}
		rest = skipBlank(rest[used:])
	}
	c.clearLastError()
	c.logger.Debug().Str("sql", query).Msg("executed")
	return nil
}

// ExecuteForAffectedRowCount runs Execute and returns the number of rows
// changed by the last statement.
func (c *Conn) ExecuteForAffectedRowCount(query string) (int, error) {
	if err := c.Execute(query); err != nil {
		return 0, err
	}
	return c.AffectedRowCount(), nil
}

func (c *Conn) drain(stmt *sqlite.Stmt) error {
	for {
		hasRow, err := c.step(stmt)
		if err != nil {
			return err
		}
		if !hasRow {
			return nil
		}
	}
}

// step advances stmt by one row. An error raised by a registered callback
// during the step fails it even when the engine carried on.
func (c *Conn) step(stmt *sqlite.Stmt) (bool, error) {
	_ = c.failures.Take()
	hasRow, err := stmt.Step()
	if cbErr := c.failures.Take(); cbErr != nil {
		return false, cbErr
	}
	return hasRow, err
}

// skipBlank drops leading whitespace, semicolons and comments from sql. It
// returns "" when no statement text remains.
func skipBlank(sql string) string {
	for {
		sql = strings.TrimLeft(sql, " \t\r\n\f\v;")
		switch {
		case strings.HasPrefix(sql, "--"):
			end := strings.IndexByte(sql, '\n')
			if end < 0 {
				return ""
			}
			sql = sql[end+1:]
		case strings.HasPrefix(sql, "/*"):
			end := strings.Index(sql[2:], "*/")
			if end < 0 {
				return ""
			}
			sql = sql[end+4:]
		default:
			return sql
		}
	}
}

// AffectedRowCount returns the number of rows changed, inserted or deleted
// by the most recent INSERT, UPDATE or DELETE. It returns 0 after Close.
func (c *Conn) AffectedRowCount() int {
	if c.conn == nil {
		return 0
	}
	return c.conn.Changes()
}

// LastInsertID returns the rowid of the most recent successful INSERT into
// a rowid table, or 0 if there has been none. It returns 0 after Close.
func (c *Conn) LastInsertID() int64 {
	if c.conn == nil {
		return 0
	}
	return c.conn.LastInsertRowID()
}

// LastErrorCode returns the engine result code of the most recent
// operation; 0 when it succeeded.
func (c *Conn) LastErrorCode() int { return c.lastErr.Code }

// LastErrorMessage returns the engine message of the most recent operation.
func (c *Conn) LastErrorMessage() string { return c.lastErr.Message }

// LastError returns the most recent engine error, or nil when the most
// recent operation succeeded.
func (c *Conn) LastError() *EngineError {
	if c.lastErr.Code == 0 {
		return nil
	}
	e := c.lastErr
	return &e
}

// OpenStatementCount returns how many statements are prepared and not yet
// finalized.
func (c *Conn) OpenStatementCount() int { return c.open }

// Escape escapes text for inclusion inside a single-quoted SQL literal,
// using the engine's %q formatting.
//
// Escape is not binary safe: text is cut at the first NUL byte. Bind
// values through BindMap for BLOBs and untrusted input.
func (c *Conn) Escape(text string) (string, error) {
	v, _, err := c.SafeQueryOneField(`SELECT printf('%q', :text)`, BindMap{":text": text}, ByIndex(0))
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

// Query runs a bind-less query and collects every row.
func (c *Conn) Query(query string) ([]Row, error) {
	return c.SafeQueryAll(query, nil)
}

// QuerySingleRow runs a bind-less query and returns its first row.
func (c *Conn) QuerySingleRow(query string) (Record, bool, error) {
	return c.SafeQueryOneRow(query, nil)
}

// QuerySingleField runs a bind-less query and returns the first column of
// its first row.
func (c *Conn) QuerySingleField(query string) (any, bool, error) {
	return c.SafeQueryOneField(query, nil, ByIndex(0))
}

func (c *Conn) finalize(stmt *sqlite.Stmt, query string) {
	c.open--
	if err := stmt.Finalize(); err != nil {
		c.logger.Debug().Err(err).Str("sql", query).Msg("finalize reported error")
	}
}

func (c *Conn) setLastError(err error) {
	c.lastErr = engineError(err)
}

func (c *Conn) setLastCode(code int, msg string) {
	c.lastErr = EngineError{Code: code, Message: msg}
}

func (c *Conn) clearLastError() {
	c.lastErr = EngineError{Message: engine.NoError}
}

func (c *Conn) queryFailed(query string, err error) *QueryError {
	c.setLastError(err)
	c.logger.Warn().Err(err).Str("sql", query).Int("code", c.lastErr.Code).Msg("query failed")
	return &QueryError{SQL: query, EngineError: c.lastErr, Err: err}
}
