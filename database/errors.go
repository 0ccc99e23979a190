package database

import (
	"errors"
	"fmt"

	"github.com/viant/sqlitekit/engine"
)

// Sentinel errors.
var (
	// ErrClosed is returned by operations on a closed connection.
	ErrClosed = errors.New("database: connection is closed")

	// ErrNoSuchColumn is wrapped by QueryError when a projection names a
	// column the result does not have.
	ErrNoSuchColumn = errors.New("database: no such column")
)

// Engine result codes used for failures detected before the engine runs.
const (
	codeMismatch = 20 // SQLITE_MISMATCH
	codeRange    = 25 // SQLITE_RANGE
)

// EngineError is the code and message the engine reported for a failure.
type EngineError struct {
	Code    int
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("sqlite error %d: %s", e.Code, e.Message)
}

// OpenError reports that a connection could not be established.
type OpenError struct {
	Path string
	EngineError
	Err error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("database: open %s: %s (code %d)", e.Path, e.Message, e.Code)
}

func (e *OpenError) Unwrap() error { return e.Err }

// PrepareError reports that a statement template failed to compile.
type PrepareError struct {
	SQL string
	EngineError
	Err error
}

func (e *PrepareError) Error() string {
	return fmt.Sprintf("database: failed to prepare %q: %s (code %d)", e.SQL, e.Message, e.Code)
}

func (e *PrepareError) Unwrap() error { return e.Err }

// BindError reports that a named value could not be bound.
type BindError struct {
	SQL   string
	Key   string
	Value any
	EngineError
	Err error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("database: failed to bind value for placeholder [%s]: %s (code %d)", e.Key, e.Message, e.Code)
}

func (e *BindError) Unwrap() error { return e.Err }

// QueryError reports that execution, result-less execution or row
// iteration failed.
type QueryError struct {
	SQL string
	EngineError
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("database: failed to query %q: %s (code %d)", e.SQL, e.Message, e.Code)
}

func (e *QueryError) Unwrap() error { return e.Err }

func engineError(err error) EngineError {
	return EngineError{Code: engine.ResultCode(err), Message: err.Error()}
}
