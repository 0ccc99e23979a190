package engine

import (
	"fmt"

	lib "modernc.org/sqlite/lib"
	"zombiezen.com/go/sqlite"
)

// OpenFlags controls how a database file is opened.
type OpenFlags uint

const (
	// OpenReadOnly opens the database for reading only.
	OpenReadOnly = OpenFlags(sqlite.OpenReadOnly)
	// OpenReadWrite opens the database for reading and writing.
	OpenReadWrite = OpenFlags(sqlite.OpenReadWrite)
	// OpenCreate creates the database if it does not exist.
	OpenCreate = OpenFlags(sqlite.OpenCreate)

	// DefaultFlags is used when the caller does not specify flags.
	DefaultFlags = OpenReadWrite | OpenCreate
)

// String returns a compact mode name, e.g. "rwc".
func (f OpenFlags) String() string {
	switch {
	case f&OpenReadWrite != 0 && f&OpenCreate != 0:
		return "rwc"
	case f&OpenReadWrite != 0:
		return "rw"
	case f&OpenReadOnly != 0:
		return "ro"
	default:
		return fmt.Sprintf("flags(%#x)", uint(f))
	}
}

// ParseMode maps "ro", "rw" or "rwc" to open flags. An empty mode yields
// DefaultFlags.
func ParseMode(mode string) (OpenFlags, error) {
	switch mode {
	case "":
		return DefaultFlags, nil
	case "ro":
		return OpenReadOnly, nil
	case "rw":
		return OpenReadWrite, nil
	case "rwc":
		return OpenReadWrite | OpenCreate, nil
	default:
		return 0, fmt.Errorf("engine: unknown open mode %q; want ro, rw or rwc", mode)
	}
}

// Open opens a single SQLite connection.
//
// For file-based databases, pass a path like "./db.sqlite". For in-memory
// databases, pass ":memory:". URI filenames ("file:...") are accepted. A zero
// flags value means DefaultFlags. Write-ahead logging is never enabled here.
func Open(path string, flags OpenFlags) (*sqlite.Conn, error) {
	if flags == 0 {
		flags = DefaultFlags
	}
	return sqlite.OpenConn(path, sqlite.OpenFlags(flags)|sqlite.OpenURI)
}

// VersionInfo describes the linked SQLite library.
type VersionInfo struct {
	VersionString string
	VersionNumber int
}

// Version reports the version of the SQLite library compiled into this binary.
func Version() VersionInfo {
	return VersionInfo{
		VersionString: string(lib.SQLITE_VERSION),
		VersionNumber: int(lib.SQLITE_VERSION_NUMBER),
	}
}

// ResultCode extracts the engine result code from err. It returns 0 for a nil
// error and SQLITE_ERROR for errors that did not come from the engine.
func ResultCode(err error) int {
	if err == nil {
		return int(sqlite.ResultOK)
	}
	return int(sqlite.ErrCode(err))
}

// NoError is the message the engine reports when the last call succeeded.
const NoError = "not an error"
