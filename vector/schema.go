package vector

import (
	"github.com/viant/sqlitekit/database"
)

const docsSchema = `
CREATE TABLE IF NOT EXISTS docs (
    id TEXT PRIMARY KEY,
    content TEXT,
    meta TEXT,
    embedding BLOB
);
`

// EnsureSchema creates the documents table if it does not already exist.
func EnsureSchema(conn *database.Conn) error {
	return conn.Execute(docsSchema)
}
