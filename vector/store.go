package vector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/viant/vec/search"

	"github.com/viant/sqlitekit/database"
	"github.com/viant/sqlitekit/functions"
)

// SQLiteStore implements Store on a single connection. Like the connection
// itself it is not safe for concurrent use.
type SQLiteStore struct {
	conn *database.Conn
}

// NewSQLiteStore ensures the docs schema exists on conn and installs
// vec_cosine.
func NewSQLiteStore(conn *database.Conn) (*SQLiteStore, error) {
	if conn == nil {
		return nil, fmt.Errorf("vector: conn is nil")
	}
	if err := EnsureSchema(conn); err != nil {
		return nil, err
	}
	if err := conn.RegisterScalarFunction(functions.VecCosine{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{conn: conn}, nil
}

// AddDocuments inserts docs in one transaction. Zero-magnitude embeddings
// are rejected since they have no direction to compare.
func (s *SQLiteStore) AddDocuments(ctx context.Context, docs []Document) (ids []string, err error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if err := s.conn.Execute("BEGIN IMMEDIATE"); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = s.conn.Execute("ROLLBACK")
			ids = nil
		}
	}()

	ids = make([]string, 0, len(docs))
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.Embedding != nil && search.Float32s(d.Embedding).Magnitude() == 0 {
			return nil, fmt.Errorf("vector: document %q has a zero-magnitude embedding", d.ID)
		}
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		binds := database.BindMap{
			":id":        id,
			":content":   d.Content,
			":meta":      d.Metadata,
			":embedding": nil,
		}
		if d.Embedding != nil {
			binds[":embedding"] = functions.EncodeEmbedding(d.Embedding)
		}
		if err := s.conn.SafeExecuteNoResult(`INSERT INTO docs(id, content, meta, embedding) VALUES(:id, :content, :meta, :embedding)`, binds); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := s.conn.Execute("COMMIT"); err != nil {
		return nil, err
	}
	return ids, nil
}

// SimilaritySearch ranks documents with embeddings of the query's
// dimension by cosine similarity.
func (s *SQLiteStore) SimilaritySearch(ctx context.Context, queryEmbedding []float32, k int) ([]Document, error) {
	if k <= 0 || len(queryEmbedding) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if search.Float32s(queryEmbedding).Magnitude() == 0 {
		return nil, fmt.Errorf("vector: zero-magnitude query embedding")
	}
	return database.SafeExecute(s.conn,
		`SELECT id, content, meta, embedding, vec_cosine(embedding, :q) AS score
		   FROM docs
		  WHERE length(embedding) = :size
		  ORDER BY score DESC, rowid
		  LIMIT :k`,
		database.BindMap{":q": functions.EncodeEmbedding(queryEmbedding), ":size": len(queryEmbedding) * 4, ":k": k},
		scanDocuments,
	)
}

// Get loads one document by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}
	docs, err := database.SafeExecute(s.conn,
		`SELECT id, content, meta, embedding, NULL AS score FROM docs WHERE id = :id`,
		database.BindMap{":id": id},
		scanDocuments,
	)
	if err != nil || len(docs) == 0 {
		return Document{}, false, err
	}
	return docs[0], true, nil
}

// Remove deletes a document by id.
func (s *SQLiteStore) Remove(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("vector: Remove called with empty id")
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n, err := s.conn.SafeModify(`DELETE FROM docs WHERE id = :id`, database.BindMap{":id": id})
	return n > 0, err
}

// scanDocuments reads rows shaped (id, content, meta, embedding, score).
func scanDocuments(cur *database.Cursor) ([]Document, error) {
	var out []Document
	for {
		row, ok, err := cur.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		d := Document{}
		d.ID, _ = row[0].(string)
		d.Content, _ = row[1].(string)
		d.Metadata, _ = row[2].(string)
		if blob, ok := row[3].([]byte); ok {
			if d.Embedding, err = functions.DecodeEmbedding(blob); err != nil {
				return nil, err
			}
		}
		d.Score, _ = row[4].(float64)
		out = append(out, d)
	}
}

// Ensure SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)
