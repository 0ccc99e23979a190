package vector

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/viant/sqlitekit/database"
)

func newStore(t *testing.T) (*SQLiteStore, *database.Conn) {
	t.Helper()
	conn, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("database.Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	store, err := NewSQLiteStore(conn)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	return store, conn
}

// TestSQLiteStore_AddSearchRemove inserts documents, ranks them against a
// query vector and removes one.
func TestSQLiteStore_AddSearchRemove(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	docs := []Document{
		{ID: "d1", Content: "first", Metadata: "{}", Embedding: []float32{1, 0}},
		{ID: "d2", Content: "second", Metadata: "{}", Embedding: []float32{0.8, 0.6}},
		{ID: "d3", Content: "third", Metadata: "{}", Embedding: []float32{0, 1}},
		{ID: "d4", Content: "no embedding"},
	}
	ids, err := store.AddDocuments(ctx, docs)
	if err != nil {
		t.Fatalf("AddDocuments failed: %v", err)
	}
	if len(ids) != len(docs) {
		t.Fatalf("AddDocuments returned %d ids, want %d", len(ids), len(docs))
	}

	out, err := store.SimilaritySearch(ctx, []float32{1, 0.1}, 2)
	if err != nil {
		t.Fatalf("SimilaritySearch failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("SimilaritySearch returned %d docs, want 2", len(out))
	}
	if out[0].ID != "d1" || out[1].ID != "d2" {
		t.Errorf("SimilaritySearch order = [%s, %s], want [d1, d2]", out[0].ID, out[1].ID)
	}
	if out[0].Score <= out[1].Score {
		t.Errorf("scores not decreasing: %v, %v", out[0].Score, out[1].Score)
	}
	if got := out[0].Embedding; len(got) != 2 || got[0] != 1 {
		t.Errorf("embedding not loaded: %v", got)
	}

	removed, err := store.Remove(ctx, "d2")
	if err != nil || !removed {
		t.Fatalf("Remove(d2) = %v, %v; want true, nil", removed, err)
	}
	removed, err = store.Remove(ctx, "d2")
	if err != nil || removed {
		t.Fatalf("second Remove(d2) = %v, %v; want false, nil", removed, err)
	}

	out, err = store.SimilaritySearch(ctx, []float32{1, 0.1}, 10)
	if err != nil {
		t.Fatalf("SimilaritySearch after remove failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("SimilaritySearch returned %d docs, want 2 (d1, d3)", len(out))
	}
	for _, d := range out {
		if d.ID == "d2" || d.ID == "d4" {
			t.Fatalf("unexpected %s in results", d.ID)
		}
	}
}

func TestSQLiteStore_GeneratedIDAndGet(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	ids, err := store.AddDocuments(ctx, []Document{{Content: "anonymous", Metadata: `{"k":1}`}})
	if err != nil {
		t.Fatalf("AddDocuments failed: %v", err)
	}
	if _, err := uuid.Parse(ids[0]); err != nil {
		t.Fatalf("generated id %q is not a UUID: %v", ids[0], err)
	}

	doc, ok, err := store.Get(ctx, ids[0])
	if err != nil || !ok {
		t.Fatalf("Get(%s) = %v, %v", ids[0], ok, err)
	}
	if doc.Content != "anonymous" || doc.Metadata != `{"k":1}` || doc.Embedding != nil {
		t.Errorf("unexpected document: %+v", doc)
	}

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestSQLiteStore_AddIsAtomic(t *testing.T) {
	store, conn := newStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []Document{
		{ID: "a", Embedding: []float32{1, 1}},
		{ID: "a", Embedding: []float32{1, 2}},
	})
	if err == nil {
		t.Fatal("expected duplicate id to fail")
	}
	n, _, err := conn.QuerySingleField("SELECT count(*) FROM docs")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != int64(0) {
		t.Fatalf("docs count = %v, want 0 after rollback", n)
	}

	if _, err := store.AddDocuments(ctx, []Document{{ID: "z", Embedding: []float32{0, 0}}}); err == nil {
		t.Fatal("expected zero-magnitude embedding to be rejected")
	}

	// The store is usable after failed batches.
	if _, err := store.AddDocuments(ctx, []Document{{ID: "a", Embedding: []float32{1, 1}}}); err != nil {
		t.Fatalf("AddDocuments after rollback failed: %v", err)
	}
}

func TestSQLiteStore_Cancelled(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.AddDocuments(ctx, []Document{{ID: "x"}}); err == nil {
		t.Fatal("expected cancelled context to fail")
	}
	if _, err := store.SimilaritySearch(ctx, []float32{1}, 1); err == nil {
		t.Fatal("expected cancelled context to fail")
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	_, conn := newStore(t)
	if err := EnsureSchema(conn); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	if err := conn.Execute(`INSERT INTO docs(id, content, meta, embedding) VALUES('1', 'hello', '{}', X'')`); err != nil {
		t.Fatalf("insert into docs failed: %v", err)
	}
}
