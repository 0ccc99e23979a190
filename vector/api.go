package vector

import (
	"context"
)

// Document is a piece of text stored with its embedding.
type Document struct {
	// ID identifies the document. AddDocuments generates a UUID when empty.
	ID string

	// Content holds the main text/body of the document.
	Content string

	// Metadata is an opaque payload, typically JSON.
	Metadata string

	// Embedding is the vector representation of Content. A nil embedding is
	// stored as NULL and never matches a search.
	Embedding []float32

	// Score is the cosine similarity to the query; set by SimilaritySearch.
	Score float64
}

// Store is the document store API.
type Store interface {
	// AddDocuments inserts docs atomically and returns their IDs in order.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// SimilaritySearch returns up to k documents ordered by decreasing cosine
	// similarity to queryEmbedding.
	SimilaritySearch(ctx context.Context, queryEmbedding []float32, k int) ([]Document, error)

	// Get returns the document with id; ok is false when there is none.
	Get(ctx context.Context, id string) (doc Document, ok bool, err error)

	// Remove deletes the document with id and reports whether it existed.
	Remove(ctx context.Context, id string) (bool, error)
}
