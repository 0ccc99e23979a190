// Package engine is the boundary to the embedded SQLite engine
// (modernc.org/sqlite driven through zombiezen.com/go/sqlite): open flags,
// single-connection open, result codes and the linked library version.
package engine
