// Package custom defines the callback contracts for user-defined SQL
// functions (Scalar, Aggregate, Collation) and adapts them to the engine's
// registration hooks. Implementations are plain Go values; value conversion
// between SQLite and Go happens here so implementers only see int64,
// float64, string, []byte and nil.
package custom
