// Package functions provides ready-made SQL functions built on the custom
// contracts: embedding distances (vec_cosine, vec_l2), hashing (xxh3),
// identifiers (uuid), size formatting (humanize_bytes, parse_bytes), the
// median and distinct_concat aggregates and Unicode collations.
//
// Embeddings are stored as BLOBs of little-endian float32 values; see
// EncodeEmbedding.
package functions
