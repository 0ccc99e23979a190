// Package vector is a small document store over a database.Conn. Documents
// live in a docs table with their embeddings encoded as float32 BLOBs;
// similarity search ranks rows with the vec_cosine SQL function.
package vector
