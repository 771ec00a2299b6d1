// Package speakerdb is the registry of durable speaker identities and the
// similarity oracle used to match voices against them.
//
// Each identity owns one or more embeddings. Search ranks stored embeddings
// by Similarity to a query vector; Append creates an identity or adds
// embeddings to an existing one; Delete removes an identity together with
// all its embeddings.
//
// Backends live in subpackages: qdrant (vector database over REST),
// sqlstore (gorm, brute-force scan) and memory (in-process).
package speakerdb
