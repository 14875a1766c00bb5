// Package reembed regenerates embeddings for stored chunks.
//
// Switching to a different embedding model invalidates every vector in
// the index; the Reembedder walks a tenant's chunks in batches, embeds
// their text with the configured embedder and writes the vectors back.
// Failed provider calls are retried with exponential backoff and
// progress is reported to a writer.
package reembed
