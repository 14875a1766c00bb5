// Package ingestion turns crawled pages into stored, embedded chunks.
//
// The Pipeline type manages the ingestion workflow for pages, including:
//   - Splitting page text into overlapping word windows
//   - Generating embeddings for each window
//   - Storing the document row and its chunks
//
// Pages within a batch are processed concurrently by a worker pool.
// A page whose content fingerprint is already indexed under its URL is
// skipped, so re-crawling an unchanged site is cheap.
package ingestion
