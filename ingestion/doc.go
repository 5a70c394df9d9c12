// Package ingestion provides pipeline orchestration for importing poems.
//
// The Pipeline type manages the corpus import workflow, including:
//   - Parsing corpus files into poems
//   - Collapsing duplicates by title and author
//   - Writing poems to storage in batches
//   - Generating embeddings concurrently
//
// Embedding is performed on a worker pool to maximize throughput.
// Embedding errors are logged but do not fail the import; the affected
// poems stay in the corpus without vectors and can be re-embedded later.
package ingestion
