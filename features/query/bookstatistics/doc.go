// Package bookstatistics implements the Book Statistics query.
//
// The query serves the denormalized read model maintained by the async
// projector: available and borrowed counts per (ISBN, publication date).
// Reads are eventually consistent with the command side; the handler never
// touches the aggregates or the delta queue.
package bookstatistics
