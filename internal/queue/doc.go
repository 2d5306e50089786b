// Package queue persists admitted product listings in SQLite, ordered for
// the posting layer.
//
// The queue is never an independent duplication authority: AddItem re-checks
// admission through the dedupe store inside that store's critical section,
// commits the dedupe record, and only then inserts the entry. If the insert
// fails the dedupe commit is rolled back, so the two stores cannot drift.
// Consumers read entries ordered by score descending with ties broken by
// earliest admission; removing an entry after publication is the posting
// layer's job.
//
// The database is transient working state for pending posts rather than an
// archive. Schema changes bump schemaVersion in schema.go.
package queue
