package ports

import "context"

// RecordKind names a persisted collection.
type RecordKind string

const (
	KindAppointments RecordKind = "appointments"
	KindServices     RecordKind = "services"
)

// MutateFunc receives the current encoded collection and returns the
// replacement. Returning an error aborts the mutation without writing.
type MutateFunc func(current []byte) ([]byte, error)

// RecordStore persists whole collections as JSON arrays.
//
// Read creates the collection (as an empty array) on first access. Mutate
// performs a read-modify-write that backends make atomic: in-process locking
// for files, compare-and-swap for Redis and Mongo.
type RecordStore interface {
	Read(ctx context.Context, kind RecordKind) ([]byte, error)
	Write(ctx context.Context, kind RecordKind, data []byte) error
	Mutate(ctx context.Context, kind RecordKind, fn MutateFunc) error
	Ping(ctx context.Context) error
}
