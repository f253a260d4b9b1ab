package runnerboard

import "context"

// Store holds at most one Entry per identity.
//
// Implementations do not compare scores; Service decides whether an entry may
// replace another. Get returns ErrNotFound when the identity has no entry.
// EnforceCapacity keeps the first max entries in board order (see Less) and
// discards the rest.
//
// Save is Upsert followed by EnforceCapacity applied as one change: when it
// fails, the store is left exactly as it was.
type Store interface {
	Get(ctx context.Context, identity string) (Entry, error)
	Upsert(ctx context.Context, entry Entry) error
	All(ctx context.Context) ([]Entry, error)
	EnforceCapacity(ctx context.Context, max int) error
	Save(ctx context.Context, entry Entry, max int) error
}
