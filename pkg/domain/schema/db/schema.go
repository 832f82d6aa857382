package db

import "context"

// SchemaInterface manages the versioned schema of the labeler database.
//
// Versions are numbered directories in the schema repository, applied in ascending order.
type SchemaInterface interface {
	// Upgrade applies all versions newer than the one recorded in the database.
	Upgrade(ctx context.Context) error

	// Version returns the version recorded in the database. It is 0 before the first upgrade.
	Version(ctx context.Context) (int, error)

	// Context derives a context which is cancelled once the database schema
	// becomes older than the schema repository.
	//
	// Long running processes should run in the derived context, and stop when it is done.
	// The returned context.CancelFunc releases its watcher.
	Context(ctx context.Context) (context.Context, context.CancelFunc)
}
