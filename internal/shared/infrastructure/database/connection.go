package database

import "context"

// Connection is an open handle to one configured backend. Repositories work
// against the native driver handles (DB() for SQLite, Pool() for Postgres);
// this interface carries only the lifecycle surface the container and health
// checks need.
type Connection interface {
	// Close closes the database connection.
	Close() error
	// Ping verifies the connection is still alive.
	Ping(ctx context.Context) error
	// Driver returns the driver type for this connection.
	Driver() Driver
}
