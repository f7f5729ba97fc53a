package define

import "database/sql"

// ConnFactory produces database handles for one driver. A factory holds no
// state of its own; pooling lives entirely in the pool.
type ConnFactory interface {
	// GetType returns the driver name the factory serves
	GetType() string

	// BuildDSN translates a database path and read-only flag into the
	// driver's connection string
	BuildDSN(path string, readOnly bool) string

	// Connect opens a handle to the database at path and verifies it is
	// reachable. The handle is ready for use when the error is nil
	Connect(path string, readOnly bool) (*sql.DB, error)
}
