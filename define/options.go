// Package define holds the pool's configuration surface and the driver
// factory contract, including the registry drivers install themselves into.
package define

import (
	"time"

	"github.com/rs/zerolog"
)

// DriverDuckDB is the default driver for embedded analytical stores.
const DriverDuckDB = "duckdb"

// PoolOptions defines pool configuration. Options are fixed at pool
// construction; the pool never mutates them afterwards.
type PoolOptions struct {
	// Driver selects the registered connection factory
	Driver string

	// MaxConnections is the upper bound on live connections held by the pool.
	// If MaxConnections <= 0, the default is used
	MaxConnections int

	// AcquireTimeout is how long a caller blocks waiting for a connection
	// before the acquire fails as exhausted.
	// If AcquireTimeout <= 0, the default is used
	AcquireTimeout time.Duration

	// ConnectTimeout bounds the creation of a single new connection
	ConnectTimeout time.Duration

	// ReadOnly makes every connection created by the factory read-only
	ReadOnly bool

	// Logger receives pool lifecycle events. Defaults to a no-op logger
	Logger zerolog.Logger
}

// DefaultPoolOptions returns the default pool options
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		Driver:         DriverDuckDB,
		MaxConnections: 8,
		AcquireTimeout: 30 * time.Second,
		ConnectTimeout: 10 * time.Second,
		ReadOnly:       false,
		Logger:         zerolog.Nop(),
	}
}

// Validate validates the pool options and sets defaults if necessary
func (o *PoolOptions) Validate() error {
	if o.Driver == "" {
		o.Driver = DefaultPoolOptions().Driver
	}
	if o.MaxConnections <= 0 {
		o.MaxConnections = DefaultPoolOptions().MaxConnections
	}
	if o.AcquireTimeout <= 0 {
		o.AcquireTimeout = DefaultPoolOptions().AcquireTimeout
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultPoolOptions().ConnectTimeout
	}
	return nil
}
