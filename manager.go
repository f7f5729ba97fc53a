package dpool

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hxlong/dpool/define"
	pkgerrors "github.com/hxlong/dpool/errors"
)

// Manager is the application-facing surface of the package: it owns one pool
// per database path, creating pools lazily with shared options, and exposes
// a scoped-connection API so callers never touch bare acquire/release.
type Manager struct {
	opts define.PoolOptions
	log  zerolog.Logger

	mu          sync.RWMutex
	pools       map[string]*Pool
	defaultPath string
	closed      bool
}

// NewManager creates a manager whose pools all share opts. A nil opts uses
// defaults.
func NewManager(opts *define.PoolOptions) *Manager {
	if opts == nil {
		d := define.DefaultPoolOptions()
		opts = &d
	}
	opts.Validate()
	return &Manager{
		opts:  *opts,
		log:   opts.Logger,
		pools: make(map[string]*Pool),
	}
}

// NewManagerFromEnv builds a manager from DPOOL_* environment variables,
// loading a .env file first when one is present:
//
//	DPOOL_DRIVER           driver name (default duckdb)
//	DPOOL_DATABASE_PATH    default database path for Default()
//	DPOOL_MAX_CONNECTIONS  per-pool connection bound
//	DPOOL_ACQUIRE_TIMEOUT  Go duration, e.g. 30s
//	DPOOL_READ_ONLY        boolean
func NewManagerFromEnv() (*Manager, error) {
	const op = "manager from env"
	_ = godotenv.Load()

	opts := define.DefaultPoolOptions()
	if v := os.Getenv("DPOOL_DRIVER"); v != "" {
		opts.Driver = v
	}
	if v := os.Getenv("DPOOL_MAX_CONNECTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, pkgerrors.New(pkgerrors.ErrCodeConfiguration, op, "",
				stderrors.New("DPOOL_MAX_CONNECTIONS must be a positive integer"))
		}
		opts.MaxConnections = n
	}
	if v := os.Getenv("DPOOL_ACQUIRE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, pkgerrors.New(pkgerrors.ErrCodeConfiguration, op, "",
				stderrors.New("DPOOL_ACQUIRE_TIMEOUT must be a positive duration"))
		}
		opts.AcquireTimeout = d
	}
	if v := os.Getenv("DPOOL_READ_ONLY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.ErrCodeConfiguration, op, "",
				stderrors.New("DPOOL_READ_ONLY must be a boolean"))
		}
		opts.ReadOnly = b
	}

	m := NewManager(&opts)
	m.defaultPath = os.Getenv("DPOOL_DATABASE_PATH")
	return m, nil
}

// Pool returns the pool for path, creating it on first use.
func (m *Manager) Pool(path string) (*Pool, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, pkgerrors.New(pkgerrors.ErrCodePoolClosed, "get pool", path, nil)
	}
	if p, ok := m.pools[path]; ok {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, pkgerrors.New(pkgerrors.ErrCodePoolClosed, "get pool", path, nil)
	}
	if p, ok := m.pools[path]; ok {
		return p, nil
	}
	p, err := New(path, &m.opts)
	if err != nil {
		return nil, err
	}
	m.pools[path] = p
	m.log.Debug().Str("path", path).Msg("pool registered")
	return p, nil
}

// Default returns the pool for the path configured via DPOOL_DATABASE_PATH.
func (m *Manager) Default() (*Pool, error) {
	m.mu.RLock()
	path := m.defaultPath
	m.mu.RUnlock()
	if path == "" {
		return nil, pkgerrors.New(pkgerrors.ErrCodeConfiguration, "default pool", "",
			stderrors.New("no default database path configured"))
	}
	return m.Pool(path)
}

// WithConnection runs fn with a scoped connection from the pool for path.
func (m *Manager) WithConnection(ctx context.Context, path string, fn func(*sql.Conn) error) error {
	p, err := m.Pool(path)
	if err != nil {
		return err
	}
	return p.WithConn(ctx, fn)
}

// Stats returns a snapshot per managed database path.
func (m *Manager) Stats() map[string]Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Stats, len(m.pools))
	for path, p := range m.pools {
		out[path] = p.Stats()
	}
	return out
}

// Healthy reports whether every managed pool can hand out a working
// connection. A manager with no pools yet is healthy.
func (m *Manager) Healthy(ctx context.Context) bool {
	m.mu.RLock()
	pools := make([]*Pool, 0, len(m.pools))
	for _, p := range m.pools {
		pools = append(pools, p)
	}
	m.mu.RUnlock()

	for _, p := range pools {
		if !p.Healthy(ctx) {
			return false
		}
	}
	return true
}

// Close closes every managed pool. Idempotent; errors are joined.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	pools := m.pools
	m.pools = make(map[string]*Pool)
	m.mu.Unlock()

	var errs []error
	for _, p := range pools {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
