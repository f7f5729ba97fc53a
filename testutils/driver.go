package testutils

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
)

// DriverName is the name the fake driver registers under with database/sql.
const DriverName = "dpoolmock"

func init() {
	sql.Register(DriverName, &mockDriver{})
}

var (
	storesMu sync.Mutex
	stores   = make(map[string]*MockStore)
)

// Store returns the MockStore for dsn, creating it on first use. Every fake
// connection opened with that dsn shares the store's scripted behavior and
// counters, so a test can poison health checks or connection creation for one
// pool without touching another.
func Store(dsn string) *MockStore {
	storesMu.Lock()
	defer storesMu.Unlock()
	s, ok := stores[dsn]
	if !ok {
		s = &MockStore{}
		stores[dsn] = s
	}
	return s
}

// MockStore scripts and observes the behavior of one fake database.
type MockStore struct {
	mu      sync.Mutex
	openErr error
	pingErr error
	opened  int
	closed  int
	pings   int
}

// FailOpen makes subsequent connection creation fail with err (nil restores).
func (s *MockStore) FailOpen(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErr = err
}

// FailPing makes subsequent health checks fail with err (nil restores).
func (s *MockStore) FailPing(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingErr = err
}

// Reset clears scripted failures and counters.
func (s *MockStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErr = nil
	s.pingErr = nil
	s.opened = 0
	s.closed = 0
	s.pings = 0
}

// Opened returns how many connections have been created.
func (s *MockStore) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// Closed returns how many connections have been closed.
func (s *MockStore) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Pings returns how many health checks have been answered.
func (s *MockStore) Pings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pings
}

type mockDriver struct{}

func (d *mockDriver) Open(dsn string) (driver.Conn, error) {
	s := Store(dsn)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opened++
	return &mockConn{store: s}, nil
}

// mockConn answers pings per the store's script and rejects everything else.
type mockConn struct {
	store *MockStore
}

func (c *mockConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("dpoolmock: statements are not supported")
}

func (c *mockConn) Begin() (driver.Tx, error) {
	return nil, errors.New("dpoolmock: transactions are not supported")
}

func (c *mockConn) Close() error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.closed++
	return nil
}

// Ping implements driver.Pinger. A scripted failure is returned as-is, never
// as driver.ErrBadConn, so it surfaces through sql.Conn.PingContext instead
// of triggering database/sql's silent retry.
func (c *mockConn) Ping(ctx context.Context) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.pings++
	return c.store.pingErr
}
