package dpool

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Connection states. A PooledConn is in exactly one state at any time;
// RETIRED is terminal and retired connections are never handed out again.
const (
	stateIdle int32 = iota
	stateInUse
	stateRetired
)

// PooledConn wraps a single database connection with checkout bookkeeping.
// The underlying handle is owned by exactly one party at a time: the pool's
// idle set, or the one caller that checked it out.
type PooledConn struct {
	id        uuid.UUID
	conn      *sql.Conn
	createdAt time.Time

	state    atomic.Int32
	lastUsed atomic.Int64 // unix nanos
	useCount atomic.Int64
}

func newPooledConn(conn *sql.Conn) *PooledConn {
	pc := &PooledConn{
		id:        uuid.New(),
		conn:      conn,
		createdAt: time.Now(),
	}
	pc.lastUsed.Store(pc.createdAt.UnixNano())
	return pc
}

// ID returns the connection's identity, stable for its whole lifetime.
func (pc *PooledConn) ID() uuid.UUID {
	return pc.id
}

// Raw exposes the underlying connection for queries. Valid only between
// Acquire and Release; the caller must not retain it past the checkout.
func (pc *PooledConn) Raw() *sql.Conn {
	return pc.conn
}

// CreatedAt returns when the connection was created
func (pc *PooledConn) CreatedAt() time.Time {
	return pc.createdAt
}

// LastUsedAt returns when the connection was last checked out
func (pc *PooledConn) LastUsedAt() time.Time {
	return time.Unix(0, pc.lastUsed.Load())
}

// UseCount returns how many times the connection has been checked out
func (pc *PooledConn) UseCount() int64 {
	return pc.useCount.Load()
}

// markUsed transitions IDLE -> IN_USE and bumps the usage counters. A failed
// transition means two callers hold the same connection, which the checkout
// discipline is supposed to make impossible, so it panics.
func (pc *PooledConn) markUsed() {
	if !pc.state.CompareAndSwap(stateIdle, stateInUse) {
		panic("dpool: connection checked out twice")
	}
	pc.useCount.Add(1)
	pc.lastUsed.Store(time.Now().UnixNano())
}

// markIdle transitions IN_USE -> IDLE on the way back into the idle set.
func (pc *PooledConn) markIdle() {
	if !pc.state.CompareAndSwap(stateInUse, stateIdle) {
		panic("dpool: released connection was not checked out")
	}
}

// healthy reports whether the wrapped connection still answers a round trip.
// Driver errors and panics are both reported as unhealthy, never propagated.
func (pc *PooledConn) healthy(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return pc.conn.PingContext(ctx) == nil
}

// retire permanently removes the connection from circulation and closes the
// underlying handle.
func (pc *PooledConn) retire() error {
	pc.state.Store(stateRetired)
	return pc.conn.Close()
}
