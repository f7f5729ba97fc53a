// Package dpool implements a bounded, thread-safe pool of database
// connections for embedded analytical stores (DuckDB by default), with
// driver factories for server databases as well. Connections are checked out
// exclusively, health-checked around every checkout, and accounted for in a
// statistics snapshot usable for metrics export.
package dpool

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hxlong/dpool/define"
	pkgerrors "github.com/hxlong/dpool/errors"
	_ "github.com/hxlong/dpool/factory/duckdb"
)

// Pool owns a bounded set of connections to one database. Callers borrow
// connections via Acquire/WithConn; ownership of a connection transfers
// wholly to the caller for the duration of a checkout and back to the pool
// on Release.
//
// Waiter coordination is a permit semaphore (a buffered channel with one
// slot per allowed connection). A releaser appends to the idle set before
// freeing its permit, and an acquirer takes a permit before popping the
// idle set; that ordering keeps the live-connection count within
// MaxConnections without a condition variable. No fairness is guaranteed
// among blocked acquirers.
type Pool struct {
	path    string
	opts    define.PoolOptions
	factory define.ConnFactory
	db      *sql.DB
	log     zerolog.Logger

	permits chan struct{}
	closeCh chan struct{}

	mu         sync.Mutex
	closed     bool
	idle       []*PooledConn
	checkedOut map[*PooledConn]struct{}
	total      int

	acquisitions int64
	releases     int64
	totalWait    time.Duration
	maxWait      time.Duration
}

// New creates a pool for the database at path. A nil opts uses defaults;
// invalid option values are clamped to defaults.
func New(path string, opts *define.PoolOptions) (*Pool, error) {
	const op = "new pool"
	if opts == nil {
		d := define.DefaultPoolOptions()
		opts = &d
	}
	if err := opts.Validate(); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeConfiguration, op, path)
	}
	factory, err := define.GetFactory(opts.Driver)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeConfiguration, op, path)
	}
	db, err := factory.Connect(path, opts.ReadOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeConnection, op, path)
	}

	// The pool does its own bounding and idling; the database/sql layer
	// underneath must not second-guess it. Zero idle means a retired
	// connection's handle is closed for real instead of lingering.
	db.SetMaxOpenConns(opts.MaxConnections)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(0)

	p := &Pool{
		path:       path,
		opts:       *opts,
		factory:    factory,
		db:         db,
		permits:    make(chan struct{}, opts.MaxConnections),
		closeCh:    make(chan struct{}),
		checkedOut: make(map[*PooledConn]struct{}),
	}
	p.log = opts.Logger.With().
		Str("driver", factory.GetType()).
		Str("path", path).
		Logger()
	p.log.Debug().
		Int("max_connections", opts.MaxConnections).
		Dur("acquire_timeout", opts.AcquireTimeout).
		Bool("read_only", opts.ReadOnly).
		Msg("pool created")
	return p, nil
}

// NewPool creates a pool with explicit bounds and the default driver.
func NewPool(path string, maxConns int, acquireTimeout time.Duration, readOnly bool) (*Pool, error) {
	opts := define.DefaultPoolOptions()
	opts.MaxConnections = maxConns
	opts.AcquireTimeout = acquireTimeout
	opts.ReadOnly = readOnly
	return New(path, &opts)
}

// Path returns the database path the pool serves
func (p *Pool) Path() string {
	return p.path
}

// Acquire checks a connection out of the pool. It blocks until a connection
// is available, and fails when the acquire timeout fires, ctx is done, or
// the pool closes. Idle connections are health-checked before handout;
// unhealthy ones are retired and replaced transparently.
func (p *Pool) Acquire(ctx context.Context) (*PooledConn, error) {
	const op = "acquire"
	if p.isClosed() {
		return nil, pkgerrors.New(pkgerrors.ErrCodePoolClosed, op, p.path, nil)
	}

	start := time.Now()
	timer := time.NewTimer(p.opts.AcquireTimeout)
	defer timer.Stop()
	select {
	case p.permits <- struct{}{}:
	case <-timer.C:
		return nil, pkgerrors.New(pkgerrors.ErrCodePoolExhausted, op, p.path,
			fmt.Errorf("no connection available within %s", p.opts.AcquireTimeout))
	case <-p.closeCh:
		return nil, pkgerrors.New(pkgerrors.ErrCodePoolClosed, op, p.path, nil)
	case <-ctx.Done():
		return nil, pkgerrors.Wrap(ctx.Err(), pkgerrors.ErrCodePoolExhausted, op, p.path)
	}
	wait := time.Since(start)

	// Permit in hand: reuse an idle connection if a healthy one exists.
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			<-p.permits
			return nil, pkgerrors.New(pkgerrors.ErrCodePoolClosed, op, p.path, nil)
		}
		n := len(p.idle)
		if n == 0 {
			p.mu.Unlock()
			break
		}
		pc := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()

		if p.checkHealth(ctx, pc) {
			pc.markUsed()
			p.mu.Lock()
			p.checkedOut[pc] = struct{}{}
			p.recordAcquireLocked(wait)
			p.mu.Unlock()
			return pc, nil
		}
		p.discard(pc, "health check failed")
	}

	// Idle set exhausted; the permit guarantees room for a fresh connection.
	cctx, cancel := context.WithTimeout(ctx, p.opts.ConnectTimeout)
	conn, err := p.db.Conn(cctx)
	cancel()
	if err != nil {
		<-p.permits
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeConnection, op, p.path)
	}
	pc := newPooledConn(conn)
	pc.markUsed()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		conn.Close()
		<-p.permits
		return nil, pkgerrors.New(pkgerrors.ErrCodePoolClosed, op, p.path, nil)
	}
	p.total++
	p.checkedOut[pc] = struct{}{}
	p.recordAcquireLocked(wait)
	p.mu.Unlock()

	p.log.Debug().Stringer("conn_id", pc.ID()).Msg("connection created")
	return pc, nil
}

// Release returns a checked-out connection to the pool and wakes one waiter.
// A connection that fails its checkin health check, or comes back after the
// pool closed, is retired instead of pooled. Releasing a connection the pool
// did not issue, or releasing twice, is reported as a caller error without
// corrupting pool state.
func (p *Pool) Release(pc *PooledConn) error {
	const op = "release"
	if pc == nil {
		return pkgerrors.New(pkgerrors.ErrCodeRelease, op, p.path,
			stderrors.New("nil connection"))
	}

	p.mu.Lock()
	if _, ok := p.checkedOut[pc]; !ok {
		p.mu.Unlock()
		p.log.Error().Stringer("conn_id", pc.ID()).
			Msg("release of a connection the pool did not issue")
		return pkgerrors.New(pkgerrors.ErrCodeRelease, op, p.path,
			fmt.Errorf("connection %s is not checked out", pc.ID()))
	}
	delete(p.checkedOut, pc)
	p.releases++
	closed := p.closed
	p.mu.Unlock()

	if closed {
		p.discard(pc, "pool closed")
		<-p.permits
		return nil
	}
	if !p.checkHealth(context.Background(), pc) {
		p.discard(pc, "health check failed")
		<-p.permits
		return nil
	}

	pc.markIdle()
	p.mu.Lock()
	if p.closed {
		// Close raced in while we were health checking.
		p.mu.Unlock()
		p.discard(pc, "pool closed")
	} else {
		p.idle = append(p.idle, pc)
		p.mu.Unlock()
	}
	<-p.permits
	return nil
}

// WithConn acquires a connection, passes it to fn, and releases it on every
// exit path, including a panic inside fn.
func (p *Pool) WithConn(ctx context.Context, fn func(*sql.Conn) error) error {
	pc, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := p.Release(pc); rerr != nil {
			p.log.Error().Err(rerr).Stringer("conn_id", pc.ID()).
				Msg("scoped release failed")
		}
	}()
	return fn(pc.Raw())
}

// Stats returns a consistent snapshot of the pool counters. Safe to call
// from any goroutine at any time.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Stats{
		TotalConnections:  p.total,
		ActiveConnections: p.total - len(p.idle),
		IdleConnections:   len(p.idle),
		MaxConnections:    p.opts.MaxConnections,
		TotalAcquisitions: p.acquisitions,
		TotalReleases:     p.releases,
		TotalWaitTimeMs:   p.totalWait.Milliseconds(),
		MaxWaitTimeMs:     p.maxWait.Milliseconds(),
	}
	if p.acquisitions > 0 {
		s.AvgWaitTimeMs = float64(s.TotalWaitTimeMs) / float64(p.acquisitions)
	}
	return s
}

// Healthy acquires, pings, and releases a connection through the normal
// checkout path. Any failure, including exhaustion or a closed pool,
// reports false; Healthy never returns an error or panics.
func (p *Pool) Healthy(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	err := p.WithConn(ctx, func(conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
	return err == nil
}

// Close marks the pool closed, closes every idle connection, and wakes all
// blocked acquirers. It does not wait for in-flight checkouts: those
// connections keep working until their holder releases them, at which point
// they are closed rather than re-pooled. Close is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.total -= len(idle)
	p.mu.Unlock()

	close(p.closeCh)

	var errs []error
	for _, pc := range idle {
		if err := pc.retire(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.db.Close(); err != nil {
		errs = append(errs, err)
	}
	p.log.Debug().Int("idle_closed", len(idle)).Msg("pool closed")
	return stderrors.Join(errs...)
}

func (p *Pool) isClosed() bool {
	select {
	case <-p.closeCh:
		return true
	default:
		return false
	}
}

// checkHealth bounds the round trip so a wedged connection cannot stall a
// checkout indefinitely.
func (p *Pool) checkHealth(ctx context.Context, pc *PooledConn) bool {
	hctx, cancel := context.WithTimeout(ctx, p.opts.ConnectTimeout)
	defer cancel()
	return pc.healthy(hctx)
}

// discard retires a connection the pool currently owns and drops it from
// the accounting.
func (p *Pool) discard(pc *PooledConn, reason string) {
	p.mu.Lock()
	p.total--
	p.mu.Unlock()
	if err := pc.retire(); err != nil {
		p.log.Warn().Err(err).Stringer("conn_id", pc.ID()).
			Msg("closing retired connection")
	}
	p.log.Debug().Stringer("conn_id", pc.ID()).Str("reason", reason).
		Msg("connection retired")
}

func (p *Pool) recordAcquireLocked(wait time.Duration) {
	p.acquisitions++
	p.totalWait += wait
	if wait > p.maxWait {
		p.maxWait = wait
	}
}
