// Package duckdb provides the connection factory for embedded DuckDB stores,
// the primary backend of the pool.
package duckdb

import (
	"database/sql"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/hxlong/dpool/define"
)

// Factory creates DuckDB database handles
type Factory struct{}

func init() {
	RegisterFactory()
}

func RegisterFactory() {
	define.RegisterFactory(define.DriverDuckDB, &Factory{})
}

// GetType returns the database type
func (f *Factory) GetType() string {
	return define.DriverDuckDB
}

// BuildDSN maps a database path to a DuckDB connection string. An empty path
// or ":memory:" selects an in-memory database; read-only mode is encoded as
// an access_mode parameter on file-backed stores.
func (f *Factory) BuildDSN(path string, readOnly bool) string {
	if path == "" || path == ":memory:" {
		return ""
	}
	if readOnly {
		return path + "?access_mode=read_only"
	}
	return path
}

// Connect opens the store and verifies it with a ping, so a missing file or
// a rejected access mode fails here rather than on first query.
func (f *Factory) Connect(path string, readOnly bool) (*sql.DB, error) {
	db, err := sql.Open("duckdb", f.BuildDSN(path, readOnly))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
