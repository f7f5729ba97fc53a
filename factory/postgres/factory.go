// Package postgres provides the connection factory for PostgreSQL-backed
// pools, using the pgx stdlib driver.
package postgres

import (
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hxlong/dpool/define"
)

// Factory creates PostgreSQL database handles
type Factory struct{}

func init() {
	RegisterFactory()
}

func RegisterFactory() {
	define.RegisterFactory("postgres", &Factory{})
}

// GetType returns the database type
func (f *Factory) GetType() string {
	return "postgres"
}

// BuildDSN treats path as a pgx DSN, URL or keyword/value form. Read-only
// mode is applied per session via default_transaction_read_only.
func (f *Factory) BuildDSN(path string, readOnly bool) string {
	if !readOnly {
		return path
	}
	if strings.Contains(path, "://") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + "default_transaction_read_only=on"
	}
	return path + " default_transaction_read_only=on"
}

func (f *Factory) Connect(path string, readOnly bool) (*sql.DB, error) {
	db, err := sql.Open("pgx", f.BuildDSN(path, readOnly))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
