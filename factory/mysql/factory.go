// Package mysql provides the connection factory for MySQL-backed pools.
package mysql

import (
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/hxlong/dpool/define"
)

// Factory creates MySQL database handles
type Factory struct{}

func init() {
	RegisterFactory()
}

func RegisterFactory() {
	define.RegisterFactory("mysql", &Factory{})
}

// GetType returns the database type
func (f *Factory) GetType() string {
	return "mysql"
}

// BuildDSN treats path as a go-sql-driver DSN. Read-only mode is applied per
// session via the transaction_read_only system variable.
func (f *Factory) BuildDSN(path string, readOnly bool) string {
	if !readOnly {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "transaction_read_only=1"
}

func (f *Factory) Connect(path string, readOnly bool) (*sql.DB, error) {
	db, err := sql.Open("mysql", f.BuildDSN(path, readOnly))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
