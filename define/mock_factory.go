package define

import (
	"database/sql"

	"github.com/hxlong/dpool/testutils"
)

// DriverMock names the factory backed by the in-memory fake driver.
const DriverMock = "mock"

func init() {
	RegisterFactory(DriverMock, &MockConnFactory{})
}

// MockConnFactory is a ConnFactory over the fake driver in testutils, for
// tests that exercise pool semantics without a real database. The path is
// used verbatim as the fake store key, so tests address the same store
// through testutils.Store(path).
type MockConnFactory struct{}

func (f *MockConnFactory) GetType() string {
	return DriverMock
}

func (f *MockConnFactory) BuildDSN(path string, readOnly bool) string {
	return path
}

func (f *MockConnFactory) Connect(path string, readOnly bool) (*sql.DB, error) {
	db, err := sql.Open(testutils.DriverName, f.BuildDSN(path, readOnly))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
