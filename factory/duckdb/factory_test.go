package duckdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxlong/dpool/define"
)

func TestBuildDSN(t *testing.T) {
	f := &Factory{}

	assert.Equal(t, "", f.BuildDSN("", false))
	assert.Equal(t, "", f.BuildDSN(":memory:", false))
	assert.Equal(t, "analytics.db", f.BuildDSN("analytics.db", false))
	assert.Equal(t, "analytics.db?access_mode=read_only", f.BuildDSN("analytics.db", true))
}

func TestFactoryRegistered(t *testing.T) {
	f, err := define.GetFactory(define.DriverDuckDB)
	require.NoError(t, err)
	assert.Equal(t, define.DriverDuckDB, f.GetType())
}

func TestConnectInMemory(t *testing.T) {
	if os.Getenv("TEST_DUCKDB") == "" {
		t.Skip("TEST_DUCKDB not set; skipping live DuckDB test")
	}
	f := &Factory{}
	db, err := f.Connect(":memory:", false)
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.NoError(t, db.Close())
}

func TestConnectMissingFileReadOnly(t *testing.T) {
	if os.Getenv("TEST_DUCKDB") == "" {
		t.Skip("TEST_DUCKDB not set; skipping live DuckDB test")
	}
	f := &Factory{}
	path := filepath.Join(t.TempDir(), "does-not-exist.db")
	_, err := f.Connect(path, true)
	assert.Error(t, err)
}
