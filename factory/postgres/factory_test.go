package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxlong/dpool/define"
	"github.com/hxlong/dpool/testutils"
)

func TestBuildDSN(t *testing.T) {
	f := &Factory{}

	url := "postgres://app:pw@localhost:5432/test"
	assert.Equal(t, url, f.BuildDSN(url, false))
	assert.Equal(t, url+"?default_transaction_read_only=on", f.BuildDSN(url, true))

	withParams := url + "?sslmode=disable"
	assert.Equal(t, withParams+"&default_transaction_read_only=on", f.BuildDSN(withParams, true))

	kv := "host=localhost user=app dbname=test"
	assert.Equal(t, kv+" default_transaction_read_only=on", f.BuildDSN(kv, true))
}

func TestFactoryRegistered(t *testing.T) {
	f, err := define.GetFactory("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", f.GetType())
}

func TestFactoryConnect(t *testing.T) {
	cfg := testutils.DefaultPostgresConfig()
	if !cfg.Available() {
		t.Skip("TEST_POSTGRES_HOST not set; skipping live PostgreSQL test")
	}
	f := &Factory{}

	db, err := f.Connect(cfg.DSN(), false)
	require.NoError(t, err)
	require.NotNil(t, db)
	db.Close()
}
