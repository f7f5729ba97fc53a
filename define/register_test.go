package define

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGetFactory(t *testing.T) {
	f := &MockConnFactory{}
	RegisterFactory("register-test", f)
	defer UnregisterFactory("register-test")

	got, err := GetFactory("register-test")
	require.NoError(t, err)
	assert.Same(t, f, got)
}

func TestGetFactoryUnknownDriver(t *testing.T) {
	_, err := GetFactory("no-such-driver")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-driver")
}

func TestUnregisterFactory(t *testing.T) {
	RegisterFactory("unregister-test", &MockConnFactory{})
	UnregisterFactory("unregister-test")
	_, err := GetFactory("unregister-test")
	assert.Error(t, err)
}

func TestMockFactoryRegisteredByDefault(t *testing.T) {
	f, err := GetFactory(DriverMock)
	require.NoError(t, err)
	assert.Equal(t, DriverMock, f.GetType())
}

func TestMockFactoryConnect(t *testing.T) {
	f := &MockConnFactory{}
	db, err := f.Connect("define-mock-connect", false)
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.NoError(t, db.Close())
}
