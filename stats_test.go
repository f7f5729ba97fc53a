package dpool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The snapshot is part of the observability surface; its wire names are a
// contract with the embedding application's metrics export.
func TestStatsWireNames(t *testing.T) {
	s := Stats{
		TotalConnections:  3,
		ActiveConnections: 2,
		IdleConnections:   1,
		MaxConnections:    4,
		TotalAcquisitions: 10,
		TotalReleases:     9,
		TotalWaitTimeMs:   120,
		MaxWaitTimeMs:     50,
		AvgWaitTimeMs:     12,
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{
		"total_connections", "active_connections", "idle_connections",
		"max_connections", "total_acquisitions", "total_releases",
		"total_wait_time_ms", "max_wait_time_ms", "avg_wait_time_ms",
	} {
		assert.Contains(t, m, key)
	}
	assert.EqualValues(t, 3, m["total_connections"])
	assert.EqualValues(t, 12, m["avg_wait_time_ms"])
}

func TestStatsAvgZeroWithoutAcquisitions(t *testing.T) {
	p, _ := newMockPool(t, 2, 0)
	s := p.Stats()
	assert.EqualValues(t, 0, s.TotalAcquisitions)
	assert.Zero(t, s.AvgWaitTimeMs)
	assert.Zero(t, s.TotalWaitTimeMs)
}
