package db

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthReport_JSON(t *testing.T) {
	report := HealthReport{
		Status: "ok",
		Pool: PoolStats{
			TotalConns:    8,
			IdleConns:     6,
			AcquiredConns: 2,
			MaxConns:      20,
			AcquireCount:  143,
		},
	}

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "ok", decoded["status"])
	assert.NotContains(t, decoded, "error")

	pool, ok := decoded["pool"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(8), pool["total_conns"])
	assert.Equal(t, float64(2), pool["acquired_conns"])
	assert.Equal(t, float64(20), pool["max_conns"])
	assert.Equal(t, float64(143), pool["acquire_count"])
}

func TestHealthReport_JSONWithError(t *testing.T) {
	report := HealthReport{
		Status: "unavailable",
		Error:  "dial tcp: connection refused",
	}

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "unavailable", decoded["status"])
	assert.Equal(t, "dial tcp: connection refused", decoded["error"])
}
