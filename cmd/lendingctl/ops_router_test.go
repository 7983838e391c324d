package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_OpsRouter_ServesMetricsAndHealth(t *testing.T) {
	// arrange
	t.Setenv("LENDING_STORE_DRIVER", "memory")
	a := &app{output: outputJSON}
	require.NoError(t, a.init(&cobra.Command{}))

	a.metrics.IncrementCounter("commandhandler_calls_total", map[string]string{"command_type": "BORROW"})
	server := httptest.NewServer(a.opsRouter())
	defer server.Close()

	// act
	metricsBody := get(t, server.URL+"/metrics")
	healthBody := get(t, server.URL+"/healthz")

	// assert
	assert.Contains(t, metricsBody, `lending_commandhandler_calls_total{command_type="BORROW"} 1`)
	assert.Contains(t, metricsBody, "go_goroutines")
	assert.Equal(t, "OK", healthBody)
}

func get(t *testing.T, url string) string {
	t.Helper()

	resp, err := http.Get(url) //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []byte
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}
