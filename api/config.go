// Package api provides the HTTP entrypoint for the enrollment assistant.
package api

import (
	"net/http"

	"github.com/papercomputeco/leadline/pkg/metrics"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// Metrics enables GET /metrics when set.
	Metrics *metrics.Metrics

	// MCP is mounted at /mcp when set.
	MCP http.Handler
}
