// Package httpserver builds the HTTP server from configuration.
package httpserver

import (
	"net/http"

	"lekha/internal/platform/config"
)

// New builds an HTTP server with timeouts taken from configuration.
func New(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
