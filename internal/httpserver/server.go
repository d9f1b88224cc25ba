// Package httpserver wraps the stdlib server with the timeouts and
// shutdown behavior the API process needs.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ShutdownTimeout bounds how long a graceful shutdown may take before
// in-flight requests are abandoned.
var ShutdownTimeout = 10 * time.Second

// Server serves the HTTP API.
type Server struct {
	srv *http.Server
}

// New constructs a server on the given port. There is no overall read
// timeout: video uploads stream large multipart bodies and are bounded
// by size instead.
func New(port int, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       time.Minute,
		},
	}
}

// Addr reports the listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start blocks serving traffic until the listener closes.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
