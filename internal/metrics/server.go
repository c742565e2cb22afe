package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server exposes the counter registry on /metrics, plus a /health probe.
type Server struct {
	server *http.Server
}

// NewServer builds the exposition server for the given bind address.
func NewServer(addr string, m *Metrics) *Server {
	r := mux.NewRouter()
	r.Handle("/metrics", m.Handler()).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: r,
		},
	}
}

// Start binds the listener and begins serving. A bind failure is returned
// synchronously so the caller can treat it as fatal startup misconfiguration.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	go func() {
		logrus.Infof("Metrics server listening on %s", s.server.Addr)
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("Metrics server: %v", err)
		}
	}()
	return nil
}

// Stop shuts the server down, allowing in-flight scrapes to finish.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
