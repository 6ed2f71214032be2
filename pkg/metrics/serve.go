// pkg/metrics/serve.go

package metrics

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the registry on /metrics.
type Server struct {
	listener net.Listener
	server   *http.Server
}

// NewServer listens on addr; errLog receives http server errors and may be nil.
func NewServer(addr string, errLog *log.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %s", addr)
	}
	handler := promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	return &Server{
		listener: ln,
		server:   &http.Server{Handler: mux, ErrorLog: errLog},
	}, nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks until ctx is done or the server fails.
func (s *Server) Serve(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.server.Serve(s.listener)
	}()
	select {
	case <-ctx.Done():
		return s.server.Shutdown(context.Background())
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve metrics")
	}
}
