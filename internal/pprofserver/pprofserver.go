// Package pprofserver serves the runtime profiling endpoints on a separate, loopback-only listener.
package pprofserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/myrjola/nai/internal/errors"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

func newServer(logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	Handle(mux)
	return &http.Server{
		Handler:           mux,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		ReadHeaderTimeout: time.Second,
	}
}

// Launch serves pprof on the IPv6 loopback address ::1 at the given port until ctx is done. The returned address
// is the one actually listened on, which matters for port 0.
func Launch(ctx context.Context, port string, logger *slog.Logger) (net.Addr, error) {
	listener, err := net.Listen("tcp", net.JoinHostPort("::1", port))
	if err != nil {
		return nil, errors.Wrap(err, "pprof listen", slog.String("port", port))
	}
	srv := newServer(logger)
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		logger.LogAttrs(ctx, slog.LevelInfo, "starting pprof server", slog.String("addr", listener.Addr().String()))
		if serveErr := srv.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			logger.LogAttrs(ctx, slog.LevelError, "pprof server stopped",
				errors.SlogError(errors.Wrap(serveErr, "pprof serve")))
		}
	}()
	return listener.Addr(), nil
}
