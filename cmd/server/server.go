package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/myrjola/nai/internal/errors"
)

const shutdownTimeout = 10 * time.Second

// configureAndStartServer serves until ctx is done and then shuts down gracefully.
func (app *application) configureAndStartServer(ctx context.Context, addr string, timeout time.Duration) error {
	var err error
	shutdownComplete := make(chan struct{})
	srv := &http.Server{
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           app.routes(timeout),
		IdleTimeout:       time.Minute,
		ReadTimeout:       5 * time.Second, //nolint:mnd // requests are small JSON bodies
		WriteTimeout:      timeout + time.Second,
		ReadHeaderTimeout: time.Second,
	}
	go func() {
		defer close(shutdownComplete)
		<-ctx.Done()
		app.logger.LogAttrs(context.Background(), slog.LevelInfo, "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			app.logger.LogAttrs(shutdownCtx, slog.LevelError, "error shutting down server",
				errors.SlogError(errors.Wrap(shutdownErr, "shutdown server")))
		}
	}()

	var listener net.Listener
	if listener, err = net.Listen("tcp", addr); err != nil {
		return errors.Wrap(err, "TCP listen", slog.String("addr", addr))
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server", slog.String("Addr", listener.Addr().String()))
	if err = srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server serve")
	}
	<-shutdownComplete
	return nil
}
