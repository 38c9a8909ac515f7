package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/internal/db"
	"github.com/diewo77/go-rems/internal/leads"
	"github.com/diewo77/go-rems/internal/metrics"
	"github.com/diewo77/go-rems/internal/realtime"
	"github.com/diewo77/go-rems/internal/server"
	"github.com/diewo77/go-rems/web"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  func(cmd *cobra.Command, args []string) error { return serve(cmd.Context()) },
}

func serve(ctx context.Context) error {
	conn, err := db.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	if cfg.App.Migrations {
		if err := db.Migrate(conn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations completed")
	}
	if err := seed(conn, cfg.Seed.Demo); err != nil {
		return err
	}

	b, err := newBroker(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	deps := server.Deps{
		DB:       conn,
		Log:      log,
		Sessions: auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL()),
		Broker:   b,
		Metrics:  metrics.New(),
		Web:      web.FS,
	}
	switch cfg.App.LeadsBackend {
	case "db":
		deps.Leads = leads.NewGormStore(conn)
	case "memory", "":
		log.Warn("leads are kept in memory per session and are lost at logout or restart")
	default:
		return fmt.Errorf("unknown LEADS_BACKEND %q", cfg.App.LeadsBackend)
	}

	addr := listenAddr
	if addr == "" {
		addr = ":" + cfg.Server.Port
	}
	// cancelled on shutdown so open chat streams return
	baseCtx, cancelStreams := context.WithCancel(ctx)
	defer cancelStreams()
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.New(deps),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelStreams)

	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "dev": cfg.App.Dev}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}

type broker interface {
	realtime.Broker
	Close() error
}

// newBroker returns the Redis broker when REDIS_ADDRESS is set, the
// in-process one otherwise.
func newBroker(ctx context.Context) (broker, error) {
	if cfg.Redis.Address == "" {
		return realtime.NewMemoryBroker(), nil
	}
	b := realtime.NewRedisBroker(realtime.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB))
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := b.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Address, err)
	}
	log.WithField("addr", cfg.Redis.Address).Info("chat broker: redis")
	return b, nil
}
