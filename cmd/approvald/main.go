// Command approvald hosts the approval lifecycle service: the HTTP decision
// channel, the Prometheus metrics endpoint and the periodic expiry sweeper.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viant/approvals"
	"github.com/viant/approvals/server"
	"github.com/viant/approvals/service/approval"
	"github.com/viant/approvals/service/approval/memory"
	"github.com/viant/approvals/service/approval/pg"
	"github.com/viant/approvals/tracing"
)

const version = "0.1.0"

var configLocation = flag.String("config", "", "optional YAML config location")

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "approvald: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := approvals.LoadConfig(*configLocation)
	if err != nil {
		return err
	}
	if err = tracing.Init("approvald", version, os.Getenv("APPROVALS_TRACE_FILE")); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := newStore(ctx, config)
	if err != nil {
		return err
	}
	defer cleanup()

	queue, err := approvals.NewEventQueue(config.Queue)
	if err != nil {
		return err
	}

	service, err := approvals.New(
		approvals.WithConfig(config),
		approvals.WithStore(store),
		approvals.WithQueue(queue),
	)
	if err != nil {
		return err
	}

	go func() {
		if err := service.Runtime().Start(ctx); err != nil && ctx.Err() == nil {
			log.Printf("sweep loop stopped: %v", err)
		}
	}()

	httpServer := server.New(service, config.Server)
	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (store=%s)", config.Server.Address(), config.Store.Vendor)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	service.Runtime().Shutdown()
	return httpServer.Shutdown(shutdownCtx)
}

func newStore(ctx context.Context, config *approvals.Config) (approval.Store, func(), error) {
	switch config.Store.Vendor {
	case "postgres":
		if err := config.Store.Postgres.ResolveSecret(ctx); err != nil {
			return nil, nil, err
		}
		pool, err := pg.Connect(ctx, config.Store.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err = pg.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg.New(pool), pool.Close, nil
	default:
		return memory.New(), func() {}, nil
	}
}
