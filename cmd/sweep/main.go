// Command sweep runs exactly one expiry sweep cycle against the Postgres
// approval store and prints a one-line summary. It is intended to be invoked
// on a schedule (e.g. cron); a store connectivity or transaction failure
// exits non-zero with no partial state, and the next scheduled invocation is
// the retry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/viant/approvals"
	"github.com/viant/approvals/service/approval/pg"
	"github.com/viant/approvals/service/notifier"
	"github.com/viant/approvals/service/sweeper"
)

var (
	configLocation = flag.String("config", "", "optional YAML config location")
	host           = flag.String("host", "", "postgres host")
	port           = flag.Int("port", 0, "postgres port")
	database       = flag.String("db", "", "postgres database name")
	user           = flag.String("user", "", "postgres user")
	password       = flag.String("password", "", "postgres password")
	secretURL      = flag.String("secretURL", "", "scy secret URL with the database credential")
	batchSize      = flag.Int("batch", 0, "sweep batch size")
	queuePath      = flag.String("queuePath", "", "optional fs queue base path for expiry events")
	timeout        = flag.Duration("timeout", 30*time.Second, "overall cycle timeout")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sweep: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := approvals.LoadConfig(*configLocation)
	if err != nil {
		return err
	}
	applyFlags(config)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err = config.Store.Postgres.ResolveSecret(ctx); err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, config.Store.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	expiryNotifier := notifier.Nop()
	if config.Queue.Vendor == "fs" {
		queue, err := approvals.NewEventQueue(config.Queue)
		if err != nil {
			return err
		}
		expiryNotifier = notifier.NewQueue(queue)
	}

	sweeperConfig, err := config.Sweeper.ToConfig()
	if err != nil {
		return err
	}
	svc := sweeper.New(pg.New(pool), expiryNotifier, sweeperConfig)
	summary, err := svc.RunCycle(ctx)
	if err != nil {
		return err
	}
	fmt.Println(summary.String())
	return nil
}

// applyFlags lets command-line flags win over config file and environment.
func applyFlags(config *approvals.Config) {
	config.Store.Vendor = "postgres"
	if *host != "" {
		config.Store.Postgres.Host = *host
	}
	if *port > 0 {
		config.Store.Postgres.Port = *port
	}
	if *database != "" {
		config.Store.Postgres.Database = *database
	}
	if *user != "" {
		config.Store.Postgres.User = *user
	}
	if *password != "" {
		config.Store.Postgres.Password = *password
	}
	if *secretURL != "" {
		config.Store.Postgres.SecretURL = *secretURL
	}
	if *batchSize > 0 {
		config.Sweeper.BatchSize = *batchSize
	}
	if *queuePath != "" {
		config.Queue.Vendor = "fs"
		config.Queue.BasePath = *queuePath
	}
}
