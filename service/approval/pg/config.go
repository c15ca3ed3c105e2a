package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
)

// Config holds Postgres connection parameters.
type Config struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Database string `json:"database" yaml:"database"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// SecretURL optionally points at a viant/scy encoded basic credential;
	// when set it supersedes User/Password.
	SecretURL string `json:"secretURL,omitempty" yaml:"secretURL,omitempty"`
}

// DefaultConfig returns connection defaults for a local Postgres.
func DefaultConfig() Config {
	return Config{
		Host:     "localhost",
		Port:     5432,
		Database: "approvals",
		User:     "approvals",
	}
}

// DSN renders the config as a pgx connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s",
		c.Host, c.Port, c.Database, c.User, c.Password)
}

// Validate reports missing mandatory settings.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("store host is required")
	}
	if c.Database == "" {
		return fmt.Errorf("store database is required")
	}
	if c.User == "" && c.SecretURL == "" {
		return fmt.Errorf("store user or secretURL is required")
	}
	return nil
}

// ResolveSecret loads the database credential from the scy-encoded secret
// when SecretURL is set, superseding any inline User/Password.
func (c *Config) ResolveSecret(ctx context.Context) error {
	if c.SecretURL == "" {
		return nil
	}
	resource := scy.NewResource(&cred.Basic{}, c.SecretURL, "blowfish://default")
	secret, err := scy.New().Load(ctx, resource)
	if err != nil {
		return fmt.Errorf("failed to load credential from %s: %w", c.SecretURL, err)
	}
	basic, ok := secret.Target.(*cred.Basic)
	if !ok {
		return fmt.Errorf("unsupported credential type %T at %s", secret.Target, c.SecretURL)
	}
	if basic.Username != "" {
		c.User = basic.Username
	}
	c.Password = basic.Password
	return nil
}

// Connect opens a pgx connection pool and verifies connectivity.
func Connect(ctx context.Context, config Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping %s:%d/%s: %w", config.Host, config.Port, config.Database, err)
	}
	return pool, nil
}
