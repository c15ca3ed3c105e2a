package approvals

import (
	"fmt"
	"os"
	"time"

	"github.com/viant/approvals/policy"
	"github.com/viant/approvals/service/approval/pg"
	"github.com/viant/approvals/service/messaging"
	"github.com/viant/approvals/service/sweeper"
	"github.com/viant/toolbox"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from YAML and overridden from the environment. The
// zero-value is useful - all nested fields inherit their package defaults.
type Config struct {
	Store   StoreConfig    `json:"store" yaml:"store"`
	Sweeper SweeperConfig  `json:"sweeper" yaml:"sweeper"`
	Server  ServerConfig   `json:"server" yaml:"server"`
	Queue   QueueConfig    `json:"queue" yaml:"queue"`
	Policy  *policy.Config `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// QueueConfig selects the event queue transport carrying approval events to
// the orchestrator: "memory" for in-process consumers, "fs" for a durable
// filesystem hand-off.
type QueueConfig struct {
	Vendor   string `json:"vendor" yaml:"vendor"`
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty"`
}

// StoreConfig selects and parameterises the approval store backend.
type StoreConfig struct {
	// Vendor is "memory" or "postgres".
	Vendor   string    `json:"vendor" yaml:"vendor"`
	Postgres pg.Config `json:"postgres" yaml:"postgres"`
}

// SweeperConfig is the serialisable form of sweeper.Config; the polling
// interval is a Go duration literal (e.g. "1m").
type SweeperConfig struct {
	BatchSize       int    `json:"batchSize" yaml:"batchSize"`
	PollingInterval string `json:"pollingInterval" yaml:"pollingInterval"`
}

// ToConfig converts the serialisable form into a runtime sweeper.Config.
func (c *SweeperConfig) ToConfig() (sweeper.Config, error) {
	ret := sweeper.DefaultConfig()
	if c.BatchSize > 0 {
		ret.BatchSize = c.BatchSize
	}
	if c.PollingInterval != "" {
		interval, err := time.ParseDuration(c.PollingInterval)
		if err != nil {
			return ret, fmt.Errorf("invalid sweeper.pollingInterval %q: %w", c.PollingInterval, err)
		}
		ret.PollingInterval = interval
	}
	return ret, nil
}

// ServerConfig holds the HTTP decision channel settings.
type ServerConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	ReadTimeout  time.Duration `json:"-" yaml:"-"`
	WriteTimeout time.Duration `json:"-" yaml:"-"`
}

// Address renders the listen address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DefaultConfig returns a Config populated with package defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Vendor:   "memory",
			Postgres: pg.DefaultConfig(),
		},
		Sweeper: SweeperConfig{
			BatchSize:       sweeper.DefaultConfig().BatchSize,
			PollingInterval: sweeper.DefaultConfig().PollingInterval.String(),
		},
		Server: ServerConfig{
			Port:         8085,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Queue: QueueConfig{
			Vendor: string(messaging.VendorMemory),
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Store.Vendor {
	case "memory":
	case "postgres":
		if err := c.Store.Postgres.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported store vendor: %s", c.Store.Vendor)
	}
	if _, err := c.Sweeper.ToConfig(); err != nil {
		return err
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	switch messaging.Vendor(c.Queue.Vendor) {
	case messaging.VendorMemory:
	case messaging.VendorFS:
		if c.Queue.BasePath == "" {
			return fmt.Errorf("queue.basePath is required for the fs vendor")
		}
	default:
		return fmt.Errorf("unsupported queue vendor: %s", c.Queue.Vendor)
	}
	return nil
}

// LoadConfig reads a YAML config file (optional - an empty location yields
// defaults) and applies environment overrides.
func LoadConfig(location string) (*Config, error) {
	config := DefaultConfig()
	if location != "" {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", location, err)
		}
		if err = yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", location, err)
		}
	}
	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides config fields from APPROVALS_* environment variables.
func (c *Config) applyEnv() {
	overrideString(&c.Store.Vendor, "APPROVALS_STORE_VENDOR")
	overrideString(&c.Store.Postgres.Host, "APPROVALS_DB_HOST")
	overrideInt(&c.Store.Postgres.Port, "APPROVALS_DB_PORT")
	overrideString(&c.Store.Postgres.Database, "APPROVALS_DB_NAME")
	overrideString(&c.Store.Postgres.User, "APPROVALS_DB_USER")
	overrideString(&c.Store.Postgres.Password, "APPROVALS_DB_PASSWORD")
	overrideString(&c.Store.Postgres.SecretURL, "APPROVALS_DB_SECRET_URL")
	overrideInt(&c.Sweeper.BatchSize, "APPROVALS_SWEEP_BATCH_SIZE")
	overrideString(&c.Sweeper.PollingInterval, "APPROVALS_SWEEP_INTERVAL")
	overrideString(&c.Server.Host, "APPROVALS_HTTP_HOST")
	overrideInt(&c.Server.Port, "APPROVALS_HTTP_PORT")
	overrideString(&c.Queue.Vendor, "APPROVALS_QUEUE_VENDOR")
	overrideString(&c.Queue.BasePath, "APPROVALS_QUEUE_PATH")
}

func overrideString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func overrideInt(target *int, key string) {
	if value := os.Getenv(key); value != "" {
		*target = toolbox.AsInt(value)
	}
}
