package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete service configuration, loadable from environment
// variables (CAFRILOSA_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (CAFRILOSA_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	Collaborators CollaboratorConfig
	Listener      ListenerConfig
	Graceful      GracefulConfig
}

// CollaboratorConfig holds the base URLs and shared timeout of the external
// service clients.
type CollaboratorConfig struct {
	CatalogURL   string        `default:"http://localhost:8081" usage:"Catalog service base URL" flag:"catalog-url"`
	InventoryURL string        `default:"http://localhost:8082" usage:"Inventory service base URL" flag:"inventory-url"`
	CartURL      string        `default:"http://localhost:8083" usage:"Cart service base URL" flag:"cart-url"`
	WarehouseURL string        `default:"http://localhost:8084" usage:"Warehouse service base URL" flag:"warehouse-url"`
	Timeout      time.Duration `default:"10s" usage:"Per-call timeout for collaborator requests"`
}

// ListenerConfig controls the notification listener.
type ListenerConfig struct {
	Backoff time.Duration `default:"5s" usage:"Reconnect backoff after a lost notification connection"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CAFRILOSA",
		Files:     []string{"config.yaml", "/etc/cafrilosa/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set CAFRILOSA_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}
