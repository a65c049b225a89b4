package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tilly"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tilly"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		// Secret signs and verifies the HS256 access tokens.
		Secret string `envconfig:"AUTH_SECRET"`
	}

	Operator struct {
		// Name and Role identify the signed-in operator for cmd/tui, which
		// has no token exchange.
		Name string `envconfig:"OPERATOR_NAME" default:"operator"`
		Role string `envconfig:"OPERATOR_ROLE" default:"manager"`
	}

	Register struct {
		// TaxRatePercent is the sales tax applied at checkout, e.g. "16".
		TaxRatePercent string `envconfig:"TAX_RATE_PERCENT" default:"16"`
		Currency       string `envconfig:"CURRENCY" default:"EUR"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// TaxRate parses the configured percentage as an exact decimal.
func (c *Config) TaxRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Register.TaxRatePercent)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid tax rate %q: %w", c.Register.TaxRatePercent, err)
	}

	return rate, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
