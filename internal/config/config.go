package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Fiado"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Currency string `envconfig:"CURRENCY" default:"CLP"`
	}

	DB struct {
		Path string `envconfig:"DB_PATH" default:"fiado.db"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	Export struct {
		Dir string `envconfig:"EXPORT_DIR" default:"exports"`
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.App.Currency = strings.ToUpper(strings.TrimSpace(cfg.App.Currency))

	return &cfg, nil
}
