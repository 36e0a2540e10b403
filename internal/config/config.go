package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envPrefix = "LENS"

// Config holds every runtime setting of the API server.
type Config struct {
	DatabaseURL     string        `envconfig:"DATABASE_URL" required:"true"`
	Port            string        `envconfig:"APP_PORT" default:"8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	JWTSecret       string        `envconfig:"JWT_SECRET" default:"change-me"`
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	PrintServerURL  string        `envconfig:"PRINT_SERVER_URL" default:"http://localhost:9100"`
	PrintTimeout    time.Duration `envconfig:"PRINT_TIMEOUT" default:"5s"`
	KafkaBrokers    []string      `envconfig:"KAFKA_BROKERS"`
	KafkaTopic      string        `envconfig:"KAFKA_TOPIC" default:"lens.orders"`
	DefaultLanguage string        `envconfig:"DEFAULT_LANGUAGE" default:"ko"`
	Timezone        string        `envconfig:"TIMEZONE" default:"Asia/Seoul"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	Supplier        Supplier      `envconfig:"SUPPLIER"`
}

// Supplier is our own business identity printed on tax invoices.
type Supplier struct {
	BizNo   string `envconfig:"BIZ_NO"`
	Name    string `envconfig:"NAME" default:"렌즈웍스"`
	CEOName string `envconfig:"CEO_NAME"`
	Address string `envconfig:"ADDRESS"`
	BizType string `envconfig:"BIZ_TYPE" default:"도매업"`
	BizItem string `envconfig:"BIZ_ITEM" default:"안경렌즈"`
}

// Load reads an optional .env file and then the LENS_* environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	return &cfg, nil
}

// Location resolves the business timezone used for order periods and document numbers.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", c.Timezone)
	}
	return loc, nil
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
