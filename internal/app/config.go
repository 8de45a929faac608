package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/megamarket-backend/internal/platform/envutil"
)

const configPathEnv = "MEGAMARKET_CONFIG"

// Duration reads "90s"-style strings or bare seconds from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = 0
		return nil
	}
	if v, err := time.ParseDuration(raw); err == nil {
		*d = Duration(v)
		return nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", node.Line, raw)
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	ReadTimeout       Duration `yaml:"read_timeout"`
	WriteTimeout      Duration `yaml:"write_timeout"`
	Metrics           bool     `yaml:"metrics"`
}

type DatabaseConfig struct {
	URL             string   `yaml:"url"`
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
	SlowThreshold   Duration `yaml:"slow_threshold"`
	AutoMigrate     bool     `yaml:"auto_migrate"`
}

type TreeConfig struct {
	MaxDepth    int      `yaml:"max_depth"`
	ChunkSize   int      `yaml:"chunk_size"`
	SalesWindow Duration `yaml:"sales_window"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Environment string  `yaml:"environment"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	Stdout      bool    `yaml:"stdout"`
}

type Config struct {
	LogMode         string         `yaml:"log_mode"`
	HTTP            HTTPConfig     `yaml:"http"`
	Database        DatabaseConfig `yaml:"database"`
	Tree            TreeConfig     `yaml:"tree"`
	Otel            OtelConfig     `yaml:"otel"`
	ShutdownTimeout Duration       `yaml:"shutdown_timeout"`
}

func DefaultConfig() Config {
	return Config{
		LogMode: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration(5 * time.Second),
			ReadTimeout:       Duration(30 * time.Second),
			WriteTimeout:      Duration(60 * time.Second),
			Metrics:           true,
		},
		Database: DatabaseConfig{
			URL:             "sqlite:///megamarket.db",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: Duration(30 * time.Minute),
			SlowThreshold:   Duration(500 * time.Millisecond),
			AutoMigrate:     true,
		},
		Tree: TreeConfig{
			MaxDepth:    4096,
			ChunkSize:   500,
			SalesWindow: Duration(24 * time.Hour),
		},
		Otel: OtelConfig{
			ServiceName: "megamarket-backend",
			Environment: "local",
			SampleRatio: 1,
		},
		ShutdownTimeout: Duration(15 * time.Second),
	}
}

// LoadConfig layers defaults, the YAML file at path (or $MEGAMARKET_CONFIG)
// and environment variables, in that order.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = strings.TrimSpace(os.Getenv(configPathEnv))
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decodeYAML(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	c.LogMode = envutil.String("LOG_MODE", c.LogMode)

	c.HTTP.Addr = envutil.String("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.AllowedOrigins = envutil.List("CORS_ALLOWED_ORIGINS", c.HTTP.AllowedOrigins)
	c.HTTP.Metrics = envutil.Bool("METRICS_ENABLED", c.HTTP.Metrics)

	c.Database.URL = envutil.String("DATABASE_URL", c.Database.URL)
	c.Database.MaxOpenConns = envutil.Int("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = envutil.Int("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime = Duration(envutil.Duration("DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime.Std()))
	c.Database.AutoMigrate = envutil.Bool("DB_AUTO_MIGRATE", c.Database.AutoMigrate)

	c.Tree.MaxDepth = envutil.Int("MAX_TREE_DEPTH", c.Tree.MaxDepth)
	c.Tree.ChunkSize = envutil.Int("IMPORT_CHUNK_SIZE", c.Tree.ChunkSize)
	c.Tree.SalesWindow = Duration(envutil.Duration("SALES_WINDOW", c.Tree.SalesWindow.Std()))

	c.Otel.Enabled = envutil.Bool("OTEL_ENABLED", c.Otel.Enabled)
	c.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", c.Otel.ServiceName)
	c.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", c.Otel.Environment)
	c.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", c.Otel.Endpoint)
	c.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", c.Otel.Headers)
	c.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", c.Otel.Insecure)
	c.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", c.Otel.SampleRatio)
	c.Otel.Stdout = envutil.Bool("OTEL_STDOUT", c.Otel.Stdout)

	c.ShutdownTimeout = Duration(envutil.Duration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout.Std()))
}

func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Database.URL) == "" {
		problems = append(problems, "database url is required")
	}
	if c.HTTP.Addr == "" {
		problems = append(problems, "http addr is required")
	}
	if c.Tree.MaxDepth <= 0 {
		problems = append(problems, "tree max_depth must be positive")
	}
	if c.Tree.ChunkSize <= 0 {
		problems = append(problems, "tree chunk_size must be positive")
	}
	if c.Tree.SalesWindow <= 0 {
		problems = append(problems, "tree sales_window must be positive")
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		problems = append(problems, "database pool sizes must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
