// Package config
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	Mode      string
	Interval  time.Duration `validate:"gt=0"`
	ProcRoot  string        `validate:"required"`
	HostID    uuid.UUID
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	Address        string `validate:"required"`
	HTTPEnabled    bool
	JWTSecret      string
	AllowedOrigins []string

	Sinks           []string `validate:"dive,oneof=sqlite postgres http nats"`
	SQLitePath      string
	DatabaseURL     string
	ReportURL       string `validate:"omitempty,url"`
	ReportToken     string
	ReportBatchSize int    `validate:"gte=1"`
	NATSURL         string `validate:"omitempty,url"`
	NATSSubject     string

	Retention      time.Duration `validate:"gte=0"`
	RetentionCheck time.Duration `validate:"gt=0"`
}

const (
	ModeServe    = "serve"
	ModeStream   = "stream"
	ModeSnapshot = "snapshot"
)

const (
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
	SinkHTTP     = "http"
	SinkNATS     = "nats"
)

// Load reads the optional .env file and the process environment. The
// returned config has been validated.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Mode:            ModeServe,
		ProcRoot:        getEnv("PROC_ROOT", "/proc"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),
		Address:         getEnv("HTTP_ADDR", "127.0.0.1:3727"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AllowedOrigins:  splitList(os.Getenv("ALLOWED_ORIGINS")),
		Sinks:           splitList(getEnv("SINKS", SinkSQLite)),
		SQLitePath:      getEnv("SQLITE_PATH", "horizonx.db"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ReportURL:       os.Getenv("REPORT_URL"),
		ReportToken:     os.Getenv("REPORT_TOKEN"),
		NATSURL:         getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		NATSSubject:     getEnv("NATS_SUBJECT", "horizonx.snapshots"),
		ReportBatchSize: 1,
	}

	var err error

	cfg.Interval = 5 * time.Second
	if raw := os.Getenv("SCRAPE_INTERVAL"); raw != "" {
		if cfg.Interval, err = time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("invalid SCRAPE_INTERVAL %q: %w", raw, err)
		}
	}

	cfg.HTTPEnabled = true
	if raw := os.Getenv("HTTP_ENABLED"); raw != "" {
		if cfg.HTTPEnabled, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("invalid HTTP_ENABLED %q: %w", raw, err)
		}
	}

	cfg.RetentionCheck = time.Hour
	for key, dst := range map[string]*time.Duration{
		"RETENTION":                &cfg.Retention,
		"RETENTION_CHECK_INTERVAL": &cfg.RetentionCheck,
	} {
		if raw := os.Getenv(key); raw != "" {
			if *dst, err = time.ParseDuration(raw); err != nil {
				return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
			}
		}
	}

	if raw := os.Getenv("REPORT_BATCH_SIZE"); raw != "" {
		if cfg.ReportBatchSize, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("invalid REPORT_BATCH_SIZE %q: %w", raw, err)
		}
	}

	if raw := os.Getenv("HOST_ID"); raw != "" {
		if cfg.HostID, err = uuid.Parse(raw); err != nil {
			return nil, fmt.Errorf("invalid HOST_ID %q: %w", raw, err)
		}
	} else {
		cfg.HostID = DefaultHostID()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field rules and the settings each enabled sink needs.
// It is called again after command-line overrides are applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}

		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", e.Namespace(), e.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}

	for _, sink := range c.Sinks {
		switch {
		case sink == SinkSQLite && c.SQLitePath == "":
			return errors.New("invalid config: SQLITE_PATH is required for the sqlite sink")
		case sink == SinkPostgres && c.DatabaseURL == "":
			return errors.New("invalid config: DATABASE_URL is required for the postgres sink")
		case sink == SinkHTTP && c.ReportURL == "":
			return errors.New("invalid config: REPORT_URL is required for the http sink")
		case sink == SinkNATS && c.NATSSubject == "":
			return errors.New("invalid config: NATS_SUBJECT is required for the nats sink")
		}
	}

	return nil
}

func (c *Config) SinkEnabled(name string) bool {
	return slices.Contains(c.Sinks, name)
}

// DefaultHostID derives a stable id from the hostname so restarts keep
// writing under the same host.
func DefaultHostID() uuid.UUID {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return uuid.Nil
	}
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(hostname))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
