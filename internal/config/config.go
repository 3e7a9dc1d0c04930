// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first when present, and CONFIG_FILE may name
// a YAML file whose values apply wherever the environment leaves a setting
// unset.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
	DriverMemory   = "memory"
)

type Postgres struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DB       string `yaml:"db"`
}

type Config struct {
	Port           int      `yaml:"port"`
	StoreDriver    string   `yaml:"store_driver"`
	Postgres       Postgres `yaml:"postgres"`
	BoltPath       string   `yaml:"bolt_path"`
	DatasetPath    string   `yaml:"dataset_path"`
	JWTSecret      string   `yaml:"jwt_secret"`
	GoogleClientID string   `yaml:"google_client_id"`
	Candidates     []string `yaml:"candidates"`
	CORSOrigins    []string `yaml:"cors_origins"`
	CookieDomain   string   `yaml:"cookie_domain"`
	SessionPath    string   `yaml:"session_path"`
}

func defaults() Config {
	return Config{
		Port:        8080,
		StoreDriver: DriverPostgres,
		Postgres:    Postgres{Host: "localhost", Port: "5432"},
		BoltPath:    "salesvote.db",
		DatasetPath: "Warehouse_and_Retail_Sales.csv",
		CORSOrigins: []string{"*"},
		SessionPath: defaultSessionPath(),
	}
}

// Load reads .env, the optional YAML file and the environment, in that order
// of increasing precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		c.Port = port
	}
	setString(&c.StoreDriver, "STORE_DRIVER")
	setString(&c.Postgres.Host, "POSTGRES_HOST")
	setString(&c.Postgres.Port, "POSTGRES_PORT")
	setString(&c.Postgres.User, "POSTGRES_USER")
	setString(&c.Postgres.Password, "POSTGRES_PASSWORD")
	setString(&c.Postgres.DB, "POSTGRES_DB")
	setString(&c.BoltPath, "BOLT_PATH")
	setString(&c.DatasetPath, "DATASET_PATH")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&c.CookieDomain, "COOKIE_DOMAIN")
	setString(&c.SessionPath, "SESSION_PATH")
	setList(&c.Candidates, "CANDIDATES")
	setList(&c.CORSOrigins, "CORS_ORIGINS")
	return nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverBolt, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s, %s or %s)", c.StoreDriver, DriverPostgres, DriverBolt, DriverMemory)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	seen := make(map[string]bool, len(c.Candidates))
	for _, name := range c.Candidates {
		if seen[name] {
			return fmt.Errorf("candidate %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}

// ValidateAuth reports whether the settings are enough to issue and verify
// access tokens. Commands that sign users in call it after Load.
func (c Config) ValidateAuth() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// CandidateList returns the configured candidates, or the defaults when none
// are configured.
func (c Config) CandidateList() []domain.Candidate {
	if len(c.Candidates) == 0 {
		return append([]domain.Candidate(nil), domain.DefaultCandidates...)
	}
	out := make([]domain.Candidate, 0, len(c.Candidates))
	for _, name := range c.Candidates {
		out = append(out, domain.Candidate(name))
	}
	return out
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".salesvote-session"
	}
	return dir + string(os.PathSeparator) + "salesvote" + string(os.PathSeparator) + "session"
}
