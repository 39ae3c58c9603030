// Package config loads runtime settings from the environment, optionally
// seeded from a .env file. Defaults serve the API on 0.0.0.0:5000 with
// every origin allowed.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/janisto/hello-api/internal/platform/logging"
)

const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 5000
)

// Config holds the server settings.
type Config struct {
	Host        string
	Port        int
	LogLevel    zapcore.Level
	CORSOrigins []string
	// ProjectID enables Cloud Trace log correlation when set.
	ProjectID string
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load reads .env files (missing files are ignored) and then the process
// environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		LogLevel:    zapcore.InfoLevel,
		CORSOrigins: []string{"*"},
	}

	if v := get("HOST"); v != "" {
		cfg.Host = v
	}
	if v := get("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := get("LOG_LEVEL"); v != "" {
		lvl, err := logging.ParseLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = lvl
	}
	if v := get("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
		if len(cfg.CORSOrigins) == 0 {
			return Config{}, fmt.Errorf("invalid CORS_ORIGINS %q", v)
		}
	}
	cfg.ProjectID = firstNonEmpty(
		get("GOOGLE_CLOUD_PROJECT"),
		get("GCP_PROJECT"),
		get("GCLOUD_PROJECT"),
		get("PROJECT_ID"),
	)
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
