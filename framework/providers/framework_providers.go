package providers

import (
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/strut-web/strut/framework/config"
	"github.com/strut-web/strut/framework/container"
)

// ── ConfigProvider ───────────────────────────────────────────────────────────

// ConfigProvider loads the application configuration from .env and binds it
// into the container as "config".
type ConfigProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigProvider) Register(c *container.Container) error {
	envFiles := p.EnvFiles
	c.Register("config", func(r *container.Resolver) (any, error) {
		return config.Load(envFiles...), nil
	}, container.Singleton)
	return nil
}

// ── LoggerProvider ───────────────────────────────────────────────────────────

// LoggerProvider binds the process logger as "logger", configured from the
// "config" binding (level, pretty console output).
type LoggerProvider struct {
	container.BaseProvider
}

func (p *LoggerProvider) Register(c *container.Container) error {
	c.Register("logger", func(r *container.Resolver) (any, error) {
		cfg, err := container.ResolveFrom[*config.Config](r, "config")
		if err != nil {
			return nil, err
		}
		return NewLogger(cfg), nil
	}, container.Singleton, container.DependsOn("config"))
	return nil
}

// NewLogger builds a zerolog logger from configuration.
func NewLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Log.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().
		Timestamp().
		Str("app", cfg.App.Name).
		Logger()
}
