package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Token        string       `yaml:"token"`
	DatabasePath string       `yaml:"database_path"`
	LogLevel     string       `yaml:"log_level"`
	Prefix       string       `yaml:"prefix"`
	Health       HealthConfig `yaml:"health"`
	Embeds       EmbedColors  `yaml:"embed_colors"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type EmbedColors struct {
	Action  int `yaml:"action"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
	Info    int `yaml:"info"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath: "/data/warden.db",
		LogLevel:     "info",
		Prefix:       "!",
		Health:       HealthConfig{Enabled: false, Addr: ":8080"},
		Embeds: EmbedColors{
			Action:  0xF59E0B,
			Warning: 0xEF4444,
			Error:   0xF97316,
			Info:    0x3B82F6,
		},
	}
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.Token == "" {
		return Config{}, errors.New("TOKEN is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "!"
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Token = envString("TOKEN", cfg.Token)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Prefix = envString("COMMAND_PREFIX", cfg.Prefix)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Embeds.Action = envInt("EMBED_COLOR_ACTION", cfg.Embeds.Action)
	cfg.Embeds.Warning = envInt("EMBED_COLOR_WARNING", cfg.Embeds.Warning)
	cfg.Embeds.Error = envInt("EMBED_COLOR_ERROR", cfg.Embeds.Error)
	cfg.Embeds.Info = envInt("EMBED_COLOR_INFO", cfg.Embeds.Info)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
