package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Arstat/recstore"
	"github.com/Arstat/recstore/archive"
	"github.com/Arstat/recstore/record"
)

// Sentinel validation errors.
var (
	ErrInvalidBackend  = errors.New("invalid snapshot backend")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrMissingBucket   = errors.New("snapshot bucket is required")
)

const (
	defaultStorePath = "records.rcs"
	defaultBackend   = "local"
	defaultSnapDir   = "snapshots"

	backendLocal = "local"
	backendMinio = "minio"
	backendS3    = "s3"
)

// Config holds all configuration for the recstore CLI.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// StoreConfig holds store file settings.
type StoreConfig struct {
	Path       string `mapstructure:"path"`
	Sync       bool   `mapstructure:"sync"`
	MaxTextLen string `mapstructure:"max_text_len"`
}

// SnapshotConfig holds the snapshot destination.
type SnapshotConfig struct {
	Backend     string `mapstructure:"backend"`
	Directory   string `mapstructure:"directory"`
	Bucket      string `mapstructure:"bucket"`
	Prefix      string `mapstructure:"prefix"`
	Endpoint    string `mapstructure:"endpoint"`
	Region      string `mapstructure:"region"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	Secure      bool   `mapstructure:"secure"`
	PathStyle   bool   `mapstructure:"path_style"`
	Compression string `mapstructure:"compression"`
	RateLimit   string `mapstructure:"rate_limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// loadConfig merges defaults, the optional config file, RECSTORE_* env and
// the flags set on cmd.
func loadConfig(cmd *cobra.Command, cfgFile string) (*Config, error) {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	if cfgFile != "" {
		viperCfg.SetConfigFile(cfgFile)
	} else {
		viperCfg.SetConfigName("recstore")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME/.config/recstore")
	}

	viperCfg.SetEnvPrefix("RECSTORE")
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	if err := bindFlags(viperCfg, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"store":        "store.path",
	"sync":         "store.sync",
	"max-text-len": "store.max_text_len",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"backend":      "snapshot.backend",
	"dir":          "snapshot.directory",
	"bucket":       "snapshot.bucket",
	"prefix":       "snapshot.prefix",
	"endpoint":     "snapshot.endpoint",
	"region":       "snapshot.region",
	"compression":  "snapshot.compression",
	"rate-limit":   "snapshot.rate_limit",
}

func bindFlags(viperCfg *viper.Viper, cmd *cobra.Command) error {
	var bindErr error
	bind := func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = viperCfg.BindPFlag(key, f)
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	return bindErr
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("store.path", defaultStorePath)
	viperCfg.SetDefault("store.sync", false)
	viperCfg.SetDefault("store.max_text_len", "1MiB")

	viperCfg.SetDefault("snapshot.backend", defaultBackend)
	viperCfg.SetDefault("snapshot.directory", defaultSnapDir)
	viperCfg.SetDefault("snapshot.bucket", "")
	viperCfg.SetDefault("snapshot.prefix", "")
	viperCfg.SetDefault("snapshot.endpoint", "")
	viperCfg.SetDefault("snapshot.region", "")
	viperCfg.SetDefault("snapshot.access_key", "")
	viperCfg.SetDefault("snapshot.secret_key", "")
	viperCfg.SetDefault("snapshot.secure", true)
	viperCfg.SetDefault("snapshot.path_style", false)
	viperCfg.SetDefault("snapshot.compression", "zstd")
	viperCfg.SetDefault("snapshot.rate_limit", "0")

	viperCfg.SetDefault("logging.level", "warn")
	viperCfg.SetDefault("logging.format", "text")
}

func validateConfig(cfg *Config) error {
	switch cfg.Snapshot.Backend {
	case backendLocal:
	case backendMinio, backendS3:
		if cfg.Snapshot.Bucket == "" {
			return fmt.Errorf("%w for backend %s", ErrMissingBucket, cfg.Snapshot.Backend)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, cfg.Snapshot.Backend)
	}

	if _, err := parseLevel(cfg.Logging.Level); err != nil {
		return err
	}
	if _, err := cfg.maxTextLen(); err != nil {
		return err
	}
	if _, err := cfg.rateLimit(); err != nil {
		return err
	}
	if _, err := archive.ParseCompression(cfg.Snapshot.Compression); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}
	return level, nil
}

func (c *Config) maxTextLen() (int, error) {
	n, err := humanize.ParseBytes(c.Store.MaxTextLen)
	if err != nil {
		return 0, fmt.Errorf("invalid max text length %q: %w", c.Store.MaxTextLen, err)
	}
	if n == 0 || n > record.MaxTextLen {
		return 0, fmt.Errorf("invalid max text length %q: must be between 1B and %s",
			c.Store.MaxTextLen, humanize.IBytes(record.MaxTextLen))
	}
	return int(n), nil
}

func (c *Config) rateLimit() (int, error) {
	n, err := humanize.ParseBytes(c.Snapshot.RateLimit)
	if err != nil {
		return 0, fmt.Errorf("invalid rate limit %q: %w", c.Snapshot.RateLimit, err)
	}
	if n > 1<<40 {
		return 0, fmt.Errorf("invalid rate limit %q", c.Snapshot.RateLimit)
	}
	return int(n), nil
}

func (c *Config) logger(w io.Writer) *recstore.Logger {
	level, _ := parseLevel(c.Logging.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Logging.Format, "json") {
		return recstore.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return recstore.NewLogger(slog.NewTextHandler(w, opts))
}

// storeOptions builds the options shared by every store operation.
func (c *Config) storeOptions(logw io.Writer) []recstore.Option {
	maxLen, err := c.maxTextLen()
	if err != nil {
		maxLen = record.DefaultMaxTextLen
	}
	return []recstore.Option{
		recstore.WithLogger(c.logger(logw)),
		recstore.WithSync(c.Store.Sync),
		recstore.WithMaxTextLen(maxLen),
	}
}
