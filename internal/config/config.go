// Package config loads application settings for the jwtcodec command from
// flags, JWTCODEC_* environment variables and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cybergodev/jwtcodec"
	"github.com/cybergodev/jwtcodec/internal/logger"
)

// EnvPrefix prefixes every environment variable, e.g. JWTCODEC_CODEC_KEY.
const EnvPrefix = "JWTCODEC"

// Workspace store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// CodecConfig mirrors jwtcodec.Config.
type CodecConfig struct {
	Algorithm    string `mapstructure:"algorithm"`
	Key          string `mapstructure:"key"`
	Indent       int    `mapstructure:"indent"`
	MaxTokenSize int    `mapstructure:"max_token_size"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RateWindow   time.Duration `mapstructure:"rate_window"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WorkspaceConfig selects and sizes the workspace store.
type WorkspaceConfig struct {
	Store           string        `mapstructure:"store"`
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig is used when workspace.store is redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Color bool   `mapstructure:"color"`
}

// Config is the full application configuration.
type Config struct {
	Codec     CodecConfig     `mapstructure:"codec"`
	Server    ServerConfig    `mapstructure:"server"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
}

// InitViper initializes Viper with file lookup, environment binding and
// defaults.
func InitViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/jwtcodec/")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("codec.algorithm", string(jwtcodec.AlgorithmHS256))
	v.SetDefault("codec.key", "")
	v.SetDefault("codec.indent", jwtcodec.DefaultIndent)
	v.SetDefault("codec.max_token_size", jwtcodec.DefaultMaxTokenSize)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.rate_window", time.Minute)

	v.SetDefault("workspace.store", StoreMemory)
	v.SetDefault("workspace.ttl", 24*time.Hour)
	v.SetDefault("workspace.max_size", 10000)
	v.SetDefault("workspace.cleanup_interval", 5*time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "jwtcodec:workspace")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.color", true)
}

// Load reads the config file (when present) and environment into a
// validated Config.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that the library configs do not cover.
func (c *Config) Validate() error {
	codec := c.Codec.JWTCodec()
	if err := codec.Validate(); err != nil {
		return fmt.Errorf("%w: codec: %w", ErrInvalid, err)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalid, c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rate_limit cannot be negative", ErrInvalid)
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow <= 0 {
		return fmt.Errorf("%w: server.rate_window must be positive", ErrInvalid)
	}

	switch c.Workspace.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("%w: workspace.store must be %q or %q, got %q", ErrInvalid, StoreMemory, StoreRedis, c.Workspace.Store)
	}
	if c.Workspace.TTL < 0 || c.Workspace.MaxSize < 0 {
		return fmt.Errorf("%w: workspace.ttl and workspace.max_size cannot be negative", ErrInvalid)
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	return nil
}

// JWTCodec converts to the library configuration.
func (c CodecConfig) JWTCodec() jwtcodec.Config {
	return jwtcodec.Config{
		Algorithm:    jwtcodec.Algorithm(c.Algorithm),
		Key:          c.Key,
		Indent:       c.Indent,
		MaxTokenSize: c.MaxTokenSize,
	}
}

// LoggerOptions converts to logger options. NO_COLOR and TERM=dumb turn
// colours off regardless of log.color.
func (c LogConfig) LoggerOptions() (logger.Options, error) {
	level, err := logger.ParseLevel(c.Level)
	if err != nil {
		return logger.Options{}, err
	}
	defaults := logger.DefaultOptions()
	return logger.Options{
		Level:     level,
		UseColors: c.Color && defaults.UseColors,
	}, nil
}

// BindFlags registers the persistent codec and logging flags on cmd and binds
// them to v.
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("algorithm", string(jwtcodec.AlgorithmHS256), "Signing algorithm (HS256, none)")
	flags.String("key", "", "HMAC signing key")
	flags.Int("indent", jwtcodec.DefaultIndent, "Spaces per level when pretty-printing")

	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("codec.algorithm", flags.Lookup("algorithm"))
	_ = v.BindPFlag("codec.key", flags.Lookup("key"))
	_ = v.BindPFlag("codec.indent", flags.Lookup("indent"))
}

// BindServeFlags registers the server flags on cmd and binds them to v.
func BindServeFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()
	flags.String("host", "", "Host to bind to")
	flags.IntP("port", "p", 0, "Port to listen on")
	flags.String("store", "", "Workspace store (memory, redis)")
	flags.String("redis-addr", "", "Redis address for the redis workspace store")

	_ = v.BindPFlag("server.host", flags.Lookup("host"))
	_ = v.BindPFlag("server.port", flags.Lookup("port"))
	_ = v.BindPFlag("workspace.store", flags.Lookup("store"))
	_ = v.BindPFlag("redis.addr", flags.Lookup("redis-addr"))
}

// ConfigFileUsed reports the file Load read, or "" when none was found.
func ConfigFileUsed(v *viper.Viper) string {
	used := v.ConfigFileUsed()
	if used == "" {
		return ""
	}
	if _, err := os.Stat(used); err != nil {
		return ""
	}
	return used
}
