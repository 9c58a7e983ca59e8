// Package config loads service configuration from defaults, an optional
// config.yml, an optional .env file, the environment and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	applog "github.com/janisto/football-api/internal/platform/logging"
)

// Defaults applied when no other source sets a value.
const (
	DefaultHost              = ""
	DefaultPort              = 8000
	DefaultEnvironment       = "development"
	DefaultReadTimeout       = 5 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultMaxHeaderBytes    = 64 << 10
	DefaultMaxBodyBytes      = 1 << 20

	// FileName is the config file base name looked up in each search path.
	FileName = "config"
	// FileType is the config file extension.
	FileType = "yml"
)

// Flag names registered by BindFlags.
const (
	FlagHost           = "host"
	FlagPort           = "port"
	FlagLogLevel       = "log-level"
	FlagConfigDir      = "config-dir"
	FlagEnvFile        = "env-file"
	FlagAllowedOrigins = "allowed-origins"
)

// Config is the complete service configuration.
type Config struct {
	Environment string `mapstructure:"environment" yaml:"environment"`
	Server      Server `mapstructure:"server"      yaml:"server"`
	Log         Log    `mapstructure:"log"         yaml:"log"`
	CORS        CORS   `mapstructure:"cors"        yaml:"cors"`
}

// Server holds the HTTP listener settings.
type Server struct {
	Host              string        `mapstructure:"host"                yaml:"host"`
	Port              int           `mapstructure:"port"                yaml:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"        yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"       yaml:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"        yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"    yaml:"shutdown_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"    yaml:"max_header_bytes"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"      yaml:"max_body_bytes"`
}

// Log holds logging settings.
type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// CORS holds cross-origin settings. An empty list allows every origin.
type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// Addr returns the listen address in host:port form.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port))
	}
	if _, err := applog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	for name, d := range map[string]time.Duration{
		"server.read_timeout":        c.Server.ReadTimeout,
		"server.read_header_timeout": c.Server.ReadHeaderTimeout,
		"server.write_timeout":       c.Server.WriteTimeout,
		"server.idle_timeout":        c.Server.IdleTimeout,
		"server.shutdown_timeout":    c.Server.ShutdownTimeout,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if c.Server.MaxHeaderBytes < 0 {
		errs = append(errs, errors.New("server.max_header_bytes must not be negative"))
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("server.max_body_bytes must not be negative"))
	}
	return errors.Join(errs...)
}

// BindFlags registers the command-line overrides on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String(FlagHost, DefaultHost, "interface to listen on (empty for all)")
	fs.IntP(FlagPort, "p", DefaultPort, "port to listen on")
	fs.String(FlagLogLevel, applog.DefaultLevel, "log level: debug, info, warn, error")
	fs.String(FlagConfigDir, "", "extra directory to search for config.yml")
	fs.String(FlagEnvFile, ".env", "dotenv file to load if present")
	fs.StringSlice(FlagAllowedOrigins, nil, "CORS allowed origins (default all)")
}

// Loader reads Config from its layered sources. A Loader is reusable so a
// watcher can reload the same sources after the config file changes.
type Loader struct {
	v       *viper.Viper
	flags   *pflag.FlagSet
	envFile string
	// dotenv holds the variables this Loader set from envFile, so a reload can
	// update or remove them without touching the real environment.
	dotenv map[string]struct{}
}

// NewLoader prepares a Loader. fs may be nil, in which case no flag overrides
// apply and no extra config directory is searched.
func NewLoader(fs *pflag.FlagSet) (*Loader, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType(FileType)
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// PORT is the platform convention (Cloud Run, Heroku); SERVER_PORT wins.
	if err := v.BindEnv("server.port", "SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind env server.port: %w", err)
	}
	if err := v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS"); err != nil {
		return nil, fmt.Errorf("bind env cors.allowed_origins: %w", err)
	}

	l := &Loader{v: v, flags: fs, envFile: ".env", dotenv: map[string]struct{}{}}
	if fs == nil {
		return l, nil
	}

	if f := fs.Lookup(FlagConfigDir); f != nil && f.Value.String() != "" {
		v.AddConfigPath(f.Value.String())
	}
	if f := fs.Lookup(FlagEnvFile); f != nil {
		l.envFile = f.Value.String()
	}
	for key, flag := range map[string]string{
		"server.host":          FlagHost,
		"server.port":          FlagPort,
		"log.level":            FlagLogLevel,
		"cors.allowed_origins": FlagAllowedOrigins,
	} {
		if f := fs.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}
	return l, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.read_header_timeout", DefaultReadHeaderTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.idle_timeout", DefaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("server.max_header_bytes", DefaultMaxHeaderBytes)
	v.SetDefault("server.max_body_bytes", DefaultMaxBodyBytes)
	v.SetDefault("log.level", applog.DefaultLevel)
	v.SetDefault("cors.allowed_origins", []string{})
}

// Load reads every source and returns a validated Config. A missing config
// file or .env file is not an error.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// loadDotEnv applies envFile beneath the real environment: a variable is
// only set when the process leaves it unset or empty, unless this Loader set
// it on an earlier load. Variables dropped from the file are unset again.
func (l *Loader) loadDotEnv() error {
	if l.envFile == "" {
		return nil
	}
	values, err := godotenv.Read(l.envFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", l.envFile, err)
		}
		values = nil
	}

	for key := range l.dotenv {
		if _, ok := values[key]; !ok {
			if err := os.Unsetenv(key); err != nil {
				return fmt.Errorf("unset %s: %w", key, err)
			}
			delete(l.dotenv, key)
		}
	}
	for key, value := range values {
		if _, owned := l.dotenv[key]; !owned {
			if current, set := os.LookupEnv(key); set && current != "" {
				continue
			}
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		l.dotenv[key] = struct{}{}
	}
	return nil
}

// EnvFile returns the absolute path of the dotenv file, or "" when it is
// disabled or missing.
func (l *Loader) EnvFile() string {
	if l.envFile == "" {
		return ""
	}
	if _, err := os.Stat(l.envFile); err != nil {
		return ""
	}
	abs, err := filepath.Abs(l.envFile)
	if err != nil {
		return l.envFile
	}
	return abs
}

// File returns the absolute path of the config file read by the last Load,
// or "" when none was found.
func (l *Loader) File() string {
	used := l.v.ConfigFileUsed()
	if used == "" {
		return ""
	}
	if _, err := os.Stat(used); err != nil {
		return ""
	}
	abs, err := filepath.Abs(used)
	if err != nil {
		return used
	}
	return abs
}

// Load is a convenience wrapper for NewLoader(fs) followed by Load.
func Load(fs *pflag.FlagSet) (*Config, error) {
	l, err := NewLoader(fs)
	if err != nil {
		return nil, err
	}
	return l.Load()
}
