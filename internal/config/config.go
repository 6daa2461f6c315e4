package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
)

// EnvPrefix is the prefix of environment overrides (FREEMENTORS_API_URL, ...)
const EnvPrefix = "FREEMENTORS"

// Storage backends
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the client configuration
type Config struct {
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// APIConfig points at the GraphQL endpoint
type APIConfig struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// StorageConfig selects where the session credentials live
type StorageConfig struct {
	Backend    string      `yaml:"backend" mapstructure:"backend"`
	Dir        string      `yaml:"dir" mapstructure:"dir"`
	Passphrase string      `yaml:"passphrase,omitempty" mapstructure:"passphrase"`
	Redis      RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig is used when Backend is redis
type RedisConfig struct {
	Addr   string        `yaml:"addr" mapstructure:"addr"`
	DB     int           `yaml:"db" mapstructure:"db"`
	Prefix string        `yaml:"prefix" mapstructure:"prefix"`
	TTL    time.Duration `yaml:"ttl,omitempty" mapstructure:"ttl"`
}

// OutputConfig holds command output defaults
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format"` // "text", "json", "yaml"
	NoColor bool   `yaml:"no_color" mapstructure:"no_color"`
}

// LoggingConfig configures diagnostics
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file,omitempty" mapstructure:"file"`
}

// CredentialsPath is the encrypted credential file inside Storage.Dir
func (c StorageConfig) CredentialsPath() string {
	return filepath.Join(c.Dir, "credentials.json")
}

// AuditPath is the account activity log inside Storage.Dir
func (c StorageConfig) AuditPath() string {
	return filepath.Join(c.Dir, "audit.jsonl")
}

// HomeDir returns ~/.freementors
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".freementors"), nil
}

// DefaultPath returns ~/.freementors/config.yaml
func DefaultPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the built-in configuration rooted at dir
func Default(dir string) *Config {
	return &Config{
		API: APIConfig{
			URL:     "http://localhost:8000/graphql/",
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Dir:     dir,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "freementors",
			},
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("api.url", def.API.URL)
	v.SetDefault("api.timeout", def.API.Timeout)
	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.dir", def.Storage.Dir)
	v.SetDefault("storage.passphrase", def.Storage.Passphrase)
	v.SetDefault("storage.redis.addr", def.Storage.Redis.Addr)
	v.SetDefault("storage.redis.db", def.Storage.Redis.DB)
	v.SetDefault("storage.redis.prefix", def.Storage.Redis.Prefix)
	v.SetDefault("storage.redis.ttl", def.Storage.Redis.TTL)
	v.SetDefault("output.format", def.Output.Format)
	v.SetDefault("output.no_color", def.Output.NoColor)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.file", def.Logging.File)
}

// Loader reads configuration with the precedence
// defaults < config file < FREEMENTORS_* env < explicit overrides.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader prepares a loader. An empty path means ~/.freementors/config.yaml.
func NewLoader(path string) (*Loader, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default(filepath.Dir(path)))

	return &Loader{v: v, path: path}, nil
}

// Path returns the config file location
func (l *Loader) Path() string {
	return l.path
}

// Override sets a value that beats file and environment, e.g. a flag
func (l *Loader) Override(key string, value any) {
	l.v.Set(key, value)
}

// Load reads the file (a missing one is fine) and decodes the result
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmerrors.Wrap(fmerrors.ErrCodeConfigInvalid, "failed to read configuration", err).
				WithSuggestion(fmt.Sprintf("Fix or remove %s", l.path))
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmerrors.Wrap(fmerrors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is a shortcut for NewLoader(path).Load()
func Load(path string) (*Config, error) {
	l, err := NewLoader(path)
	if err != nil {
		return nil, err
	}
	return l.Load()
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Validate checks enumerated values and required fields
func (c *Config) Validate() error {
	invalid := func(key, value string) error {
		return fmerrors.New(fmerrors.ErrCodeConfigInvalid, fmt.Sprintf("invalid value %q for %s", value, key))
	}

	if strings.TrimSpace(c.API.URL) == "" {
		return fmerrors.New(fmerrors.ErrCodeConfigInvalid, "api.url is required")
	}
	if c.API.Timeout < 0 {
		return invalid("api.timeout", c.API.Timeout.String())
	}
	switch c.Storage.Backend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return invalid("storage.backend", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendRedis && c.Storage.Redis.Addr == "" {
		return fmerrors.New(fmerrors.ErrCodeConfigInvalid, "storage.redis.addr is required for the redis backend")
	}
	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		return invalid("output.format", c.Output.Format)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return invalid("logging.format", c.Logging.Format)
	}
	return nil
}

// LoadFile reads only the file at path on top of the defaults, without
// environment or flag overrides. A missing file yields the defaults.
// config set uses it so overrides are not written back.
func LoadFile(path string) (*Config, error) {
	cfg := Default(filepath.Dir(path))
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmerrors.NewStorageError(false, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmerrors.Wrap(fmerrors.ErrCodeConfigInvalid, "failed to parse configuration", err).
			WithSuggestion(fmt.Sprintf("Fix or remove %s", path))
	}
	return cfg, nil
}

// Save writes cfg as YAML with owner-only permissions
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Keys lists the settable keys in dot notation
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for k := range accessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type accessor struct {
	get func(*Config) string
	set func(*Config, string) error
}

var accessors = map[string]accessor{
	"api.url": {
		get: func(c *Config) string { return c.API.URL },
		set: func(c *Config, v string) error { c.API.URL = v; return nil },
	},
	"api.timeout": {
		get: func(c *Config) string { return c.API.Timeout.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			c.API.Timeout = d
			return nil
		},
	},
	"storage.backend": {
		get: func(c *Config) string { return c.Storage.Backend },
		set: func(c *Config, v string) error { c.Storage.Backend = strings.ToLower(v); return nil },
	},
	"storage.dir": {
		get: func(c *Config) string { return c.Storage.Dir },
		set: func(c *Config, v string) error { c.Storage.Dir = v; return nil },
	},
	"storage.passphrase": {
		get: func(c *Config) string {
			if c.Storage.Passphrase == "" {
				return ""
			}
			return "********"
		},
		set: func(c *Config, v string) error { c.Storage.Passphrase = v; return nil },
	},
	"storage.redis.addr": {
		get: func(c *Config) string { return c.Storage.Redis.Addr },
		set: func(c *Config, v string) error { c.Storage.Redis.Addr = v; return nil },
	},
	"storage.redis.db": {
		get: func(c *Config) string { return strconv.Itoa(c.Storage.Redis.DB) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			c.Storage.Redis.DB = n
			return nil
		},
	},
	"storage.redis.prefix": {
		get: func(c *Config) string { return c.Storage.Redis.Prefix },
		set: func(c *Config, v string) error { c.Storage.Redis.Prefix = v; return nil },
	},
	"storage.redis.ttl": {
		get: func(c *Config) string { return c.Storage.Redis.TTL.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			c.Storage.Redis.TTL = d
			return nil
		},
	},
	"output.format": {
		get: func(c *Config) string { return c.Output.Format },
		set: func(c *Config, v string) error { c.Output.Format = strings.ToLower(v); return nil },
	},
	"output.no_color": {
		get: func(c *Config) string { return strconv.FormatBool(c.Output.NoColor) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			c.Output.NoColor = b
			return nil
		},
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: func(c *Config, v string) error { c.Logging.Level = strings.ToLower(v); return nil },
	},
	"logging.format": {
		get: func(c *Config) string { return c.Logging.Format },
		set: func(c *Config, v string) error { c.Logging.Format = strings.ToLower(v); return nil },
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: func(c *Config, v string) error { c.Logging.File = v; return nil },
	},
}

// Get returns the value of key in dot notation
func (c *Config) Get(key string) (string, error) {
	a, ok := accessors[key]
	if !ok {
		return "", unknownKey(key)
	}
	return a.get(c), nil
}

// Set assigns key and validates the result. On error c is unchanged.
func (c *Config) Set(key, value string) error {
	a, ok := accessors[key]
	if !ok {
		return unknownKey(key)
	}

	next := *c
	if err := a.set(&next, value); err != nil {
		return fmerrors.NewInvalidValueError(key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func unknownKey(key string) error {
	return fmerrors.New(fmerrors.ErrCodeConfigInvalid, fmt.Sprintf("unknown configuration key: %s", key)).
		WithSuggestion("Known keys: " + strings.Join(Keys(), ", "))
}
