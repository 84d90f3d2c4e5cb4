// Package config loads the geovault settings.
//
// Defaults are applied first, then the TOML file (if any), then the GEOVAULT_*
// environment variables. The key itself is never part of the configuration.
//
//	[log]
//	level = "debug"
//
//	[engine]
//	workers = 4
//
//	[watch]
//	source = "./inbox"
//	target = "./outbox"
//	polling_interval = "1s"
//	settle_time = "2s"
//	native = false
//	delete_completed = true
//	trace = false
//
//	[store]
//	backend = "redis"
//	redis_address = "localhost:6379"
//
//	[server]
//	address = ":8080"
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

const envPrefix = "GEOVAULT_"

var (
	// ErrUnknownBackend is returned when the store backend is not one of memory, mongo or redis
	ErrUnknownBackend = errors.New("unknown store backend")
	// ErrInvalidValue is returned when a setting is out of range
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Duration is a time.Duration which decodes from TOML strings like "1.5s"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config the geovault settings
type Config struct {
	Log    Log    `toml:"log"`
	Engine Engine `toml:"engine"`
	Watch  Watch  `toml:"watch"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`
	Verify Verify `toml:"verify"`
}

// Log logging settings
type Log struct {
	Level string `toml:"level"`
}

// Engine batch engine settings
type Engine struct {
	Workers uint16 `toml:"workers"`
}

// Watch directory watcher settings
type Watch struct {
	Source          string   `toml:"source"`
	Target          string   `toml:"target"`
	PollingInterval Duration `toml:"polling_interval"`
	SettleTime      Duration `toml:"settle_time"`
	Native          bool     `toml:"native"`
	DeleteCompleted bool     `toml:"delete_completed"`
	Trace           bool     `toml:"trace"`
}

// Store decoy store settings
type Store struct {
	Backend         string `toml:"backend"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	RedisAddress    string `toml:"redis_address"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	RedisPrefix     string `toml:"redis_prefix"`
}

// Server HTTP API settings
type Server struct {
	Address         string   `toml:"address"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Verify key verification settings
type Verify struct {
	Tolerance float64 `toml:"tolerance"`
}

// Default returns the default settings
func Default() *Config {
	return &Config{
		Log:    Log{Level: "info"},
		Engine: Engine{Workers: 4},
		Watch: Watch{
			Source:          "inbox",
			Target:          "outbox",
			PollingInterval: Duration{time.Second},
			SettleTime:      Duration{2 * time.Second},
		},
		Store: Store{
			Backend:         BackendMemory,
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "geovault",
			MongoCollection: "decoys",
			RedisAddress:    "localhost:6379",
			RedisPrefix:     "geovault:",
		},
		Server: Server{
			Address:         ":8080",
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Verify: Verify{Tolerance: 1e-4},
	}
}

// Load reads the configuration file on top of the defaults and applies the environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read '%s': %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown setting '%s' in '%s'", undecoded[0], path)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendMongo, BackendRedis:
	default:
		return fmt.Errorf("%w: '%s'", ErrUnknownBackend, c.Store.Backend)
	}
	if c.Engine.Workers == 0 {
		return fmt.Errorf("%w: engine.workers must be greater than zero", ErrInvalidValue)
	}
	if c.Verify.Tolerance <= 0 {
		return fmt.Errorf("%w: verify.tolerance must be positive", ErrInvalidValue)
	}
	if c.Watch.PollingInterval.Duration < time.Millisecond {
		return fmt.Errorf("%w: watch.polling_interval must be at least 1ms", ErrInvalidValue)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"LOG_LEVEL":        &c.Log.Level,
		"WATCH_SOURCE":     &c.Watch.Source,
		"WATCH_TARGET":     &c.Watch.Target,
		"STORE_BACKEND":    &c.Store.Backend,
		"MONGO_URI":        &c.Store.MongoURI,
		"MONGO_DATABASE":   &c.Store.MongoDatabase,
		"MONGO_COLLECTION": &c.Store.MongoCollection,
		"REDIS_ADDRESS":    &c.Store.RedisAddress,
		"REDIS_PASSWORD":   &c.Store.RedisPassword,
		"REDIS_PREFIX":     &c.Store.RedisPrefix,
		"SERVER_ADDRESS":   &c.Server.Address,
	}
	for name, field := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*field = v
		}
	}

	if v, ok := lookup(envPrefix + "ENGINE_WORKERS"); ok {
		workers, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return envError("ENGINE_WORKERS", err)
		}
		c.Engine.Workers = uint16(workers)
	}
	if v, ok := lookup(envPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return envError("REDIS_DB", err)
		}
		c.Store.RedisDB = db
	}
	if v, ok := lookup(envPrefix + "VERIFY_TOLERANCE"); ok {
		tolerance, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("VERIFY_TOLERANCE", err)
		}
		c.Verify.Tolerance = tolerance
	}
	if v, ok := lookup(envPrefix + "WATCH_NATIVE"); ok {
		native, err := strconv.ParseBool(v)
		if err != nil {
			return envError("WATCH_NATIVE", err)
		}
		c.Watch.Native = native
	}
	if v, ok := lookup(envPrefix + "WATCH_DELETE_COMPLETED"); ok {
		del, err := strconv.ParseBool(v)
		if err != nil {
			return envError("WATCH_DELETE_COMPLETED", err)
		}
		c.Watch.DeleteCompleted = del
	}
	if v, ok := lookup(envPrefix + "WATCH_POLLING_INTERVAL"); ok {
		if err := c.Watch.PollingInterval.UnmarshalText([]byte(v)); err != nil {
			return envError("WATCH_POLLING_INTERVAL", err)
		}
	}
	return nil
}

func envError(name string, err error) error {
	return fmt.Errorf("%w: %s%s: %v", ErrInvalidValue, envPrefix, name, strings.TrimSpace(err.Error()))
}
