package cli

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/depscope/depscope/pkg/errors"
)

// configFileName is looked up in the scan root when no --config is given.
const configFileName = ".depscope.toml"

// Config holds the file-based settings of a scan. Flags override it.
type Config struct {
	// EngineURL is the base URL of the remote resolution engine. Empty
	// means no engine: everything resolves through in-process parsers.
	EngineURL string `toml:"engine_url"`

	// AllowDynamic permits dynamic resolution through the engine.
	AllowDynamic bool `toml:"allow_dynamic"`

	// PathToTransitivity enables the engine-first path for lockfiles whose
	// kind pair qualifies.
	PathToTransitivity bool `toml:"path_to_transitivity"`

	// CacheTTLMinutes bounds the engine response cache age. Zero means the
	// default of one day.
	CacheTTLMinutes int `toml:"cache_ttl_minutes"`

	Stats StatsConfig `toml:"stats"`
	Redis RedisConfig `toml:"redis"`
}

// StatsConfig selects where scan telemetry goes. Both sinks may be active.
type StatsConfig struct {
	File            string `toml:"file"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// RedisConfig switches the engine response cache from the local filesystem
// to a shared redis instance.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// CacheTTL returns the configured cache TTL, defaulting to 24h.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// LoadConfig reads a config file. With an empty path the default file is
// tried and a missing file yields the zero config; an explicit path must
// exist.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = configFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
	}
	return cfg, nil
}
