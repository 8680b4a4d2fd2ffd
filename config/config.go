// Package config loads anglepath settings from a YAML file, a .env file and
// ANGLEPATH_* environment variables, in that order of precedence (later
// wins).
//
// File layout:
//
//	search:
//	  groups: [basic, target_enabled]
//	  starts: [0x8000]
//	  targets: [0x5E19]
//	  avoid: ["0xB168,0xB188"]
//	  sample: 35
//	  number: 4
//	  flex: 3
//	costs:
//	  base:   {ess left: 0.75}
//	  chains: {"ess left -> ess left": 0.075}
//	log:    {level: info, format: console, output: stderr}
//	server: {listen: ":8080", concurrency: 4}
//	redis:  {addr: "localhost:6379", ttl: 10m}
//
// Angles are hex whether or not they carry the 0x prefix. Costs are decimal
// literals and parse exactly.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/katalvlaran/anglepath/cache"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/costmodel"
	"github.com/katalvlaran/anglepath/logging"
	"github.com/katalvlaran/anglepath/motion"
	"github.com/katalvlaran/anglepath/planner"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "ANGLEPATH"

// ErrBadCosts is returned when a cost override names an unknown motion.
var ErrBadCosts = errors.New("config: invalid cost override")

// File is the complete configuration.
type File struct {
	Search planner.Request `mapstructure:"search"`
	Costs  Costs           `mapstructure:"costs"`
	Log    logging.Config  `mapstructure:"log"`
	Server Server          `mapstructure:"server"`
	Redis  Redis           `mapstructure:"redis"`
}

// Costs overrides the default cost table. Base is keyed by motion name,
// Chains by "prev -> next".
type Costs struct {
	Base   map[string]cost.Cost `mapstructure:"base"`
	Chains map[string]cost.Cost `mapstructure:"chains"`
}

// Server configures the HTTP API.
type Server struct {
	Listen       string        `mapstructure:"listen" envconfig:"LISTEN"`
	Concurrency  int           `mapstructure:"concurrency" envconfig:"CONCURRENCY"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" envconfig:"WRITE_TIMEOUT"`
}

// Redis configures the result cache. An empty Addr disables it.
type Redis struct {
	Addr     string        `mapstructure:"addr" envconfig:"ADDR"`
	Password string        `mapstructure:"password" envconfig:"PASSWORD"`
	DB       int           `mapstructure:"db" envconfig:"DB"`
	TTL      time.Duration `mapstructure:"ttl" envconfig:"TTL"`
	Prefix   string        `mapstructure:"prefix" envconfig:"PREFIX"`
}

// Default returns the built-in settings.
func Default() *File {
	return &File{
		Log: logging.Config{Level: "info", Format: "console", Output: "stderr"},
		Server: Server{
			Listen:       ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Redis: Redis{TTL: 10 * time.Minute, Prefix: cache.DefaultPrefix},
	}
}

// Load reads path (skipped when empty), then applies .env and the
// environment on top of it.
func Load(path string) (*File, error) {
	f := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := Parse(data, f); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := FromEnv(f); err != nil {
		return nil, err
	}

	return f, nil
}

// FromEnv loads dotenv files (".env" when none is given; a missing default
// file is not an error) and overrides log, server and redis settings from
// ANGLEPATH_LOG_*, ANGLEPATH_SERVER_* and ANGLEPATH_REDIS_* variables.
func FromEnv(f *File, dotenv ...string) error {
	if err := godotenv.Load(dotenv...); err != nil {
		if len(dotenv) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: loading env file: %w", err)
		}
	}

	overlay := struct {
		Log    *logging.Config `envconfig:"LOG"`
		Server *Server         `envconfig:"SERVER"`
		Redis  *Redis          `envconfig:"REDIS"`
	}{&f.Log, &f.Server, &f.Redis}
	if err := envconfig.Process(EnvPrefix, &overlay); err != nil {
		return fmt.Errorf("config: processing environment: %w", err)
	}

	return nil
}

// Table merges the overrides into costmodel.DefaultTable.
func (c Costs) Table() (costmodel.Table, error) {
	over := costmodel.Table{
		Base:   make(map[motion.Motion]cost.Cost, len(c.Base)),
		Chains: make(map[motion.Pair]cost.Cost, len(c.Chains)),
	}
	for name, v := range c.Base {
		m, err := motion.Parse(name)
		if err != nil {
			return costmodel.Table{}, fmt.Errorf("%w: %w", ErrBadCosts, err)
		}
		over.Base[m] = v
	}
	for key, v := range c.Chains {
		p, err := motion.ParsePair(key)
		if err != nil {
			return costmodel.Table{}, fmt.Errorf("%w: %w", ErrBadCosts, err)
		}
		over.Chains[p] = v
	}

	return costmodel.DefaultTable().Merge(over), nil
}
