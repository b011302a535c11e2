// Package config builds the startup configuration of the engine from an
// optional env file and the process environment. Command-line flags and UCI
// setoption override it later.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	HorizonFixed  = "fixed"
	HorizonDecile = "decile"
)

type Config struct {
	Hash         int
	Threads      int
	MoveOverhead int
	NodesTime    int
	Ponder       bool
	Horizon      string
	EvalBias     bool
	LogLevel     string
}

func Default() Config {
	return Config{
		Hash:         16,
		Threads:      1,
		MoveOverhead: 10,
		Horizon:      HorizonFixed,
		EvalBias:     true,
		LogLevel:     "info",
	}
}

// Load reads envFile when it exists. Variables of the process environment take
// precedence over the file.
func Load(envFile string) (Config, error) {
	var env = map[string]string{}
	if envFile != "" {
		var fileEnv, err = godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %v: %w", envFile, err)
		}
		for k, v := range fileEnv {
			env[k] = v
		}
	}
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	var cfg = Default()
	if err := cfg.apply(env); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var keys = []string{
	"COUNTER_HASH",
	"COUNTER_THREADS",
	"COUNTER_MOVE_OVERHEAD",
	"COUNTER_NODESTIME",
	"COUNTER_PONDER",
	"COUNTER_HORIZON",
	"COUNTER_EVAL_BIAS",
	"COUNTER_LOG_LEVEL",
}

func (c *Config) apply(env map[string]string) error {
	var ints = []struct {
		key   string
		value *int
		min   int
		max   int
	}{
		{"COUNTER_HASH", &c.Hash, 4, 1 << 16},
		{"COUNTER_THREADS", &c.Threads, 1, 256},
		{"COUNTER_MOVE_OVERHEAD", &c.MoveOverhead, 0, 5000},
		{"COUNTER_NODESTIME", &c.NodesTime, 0, 10000},
	}
	for _, item := range ints {
		var s, ok = env[item.key]
		if !ok {
			continue
		}
		var v, err = strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%v: %w", item.key, err)
		}
		if v < item.min || v > item.max {
			return fmt.Errorf("%v: %v not in [%v, %v]", item.key, v, item.min, item.max)
		}
		*item.value = v
	}

	var bools = []struct {
		key   string
		value *bool
	}{
		{"COUNTER_PONDER", &c.Ponder},
		{"COUNTER_EVAL_BIAS", &c.EvalBias},
	}
	for _, item := range bools {
		var s, ok = env[item.key]
		if !ok {
			continue
		}
		var v, err = strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%v: %w", item.key, err)
		}
		*item.value = v
	}

	if s, ok := env["COUNTER_HORIZON"]; ok {
		c.Horizon = s
	}
	if s, ok := env["COUNTER_LOG_LEVEL"]; ok {
		c.LogLevel = s
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if c.Horizon != HorizonFixed && c.Horizon != HorizonDecile {
		return fmt.Errorf("unknown horizon %q", c.Horizon)
	}
	return nil
}
