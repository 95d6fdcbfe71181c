// Package config provides unified configuration loading for contagion.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/logging"
	"github.com/nvandessel/contagion/internal/model"
	"github.com/nvandessel/contagion/internal/spreading"
	"github.com/nvandessel/contagion/internal/store"
)

// ContagionConfig contains all contagion configuration settings.
type ContagionConfig struct {
	// Simulation contains the engine and model parameters.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Storage selects where named graphs are kept.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Logging contains settings for operational and round logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig configures a run.
type SimulationConfig struct {
	// Model is the color model name, e.g. "majority_colored".
	Model string `json:"model" yaml:"model"`

	// MaxRounds caps the number of recorded rounds, round 0 included.
	MaxRounds int `json:"max_rounds" yaml:"max_rounds"`

	// RoundCapSpread widens the cap to a random value in
	// [max_rounds, max_rounds+round_cap_spread]. 0 keeps it fixed.
	RoundCapSpread int `json:"round_cap_spread" yaml:"round_cap_spread"`

	// Seed fixes the RNG. Unset means a fresh seed per run.
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// Workers is the number of goroutines per round.
	Workers int `json:"workers" yaml:"workers"`

	// SelfWeight is the extra vote a colored node casts for itself in
	// majority_all, most_common_colored and weighted_random. 0 disables it.
	SelfWeight float64 `json:"self_weight" yaml:"self_weight"`

	// InfectionProbability is the per-neighbor chance used by random_p.
	InfectionProbability float64 `json:"infection_probability" yaml:"infection_probability"`

	// Scope selects the lottery population of weighted_random: "colored" or "all".
	Scope string `json:"scope" yaml:"scope"`
}

// StorageConfig configures graph storage.
type StorageConfig struct {
	// Backend is "sqlite" (default), "file" or "memory".
	Backend string `json:"backend" yaml:"backend"`

	// Path is the SQLite database file. Supports ${VAR} syntax.
	// Empty means <project>/.contagion/contagion.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoggingConfig configures contagion's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables round logging to .contagion/decisions.jsonl.
	Level string `json:"level" yaml:"level"`

	// Format selects the stderr handler: "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// Default returns a ContagionConfig with sensible defaults.
func Default() *ContagionConfig {
	return &ContagionConfig{
		Simulation: SimulationConfig{
			Model:                string(model.MajorityColored),
			MaxRounds:            constants.DefaultMaxRounds,
			RoundCapSpread:       constants.DefaultRoundCapSpread,
			Workers:              1,
			SelfWeight:           0,
			InfectionProbability: constants.DefaultInfectionProbability,
			Scope:                string(constants.ScopeColored),
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// GlobalPath returns ~/.contagion/config.yaml.
func GlobalPath() (string, error) {
	dir, err := store.GlobalContagionPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LocalPath returns <projectRoot>/.contagion/config.yaml.
func LocalPath(projectRoot string) string {
	return filepath.Join(store.LocalContagionPath(projectRoot), "config.yaml")
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.contagion/config.yaml -> <projectRoot>/.contagion/config.yaml
// -> environment variables. Later layers only override the keys they set.
func Load(projectRoot string) (*ContagionConfig, error) {
	config := Default()

	paths := make([]string, 0, 2)
	if global, err := GlobalPath(); err == nil {
		paths = append(paths, global)
	}
	if projectRoot != "" {
		paths = append(paths, LocalPath(projectRoot))
	}

	for _, path := range paths {
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		if err := mergeFile(config, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Apply environment variable overrides
	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file on top of the
// defaults.
func LoadFromFile(path string) (*ContagionConfig, error) {
	config := Default()
	if err := mergeFile(config, path); err != nil {
		return nil, err
	}
	return config, nil
}

func mergeFile(config *ContagionConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in the database path
	config.Storage.Path = expandEnvVars(config.Storage.Path)
	return nil
}

// Save writes the configuration as YAML to path, creating parent directories.
func (c *ContagionConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *ContagionConfig) Validate() error {
	if _, err := c.ModelOptions(); err != nil {
		return err
	}

	if c.Simulation.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be positive, got %d", c.Simulation.MaxRounds)
	}
	if c.Simulation.RoundCapSpread < 0 {
		return fmt.Errorf("round_cap_spread must be non-negative, got %d", c.Simulation.RoundCapSpread)
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Simulation.Workers)
	}

	validBackends := map[string]bool{"": true, "sqlite": true, "file": true, "memory": true}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage backend: %s (valid: sqlite, file, memory)", c.Storage.Backend)
	}

	if c.Logging.Level != "" {
		if err := logging.ValidateLevel(c.Logging.Level); err != nil {
			return err
		}
	}
	return logging.ValidateFormat(c.Logging.Format)
}

// ModelOptions translates the simulation settings into model options.
func (c *ContagionConfig) ModelOptions() (model.Options, error) {
	kind, err := model.ParseKind(c.Simulation.Model)
	if err != nil {
		return model.Options{}, err
	}
	opts := model.Options{
		Kind:                 kind,
		SelfWeight:           c.Simulation.SelfWeight,
		InfectionProbability: c.Simulation.InfectionProbability,
		Scope:                constants.Scope(c.Simulation.Scope),
	}
	if err := opts.Validate(); err != nil {
		return model.Options{}, err
	}
	return opts, nil
}

// EngineConfig translates the configuration into an engine configuration.
func (c *ContagionConfig) EngineConfig() (spreading.Config, error) {
	if err := c.Validate(); err != nil {
		return spreading.Config{}, err
	}
	opts, _ := c.ModelOptions()

	cfg := spreading.Config{
		Model:          opts,
		MaxRounds:      c.Simulation.MaxRounds,
		RoundCapSpread: c.Simulation.RoundCapSpread,
		Workers:        c.Simulation.Workers,
	}
	if c.Simulation.Seed != nil {
		seed := *c.Simulation.Seed
		cfg.Seed = &seed
	}
	return cfg, nil
}

// DBPath returns the configured database path, or the project default.
func (c *ContagionConfig) DBPath(projectRoot string) string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return store.DefaultDBPath(projectRoot)
}

// applyEnvOverrides applies environment variable overrides to the config.
// Unparseable numbers are reported rather than ignored.
func applyEnvOverrides(config *ContagionConfig) error {
	if v := os.Getenv("CONTAGION_MODEL"); v != "" {
		config.Simulation.Model = v
	}

	ints := map[string]*int{
		"CONTAGION_MAX_ROUNDS":       &config.Simulation.MaxRounds,
		"CONTAGION_ROUND_CAP_SPREAD": &config.Simulation.RoundCapSpread,
		"CONTAGION_WORKERS":          &config.Simulation.Workers,
	}
	for name, dst := range ints {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: invalid integer %q", name, v)
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		"CONTAGION_SELF_WEIGHT": &config.Simulation.SelfWeight,
		"CONTAGION_INFECTION_P": &config.Simulation.InfectionProbability,
	}
	for name, dst := range floats {
		if v := os.Getenv(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: invalid number %q", name, v)
			}
			*dst = f
		}
	}

	if v := os.Getenv("CONTAGION_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CONTAGION_SEED: invalid seed %q", v)
		}
		config.Simulation.Seed = &seed
	}

	if v := os.Getenv("CONTAGION_SCOPE"); v != "" {
		config.Simulation.Scope = v
	}

	if v := os.Getenv("CONTAGION_DB"); v != "" {
		config.Storage.Path = expandEnvVars(v)
	}

	if v := os.Getenv("CONTAGION_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("CONTAGION_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
	return nil
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
