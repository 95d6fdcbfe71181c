package config

import (
	"fmt"
	"strconv"
)

// Keys lists every dot-notation key Get and Set accept, in display order.
func Keys() []string {
	return []string{
		"simulation.model",
		"simulation.max_rounds",
		"simulation.round_cap_spread",
		"simulation.seed",
		"simulation.workers",
		"simulation.self_weight",
		"simulation.infection_probability",
		"simulation.scope",
		"storage.backend",
		"storage.path",
		"logging.level",
		"logging.format",
	}
}

// Get retrieves a configuration value by dot-notation key.
func (c *ContagionConfig) Get(key string) (any, bool) {
	switch key {
	case "simulation.model":
		return c.Simulation.Model, true
	case "simulation.max_rounds":
		return c.Simulation.MaxRounds, true
	case "simulation.round_cap_spread":
		return c.Simulation.RoundCapSpread, true
	case "simulation.seed":
		if c.Simulation.Seed == nil {
			return "", true
		}
		return *c.Simulation.Seed, true
	case "simulation.workers":
		return c.Simulation.Workers, true
	case "simulation.self_weight":
		return c.Simulation.SelfWeight, true
	case "simulation.infection_probability":
		return c.Simulation.InfectionProbability, true
	case "simulation.scope":
		return c.Simulation.Scope, true
	case "storage.backend":
		return c.Storage.Backend, true
	case "storage.path":
		return c.Storage.Path, true
	case "logging.level":
		return c.Logging.Level, true
	case "logging.format":
		return c.Logging.Format, true
	default:
		return nil, false
	}
}

// Set assigns a configuration value by dot-notation key. The resulting
// configuration is validated; on failure c is left unchanged.
func (c *ContagionConfig) Set(key, value string) error {
	next := *c
	if c.Simulation.Seed != nil {
		seed := *c.Simulation.Seed
		next.Simulation.Seed = &seed
	}

	switch key {
	case "simulation.model":
		next.Simulation.Model = value
	case "simulation.max_rounds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max_rounds: %s (must be an integer)", value)
		}
		next.Simulation.MaxRounds = n
	case "simulation.round_cap_spread":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid round_cap_spread: %s (must be an integer)", value)
		}
		next.Simulation.RoundCapSpread = n
	case "simulation.seed":
		if value == "" {
			next.Simulation.Seed = nil
			break
		}
		seed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %s (must be an unsigned integer)", value)
		}
		next.Simulation.Seed = &seed
	case "simulation.workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid workers: %s (must be an integer)", value)
		}
		next.Simulation.Workers = n
	case "simulation.self_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid self_weight: %s (must be a number)", value)
		}
		next.Simulation.SelfWeight = f
	case "simulation.infection_probability":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid infection_probability: %s (must be a number between 0 and 1)", value)
		}
		next.Simulation.InfectionProbability = f
	case "simulation.scope":
		next.Simulation.Scope = value
	case "storage.backend":
		next.Storage.Backend = value
	case "storage.path":
		next.Storage.Path = value
	case "logging.level":
		next.Logging.Level = value
	case "logging.format":
		next.Logging.Format = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
