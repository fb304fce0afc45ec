package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "STATETREE_BENCH_"

//go:embed defaults.yaml
var defaults []byte

var validate = validator.New()

type Config struct {
	// Depths are the nesting levels of the deep tree runs.
	Depths []int `koanf:"depths" validate:"dive,min=1,max=1000"`
	// Widths are the element counts of the wide tree runs.
	Widths     []int `koanf:"widths" validate:"dive,min=1,max=10000"`
	Iterations int   `koanf:"iterations" validate:"min=1"`
	// Sample subscribes to every Sample-th element of a wide tree.
	Sample int    `koanf:"sample" validate:"min=1"`
	Report string `koanf:"report"`
}

// loadConfig layers the built in defaults, an optional YAML file and
// STATETREE_BENCH_* variables, in that order.
func loadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Depths) == 0 && len(c.Widths) == 0 {
		return fmt.Errorf("invalid config: no depths or widths to run")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
