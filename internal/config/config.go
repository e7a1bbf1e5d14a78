package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"weave/internal/render"
)

type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Root string `yaml:"root"`
	} `yaml:"server"`
	// Languages maps extra file extensions to language names, layered over
	// the built-in table (e.g. "pyw: python").
	Languages map[string]string `yaml:"languages"`
	Editor    render.Assets     `yaml:"editor"`
}

// Load reads configuration with zero-config defaults: a missing config file
// is not an error. Precedence is defaults, then YAML, then environment
// variables (WEAVE_PORT, WEAVE_ROOT).
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Server.Port = 8000
	cfg.Server.Root = "."
	cfg.Editor = render.DefaultAssets()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if port := os.Getenv("WEAVE_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid WEAVE_PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}
	if root := os.Getenv("WEAVE_ROOT"); root != "" {
		cfg.Server.Root = root
	}

	return cfg, nil
}
