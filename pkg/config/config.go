// Package config loads rpncalc settings. Values are layered: built-in
// defaults, then an optional YAML file, then environment variables. The CLI
// applies its flags on top.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/rpncalc/pkg/batch"
)

// Default input file names, resolved next to the executable.
const (
	DefaultInfixInput = "input_RPN_EC.txt"
	DefaultRPNInput   = "input_RPN.txt"
)

// Config holds all rpncalc settings.
type Config struct {
	Input   string `yaml:"input"`
	Format  string `yaml:"format"`
	Workers int    `yaml:"workers"`
	Verbose bool   `yaml:"verbose"`

	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds the settings for `rpncalc serve`.
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpcPort"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Format:  string(batch.FormatText),
		Workers: 1,
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8787,
			GRPCPort: 8788,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping existing values for absent keys.
// Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if len(node.Content) == 0 {
		return nil
	}
	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config must be a YAML mapping")
	}
	if err := root.Decode(cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return checkKeys(root)
}

var knownKeys = map[string]map[string]bool{
	"": {"input": true, "format": true, "workers": true, "verbose": true, "server": true},
	"server": {"host": true, "port": true, "grpcPort": true},
}

func checkKeys(root *yaml.Node) error {
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		if !knownKeys[""][key] {
			return fmt.Errorf("config line %d: unknown key %q", root.Content[i].Line, key)
		}
		if key != "server" {
			continue
		}
		srv := root.Content[i+1]
		for j := 0; j+1 < len(srv.Content); j += 2 {
			if k := srv.Content[j].Value; !knownKeys["server"][k] {
				return fmt.Errorf("config line %d: unknown key %q in server", srv.Content[j].Line, k)
			}
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Input = envOrDefault("RPNCALC_INPUT", c.Input)
	c.Format = envOrDefault("RPNCALC_FORMAT", c.Format)
	c.Server.Host = envOrDefault("HOST", c.Server.Host)

	for _, v := range []struct {
		key string
		dst *int
	}{
		{"RPNCALC_WORKERS", &c.Workers},
		{"PORT", &c.Server.Port},
		{"GRPC_PORT", &c.Server.GRPCPort},
	} {
		s := os.Getenv(v.key)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", v.key, s, err)
		}
		*v.dst = n
	}
	return nil
}

// Validate checks the configuration for values the CLI cannot run with.
func (c Config) Validate() error {
	if _, err := batch.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	for name, port := range map[string]int{"port": c.Server.Port, "grpc port": c.Server.GRPCPort} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s %d", name, port)
		}
	}
	return nil
}

// HTTPAddr returns the HTTP listen address.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddr returns the gRPC listen address.
func (c Config) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
