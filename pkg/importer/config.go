// Copyright 2024-2026 Aiku AI

package importer

import (
	_ "embed"
	"fmt"

	"github.com/rs/zerolog"
	up "go.mau.fi/util/configupgrade"
	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

// DefaultChunkSize is the number of messages per batch file.
const DefaultChunkSize = 1000

// Config holds the converter configuration.
type Config struct {
	Realm      RealmConfig      `yaml:"realm"`
	Conversion ConversionConfig `yaml:"conversion"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type RealmConfig struct {
	ID        int    `yaml:"id"`
	Domain    string `yaml:"domain"`
	Subdomain string `yaml:"subdomain"`
}

type ConversionConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	IDFloor   int `yaml:"id_floor"`
	// SortByNativeID orders the source collections by their own ids before
	// any integer is assigned.
	SortByNativeID bool `yaml:"sort_by_native_id"`
}

type OutputConfig struct {
	Tarball bool `yaml:"tarball"`
	Indent  bool `yaml:"indent"`
}

type LoggingConfig struct {
	MinLevel string `yaml:"min_level"`
	Pretty   bool   `yaml:"pretty"`

	level zerolog.Level `yaml:"-"`
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig Config
	return node.Decode((*rawConfig)(c))
}

// PostProcess fills defaults and validates derived fields.
func (c *Config) PostProcess() error {
	if c.Conversion.ChunkSize <= 0 {
		c.Conversion.ChunkSize = DefaultChunkSize
	}
	if c.Conversion.IDFloor < 0 {
		return fmt.Errorf("conversion.id_floor must not be negative, got %d", c.Conversion.IDFloor)
	}
	if c.Realm.Domain == "" {
		return fmt.Errorf("realm.domain must be set")
	}
	if c.Logging.MinLevel == "" {
		c.Logging.level = zerolog.InfoLevel
		return nil
	}
	var err error
	c.Logging.level, err = zerolog.ParseLevel(c.Logging.MinLevel)
	if err != nil {
		return fmt.Errorf("invalid logging.min_level: %w", err)
	}
	return nil
}

// Level returns the parsed minimum log level.
func (lc *LoggingConfig) Level() zerolog.Level {
	return lc.level
}

func upgradeConfig(helper up.Helper) {
	helper.Copy(up.Int, "realm", "id")
	helper.Copy(up.Str, "realm", "domain")
	helper.Copy(up.Str, "realm", "subdomain")
	helper.Copy(up.Int, "conversion", "chunk_size")
	helper.Copy(up.Int, "conversion", "id_floor")
	helper.Copy(up.Bool, "conversion", "sort_by_native_id")
	helper.Copy(up.Bool, "output", "tarball")
	helper.Copy(up.Bool, "output", "indent")
	helper.Copy(up.Str, "logging", "min_level")
	helper.Copy(up.Bool, "logging", "pretty")
}

// ConfigUpgrader merges a user config onto the example config.
func ConfigUpgrader() *up.StructUpgrader {
	return &up.StructUpgrader{
		SimpleUpgrader: up.SimpleUpgrader(upgradeConfig),
		Blocks: [][]string{
			{"conversion"},
			{"output"},
			{"logging"},
		},
		Base: ExampleConfig,
	}
}

// ParseConfig decodes and post-processes a complete YAML config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.PostProcess(); err != nil {
		return nil, fmt.Errorf("failed to post-process config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads the config at path, filling missing keys from the
// example config. An empty path yields the example config itself.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return ParseConfig([]byte(ExampleConfig))
	}
	data, _, err := up.Do(path, false, ConfigUpgrader())
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return ParseConfig(data)
}
