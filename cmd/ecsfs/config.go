package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	envVarPrefix = "ECSFS"
	appName      = "ecsfs"
)

// Config where the volume lives and how chatty to be. Read from the config file, then the
// environment, then command line flags, each overriding the last.
type Config struct {
	Image    string `envconfig:"IMAGE"     yaml:"image"`
	Offset   int64  `envconfig:"OFFSET"    yaml:"offset"`
	Size     int64  `envconfig:"SIZE"      yaml:"size"`
	LogLevel string `envconfig:"LOG_LEVEL" yaml:"logLevel"`
}

func defaultConfigFile() string {
	if configFile := os.Getenv(envVarPrefix + "_CONFIG_FILE"); configFile != "" {
		return configFile
	}
	return filepath.Join(os.Getenv("HOME"), ".config", appName+".yaml")
}

// LoadConfig reads configFile, if it exists, and overlays the environment
func LoadConfig(configFile string) (*Config, error) {
	var c Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshaling config file %s: %w", configFile, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf("missing required configuration: image / %s_IMAGE / --image", envVarPrefix)
	}
	if c.Offset < 0 || c.Size < 0 {
		return fmt.Errorf("invalid volume window: offset %d, size %d", c.Offset, c.Size)
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
		}
	}
	return nil
}

// windowed the volume does not span the whole image
func (c *Config) windowed() bool {
	return c.Offset > 0 || c.Size > 0
}
