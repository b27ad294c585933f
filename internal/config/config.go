// Package config loads the tunable build parameters for cvdisk from an
// optional config file and CVDISK_* environment variables.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-cvdisk/internal/cvd"
	"github.com/deploymenttheory/go-cvdisk/internal/layout"
	"github.com/deploymenttheory/go-cvdisk/internal/sector"
)

// Config carries everything the create command needs beyond its flags:
// layout geometry, default output names and per-architecture component
// table overrides.
type Config struct {
	Alignment      uint64 `mapstructure:"alignment"`
	ReservedPrefix uint64 `mapstructure:"reserved_prefix"`
	EntryCapacity  int    `mapstructure:"entry_capacity"`

	SystemImage          string `mapstructure:"system_image"`
	PropertiesImage      string `mapstructure:"properties_image"`
	VirglPropertiesImage string `mapstructure:"virgl_properties_image"`

	// Optional overrides for the built-in component tables.
	SystemComponents     []cvd.Component `mapstructure:"system_components"`
	PropertiesComponents []cvd.Component `mapstructure:"properties_components"`
}

// PlanOptions translates the configured geometry into planner options.
func (c *Config) PlanOptions() layout.Options {
	return layout.Options{
		Grain:          c.Alignment,
		ReservedPrefix: c.ReservedPrefix,
		EntryCapacity:  c.EntryCapacity,
	}
}

// SystemTable returns the system-disk component table for arch, honoring
// a config override.
func (c *Config) SystemTable(arch cvd.Arch) []cvd.Component {
	if len(c.SystemComponents) > 0 {
		return c.SystemComponents
	}
	return cvd.SystemComponents(arch)
}

// PropertiesTable returns the properties-disk component table for arch,
// honoring a config override.
func (c *Config) PropertiesTable(arch cvd.Arch) []cvd.Component {
	if len(c.PropertiesComponents) > 0 {
		return c.PropertiesComponents
	}
	return cvd.PropertiesComponents(arch)
}

// Load reads the cvdisk configuration using Viper. A missing config file
// is not an error; defaults and environment variables still apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("cvdisk")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.cvdisk")
	v.AddConfigPath("/etc/cvdisk")

	v.SetDefault("alignment", uint64(sector.DefaultGrain))
	v.SetDefault("reserved_prefix", uint64(layout.DefaultReservedPrefix))
	v.SetDefault("entry_capacity", layout.DefaultEntryCapacity)
	v.SetDefault("system_image", "system.img")
	v.SetDefault("properties_image", "properties.img")
	v.SetDefault("virgl_properties_image", "properties_virgl.img")

	v.SetEnvPrefix("CVDISK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
