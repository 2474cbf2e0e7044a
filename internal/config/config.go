package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultConfigName is the base name of the covtree configuration file.
const DefaultConfigName = "covtree"

// Config holds the settings shared by all covtree commands.
type Config struct {
	LogLevel        string `mapstructure:"log_level" validate:"oneof=debug info warn warning error fatal"`
	LogDir          string `mapstructure:"log_dir"`
	SourceDir       string `mapstructure:"source_dir"`
	Color           string `mapstructure:"color" validate:"oneof=auto always never"`
	DuplicatePolicy string `mapstructure:"duplicate_policy" validate:"oneof=merge overwrite reject"`
	SourceCacheSize int    `mapstructure:"source_cache_size" validate:"gte=1"`
	TabSize         int    `mapstructure:"tab_size" validate:"gte=1,lte=16"`
}

// configFile is the on-disk layout: everything lives under a top-level
// "config" object.
type configFile struct {
	Config Config `mapstructure:"config"`
}

var validate = validator.New()

// Load reads a configuration file from the "configs" directory into a struct.
// The configName parameter should be the base name of the file without the extension (e.g., "covtree").
// The result parameter should be a pointer to a struct that the configuration will be unmarshaled into.
func Load(configName string, result interface{}) error {
	v := newViper(configName)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := v.Unmarshal(result); err != nil {
		return fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	return nil
}

// LoadConfig reads covtree.yaml if present, applies defaults and COVTREE_*
// environment overrides, and validates the result.
func LoadConfig() (*Config, error) {
	return LoadConfigNamed(DefaultConfigName)
}

// LoadConfigNamed is LoadConfig for a different file base name.
func LoadConfigNamed(configName string) (*Config, error) {
	v := newViper(configName)
	setDefaults(v)

	v.SetEnvPrefix("COVTREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var file configFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	if err := file.Config.Validate(); err != nil {
		return nil, err
	}
	return &file.Config, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		Color:           "auto",
		DuplicatePolicy: "merge",
		SourceCacheSize: 64,
		TabSize:         8,
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidateColor checks a color mode given on the command line.
func ValidateColor(mode string) error {
	if err := validate.Var(mode, "oneof=auto always never"); err != nil {
		return fmt.Errorf("invalid color %q: want auto, always or never", mode)
	}
	return nil
}

func newViper(configName string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath("../configs")    // go test runs inside the package dir
	v.AddConfigPath("../../configs") // nested packages
	return v
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("config.log_level", d.LogLevel)
	v.SetDefault("config.log_dir", d.LogDir)
	v.SetDefault("config.source_dir", d.SourceDir)
	v.SetDefault("config.color", d.Color)
	v.SetDefault("config.duplicate_policy", d.DuplicatePolicy)
	v.SetDefault("config.source_cache_size", d.SourceCacheSize)
	v.SetDefault("config.tab_size", d.TabSize)
}
