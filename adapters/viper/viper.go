package viper

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/helpers"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Viper struct holds the configuration for the Viper client
type Viper struct {
	v          *viper.Viper
	configFile string
}

// NewViper creates a viper instance reading configFile (yaml, json or toml by extension)
// with CHARGEHUB_* environment overrides. An empty configFile reads env only.
func NewViper(configFile string) *Viper {
	v := viper.New()
	v.SetEnvPrefix(constant.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Viper{v: v, configFile: configFile}
}

// BindFlags lets command-line flags override file values.
func (v *Viper) BindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, flag := range keys {
		f := flags.Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := v.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", flag, err)
		}
	}
	return nil
}

// InitialiseViper reads the configuration file, if any.
func (v *Viper) InitialiseViper() error {
	if helpers.IsEmpty(v.configFile) {
		return nil
	}
	v.v.SetConfigFile(filepath.Clean(v.configFile))
	if err := v.v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	return nil
}

// GetString returns a raw value, used for values that are not part of SystemConfig.
func (v *Viper) GetString(key string) string {
	return v.v.GetString(key)
}

// Load reads the file and overlays it on config.Default().
func (v *Viper) Load() (*config.SystemConfig, error) {
	if err := v.InitialiseViper(); err != nil {
		return nil, err
	}
	cfg := config.Default()
	if err := UnmarshalConfig(v, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UnmarshalConfig unmarshals the entire Viper configuration into the provided struct reference.
//
// Example:
//
//	type AppConfig struct {
//	    Server struct {
//	        Host string `mapstructure:"host"`
//	        Port int    `mapstructure:"port"`
//	    } `mapstructure:"server"`
//	}
func UnmarshalConfig[T any](v *Viper, target *T) error {
	if target == nil {
		return errors.New("target struct cannot be nil")
	}

	err := v.v.Unmarshal(target, func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to unmarshal viper config: %w", err)
	}

	return nil
}
