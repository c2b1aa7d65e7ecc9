// Package config loads process configuration the way Seednode-partybox's
// config.go does: a typed struct populated from viper (env + optional file),
// with flags bound through pflag taking precedence. This is what lets
// spec.md §9's "global constants must be injected" design note hold for
// every deployment, not just tests.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/scotlandyard/server/internal/character"
)

// EnvPrefix namespaces every environment variable this binary reads.
const EnvPrefix = "SCOTLANDYARD"

// RulesConfig mirrors character.Rules in a form viper/pflag can bind to.
type RulesConfig struct {
	InitialTaxi        int `mapstructure:"initial_taxi"`
	InitialBus         int `mapstructure:"initial_bus"`
	InitialUnderground int `mapstructure:"initial_underground"`
	InitialHidden      int `mapstructure:"initial_hidden"`
	InitialDouble      int `mapstructure:"initial_double"`
}

func (r RulesConfig) ToRules() character.Rules {
	return character.Rules{
		InitialTaxi:        r.InitialTaxi,
		InitialBus:         r.InitialBus,
		InitialUnderground: r.InitialUnderground,
		InitialHidden:      r.InitialHidden,
		InitialDouble:      r.InitialDouble,
	}
}

// Config is the full set of server-side settings, all overridable by
// SCOTLANDYARD_* environment variables, an optional YAML file, or CLI flags.
type Config struct {
	Port               string      `mapstructure:"port"`
	LogLevel           string      `mapstructure:"log_level"`
	MapPath            string      `mapstructure:"map_path"`
	OutboundBufferSize int         `mapstructure:"outbound_buffer_size"`
	Rules              RulesConfig `mapstructure:"rules"`
}

// Defaults mirror spec.md §6.3/§6.4.
func Defaults() Config {
	return Config{
		Port:               "8081",
		LogLevel:           "info",
		MapPath:            "",
		OutboundBufferSize: 16,
		Rules: RulesConfig{
			InitialTaxi:        character.DefaultRules.InitialTaxi,
			InitialBus:         character.DefaultRules.InitialBus,
			InitialUnderground: character.DefaultRules.InitialUnderground,
			InitialHidden:      character.DefaultRules.InitialHidden,
			InitialDouble:      character.DefaultRules.InitialDouble,
		},
	}
}

// Load builds a viper instance bound to the given flag set, applies
// defaults, environment variables (SCOTLANDYARD_PORT, etc.), and an optional
// YAML config file, then unmarshals into a Config. Flags explicitly set by
// the caller win over environment and file values, which in turn win over
// defaults — viper's normal precedence order.
func Load(flags *pflag.FlagSet, configFile string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Defaults()
	v.SetDefault("port", def.Port)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("map_path", def.MapPath)
	v.SetDefault("outbound_buffer_size", def.OutboundBufferSize)
	v.SetDefault("rules.initial_taxi", def.Rules.InitialTaxi)
	v.SetDefault("rules.initial_bus", def.Rules.InitialBus)
	v.SetDefault("rules.initial_underground", def.Rules.InitialUnderground)
	v.SetDefault("rules.initial_hidden", def.Rules.InitialHidden)
	v.SetDefault("rules.initial_double", def.Rules.InitialDouble)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, err
		}
		// Hyphenated flag names map onto the underscored config keys.
		for key, name := range map[string]string{"log_level": "log-level", "map_path": "map-path"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
