package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix namespaces every environment variable the engine reads, so
// IIE_DATABASE_HOST overrides Config.Database.Host and so on.
const envPrefix = "IIE"

// buildViper returns a Viper instance wired for YAML files plus IIE_*
// environment overrides, with every Config field pre-bound so nested keys
// like IIE_REGISTRY_MAX_CONCURRENT_CALLS resolve even when absent from the
// config file entirely.
func buildViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range mapstructureKeys(reflect.TypeOf(Config{}), nil) {
		_ = v.BindEnv(key)
	}

	return v
}

// mapstructureKeys walks t's fields (recursing into nested structs) and
// returns the dotted "mapstructure" key path for every leaf field, e.g.
// "database.host". Fields without a mapstructure tag are skipped.
func mapstructureKeys(t reflect.Type, prefix []string) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "," {
			continue
		}
		path := append(append([]string{}, prefix...), tag)
		if field.Type.Kind() == reflect.Struct {
			keys = append(keys, mapstructureKeys(field.Type, path)...)
			continue
		}
		keys = append(keys, strings.Join(path, "."))
	}
	return keys
}

// Load reads configPath, layers IIE_* environment overrides on top, fills in
// platform defaults for anything still unset, and validates the result.
func Load(configPath string) (*Config, error) {
	v := buildViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", configPath, err)
	}
	return finalize(v)
}

// LoadFromEnv builds a Config purely from IIE_* environment variables and
// defaults, without requiring a config file on disk — the loading strategy
// for containerized deployments.
//
// Naming convention: IIE_<SECTION>_<FIELD>, e.g. IIE_DATABASE_HOST.
func LoadFromEnv() (*Config, error) {
	return finalize(buildViper())
}

// finalize unmarshals v's current state, applies defaults, and validates.
func finalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return cfg, nil
}

// Watch reloads configPath on every write and invokes onChange with the
// resulting Config. A reload that fails to parse or validate is dropped
// silently rather than handed to onChange, so a bad edit never pushes the
// running process into an inconsistent state.
//
// The watch runs on a viper-managed background goroutine; Watch itself
// returns immediately after the initial read.
func Watch(configPath string, onChange func(*Config)) {
	v := buildViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig() // best-effort; callers should Load once before Watch

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		if cfg, err := finalize(v); err == nil {
			onChange(cfg)
		}
	})
}

// MustLoad wraps Load and panics on failure, for cmd/*/main.go call sites
// where a bad config is always a fatal startup error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad: %v", err))
	}
	return cfg
}
