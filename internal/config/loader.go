package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "PATMINER"

// Loader resolves a Config from defaults, an optional YAML file, and
// PATMINER_* environment variables (e.g. PATMINER_DISCOVERY_API_KEY maps to
// discovery.api_key).
type Loader struct {
	v        *viper.Viper
	filePath string

	mu       sync.RWMutex
	current  *Config
	onChange []func(*Config)
}

// NewLoader constructs a Loader.  filePath may be empty, in which case only
// defaults and environment variables apply.
func NewLoader(filePath string) *Loader {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return &Loader{v: v, filePath: filePath}
}

// Load reads, unmarshals, and validates the configuration.  The returned
// Config is a snapshot; later file changes do not mutate it.
func (l *Loader) Load() (*Config, error) {
	if l.filePath != "" {
		l.v.SetConfigFile(l.filePath)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", l.filePath, err)
		}
	}

	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()
	return cfg, nil
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Current returns the most recently loaded Config, or nil before Load.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked with the new Config after a
// successful hot reload.  Callbacks run on viper's watch goroutine and must
// not block.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	l.onChange = append(l.onChange, fn)
	l.mu.Unlock()
}

// Watch starts watching the config file for changes.  Reloads that fail
// validation are discarded so a bad edit cannot take down a running service.
// No-op when the Loader was constructed without a file path.
func (l *Loader) Watch() {
	if l.filePath == "" {
		return
	}
	l.v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := l.unmarshal()
		if err != nil {
			return
		}
		l.mu.Lock()
		l.current = cfg
		callbacks := make([]func(*Config), len(l.onChange))
		copy(callbacks, l.onChange)
		l.mu.Unlock()
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	l.v.WatchConfig()
}

// MustLoad is a convenience for main functions: it loads the configuration
// and panics on failure.
func MustLoad(filePath string) *Config {
	cfg, err := NewLoader(filePath).Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
