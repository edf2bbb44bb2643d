package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// GuardConfig carries operational knobs for the entitlement guard and its
// supporting machinery. Unlike Config it can be hot-reloaded at runtime.
type GuardConfig struct {
	// ConflictRetries bounds how often an authorize call retries a
	// version-conflicted counter update before giving up.
	ConflictRetries int `mapstructure:"conflictRetries"`

	SweepEnabled   bool          `mapstructure:"sweepEnabled"`
	SweepInterval  time.Duration `mapstructure:"sweepInterval"`
	SweepBatchSize int           `mapstructure:"sweepBatchSize"`

	RateLimitEnabled     bool    `mapstructure:"rateLimitEnabled"`
	AuthorizeUserRate    float64 `mapstructure:"authorizeUserRate"`
	AuthorizeUserBurst   int     `mapstructure:"authorizeUserBurst"`
	AuthorizeGlobalRate  float64 `mapstructure:"authorizeGlobalRate"`
	AuthorizeGlobalBurst int     `mapstructure:"authorizeGlobalBurst"`
}

func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		ConflictRetries:      3,
		SweepEnabled:         false,
		SweepInterval:        time.Hour,
		SweepBatchSize:       200,
		RateLimitEnabled:     false,
		AuthorizeUserRate:    10,
		AuthorizeUserBurst:   20,
		AuthorizeGlobalRate:  500,
		AuthorizeGlobalBurst: 1000,
	}
}

// GuardConfigHolder exposes the current GuardConfig and follows file changes.
type GuardConfigHolder struct {
	current atomic.Value // holds GuardConfig
}

func NewGuardConfigHolder() (*GuardConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("guard")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/hireloop/config")
	v.AddConfigPath("/etc/hireloop")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HIRELOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultGuardConfig()
		v.SetDefault("guard.conflictRetries", defaults.ConflictRetries)
		v.SetDefault("guard.sweepEnabled", defaults.SweepEnabled)
		v.SetDefault("guard.sweepInterval", defaults.SweepInterval)
		v.SetDefault("guard.sweepBatchSize", defaults.SweepBatchSize)
		v.SetDefault("guard.rateLimitEnabled", defaults.RateLimitEnabled)
		v.SetDefault("guard.authorizeUserRate", defaults.AuthorizeUserRate)
		v.SetDefault("guard.authorizeUserBurst", defaults.AuthorizeUserBurst)
		v.SetDefault("guard.authorizeGlobalRate", defaults.AuthorizeGlobalRate)
		v.SetDefault("guard.authorizeGlobalBurst", defaults.AuthorizeGlobalBurst)
	}

	var cfg GuardConfig
	if err := v.UnmarshalKey("guard", &cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if err := validateGuardConfig(cfg); err != nil {
		return nil, err
	}

	holder := &GuardConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated GuardConfig
		if err := v.UnmarshalKey("guard", &updated); err != nil {
			log.Printf("[guard-config] reload failed: %v", err)
			return
		}
		updated = updated.withDefaults()
		if err := validateGuardConfig(updated); err != nil {
			log.Printf("[guard-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[guard-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// Current returns the most recently loaded configuration.
func (h *GuardConfigHolder) Current() GuardConfig {
	return h.current.Load().(GuardConfig)
}

// NewStaticGuardConfigHolder wraps a fixed configuration, bypassing the file
// watcher. Used by tests and embedded callers.
func NewStaticGuardConfigHolder(cfg GuardConfig) *GuardConfigHolder {
	holder := &GuardConfigHolder{}
	holder.current.Store(cfg.withDefaults())
	return holder
}

func (c GuardConfig) withDefaults() GuardConfig {
	defaults := DefaultGuardConfig()
	if c.ConflictRetries <= 0 {
		c.ConflictRetries = defaults.ConflictRetries
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = defaults.SweepInterval
	}
	if c.SweepBatchSize <= 0 {
		c.SweepBatchSize = defaults.SweepBatchSize
	}
	if c.AuthorizeUserRate <= 0 {
		c.AuthorizeUserRate = defaults.AuthorizeUserRate
	}
	if c.AuthorizeUserBurst <= 0 {
		c.AuthorizeUserBurst = defaults.AuthorizeUserBurst
	}
	if c.AuthorizeGlobalRate <= 0 {
		c.AuthorizeGlobalRate = defaults.AuthorizeGlobalRate
	}
	if c.AuthorizeGlobalBurst <= 0 {
		c.AuthorizeGlobalBurst = defaults.AuthorizeGlobalBurst
	}
	return c
}

func validateGuardConfig(cfg GuardConfig) error {
	if cfg.ConflictRetries > 10 {
		return errors.New("guard.conflictRetries must be at most 10")
	}
	return nil
}
