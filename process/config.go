package process

import (
	"sync"
	"time"

	"github.com/iconoclast/childprocess/validation"
)

// Default timing values.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultStopTimeout  = 3 * time.Second
	DefaultKillTimeout  = 2 * time.Second

	// MinPollInterval keeps waiting loops from spinning.
	MinPollInterval = time.Millisecond
)

// Config holds the timing used by handles.
type Config struct {
	// PollInterval is the pause between liveness probes while waiting.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval" validate:"gt=0"`
	// StopTimeout is the graceful wait used by Stop when no timeout is given.
	StopTimeout time.Duration `yaml:"stop_timeout" mapstructure:"stop_timeout" validate:"gt=0"`
	// KillTimeout bounds the wait after forceful termination.
	KillTimeout time.Duration `yaml:"kill_timeout" mapstructure:"kill_timeout" validate:"gt=0"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.StopTimeout == 0 {
		c.StopTimeout = DefaultStopTimeout
	}
	if c.KillTimeout == 0 {
		c.KillTimeout = DefaultKillTimeout
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if appErr := validation.New().MinDuration("poll_interval", c.PollInterval, MinPollInterval).Validate(); appErr != nil {
		return appErr
	}
	return nil
}

var (
	configMu sync.RWMutex
	active   = defaultConfig()
)

func defaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// Configure installs cfg as the timing for handles created afterwards.
// Zero fields take their defaults.
func Configure(cfg Config) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	configMu.Lock()
	active = cfg
	configMu.Unlock()
	return nil
}

// CurrentConfig returns the timing new handles will use.
func CurrentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return active
}
