package config

import (
	"fmt"

	"github.com/iconoclast/childprocess/logger"
	"github.com/iconoclast/childprocess/observability"
	"github.com/iconoclast/childprocess/process"
	"github.com/iconoclast/childprocess/validation"
)

// Config is the configuration of a program built on childprocess.
// Programs with more settings embed it:
//
//	type MyConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Jobs []Job `yaml:"jobs" mapstructure:"jobs"`
//	}
type Config struct {
	Name        string         `yaml:"name" mapstructure:"name"`
	Environment string         `yaml:"environment" mapstructure:"environment"`
	Logging     logger.Config  `yaml:"logging" mapstructure:"logging"`
	Process     process.Config `yaml:"process" mapstructure:"process"`
	// Tracing and Metrics are exported only when an endpoint is set.
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// GetConfig returns the base Config. When embedded, the method is promoted.
func (c *Config) GetConfig() *Config {
	return c
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	c.Process.ApplyDefaults()

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Name
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.Name
	}
	if c.Metrics.Environment == "" {
		c.Metrics.Environment = c.Environment
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = observability.DefaultMeterConfig(c.Name).Interval
	}
}

// Validate validates the configuration. Call ApplyDefaults first.
func (c *Config) Validate() error {
	v := validation.New().
		Required("config.name", c.Name).
		Required("config.environment", c.Environment).
		OneOf("config.environment", c.Environment, []string{"development", "staging", "production"}).
		Custom(c.Tracing.SampleRate >= 0 && c.Tracing.SampleRate <= 1,
			"config.tracing.sample_rate", "must be within [0, 1]")
	if c.MetricsEnabled() {
		v.Positive("config.metrics.interval", c.Metrics.Interval)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Process.Validate(); err != nil {
		return fmt.Errorf("config.process: %w", err)
	}
	return nil
}

// TracingEnabled reports whether spans should be exported.
func (c *Config) TracingEnabled() bool { return c.Tracing.Endpoint != "" }

// MetricsEnabled reports whether metrics should be exported.
func (c *Config) MetricsEnabled() bool { return c.Metrics.Endpoint != "" }
