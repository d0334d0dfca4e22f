package scheduler

import "time"

// Config controls the monthly run loop.
type Config struct {
	RunInterval time.Duration
	PageSize    int
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
		PageSize:    250,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.PageSize <= 0 {
		c.PageSize = defaults.PageSize
	}
	return c
}
