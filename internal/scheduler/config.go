package scheduler

import "time"

type Config struct {
	// Polling. The interval bounds firing precision: a 60s tick cannot
	// promise sub-minute accuracy.
	PollInterval  time.Duration
	BatchSize     int
	MaxConcurrent int

	// Dispatch volume cap across one process.
	FiringsPerSecond float64

	// Recovery
	StaleThreshold time.Duration
	RetentionDays  int

	// Shutdown
	ShutdownTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		PollInterval:     15 * time.Second,
		BatchSize:        100,
		MaxConcurrent:    16,
		FiringsPerSecond: 50,
		StaleThreshold:   10 * time.Minute,
		RetentionDays:    30,
		ShutdownTimeout:  30 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 16
	}
	if c.FiringsPerSecond <= 0 {
		c.FiringsPerSecond = 50
	}
	if c.StaleThreshold <= 0 {
		c.StaleThreshold = 10 * time.Minute
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 30
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	return nil
}
