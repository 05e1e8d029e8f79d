package storagesync

import (
	"time"
)

// Config controls the sync queue worker and the target bucket.
type Config struct {
	Enabled             bool   `yaml:"enabled"`
	Bucket              string `yaml:"bucket"`
	Region              string `yaml:"region"`
	Endpoint            string `yaml:"endpoint"`
	AccessKey           string `yaml:"accessKey"`
	SecretKey           string `yaml:"secretKey"`
	KeyPrefix           string `yaml:"keyPrefix"`
	Concurrency         int    `yaml:"concurrency"`
	MaxRetries          int    `yaml:"maxRetries"`
	PollIntervalSeconds int    `yaml:"pollIntervalSeconds"`
	ClaimTimeoutMinutes int    `yaml:"claimTimeoutMinutes"`
	RetentionDays       int    `yaml:"retentionDays"`
}

// DefaultConfig returns the default sync configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		Region:              "us-east-1",
		KeyPrefix:           "materials",
		Concurrency:         2,
		MaxRetries:          3,
		PollIntervalSeconds: 5,
		ClaimTimeoutMinutes: 10,
		RetentionDays:       7,
	}
}

// PollInterval returns the worker poll interval as a duration.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// ClaimTimeout returns the stuck-claim timeout as a duration.
func (c Config) ClaimTimeout() time.Duration {
	return time.Duration(c.ClaimTimeoutMinutes) * time.Minute
}
