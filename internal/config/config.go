package config

import (
	"errors"
	"runtime"
)

// Errors
var (
	ErrNoDeployerSpecified = errors.New("must specify a deployer address")
)

// Config holds the application configuration
type Config struct {
	Workers     int
	Deployer    string // 40 hex chars, 0x tolerated
	Prefix      string // desired address prefix, without 0x
	SaltPrefix  string // optional fixed prefix for the salt string itself
	Count       int    // number of distinct results to mine
	Verbose     bool
	LogFile     string
	LogInterval int // Logging interval in seconds
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Workers:     runtime.NumCPU(),
		Count:       1,
		LogInterval: 5, // Default 5 seconds
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Deployer == "" {
		return ErrNoDeployerSpecified
	}
	return nil
}

// GetTargetDescription returns a human-readable description of the search
func (c *Config) GetTargetDescription() string {
	if c.Prefix == "" {
		return "any address (empty prefix)"
	}
	if c.SaltPrefix != "" {
		return "prefix: " + c.Prefix + " (salt prefix: " + c.SaltPrefix + ")"
	}
	return "prefix: " + c.Prefix
}
