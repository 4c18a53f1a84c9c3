package config

import "fmt"

// Validate rejects configurations that cannot produce a usable run.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Workers > 64 {
		return fmt.Errorf("workers must be at most 64, got %d", c.Workers)
	}
	if len(c.Include) == 0 {
		return fmt.Errorf("at least one include pattern is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	return nil
}
