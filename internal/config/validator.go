package config

import (
	"fmt"
)

// Validator validates configuration and fills gaps with defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies defaults.
// Returns an error if validation fails.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Search.DefaultLimit < 0 {
		return fmt.Errorf("search default_limit cannot be negative, got %d", cfg.Search.DefaultLimit)
	}
	if cfg.Search.MaxLimit < 0 {
		return fmt.Errorf("search max_limit cannot be negative, got %d", cfg.Search.MaxLimit)
	}
	if cfg.Search.PreviewLength < 0 {
		return fmt.Errorf("search preview_length cannot be negative, got %d", cfg.Search.PreviewLength)
	}
	if cfg.Search.PandocTimeoutSec < 0 {
		return fmt.Errorf("search pandoc_timeout_sec cannot be negative, got %d", cfg.Search.PandocTimeoutSec)
	}

	v.setDefaults(cfg)

	if cfg.Search.MaxLimit > 0 && cfg.Search.DefaultLimit > cfg.Search.MaxLimit {
		return fmt.Errorf("search default_limit %d exceeds max_limit %d",
			cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}

	return nil
}

func (v *Validator) setDefaults(cfg *Config) {
	if cfg.Project.Root == "" {
		cfg.Project.Root = "."
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = DefaultResultLimit
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = DefaultMaxResultLimit
	}
	if cfg.Search.PreviewLength == 0 {
		cfg.Search.PreviewLength = DefaultPreviewLength
	}
	if cfg.Search.PandocTimeoutSec == 0 {
		cfg.Search.PandocTimeoutSec = DefaultPandocTimeout
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}

// Load resolves the effective configuration for projectRoot: the KDL
// file when present, defaults otherwise, validated either way.
func Load(projectRoot string) (*Config, error) {
	cfg, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
