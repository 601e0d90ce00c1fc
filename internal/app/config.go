package app

import (
	"errors"
	"runtime"
)

// Config holds everything an App needs to run one batch pass.
type Config struct {
	InputDir  string
	OutputDir string

	// TokenizerPath is a local tokenizer.json; empty selects word counting.
	TokenizerPath string
	// PolicyPath is an optional HCL policy file.
	PolicyPath string

	// Safe refuses to overwrite existing output files.
	Safe bool
	// Workers sizes the pool; 0 means one worker per CPU.
	Workers int
	// MaxMalformed aborts dispatching new subreddits once the aggregate
	// malformed-line count exceeds it. 0 disables the check.
	MaxMalformed int64

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills derived defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.InputDir == "" {
		return nil, errors.New("input directory is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &cfg, nil
}
