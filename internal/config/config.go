// Package config loads the architecture and optimizer settings of the
// progan command from YAML or HCL files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/progan/internal/nn"
	"github.com/born-ml/progan/internal/optim"
	"github.com/born-ml/progan/internal/progan"
)

// Environment variables that override file settings.
const (
	EnvSeed     = "PROGAN_SEED"
	EnvLogLevel = "PROGAN_LOG_LEVEL"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every setting needed to build the networks.
type Config struct {
	// Network shape
	LatentDim      int `yaml:"latent_dim" hcl:"latent_dim,optional"`
	Blocks         int `yaml:"blocks" hcl:"blocks,optional"`
	BaseResolution int `yaml:"base_resolution" hcl:"base_resolution,optional"`
	Filters        int `yaml:"filters" hcl:"filters,optional"`
	ImageChannels  int `yaml:"image_channels" hcl:"image_channels,optional"`

	LeakySlope float64 `yaml:"leaky_slope" hcl:"leaky_slope,optional"`

	// Weights: N(0, InitStddev²) bounded by MaxNorm (0 disables it)
	InitStddev float64 `yaml:"init_stddev" hcl:"init_stddev,optional"`
	MaxNorm    float64 `yaml:"max_norm" hcl:"max_norm,optional"`

	// Adam
	AdamLR    float64 `yaml:"adam_lr" hcl:"adam_lr,optional"`
	AdamBeta1 float64 `yaml:"adam_beta1" hcl:"adam_beta1,optional"`
	AdamBeta2 float64 `yaml:"adam_beta2" hcl:"adam_beta2,optional"`
	AdamEps   float64 `yaml:"adam_eps" hcl:"adam_eps,optional"`

	Seed     int64  `yaml:"seed" hcl:"seed,optional"`
	LogLevel string `yaml:"log_level" hcl:"log_level,optional"`
}

// DefaultConfig returns the PGGAN settings at 4×4 with three stages.
func DefaultConfig() *Config {
	h := progan.DefaultHyper()
	return &Config{
		LatentDim:      100,
		Blocks:         3,
		BaseResolution: 4,
		Filters:        h.Filters,
		ImageChannels:  h.ImageChannels,
		LeakySlope:     h.LeakySlope,
		InitStddev:     0.02,
		MaxNorm:        1.0,
		AdamLR:         0.001,
		AdamBeta1:      0,
		AdamBeta2:      0.99,
		AdamEps:        1e-8,
		Seed:           1,
		LogLevel:       "info",
	}
}

// Load reads path over the defaults, choosing the format by extension
// (.yaml, .yml or .hcl), then applies environment overrides. A missing
// file or an empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := cfg.decode(path, data); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".hcl":
		file, diags := hclparse.NewParser().ParseHCL(data, path)
		if diags.HasErrors() {
			return diags
		}
		if diags := gohcl.DecodeBody(file.Body, nil, c); diags.HasErrors() {
			return diags
		}
		return nil
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// YAML renders the configuration.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks every setting the builders depend on.
func (c *Config) Validate() error {
	switch {
	case c.LatentDim <= 0:
		return fmt.Errorf("%w: latent_dim must be positive, got %d", ErrInvalid, c.LatentDim)
	case c.Blocks < 1:
		return fmt.Errorf("%w: blocks must be at least 1, got %d", ErrInvalid, c.Blocks)
	case c.BaseResolution <= 0:
		return fmt.Errorf("%w: base_resolution must be positive, got %d", ErrInvalid, c.BaseResolution)
	case c.InitStddev <= 0:
		return fmt.Errorf("%w: init_stddev must be positive, got %g", ErrInvalid, c.InitStddev)
	case c.MaxNorm < 0:
		return fmt.Errorf("%w: max_norm must be non-negative, got %g", ErrInvalid, c.MaxNorm)
	}
	if err := c.Hyper().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}

// Adam returns the optimizer settings.
func (c *Config) Adam() optim.AdamConfig {
	return optim.AdamConfig{
		LR:    float32(c.AdamLR),
		Beta1: float32(c.AdamBeta1),
		Beta2: float32(c.AdamBeta2),
		Eps:   float32(c.AdamEps),
	}
}

// Hyper returns the builder hyper-parameters.
func (c *Config) Hyper() progan.Hyper {
	return progan.Hyper{
		Filters:       c.Filters,
		ImageChannels: c.ImageChannels,
		LeakySlope:    c.LeakySlope,
		Seed:          c.Seed,
		Adam:          c.Adam(),
	}
}

// Weights returns the shared initializer and constraint. Each call
// returns a fresh initializer seeded from Seed.
func (c *Config) Weights() nn.WeightConfig {
	return nn.NewWeightConfig(c.InitStddev, c.MaxNorm, c.Seed)
}
