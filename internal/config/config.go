// Package config loads run settings from defaults, an optional YAML file and
// DEREP_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/yumyai/ggderep/pkg/derep"
	"github.com/yumyai/ggderep/pkg/derr"
	"github.com/yumyai/ggderep/pkg/pick"
	"github.com/yumyai/ggderep/pkg/suppress"
)

// EnvConfigFile names the YAML file when no path is given explicitly.
const EnvConfigFile = "DEREP_CONFIG"

type Config struct {
	Program                    string  `yaml:"program"`
	UseFullPercentIdentity     bool    `yaml:"use_full_percent_identity"`
	DistanceThreshold          float64 `yaml:"distance_threshold"`
	RepresentativeMethod       string  `yaml:"representative_method"`
	DistanceDirection          string  `yaml:"distance_direction"`
	MinFullPercentIdentity     float64 `yaml:"min_full_percent_identity"`
	MinAlignmentFraction       float64 `yaml:"min_alignment_fraction"`
	SignificantAlignmentLength int64   `yaml:"significant_alignment_length"`
	MinMashDistance            float64 `yaml:"min_mash_distance"`
	Workers                    int     `yaml:"workers"`

	LogLevel string `yaml:"log_level"`
	Addr     string `yaml:"addr"`
}

func Default() Config {
	return Config{
		Program:              "ANI",
		DistanceThreshold:    0.1,
		RepresentativeMethod: "Qscore",
		DistanceDirection:    "highest",
		LogLevel:             "info",
		Addr:                 "0.0.0.0:8080",
	}
}

// LoadDotenv reads .env files into the environment. A missing file is
// returned as an error for the caller to report.
func LoadDotenv(files ...string) error {
	return godotenv.Load(files...)
}

// Load applies the YAML file at path (or $DEREP_CONFIG) and then the
// environment on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", derr.ErrConfiguration, path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int64) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("DEREP_PROGRAM", &c.Program)
	str("DEREP_REPRESENTATIVE_METHOD", &c.RepresentativeMethod)
	str("DEREP_DISTANCE_DIRECTION", &c.DistanceDirection)
	str("DEREP_LOG_LEVEL", &c.LogLevel)
	str("DEREP_ADDR", &c.Addr)
	float("DEREP_DISTANCE_THRESHOLD", &c.DistanceThreshold)
	float("DEREP_MIN_FULL_PERCENT_IDENTITY", &c.MinFullPercentIdentity)
	float("DEREP_MIN_ALIGNMENT_FRACTION", &c.MinAlignmentFraction)
	float("DEREP_MIN_MASH_DISTANCE", &c.MinMashDistance)
	integer("DEREP_SIGNIFICANT_ALIGNMENT_LENGTH", &c.SignificantAlignmentLength)

	workers := int64(c.Workers)
	integer("DEREP_WORKERS", &workers)
	c.Workers = int(workers)

	if v, ok := os.LookupEnv("DEREP_USE_FULL_PERCENT_IDENTITY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DEREP_USE_FULL_PERCENT_IDENTITY: %w", err))
		} else {
			c.UseFullPercentIdentity = b
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", derr.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, derr.Configf("config", "log level %q: %v", c.LogLevel, err)
	}
	return l, nil
}

// Derep converts the settings into a validated run configuration.
func (c Config) Derep() (derep.Config, error) {
	program, err := derep.ParseProgram(c.Program)
	if err != nil {
		return derep.Config{}, err
	}
	method, err := pick.ParseMethod(c.RepresentativeMethod)
	if err != nil {
		return derep.Config{}, err
	}
	dir, err := pick.ParseDirection(c.DistanceDirection)
	if err != nil {
		return derep.Config{}, err
	}

	out := derep.Config{
		Program:                program,
		UseFullPercentIdentity: c.UseFullPercentIdentity,
		DistanceThreshold:      c.DistanceThreshold,
		Method:                 method,
		Direction:              dir,
		Suppress: suppress.Params{
			MinFullPercentIdentity:     c.MinFullPercentIdentity,
			MinAlignmentFraction:       c.MinAlignmentFraction,
			SignificantAlignmentLength: c.SignificantAlignmentLength,
		},
		MinMashDistance: c.MinMashDistance,
		Workers:         c.Workers,
	}
	if err := out.Validate(); err != nil {
		return derep.Config{}, err
	}
	return out, nil
}
