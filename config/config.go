package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hannes/kiji-ner/pii/dataset"
	"github.com/hannes/kiji-ner/pii/detectors"
	"github.com/hannes/kiji-ner/pii/noise"
	"github.com/hannes/kiji-ner/pii/store"
	"github.com/hannes/kiji-ner/pii/synth"
)

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Verbose bool `json:"verbose" yaml:"verbose"` // Log per-stage progress
}

// GenerationConfig controls dataset synthesis
type GenerationConfig struct {
	Seed            int64   `json:"seed" yaml:"seed"`
	PerLabel        int     `json:"per_label" yaml:"per_label"`
	NoiseRate       float64 `json:"noise_rate" yaml:"noise_rate"`
	ObfuscationRate float64 `json:"obfuscation_rate" yaml:"obfuscation_rate"`
	Contact         bool    `json:"contact" yaml:"contact"`
	OutputDir       string  `json:"output_dir" yaml:"output_dir"`
}

// NoiseConfig holds the perturbation probabilities
type NoiseConfig struct {
	DigitSpaceProb  float64 `json:"digit_space_prob" yaml:"digit_space_prob"`
	ZeroToOProb     float64 `json:"zero_to_o_prob" yaml:"zero_to_o_prob"`
	HyphenSpaceProb float64 `json:"hyphen_space_prob" yaml:"hyphen_space_prob"`
}

// DetectorConfig selects and configures the detector under evaluation
type DetectorConfig struct {
	Name              string        `json:"name" yaml:"name"`
	ModelDir          string        `json:"model_dir" yaml:"model_dir"`
	ONNXLibraryPath   string        `json:"onnx_library_path" yaml:"onnx_library_path"`
	BaseURL           string        `json:"base_url" yaml:"base_url"`
	RequestsPerSecond float64       `json:"requests_per_second" yaml:"requests_per_second"`
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
}

// EvaluationConfig selects evaluation inputs
type EvaluationConfig struct {
	CasesFile     string `json:"cases_file" yaml:"cases_file"`
	FragmentsFile string `json:"fragments_file" yaml:"fragments_file"`
	Limit         int    `json:"limit" yaml:"limit"`
}

// Config holds all configuration for dataset generation and evaluation
type Config struct {
	Generation GenerationConfig     `json:"generation" yaml:"generation"`
	Noise      NoiseConfig          `json:"noise" yaml:"noise"`
	Split      dataset.Split        `json:"split" yaml:"split"`
	Database   store.DatabaseConfig `json:"database" yaml:"database"`
	Detector   DetectorConfig       `json:"detector" yaml:"detector"`
	Evaluation EvaluationConfig     `json:"evaluation" yaml:"evaluation"`
	Logging    LoggingConfig        `json:"logging" yaml:"logging"`
	SentryDSN  string               `json:"sentry_dsn" yaml:"sentry_dsn"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	defaults := synth.DefaultOptions()
	return &Config{
		Generation: GenerationConfig{
			Seed:            7,
			PerLabel:        defaults.PerLabel,
			NoiseRate:       defaults.NoiseRate,
			ObfuscationRate: defaults.ObfuscationRate,
			Contact:         defaults.Contact,
			OutputDir:       "sg_pdpa_ner_dataset",
		},
		Noise: NoiseConfig{
			DigitSpaceProb:  noise.DefaultDigitSpaceProb,
			ZeroToOProb:     noise.DefaultZeroToOProb,
			HyphenSpaceProb: noise.DefaultHyphenSpaceProb,
		},
		Split: dataset.DefaultSplit(),
		Database: store.DatabaseConfig{
			Driver:       store.DriverSQLite,
			Path:         filepath.Join(homeDir, ".kiji-ner", "datasets.db"),
			Host:         "localhost",
			Port:         5432,
			Database:     "kiji_ner",
			Username:     "postgres",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 25,
			MaxLifetime:  5 * time.Minute,
		},
		Detector: DetectorConfig{
			Name:     detectors.DetectorNameRegex,
			ModelDir: "model/quantized",
			BaseURL:  "http://localhost:8000",
			Timeout:  30 * time.Second,
		},
		Evaluation: EvaluationConfig{
			Limit: 100,
		},
	}
}

// LoadFromFile overlays a YAML or JSON file onto the defaults
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// SynthOptions converts the generation settings for the synthesizer
func (c *Config) SynthOptions() synth.Options {
	return synth.Options{
		PerLabel:        c.Generation.PerLabel,
		NoiseRate:       c.Generation.NoiseRate,
		ObfuscationRate: c.Generation.ObfuscationRate,
		Contact:         c.Generation.Contact,
		Verbose:         c.Logging.Verbose,
	}
}

// ApplyNoise copies the perturbation probabilities onto p
func (c *Config) ApplyNoise(p *noise.Perturber) {
	p.DigitSpaceProb = c.Noise.DigitSpaceProb
	p.ZeroToOProb = c.Noise.ZeroToOProb
	p.HyphenSpaceProb = c.Noise.HyphenSpaceProb
}

// DetectorParams builds the factory config map for the selected detector
func (c *Config) DetectorParams() map[string]interface{} {
	return map[string]interface{}{
		"base_url":            c.Detector.BaseURL,
		"requests_per_second": c.Detector.RequestsPerSecond,
		"timeout":             c.Detector.Timeout,
		"model_dir":           c.Detector.ModelDir,
		"onnx_library_path":   c.Detector.ONNXLibraryPath,
	}
}

func validateProbability(v float64, fieldName string) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s: must be between 0 and 1 (current value: %v)", fieldName, v)
	}
	return nil
}

func validateURL(raw string, fieldName string) error {
	if raw == "" {
		return fmt.Errorf("%s: URL cannot be empty", fieldName)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s: must be an absolute http(s) URL (current value: %s)", fieldName, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: must be an absolute http(s) URL (current value: %s)", fieldName, raw)
	}
	return nil
}

// Validate checks every section and returns all problems joined
func (c *Config) Validate() error {
	return errors.Join(c.ValidateGeneration(), c.ValidateEvaluation())
}

// ValidateGeneration checks the sections used to build and store datasets:
// Generation, Noise, Split and Database.
func (c *Config) ValidateGeneration() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if c.Generation.PerLabel < 1 {
		add(fmt.Errorf("Generation.PerLabel: must be at least 1 (current value: %d)", c.Generation.PerLabel))
	}
	add(validateProbability(c.Generation.NoiseRate, "Generation.NoiseRate"))
	add(validateProbability(c.Generation.ObfuscationRate, "Generation.ObfuscationRate"))
	add(validateProbability(c.Noise.DigitSpaceProb, "Noise.DigitSpaceProb"))
	add(validateProbability(c.Noise.ZeroToOProb, "Noise.ZeroToOProb"))
	add(validateProbability(c.Noise.HyphenSpaceProb, "Noise.HyphenSpaceProb"))
	if err := c.Split.Validate(); err != nil {
		add(fmt.Errorf("Split: %w", err))
	}

	switch c.Database.Driver {
	case store.DriverSQLite:
		if c.Database.Path == "" {
			add(fmt.Errorf("Database.Path: cannot be empty for the sqlite driver"))
		}
	case store.DriverPostgres:
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			add(fmt.Errorf("Database.Port: port must be between 1 and 65535 (current value: %d)", c.Database.Port))
		}
		if c.Database.Host == "" {
			add(fmt.Errorf("Database.Host: cannot be empty for the postgres driver"))
		}
	case store.DriverMemory:
	default:
		add(fmt.Errorf("Database.Driver: must be one of sqlite, postgres, memory (current value: %s)", c.Database.Driver))
	}

	return errors.Join(errs...)
}

// ValidateEvaluation checks the sections used to run a detector over
// labelled samples: Detector and Evaluation.
func (c *Config) ValidateEvaluation() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	switch c.Detector.Name {
	case detectors.DetectorNameRegex:
	case detectors.DetectorNameModel:
		add(validateURL(c.Detector.BaseURL, "Detector.BaseURL"))
		if c.Detector.RequestsPerSecond < 0 {
			add(fmt.Errorf("Detector.RequestsPerSecond: cannot be negative (current value: %v)", c.Detector.RequestsPerSecond))
		}
	case detectors.DetectorNameONNXModel:
		if c.Detector.ModelDir == "" {
			add(fmt.Errorf("Detector.ModelDir: cannot be empty for the ONNX detector"))
		}
	default:
		add(fmt.Errorf("Detector.Name: must be one of %s (current value: %s)",
			strings.Join(detectors.DetectorNames(), ", "), c.Detector.Name))
	}

	if c.Evaluation.Limit < 0 {
		add(fmt.Errorf("Evaluation.Limit: cannot be negative (current value: %d)", c.Evaluation.Limit))
	}

	return errors.Join(errs...)
}
