package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

const TRUE = "true"

// LoadFromEnv overrides cfg with environment variables
func LoadFromEnv(cfg *Config) {
	loadGenerationConfig(cfg)
	loadDatabaseConfig(cfg)
	loadDetectorConfig(cfg)
	loadLoggingConfig(cfg)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		cfg.SentryDSN = dsn
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		} else {
			log.Printf("[Config] Ignoring invalid %s=%q: %v", name, v, err)
		}
	}
}

func envFloat(name string, dst *float64) {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		} else {
			log.Printf("[Config] Ignoring invalid %s=%q: %v", name, v, err)
		}
	}
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// loadGenerationConfig loads synthesis configuration from environment variables
func loadGenerationConfig(cfg *Config) {
	if seed := os.Getenv("SEED"); seed != "" {
		if s, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.Generation.Seed = s
		} else {
			log.Printf("[Config] Ignoring invalid SEED=%q: %v", seed, err)
		}
	}
	envInt("PER_LABEL", &cfg.Generation.PerLabel)
	envFloat("NOISE_RATE", &cfg.Generation.NoiseRate)
	envFloat("OBFUSCATION_RATE", &cfg.Generation.ObfuscationRate)
	envString("OUTPUT_DIR", &cfg.Generation.OutputDir)
	if contact := os.Getenv("CONTACT_ENTITIES"); contact != "" {
		cfg.Generation.Contact = contact == TRUE
	}
}

// loadDatabaseConfig loads database configuration from environment variables
func loadDatabaseConfig(cfg *Config) {
	envString("DB_DRIVER", &cfg.Database.Driver)
	envString("DB_PATH", &cfg.Database.Path)
	envString("DB_HOST", &cfg.Database.Host)
	envInt("DB_PORT", &cfg.Database.Port)
	envString("DB_NAME", &cfg.Database.Database)
	envString("DB_USER", &cfg.Database.Username)
	envString("DB_PASSWORD", &cfg.Database.Password)
	envString("DB_SSL_MODE", &cfg.Database.SSLMode)
}

// loadDetectorConfig loads detector configuration from environment variables
func loadDetectorConfig(cfg *Config) {
	envString("DETECTOR_NAME", &cfg.Detector.Name)
	envString("MODEL_DIR", &cfg.Detector.ModelDir)
	envString("MODEL_BASE_URL", &cfg.Detector.BaseURL)
	envString("ONNXRUNTIME_SHARED_LIBRARY_PATH", &cfg.Detector.ONNXLibraryPath)
	envFloat("MODEL_REQUESTS_PER_SECOND", &cfg.Detector.RequestsPerSecond)
	if timeout := os.Getenv("MODEL_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Detector.Timeout = d
		} else {
			log.Printf("[Config] Ignoring invalid MODEL_TIMEOUT=%q: %v", timeout, err)
		}
	}
}

// loadLoggingConfig loads logging configuration from environment variables
func loadLoggingConfig(cfg *Config) {
	if logVerbose := os.Getenv("LOG_VERBOSE"); logVerbose != "" {
		cfg.Logging.Verbose = logVerbose == TRUE
	}
}
