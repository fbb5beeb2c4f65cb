// Package config loads the application configuration from an optional YAML
// file plus OPTENGINE-prefixed environment variables, with full defaults so
// the binaries run configuration-free in development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config for the whole application
type Config struct {
	App     AppConfig
	API     APIConfig
	Engine  EngineConfig
	Kafka   KafkaConfig
	Metrics MetricsConfig
}

// General application configuration
type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string
}

// Configuration for the API server
type APIConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RateLimit       float64
	RateLimitBurst  int
}

// Configuration for the pricing engine and its solvers
type EngineConfig struct {
	Workers             int
	ChunkSize           int
	SequentialThreshold int
	VectorizedThreshold int
	GreekBump           float64
	MertonLambda        float64
	MertonMeanJump      float64
	MertonJumpVol       float64
	AmericanTol         float64
	AmericanMaxIter     int
	IVMaxIter           int
}

// Configuration for Kafka
type KafkaConfig struct {
	Brokers      []string
	GroupID      string
	RequestTopic string
	ResultTopic  string
	BatchSize    int
	BatchTimeout time.Duration
}

// Configuration for metrics
type MetricsConfig struct {
	Enabled bool
}

// Load reads the configuration from an optional file and environment
// variables. A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("OPTENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "option-engine")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.log_level", "info")

	// API defaults
	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.read_timeout", "10s")
	viper.SetDefault("api.write_timeout", "30s")
	viper.SetDefault("api.shutdown_timeout", "30s")
	viper.SetDefault("api.rate_limit", 100)
	viper.SetDefault("api.rate_limit_burst", 200)

	// Engine defaults
	viper.SetDefault("engine.workers", 0) // 0 = NumCPU
	viper.SetDefault("engine.chunk_size", 1024)
	viper.SetDefault("engine.sequential_threshold", 64)
	viper.SetDefault("engine.vectorized_threshold", 8192)
	viper.SetDefault("engine.greek_bump", 1e-4)
	viper.SetDefault("engine.merton_lambda", 0.1)
	viper.SetDefault("engine.merton_mean_jump", -0.05)
	viper.SetDefault("engine.merton_jump_vol", 0.15)
	viper.SetDefault("engine.american_tol", 1e-6)
	viper.SetDefault("engine.american_max_iter", 100)
	viper.SetDefault("engine.iv_max_iter", 50)

	// Kafka defaults
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.group_id", "option-engine")
	viper.SetDefault("kafka.request_topic", "pricing.requests")
	viper.SetDefault("kafka.result_topic", "pricing.results")
	viper.SetDefault("kafka.batch_size", 100)
	viper.SetDefault("kafka.batch_timeout", "50ms")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
}
