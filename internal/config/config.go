package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// prometheus metrics server
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// pose inference sidecar
	PoseAPIURL          string  `toml:"pose_api_url"`
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	IOUThreshold        float64 `toml:"iou_threshold"`
	// InferenceTimeoutSeconds bounds a single pose detection call; a frame
	// whose inference exceeds it is treated as "no pose detected"
	InferenceTimeoutSeconds int `toml:"inference_timeout_seconds"`

	// analysis sessions
	MaxActiveSessions int `toml:"max_active_sessions"`
	FrameBufferSize   int `toml:"frame_buffer_size"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlFile Toml
	if _, err := toml.DecodeFile(path, &tomlFile); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := tomlFile.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %s not found in %s", env, path)
	}

	cfg.Environment = env
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = 0.5
	}
	if c.IOUThreshold == 0 {
		c.IOUThreshold = 0.5
	}
	if c.InferenceTimeoutSeconds == 0 {
		c.InferenceTimeoutSeconds = 10
	}
	if c.MaxActiveSessions == 0 {
		c.MaxActiveSessions = 50
	}
	if c.FrameBufferSize == 0 {
		c.FrameBufferSize = 30
	}
}
