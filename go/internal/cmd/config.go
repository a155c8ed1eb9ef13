package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the deploy-time settings that are awkward as flat env vars.
// Connection settings (database, NATS URL) stay in the environment.
type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Events struct {
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
		ConsumerName  string `yaml:"consumer_name"`
	} `yaml:"events"`
}

func defaultConfig() *Config {
	var config Config
	config.Server.Port = "8080"
	config.Server.AllowedOrigins = []string{"*"}
	config.Events.StreamName = "CUBE_DRAFT_EVENTS"
	config.Events.SubjectPrefix = "draft.events"
	config.Events.ConsumerName = "draft-gateway"
	return &config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig reads the yaml config at path, falling back to defaults when the
// file does not exist.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := defaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}
