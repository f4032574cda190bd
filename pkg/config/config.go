package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultWindowSeconds      = 300
	defaultPublishFrequencyMs = 1000
)

var defaultQuantiles = []float64{50, 90, 99}

type RanksetConfig struct {
	KafkaConfig        *KafkaConfig `yaml:"kafkaConfig"`
	Topic              string       `yaml:"topic"`
	WindowSeconds      int          `yaml:"windowSeconds"`
	PublishFrequencyMs int          `yaml:"publishFrequencyMs"`
	Quantiles          []float64    `yaml:"quantiles"`
	// MaxDistinctValues caps the distinct values each partition window keeps.
	// Zero means unlimited.
	MaxDistinctValues int `yaml:"maxDistinctValues"`
}

type KafkaConfig struct {
	SeedBrokers []string `yaml:"seedBrokers"`
}

// GetRanksetConfigFromBytes parses a YAML (or JSON) document and validates it.
func GetRanksetConfigFromBytes(data []byte) (*RanksetConfig, error) {
	cfg := &RanksetConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func GetRanksetConfigFromFile(path string) (*RanksetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return GetRanksetConfigFromBytes(data)
}

func (c *RanksetConfig) Validate() error {
	if c.KafkaConfig == nil || len(c.KafkaConfig.SeedBrokers) == 0 {
		return errors.New("kafkaConfig.seedBrokers must not be empty")
	}
	if c.Topic == "" {
		return errors.New("topic must be set")
	}
	if c.WindowSeconds < 0 {
		return fmt.Errorf("windowSeconds must not be negative, got %d", c.WindowSeconds)
	}
	if c.PublishFrequencyMs < 0 {
		return fmt.Errorf("publishFrequencyMs must not be negative, got %d", c.PublishFrequencyMs)
	}
	if c.MaxDistinctValues < 0 {
		return fmt.Errorf("maxDistinctValues must not be negative, got %d", c.MaxDistinctValues)
	}
	for _, q := range c.Quantiles {
		if q < 0 || q > 100 {
			return fmt.Errorf("quantile %v is outside [0, 100]", q)
		}
	}
	return nil
}

func (c *RanksetConfig) GetWindowSeconds() int {
	if c.WindowSeconds == 0 {
		return defaultWindowSeconds
	}
	return c.WindowSeconds
}

func (c *RanksetConfig) GetPublishFrequencyMs() int {
	if c.PublishFrequencyMs == 0 {
		return defaultPublishFrequencyMs
	}
	return c.PublishFrequencyMs
}

func (c *RanksetConfig) GetQuantiles() []float64 {
	if len(c.Quantiles) == 0 {
		return defaultQuantiles
	}
	return c.Quantiles
}
