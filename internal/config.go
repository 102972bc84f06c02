package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultRemindDaysBefore = 3

// Config is the optional display configuration, separate from the durable
// app data. It lives in ~/.subradar/config.yaml.
type Config struct {
	// Sort is the default list ordering: due, name or price
	Sort string `yaml:"sort,omitempty"`

	// RemindDaysBefore is how many days before a billing date the reminder
	// fires (in addition to the due-day reminder)
	RemindDaysBefore *int `yaml:"remind_days_before,omitempty"`

	// Tags maps subscription names to a list of tags (e.g., "entertainment")
	Tags map[string][]string `yaml:"tags,omitempty"`

	// Descriptions maps subscription names to custom descriptions
	Descriptions map[string]string `yaml:"descriptions,omitempty"`
}

// DefaultConfigPath returns the default config file path (~/.subradar/config.yaml)
func DefaultConfigPath() string {
	return filepath.Join(DefaultStoreDir(), "config.yaml")
}

// LoadConfigOrDefault loads the config file if it exists; a missing file
// yields an empty config, any other failure is an error.
func LoadConfigOrDefault(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// SortField returns the configured default sort, or due-date order.
func (c *Config) SortField() string {
	if c == nil || c.Sort == "" {
		return "due"
	}
	return c.Sort
}

// LeadDays returns how many days ahead reminders fire.
func (c *Config) LeadDays() int {
	if c == nil || c.RemindDaysBefore == nil {
		return defaultRemindDaysBefore
	}
	return *c.RemindDaysBefore
}

// GetTags returns the tags for a subscription, or nil if none
func (c *Config) GetTags(name string) []string {
	if c == nil || c.Tags == nil {
		return nil
	}
	return c.Tags[name]
}

// GetDescription returns the custom description for a subscription, or empty string
func (c *Config) GetDescription(name string) string {
	if c == nil || c.Descriptions == nil {
		return ""
	}
	return c.Descriptions[name]
}
