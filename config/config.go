// Package config handles sitekb configuration from a YAML file with
// environment overrides applied by the caller.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level sitekb configuration.
type Config struct {
	ListenAddr  string   `yaml:"listen_addr"`
	DBPath      string   `yaml:"db_path"`
	SiteBaseURL string   `yaml:"site_base_url"`
	SiteName    string   `yaml:"site_name"`
	Languages   []string `yaml:"languages"`

	Summarizer SummarizerConfig `yaml:"summarizer"`
	Notify     NotifyConfig     `yaml:"notify"`
}

// SummarizerConfig controls the AI gist pipeline. An empty APIKey disables
// summarization for the whole process; reads then serve raw knowledge-base
// text.
type SummarizerConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxWords int           `yaml:"max_words"`
}

// NotifyConfig controls the fire-and-forget lead notification webhook.
// An empty URL disables notifications.
type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with production defaults.
func (c *Config) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8090"
	}
	if c.DBPath == "" {
		c.DBPath = "data/sitekb.db"
	}
	if c.SiteBaseURL == "" {
		c.SiteBaseURL = "https://example.com"
	}
	if c.SiteName == "" {
		c.SiteName = "sitekb"
	}
	if len(c.Languages) == 0 {
		c.Languages = []string{"en", "bn"}
	}
	if c.Summarizer.Model == "" {
		c.Summarizer.Model = "gpt-4o-mini"
	}
	if c.Summarizer.Timeout <= 0 {
		c.Summarizer.Timeout = 30 * time.Second
	}
	if c.Summarizer.MaxWords <= 0 {
		c.Summarizer.MaxWords = 150
	}
	if c.Notify.Timeout <= 0 {
		c.Notify.Timeout = 10 * time.Second
	}
}

// DefaultLang is the language served when a request carries an unknown code.
func (c *Config) DefaultLang() string {
	return c.Languages[0]
}

// Supported reports whether lang is one of the configured languages.
func (c *Config) Supported(lang string) bool {
	for _, l := range c.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
