package main

import (
	"testing"
	"time"

	"github.com/hazyhaar/sitekb/config"
)

func TestSummarizerConfigUsesYAMLKeyWhenEnvUnset(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")

	cfg := config.Default()
	cfg.Summarizer.APIKey = "sk-from-yaml"
	cfg.Summarizer.BaseURL = "https://llm.internal/v1"
	cfg.Summarizer.Timeout = 15 * time.Second

	sc := summarizerConfig(cfg)
	if sc.APIKey != "sk-from-yaml" {
		t.Errorf("APIKey: got %q, want the configured key", sc.APIKey)
	}
	if sc.BaseURL != "https://llm.internal/v1" {
		t.Errorf("BaseURL: got %q", sc.BaseURL)
	}
	if sc.Timeout != 15*time.Second {
		t.Errorf("Timeout: got %v", sc.Timeout)
	}
}

func TestSummarizerConfigEnvOverridesYAML(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("OPENAI_BASE_URL", "https://env.example/v1")

	cfg := config.Default()
	cfg.Summarizer.APIKey = "sk-from-yaml"
	cfg.Summarizer.BaseURL = "https://llm.internal/v1"

	sc := summarizerConfig(cfg)
	if sc.APIKey != "sk-from-env" {
		t.Errorf("APIKey: got %q, want the env value", sc.APIKey)
	}
	if sc.BaseURL != "https://env.example/v1" {
		t.Errorf("BaseURL: got %q", sc.BaseURL)
	}
}
