package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.ListenAddr == "" {
		t.Error("ListenAddr not defaulted")
	}
	if len(cfg.Languages) == 0 {
		t.Fatal("Languages not defaulted")
	}
	if cfg.DefaultLang() != cfg.Languages[0] {
		t.Errorf("DefaultLang: got %q, want %q", cfg.DefaultLang(), cfg.Languages[0])
	}
	if cfg.Summarizer.Timeout <= 0 {
		t.Error("Summarizer.Timeout not defaulted")
	}
	if cfg.Summarizer.MaxWords != 150 {
		t.Errorf("Summarizer.MaxWords: got %d, want 150", cfg.Summarizer.MaxWords)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sitekb.yaml")
	data := `
listen_addr: ":9000"
site_base_url: "https://acme.example"
site_name: "Acme"
languages: ["en", "fr", "de"]
summarizer:
  model: "gpt-4.1-mini"
  timeout: 15s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("ListenAddr: got %q", cfg.ListenAddr)
	}
	if cfg.SiteBaseURL != "https://acme.example" {
		t.Errorf("SiteBaseURL: got %q", cfg.SiteBaseURL)
	}
	if len(cfg.Languages) != 3 || cfg.Languages[1] != "fr" {
		t.Errorf("Languages: got %v", cfg.Languages)
	}
	if cfg.Summarizer.Model != "gpt-4.1-mini" {
		t.Errorf("Summarizer.Model: got %q", cfg.Summarizer.Model)
	}
	if cfg.Summarizer.Timeout != 15*time.Second {
		t.Errorf("Summarizer.Timeout: got %v", cfg.Summarizer.Timeout)
	}
	// Unset fields still defaulted.
	if cfg.DBPath == "" {
		t.Error("DBPath not defaulted")
	}
}

func TestSupported(t *testing.T) {
	cfg := &Config{Languages: []string{"en", "bn"}}
	cfg.ApplyDefaults()

	if !cfg.Supported("bn") {
		t.Error("bn should be supported")
	}
	if cfg.Supported("xx") {
		t.Error("xx should not be supported")
	}
}
