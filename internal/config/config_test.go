package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"dubdeck/internal/config"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Server.BaseURL != "http://localhost:8787" {
		t.Fatalf("unexpected default base URL %q", cfg.Server.BaseURL)
	}
	if cfg.Wizard.Flow != config.FlowSourceDetails {
		t.Fatalf("unexpected default flow %q", cfg.Wizard.Flow)
	}
	if cfg.Upload.CloseDelayMS != 400 {
		t.Fatalf("unexpected close delay %d", cfg.Upload.CloseDelayMS)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
base_url = "https://api.example.com/"
owner_code = " dist-42 "

[wizard]
flow = "Upload-Settings"

[languages]
default_source = "en"
allowed_targets = [" ja ", "", "ko"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected file to be found, got exists=%v resolved=%q", exists, resolved)
	}
	if cfg.Server.BaseURL != "https://api.example.com" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.Server.BaseURL)
	}
	if cfg.Server.OwnerCode != "dist-42" {
		t.Fatalf("owner code not trimmed: %q", cfg.Server.OwnerCode)
	}
	if cfg.Wizard.Flow != config.FlowUploadSettings {
		t.Fatalf("flow not normalized: %q", cfg.Wizard.Flow)
	}
	want := []string{"ja", "ko"}
	if len(cfg.Languages.AllowedTargets) != len(want) {
		t.Fatalf("allowed targets = %v, want %v", cfg.Languages.AllowedTargets, want)
	}
	for i, target := range want {
		if cfg.Languages.AllowedTargets[i] != target {
			t.Fatalf("allowed targets = %v, want %v", cfg.Languages.AllowedTargets, want)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty base url", func(c *config.Config) { c.Server.BaseURL = "" }},
		{"relative base url", func(c *config.Config) { c.Server.BaseURL = "localhost:8787" }},
		{"bad scheme", func(c *config.Config) { c.Server.BaseURL = "ftp://example.com" }},
		{"negative timeout", func(c *config.Config) { c.Server.RequestTimeout = -1 }},
		{"negative close delay", func(c *config.Config) { c.Upload.CloseDelayMS = -5 }},
		{"unknown flow", func(c *config.Config) { c.Wizard.Flow = "three-step" }},
		{"unknown log format", func(c *config.Config) { c.Logging.Format = "logfmt" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample file not found after CreateSample")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
}
