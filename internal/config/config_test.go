package config

import "testing"

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Base.Name != "audtext" {
		t.Errorf("expected service name 'audtext', got '%s'", cfg.Base.Name)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Upload.MaxFileSizeMB != 500 {
		t.Errorf("expected 500MB limit, got %d", cfg.Upload.MaxFileSizeMB)
	}
	if len(cfg.Upload.AllowedExtensions) == 0 {
		t.Error("expected default allowed extensions")
	}
	if cfg.Runner.MaxConcurrent <= 0 {
		t.Errorf("expected positive worker bound, got %d", cfg.Runner.MaxConcurrent)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestConfig_Validate_BadUpload(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.Upload.MaxFileSizeMB = -1

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative size limit")
	}
}
