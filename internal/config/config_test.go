package config

import (
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Provider != "openai" {
		t.Errorf("Default provider = %q, want %q", cfg.Provider, "openai")
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Default temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.TimeoutSeconds != 60 {
		t.Errorf("Default timeoutSeconds = %d, want 60", cfg.TimeoutSeconds)
	}
	if cfg.Format != "improved_code" {
		t.Errorf("Default format = %q, want %q", cfg.Format, "improved_code")
	}
	if cfg.OutputDir != "reports" {
		t.Errorf("Default outputDir = %q, want %q", cfg.OutputDir, "reports")
	}
	if len(cfg.Categories) != 7 {
		t.Errorf("Default categories len = %d, want 7", len(cfg.Categories))
	}
	if len(cfg.FileExtensions) != 1 || cfg.FileExtensions[0] != ".cs" {
		t.Errorf("Default fileExtensions = %v, want [.cs]", cfg.FileExtensions)
	}
	if cfg.MaxFileBytes != 1<<20 {
		t.Errorf("Default maxFileBytes = %d, want %d", cfg.MaxFileBytes, 1<<20)
	}
	if cfg.Cache.Enabled {
		t.Error("Default cache should be disabled")
	}
	if cfg.Cache.TTLSeconds != 86400 {
		t.Errorf("Default cache TTL = %d, want 86400", cfg.Cache.TTLSeconds)
	}
	if !cfg.Privacy.RedactSecrets {
		t.Error("Default redactSecrets should be true")
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("MEND_PROVIDER", "anthropic")
	t.Setenv("MEND_MODEL", "claude-3-5-haiku-20241022")
	t.Setenv("MEND_TEMPERATURE", "0.2")
	t.Setenv("MEND_TIMEOUT_SECONDS", "120")
	t.Setenv("MEND_CATEGORIES", "null_reference, resource_management")
	t.Setenv("MEND_FORMAT", "code_comments")
	t.Setenv("MEND_OUTPUT_DIR", "/tmp/out")

	cfg := Default()
	mergeEnv(&cfg)

	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "anthropic")
	}
	if cfg.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.Temperature)
	}
	if cfg.TimeoutSeconds != 120 {
		t.Errorf("TimeoutSeconds = %d, want 120", cfg.TimeoutSeconds)
	}
	if len(cfg.Categories) != 2 || cfg.Categories[1] != "resource_management" {
		t.Errorf("Categories = %v", cfg.Categories)
	}
	if cfg.Format != "code_comments" {
		t.Errorf("Format = %q, want %q", cfg.Format, "code_comments")
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "/tmp/out")
	}
}

func TestMergeEnv_InvalidNumber(t *testing.T) {
	t.Setenv("MEND_TIMEOUT_SECONDS", "notanumber")

	cfg := Default()
	mergeEnv(&cfg)

	// Invalid numbers are ignored, the default survives.
	if cfg.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want 60", cfg.TimeoutSeconds)
	}
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	overrides := map[string]string{
		"provider":   "anthropic",
		"model":      "claude-3-5-haiku-20241022",
		"format":     "flow_diagram",
		"categories": "performance",
		"out":        "build/reports",
	}
	mergeOverrides(&cfg, overrides)

	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "anthropic")
	}
	if cfg.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Format != "flow_diagram" {
		t.Errorf("Format = %q, want %q", cfg.Format, "flow_diagram")
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0] != "performance" {
		t.Errorf("Categories = %v", cfg.Categories)
	}
	if cfg.OutputDir != "build/reports" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "build/reports")
	}
}

func TestMergeOverrides_Nil(t *testing.T) {
	cfg := Default()
	mergeOverrides(&cfg, nil)
	if cfg.Provider != "openai" {
		t.Errorf("Provider changed with nil overrides")
	}
}

func TestConfigPrecedence(t *testing.T) {
	t.Setenv("MEND_PROVIDER", "anthropic")

	cfg := Default()
	mergeEnv(&cfg)
	if cfg.Provider != "anthropic" {
		t.Errorf("After env merge, Provider = %q, want %q", cfg.Provider, "anthropic")
	}

	mergeOverrides(&cfg, map[string]string{"provider": "openai"})
	if cfg.Provider != "openai" {
		t.Errorf("After override, Provider = %q, want %q", cfg.Provider, "openai")
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value string
	}{
		{"provider", "anthropic"},
		{"model", "claude-3-5-haiku-20241022"},
		{"temperature", "0.3"},
		{"timeoutSeconds", "90"},
		{"maxOutputTokens", "4096"},
		{"categories", "null_reference,hardcoding_to_config"},
		{"format", "code_comments"},
		{"outputDir", "out"},
		{"fileExtensions", ".cs,.csx"},
		{"maxFileBytes", "2097152"},
		{"cache.enabled", "true"},
		{"cache.ttlSeconds", "3600"},
		{"privacy.redactSecrets", "false"},
	}

	for _, tt := range tests {
		if err := SetField(&cfg, tt.key, tt.value); err != nil {
			t.Errorf("SetField(%q, %q) error: %v", tt.key, tt.value, err)
		}
	}

	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "anthropic")
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", cfg.Temperature)
	}
	if cfg.MaxOutputTokens != 4096 {
		t.Errorf("MaxOutputTokens = %d, want 4096", cfg.MaxOutputTokens)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true")
	}
	if cfg.Privacy.RedactSecrets {
		t.Error("RedactSecrets should be false")
	}
}

func TestSetField_UnknownKey(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "nonexistent", "value"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestSetField_InvalidValue(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "timeoutSeconds", "notanumber"); err == nil {
		t.Error("Expected error for non-integer value")
	}
	if err := SetField(&cfg, "cache.enabled", "maybe"); err == nil {
		t.Error("Expected error for non-boolean value")
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg-test/mend" {
		t.Errorf("ConfigDir = %q, want %q", dir, "/tmp/xdg-test/mend")
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath error: %v", err)
	}
	if path != "/tmp/xdg-test/mend/config.json" {
		t.Errorf("ConfigPath = %q", path)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Provider = "anthropic"
	cfg.Model = "claude-3-5-haiku-20241022"
	cfg.Privacy.RedactSecrets = false

	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded := Default()
	if err := LoadFile(&loaded); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.Provider != "anthropic" {
		t.Errorf("Provider = %q, want %q", loaded.Provider, "anthropic")
	}
	if loaded.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("Model = %q", loaded.Model)
	}
	// Saved booleans win over defaults.
	if loaded.Privacy.RedactSecrets {
		t.Error("RedactSecrets should be false from the saved file")
	}
}

func TestLoadFile_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	if err := LoadFile(&cfg); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	// Missing file keeps defaults intact.
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want default %q", cfg.Provider, "openai")
	}
}

func TestLoad_Integration(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(map[string]string{"provider": "anthropic"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "anthropic")
	}
	if cfg.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want 60 (default)", cfg.TimeoutSeconds)
	}
	if cfg.HistoryPath == "" {
		t.Error("HistoryPath should be resolved to a default path")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, b ,,c ")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("splitList len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
