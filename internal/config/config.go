package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the mend configuration.
type Config struct {
	Provider        string        `json:"provider"`
	Model           string        `json:"model"`
	Temperature     float64       `json:"temperature"`
	TimeoutSeconds  int           `json:"timeoutSeconds"`
	MaxOutputTokens int           `json:"maxOutputTokens,omitempty"`
	Categories      []string      `json:"categories"`
	Format          string        `json:"format"`
	OutputDir       string        `json:"outputDir"`
	HistoryPath     string        `json:"historyPath,omitempty"`
	FileExtensions  []string      `json:"fileExtensions"`
	MaxFileBytes    int64         `json:"maxFileBytes"`
	Cache           CacheConfig   `json:"cache"`
	Privacy         PrivacyConfig `json:"privacy"`
}

// CacheConfig controls response caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool `json:"redactSecrets"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:       "openai",
		Temperature:    0.7,
		TimeoutSeconds: 60,
		Categories: []string{
			"null_reference",
			"exception_handling",
			"resource_management",
			"performance",
			"security",
			"naming_convention",
			"code_documentation",
		},
		Format:         "improved_code",
		OutputDir:      "reports",
		FileExtensions: []string{".cs"},
		MaxFileBytes:   1 << 20,
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for mend.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mend"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "mend"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "mend"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "mend"), nil
	default:
		return filepath.Join(home, ".config", "mend"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile unmarshals the config file over cfg, so fields absent from the
// file keep whatever cfg already holds. A missing file is not an error.
func LoadFile(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
// A .env file in the working directory is loaded first; it never overrides
// variables already present in the environment.
func Load(overrides map[string]string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if err := LoadFile(&cfg); err != nil {
		return Config{}, err
	}
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	if cfg.HistoryPath == "" {
		dir, err := ConfigDir()
		if err != nil {
			return Config{}, err
		}
		cfg.HistoryPath = filepath.Join(dir, "history.db")
	}
	return cfg, nil
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("MEND_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("MEND_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("MEND_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("MEND_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("MEND_MAX_OUTPUT_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxOutputTokens = n
		}
	}
	if v := os.Getenv("MEND_CATEGORIES"); v != "" {
		cfg.Categories = splitList(v)
	}
	if v := os.Getenv("MEND_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("MEND_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("MEND_HISTORY_PATH"); v != "" {
		cfg.HistoryPath = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["categories"]; ok && v != "" {
		cfg.Categories = splitList(v)
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["out"]; ok && v != "" {
		cfg.OutputDir = v
	}
	if v, ok := overrides["temperature"]; ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
}

// SetField sets a single config field by key name. Returns an error if the
// key is unknown or the value does not parse.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	case "maxOutputTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxOutputTokens must be an integer: %w", err)
		}
		cfg.MaxOutputTokens = n
	case "categories":
		cfg.Categories = splitList(value)
	case "format":
		cfg.Format = value
	case "outputDir":
		cfg.OutputDir = value
	case "historyPath":
		cfg.HistoryPath = value
	case "fileExtensions":
		cfg.FileExtensions = splitList(value)
	case "maxFileBytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("maxFileBytes must be an integer: %w", err)
		}
		cfg.MaxFileBytes = n
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
