package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/polymesh/pkg/formats"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output.Format != "binary" {
		t.Errorf("expected format binary, got %s", cfg.Output.Format)
	}
	if cfg.Welding.Tolerance != 0 {
		t.Errorf("expected exact welding by default, got %v", cfg.Welding.Tolerance)
	}
	if !cfg.Tessellation.FastPath {
		t.Error("expected fast path to be enabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
output:
  format: text

welding:
  tolerance: 0.001

tessellation:
  fast_path: false

logging:
  level: "debug"
  log_file: "meshtool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Output.Format != "text" {
		t.Errorf("expected format text, got %s", cfg.Output.Format)
	}
	if cfg.Welding.Tolerance != 0.001 {
		t.Errorf("expected tolerance 0.001, got %v", cfg.Welding.Tolerance)
	}
	if cfg.Tessellation.FastPath {
		t.Error("expected fast path to be disabled")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshtool.log" {
		t.Errorf("expected log file 'meshtool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  format: text\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !cfg.Tessellation.FastPath || cfg.Logging.Level != "info" {
		t.Error("expected unset sections to keep their defaults")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "welding:\n  tolerance: not a number\n  invalid syntax here\n"},
		{"unknown key", "graphics:\n  width: 800\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error loading invalid YAML, got nil")
			}
		})
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), configPath); err != nil {
		t.Errorf("empty config file should load, got %v", err)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"text format", func(c *Config) { c.Output.Format = "text" }, false},
		{"unknown format", func(c *Config) { c.Output.Format = "obj" }, true},
		{"negative tolerance", func(c *Config) { c.Welding.Tolerance = -0.5 }, true},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGeometryType(t *testing.T) {
	cfg := Default()
	gt, err := cfg.GeometryType()
	if err != nil || gt != formats.PolyhedronBinary {
		t.Errorf("expected binary geometry type, got %v (%v)", gt, err)
	}

	cfg.Output.Format = "text"
	gt, err = cfg.GeometryType()
	if err != nil || gt != formats.Polyhedron {
		t.Errorf("expected text geometry type, got %v (%v)", gt, err)
	}
}

func TestMesherOptions(t *testing.T) {
	cfg := Default()
	if n := len(cfg.MesherOptions()); n != 0 {
		t.Errorf("expected no options for defaults, got %d", n)
	}

	cfg.Welding.Tolerance = 0.01
	cfg.Tessellation.FastPath = false
	if n := len(cfg.MesherOptions()); n != 2 {
		t.Errorf("expected 2 options, got %d", n)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  format: text\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "format flag",
			setup: func() { *flagFormat = "text" },
			verify: func(cfg *Config) {
				if cfg.Output.Format != "text" {
					t.Errorf("expected format text, got %s", cfg.Output.Format)
				}
			},
			teardown: func() { *flagFormat = "" },
		},
		{
			name:  "weld tolerance flag",
			setup: func() { *flagWeldTolerance = 0.25 },
			verify: func(cfg *Config) {
				if cfg.Welding.Tolerance != 0.25 {
					t.Errorf("expected tolerance 0.25, got %v", cfg.Welding.Tolerance)
				}
			},
			teardown: func() { *flagWeldTolerance = -1 },
		},
		{
			name:  "unset weld tolerance keeps config",
			setup: func() {},
			verify: func(cfg *Config) {
				if cfg.Welding.Tolerance != 0 {
					t.Errorf("expected tolerance 0, got %v", cfg.Welding.Tolerance)
				}
			},
			teardown: func() {},
		},
		{
			name:  "no fast path flag",
			setup: func() { *flagNoFastPath = true },
			verify: func(cfg *Config) {
				if cfg.Tessellation.FastPath {
					t.Error("expected fast path to be disabled")
				}
			},
			teardown: func() { *flagNoFastPath = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
output:
  format: text
welding:
  tolerance: 0.5
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagFormat = "binary"
	defer func() {
		*flagConfig = ""
		*flagFormat = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Format comes from the flag, tolerance from the file.
	if cfg.Output.Format != "binary" {
		t.Errorf("expected format binary from flag, got %s", cfg.Output.Format)
	}
	if cfg.Welding.Tolerance != 0.5 {
		t.Errorf("expected tolerance 0.5 from file, got %v", cfg.Welding.Tolerance)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	*flagFormat = "stl"
	*flagConfig = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() {
		*flagFormat = ""
		*flagConfig = ""
	}()

	if _, err := Load(); err == nil {
		t.Error("expected error for missing explicit config file")
	}

	*flagConfig = ""
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := Load(); err == nil {
		t.Error("expected validation error for unknown format flag")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Output.Format = "text"
	cfg.Welding.Tolerance = 0.002
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("reloaded config %+v differs from saved %+v", loaded, cfg)
	}
}
