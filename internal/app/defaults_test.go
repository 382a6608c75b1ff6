package app

import (
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("ADROP_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("ADROP_HOME", "/custom/home")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults failed: %v", err)
		}
		if defaults["config_path"] != "/custom/config.toml" {
			t.Errorf("expected custom config path, got %q", defaults["config_path"])
		}
		if defaults["base_dir"] != "/custom/home" {
			t.Errorf("expected custom base dir, got %q", defaults["base_dir"])
		}
		if defaults["log_dir"] != filepath.Join("/custom/home", "log") {
			t.Errorf("expected log dir under base dir, got %q", defaults["log_dir"])
		}
	})

	t.Run("home fallbacks", func(t *testing.T) {
		t.Setenv("ADROP_CONFIG_PATH", "")
		t.Setenv("ADROP_HOME", "")
		t.Setenv("HOME", "/home/tester")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults failed: %v", err)
		}
		if defaults["config_path"] != "/home/tester/.config/adrop.toml" {
			t.Errorf("unexpected config path: %q", defaults["config_path"])
		}
		if defaults["base_dir"] != "/home/tester/.local/share/adrop" {
			t.Errorf("unexpected base dir: %q", defaults["base_dir"])
		}
	})
}
