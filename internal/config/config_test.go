package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDataDirWithExplicitEnv(t *testing.T) {
	tmpDir := t.TempDir()
	customDir := filepath.Join(tmpDir, "custom")

	t.Setenv("TERMVAULT_DIR", customDir)
	t.Setenv("XDG_DATA_HOME", "")

	got := GetDataDir()
	if got != customDir {
		t.Fatalf("expected %q, got %q", customDir, got)
	}
}

func TestGetDataDirFallsBackToXDG(t *testing.T) {
	tmpDir := t.TempDir()
	xdgDir := filepath.Join(tmpDir, "xdg")

	t.Setenv("TERMVAULT_DIR", "")
	t.Setenv("XDG_DATA_HOME", xdgDir)

	got := GetDataDir()
	want := filepath.Join(xdgDir, "termvault")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestGetDbAndSettingsPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TERMVAULT_DIR", tmpDir)

	if got, want := GetDbPath(), filepath.Join(tmpDir, "index.db"); got != want {
		t.Fatalf("GetDbPath expected %q, got %q", want, got)
	}

	if got, want := GetSettingsPath(), filepath.Join(tmpDir, "config.yaml"); got != want {
		t.Fatalf("GetSettingsPath expected %q, got %q", want, got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DEFAULT_LOCALE", "")

	got, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != Default() {
		t.Fatalf("expected defaults %+v, got %+v", Default(), got)
	}
}

func TestLoadReadsFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "default_locale: fr\nlog_level: debug\nbusy_timeout_ms: 250\nactor: admin\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	t.Setenv("DEFAULT_LOCALE", "")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.DefaultLocale != "fr" || got.LogLevel != "debug" || got.BusyTimeoutMs != 250 || got.Actor != "admin" {
		t.Fatalf("unexpected settings %+v", got)
	}

	t.Setenv("DEFAULT_LOCALE", "es")
	got, err = Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.DefaultLocale != "es" {
		t.Fatalf("expected DEFAULT_LOCALE override, got %q", got.DefaultLocale)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("default_locale: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
