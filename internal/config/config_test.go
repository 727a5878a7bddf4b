package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// isolate runs the test in an empty directory with no INVENTAR_ variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{EnvDB, EnvAddr, EnvAdmin, EnvLog, EnvBaseURL} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		DBPath:    "inventar.sqlite3",
		Addr:      ":8080",
		AdminUser: "admin",
		BaseURL:   "http://localhost:8080",
	}
	if *cfg != want {
		t.Errorf("got %+v, want %+v", *cfg, want)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDB, "env.sqlite3")
	t.Setenv(EnvAddr, "0.0.0.0:9000")

	cfg, err := Load([]string{"-d", "flag.sqlite3", "-base-url", "https://inv.example.com/"}, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "flag.sqlite3" {
		t.Errorf("expected flag db path, got %q", cfg.DBPath)
	}
	if cfg.Addr != "0.0.0.0:9000" {
		t.Errorf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.BaseURL != "https://inv.example.com" {
		t.Errorf("expected trimmed base url, got %q", cfg.BaseURL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	os.Unsetenv(EnvAdmin)
	os.Unsetenv(EnvAddr)
	content := "INVENTAR_ADMIN=root\nINVENTAR_ADDR=127.0.0.1:7000\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv(EnvAdmin)
		os.Unsetenv(EnvAddr)
	})

	cfg, err := Load(nil, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AdminUser != "root" {
		t.Errorf("expected admin from .env, got %q", cfg.AdminUser)
	}
	if cfg.BaseURL != "http://127.0.0.1:7000" {
		t.Errorf("expected base url derived from addr, got %q", cfg.BaseURL)
	}
}

func TestLoadRejectsBadArgs(t *testing.T) {
	isolate(t)

	if _, err := Load([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
	if _, err := Load([]string{"extra"}, io.Discard); err == nil {
		t.Error("expected error for positional argument")
	}
	if _, err := Load([]string{"-nope"}, io.Discard); err == nil {
		t.Error("expected error for unknown flag")
	}
	if _, err := Load([]string{"-db", ""}, io.Discard); err == nil {
		t.Error("expected error for empty database path")
	}
}
