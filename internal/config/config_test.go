package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return filepath.Join(dir, ".config", "scpedit", "config.toml")
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultPath(t *testing.T) {
	want := setupTestConfig(t)
	if got := DefaultPath(); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestLoadNonExistent(t *testing.T) {
	setupTestConfig(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QuitTimes != DefaultQuitTimes {
		t.Errorf("QuitTimes = %d, want %d", cfg.QuitTimes, DefaultQuitTimes)
	}
	if cfg.MessageTimeout() != 5*time.Second {
		t.Errorf("MessageTimeout() = %v, want 5s", cfg.MessageTimeout())
	}
	if cfg.Syntax != "number" {
		t.Errorf("Syntax = %q, want %q", cfg.Syntax, "number")
	}
	if !cfg.Welcome {
		t.Error("Welcome should default to true")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	p := setupTestConfig(t)
	writeConfig(t, p, "quit_times = 1\n\n[ssh]\nuser = \"deploy\"\n")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.QuitTimes != 1 {
		t.Errorf("QuitTimes = %d, want 1", cfg.QuitTimes)
	}
	if cfg.SSH.User != "deploy" {
		t.Errorf("SSH.User = %q, want %q", cfg.SSH.User, "deploy")
	}
	if !cfg.Welcome || cfg.MessageTimeoutSeconds != DefaultMessageTimeout {
		t.Errorf("unset keys lost their defaults: %+v", cfg)
	}
}

func TestLoadNormalizesBadValues(t *testing.T) {
	p := setupTestConfig(t)
	writeConfig(t, p, "quit_times = -2\nmessage_timeout_seconds = 0\nsyntax = \"\"\n")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.QuitTimes != DefaultQuitTimes {
		t.Errorf("QuitTimes = %d, want %d", cfg.QuitTimes, DefaultQuitTimes)
	}
	if cfg.MessageTimeoutSeconds != DefaultMessageTimeout {
		t.Errorf("MessageTimeoutSeconds = %d, want %d", cfg.MessageTimeoutSeconds, DefaultMessageTimeout)
	}
	if cfg.Syntax != DefaultSyntax {
		t.Errorf("Syntax = %q, want %q", cfg.Syntax, DefaultSyntax)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	p := setupTestConfig(t)
	writeConfig(t, p, "quit_times = [unterminated")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not return error for invalid TOML, got %v", err)
	}
	if cfg.QuitTimes != DefaultQuitTimes {
		t.Errorf("expected defaults for invalid TOML, got %+v", cfg)
	}
}

func TestLoadFromDirectoryFails(t *testing.T) {
	if _, err := LoadFrom(t.TempDir()); err == nil {
		t.Error("expected error reading a directory")
	}
}

func TestSaveAndLoad(t *testing.T) {
	setupTestConfig(t)

	cfg := Default()
	cfg.QuitTimes = 0
	cfg.SSH.InsecureIgnoreHostKey = true
	cfg.AddRecent("notes.txt")
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.QuitTimes != 0 {
		t.Errorf("QuitTimes = %d, want 0", loaded.QuitTimes)
	}
	if !loaded.SSH.InsecureIgnoreHostKey {
		t.Error("InsecureIgnoreHostKey lost in round trip")
	}
	if len(loaded.RecentFiles) != 1 || loaded.RecentFiles[0] != "notes.txt" {
		t.Errorf("RecentFiles = %v", loaded.RecentFiles)
	}
}

func TestSaveCreatesDirectoryAndPermissions(t *testing.T) {
	p := setupTestConfig(t)

	if err := Save(Default()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatalf("expected config file at %s: %v", p, err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file perm = %o, want 0600", perm)
	}
	dirInfo, err := os.Stat(filepath.Dir(p))
	if err != nil {
		t.Fatal(err)
	}
	if perm := dirInfo.Mode().Perm(); perm != 0700 {
		t.Errorf("config dir perm = %o, want 0700", perm)
	}
}

func TestSaveProducesValidTOML(t *testing.T) {
	p := setupTestConfig(t)

	cfg := Default()
	cfg.SSH.IdentityFile = "~/.ssh/id_ed25519"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved file is not valid TOML: %v", err)
	}
	if !strings.Contains(string(data), "identity_file") {
		t.Errorf("expected identity_file key, got:\n%s", data)
	}
	if strings.Contains(string(data), "known_hosts") {
		t.Errorf("empty known_hosts should be omitted, got:\n%s", data)
	}
}

func TestKnownHostsPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	if got, want := cfg.KnownHostsPath(), filepath.Join(home, ".ssh", "known_hosts"); got != want {
		t.Errorf("KnownHostsPath() = %q, want %q", got, want)
	}
	cfg.SSH.KnownHosts = "~/hosts"
	if got, want := cfg.KnownHostsPath(), filepath.Join(home, "hosts"); got != want {
		t.Errorf("KnownHostsPath() = %q, want %q", got, want)
	}
}

func TestAddRecentNew(t *testing.T) {
	cfg := &Config{}
	cfg.AddRecent("a.txt")
	if len(cfg.RecentFiles) != 1 || cfg.RecentFiles[0] != "a.txt" {
		t.Errorf("RecentFiles = %v, want [a.txt]", cfg.RecentFiles)
	}
}

func TestAddRecentIgnoresEmpty(t *testing.T) {
	cfg := &Config{}
	cfg.AddRecent("")
	if len(cfg.RecentFiles) != 0 {
		t.Errorf("RecentFiles = %v, want empty", cfg.RecentFiles)
	}
}

func TestAddRecentMovesToFront(t *testing.T) {
	cfg := &Config{RecentFiles: []string{"a", "b", "c"}}
	cfg.AddRecent("c")
	want := []string{"c", "a", "b"}
	if fmt.Sprint(cfg.RecentFiles) != fmt.Sprint(want) {
		t.Errorf("RecentFiles = %v, want %v", cfg.RecentFiles, want)
	}
}

func TestAddRecentMaxTen(t *testing.T) {
	cfg := &Config{}
	for i := 0; i < 12; i++ {
		cfg.AddRecent(fmt.Sprintf("f%d", i))
	}
	if len(cfg.RecentFiles) != 10 {
		t.Errorf("expected max 10 recent, got %d", len(cfg.RecentFiles))
	}
	if cfg.RecentFiles[0] != "f11" {
		t.Errorf("first = %q, want f11", cfg.RecentFiles[0])
	}
}

func TestInvalidTOMLSurvivesSave(t *testing.T) {
	p := setupTestConfig(t)
	body := "quit_times = [unterminated\n[ssh]\nuser = \"deploy\"\n"
	writeConfig(t, p, body)

	cfg, err := LoadFrom(p)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !cfg.ReadOnly() {
		t.Fatal("config loaded from a broken file should be read-only")
	}
	cfg.AddRecent("/tmp/a.txt")
	if err := SaveTo(cfg, p); !errors.Is(err, ErrReadOnly) {
		t.Errorf("SaveTo() error = %v, want ErrReadOnly", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != body {
		t.Errorf("config file was rewritten:\n%s", data)
	}

	if Default().ReadOnly() {
		t.Error("defaults should be writable")
	}
}
