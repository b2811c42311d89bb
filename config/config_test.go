package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Cache.PersistPath != "" {
		t.Errorf("persist path = %q, want empty", c.Cache.PersistPath)
	}
	if c.Log.Verbosity != 0 {
		t.Errorf("verbosity = %d, want 0", c.Log.Verbosity)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codestep.toml")
	contents := `
[cache]
persist-path = "artifacts.db"

[log]
verbosity = 2
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Log.Verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", c.Log.Verbosity)
	}
	if !filepath.IsAbs(c.Cache.PersistPath) {
		t.Errorf("persist path %q not absolute", c.Cache.PersistPath)
	}
	if filepath.Base(c.Cache.PersistPath) != "artifacts.db" {
		t.Errorf("persist path = %q", c.Cache.PersistPath)
	}
}

func TestLoadBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codestep.toml")
	if err := os.WriteFile(path, []byte("cache = [not toml"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load succeeded on malformed file")
	}
}
