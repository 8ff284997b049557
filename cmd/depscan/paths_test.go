package main

import (
	"path/filepath"
	"testing"
)

func TestCacheDirFromConfig_Default(t *testing.T) {
	t.Setenv("DEPSCAN_DATA_DIR", "")

	root, err := cacheDirFromConfig(&Config{ProjectID: "demo"}, "/repo")
	if err != nil {
		t.Fatalf("cacheDirFromConfig() error = %v", err)
	}

	want := filepath.Join("/repo", ".depscan", "cache")
	if root != want {
		t.Fatalf("cacheDirFromConfig() = %q, want %q", root, want)
	}
}

func TestCacheDirFromConfig_EnvOverride(t *testing.T) {
	t.Setenv("DEPSCAN_DATA_DIR", "/tmp/custom-depscan")

	root, err := cacheDirFromConfig(&Config{ProjectID: "demo"}, "/repo")
	if err != nil {
		t.Fatalf("cacheDirFromConfig() error = %v", err)
	}
	if root != "/tmp/custom-depscan" {
		t.Fatalf("cacheDirFromConfig() = %q, want %q", root, "/tmp/custom-depscan")
	}
}

func TestCacheDirFromConfig_RelativeCacheDir(t *testing.T) {
	t.Setenv("DEPSCAN_DATA_DIR", "")

	repo := t.TempDir()
	cfg := &Config{
		ProjectID: "demo",
		Analysis: AnalysisConfig{
			CacheDir: "./.depscan/custom-cache",
		},
	}

	root, err := cacheDirFromConfig(cfg, repo)
	if err != nil {
		t.Fatalf("cacheDirFromConfig() error = %v", err)
	}

	want := filepath.Join(repo, ".depscan", "custom-cache")
	if root != want {
		t.Fatalf("cacheDirFromConfig() = %q, want %q", root, want)
	}
}

func TestCacheDirFromConfig_AbsoluteCacheDir(t *testing.T) {
	t.Setenv("DEPSCAN_DATA_DIR", "")

	cfg := &Config{
		ProjectID: "demo",
		Analysis: AnalysisConfig{
			CacheDir: "/tmp/abs-cache",
		},
	}

	root, err := cacheDirFromConfig(cfg, "/repo")
	if err != nil {
		t.Fatalf("cacheDirFromConfig() error = %v", err)
	}
	if root != "/tmp/abs-cache" {
		t.Fatalf("cacheDirFromConfig() = %q, want %q", root, "/tmp/abs-cache")
	}
}
