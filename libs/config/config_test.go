package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPort(t *testing.T) {
	t.Setenv("TEST_PORT", "8085")
	if p, err := Port("TEST_PORT", "80"); err != nil || p != "8085" {
		t.Fatalf("expected 8085, got %q, %v", p, err)
	}
	t.Setenv("TEST_PORT", "70000")
	if _, err := Port("TEST_PORT", "80"); err == nil {
		t.Fatalf("expected error for out of range port")
	}
}

func TestTypedHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_LIST", " a, ,b ,c")

	if n, err := Int("TEST_INT", 1); err != nil || n != 42 {
		t.Fatalf("expected 42, got %d, %v", n, err)
	}
	if n, err := Int("TEST_INT_MISSING", 7); err != nil || n != 7 {
		t.Fatalf("expected fallback 7, got %d, %v", n, err)
	}
	if !Bool("TEST_BOOL", false) {
		t.Fatalf("expected true")
	}
	if d, err := Duration("TEST_DURATION", time.Second); err != nil || d != 90*time.Second {
		t.Fatalf("expected 90s, got %s, %v", d, err)
	}
	if got := List("TEST_LIST"); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("unexpected list %v", got)
	}

	t.Setenv("TEST_INT", "many")
	if _, err := Int("TEST_INT", 1); err == nil {
		t.Fatalf("expected error for non-numeric int")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DOTENV_ONLY=from-file\nDOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("DOTENV_ONLY") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := String("DOTENV_ONLY", ""); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := String("DOTENV_SET", ""); got != "from-env" {
		t.Fatalf("existing environment must win, got %q", got)
	}
}
