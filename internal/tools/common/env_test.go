package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFilePreservesExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nCATALOG_TOOL_TEST_NEW=\"from-file\"\nCATALOG_TOOL_TEST_KEEP=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CATALOG_TOOL_TEST_KEEP", "from-env")
	t.Setenv("CATALOG_TOOL_TEST_NEW", "")
	os.Unsetenv("CATALOG_TOOL_TEST_NEW")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	if got := os.Getenv("CATALOG_TOOL_TEST_NEW"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("CATALOG_TOOL_TEST_KEEP"); got != "from-env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
}

func TestLoadEnvFileMissingIsIgnored(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing env file to be ignored, got %v", err)
	}
	if err := LoadEnvFile(""); err != nil {
		t.Fatalf("expected empty path to be ignored, got %v", err)
	}
}

func TestInstrumentPassesThroughResult(t *testing.T) {
	want := errors.New("boom")
	details, err := Instrument("seed", "apply", func(context.Context) ([]string, error) {
		return []string{"x"}, want
	})(context.Background())
	if !errors.Is(err, want) || len(details) != 1 {
		t.Fatalf("unexpected result details=%v err=%v", details, err)
	}
}
