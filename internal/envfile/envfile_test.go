package envfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFind_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("X=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := Find(nested); got != filepath.Join(root, ".env") {
		t.Fatalf("Find() = %q", got)
	}
}

func TestFind_SkipsDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".env"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := Find(root); got == filepath.Join(root, ".env") {
		t.Fatal("a directory named .env must not be returned")
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	content := "SLOPPLOT_ENVFILE_TEST=from-file\nSLOPPLOT_ENVFILE_PRESET=from-file\n"
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(root)
	t.Setenv("SLOPPLOT_ENVFILE_PRESET", "from-env")
	t.Setenv("SLOPPLOT_ENVFILE_TEST", "")
	os.Unsetenv("SLOPPLOT_ENVFILE_TEST")

	path, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != filepath.Join(root, ".env") {
		t.Fatalf("path = %q", path)
	}
	if got := os.Getenv("SLOPPLOT_ENVFILE_TEST"); got != "from-file" {
		t.Errorf("SLOPPLOT_ENVFILE_TEST = %q, want from-file", got)
	}
	if got := os.Getenv("SLOPPLOT_ENVFILE_PRESET"); got != "from-env" {
		t.Errorf("existing variables must win, got %q", got)
	}
}
