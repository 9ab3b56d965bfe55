package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestXDGDirs(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name string
		env  string
		val  string
		fn   func() (string, error)
		want string
	}{
		{"cache default", "XDG_CACHE_HOME", "", cacheDir, filepath.Join(home, ".cache", appName)},
		{"cache xdg", "XDG_CACHE_HOME", "/tmp/custom-cache", cacheDir, filepath.Join("/tmp/custom-cache", appName)},
		{"data default", "XDG_DATA_HOME", "", dataDir, filepath.Join(home, ".local", "share", appName)},
		{"data xdg", "XDG_DATA_HOME", "/tmp/custom-data", dataDir, filepath.Join("/tmp/custom-data", appName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenCatalogDefaultPath(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)

	cat, err := openCatalog("")
	if err != nil {
		t.Fatalf("openCatalog: %v", err)
	}
	defer cat.Close()

	if _, err := os.Stat(filepath.Join(data, appName, catalogFile)); err != nil {
		t.Errorf("catalog not created under the data dir: %v", err)
	}
}
