package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eykd/tanmark-go/internal/config"
)

// TestMain points the user config at a file that does not exist so tests
// never pick up the developer's own settings.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "tmk-cmd-*")
	if err != nil {
		panic(err)
	}
	config.UserConfigPath = func() string { return filepath.Join(dir, "missing.yml") }
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}
