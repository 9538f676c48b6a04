package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withUserConfig(t *testing.T, path string) {
	t.Helper()
	orig := UserConfigPath
	UserConfigPath = func() string { return path }
	t.Cleanup(func() { UserConfigPath = orig })
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.True(t, cfg.System.AutoSave)
	require.Equal(t, 5*time.Second, cfg.System.AutoSaveInterval)
	require.Equal(t, "assets", cfg.Assets.Dir)
}

func TestLoad_DefaultsWhenNoFiles(t *testing.T) {
	withUserConfig(t, filepath.Join(t.TempDir(), "missing.yml"))
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.Empty(t, cfg.Path)
}

func TestLoad_ProjectFileOverridesUserFile(t *testing.T) {
	userDir := t.TempDir()
	userPath := filepath.Join(userDir, "config.yml")
	require.NoError(t, os.WriteFile(userPath, []byte("theme:\n  current: dark\n"), 0o644))
	withUserConfig(t, userPath)

	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "dark", cfg.Theme.Current)
	require.Equal(t, userPath, cfg.Path)

	project := "editor:\n  fontSize: 18\nsystem:\n  autoSaveInterval: 2s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFile), []byte(project), 0o644))
	cfg, err = Load(dir)
	require.NoError(t, err)
	require.Equal(t, "light", cfg.Theme.Current)
	require.Equal(t, 18, cfg.Editor.FontSize)
	require.Equal(t, 1.6, cfg.Editor.LineHeight, "unset fields keep defaults")
	require.Equal(t, 2*time.Second, cfg.System.AutoSaveInterval)
	require.Equal(t, filepath.Join(dir, ProjectFile), cfg.Path)
}

func TestLoad_Errors(t *testing.T) {
	withUserConfig(t, filepath.Join(t.TempDir(), "missing.yml"))
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed", "editor: [", "failed to parse config"},
		{"zero font size", "editor:\n  fontSize: 0\n", "editor.fontSize"},
		{"negative line height", "editor:\n  lineHeight: -1\n", "editor.lineHeight"},
		{"zero interval", "system:\n  autoSaveInterval: 0s\n", "system.autoSaveInterval"},
		{"absolute assets", "assets:\n  dir: /tmp/img\n", "assets.dir"},
		{"unknown level", "log:\n  level: loud\n", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFile), []byte(tt.content), 0o644))
			_, err := Load(dir)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Editor.ShowLineNumbers = true
	data, err := cfg.Marshal()
	require.NoError(t, err)
	require.Contains(t, string(data), "autoSaveInterval: 5s")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFile), data, 0o644))
	got, err := Load(dir)
	require.NoError(t, err)
	got.Path = ""
	require.Equal(t, cfg, got)
}
