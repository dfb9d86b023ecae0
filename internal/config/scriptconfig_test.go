package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScriptYAML(t *testing.T, dir, name string, texts []string) {
	t.Helper()
	content := "texts:\n"
	for _, txt := range texts {
		content += "  - " + txt + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadScriptConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs", "screening"), 0o750))
	writeScriptYAML(t, filepath.Join(dir, "configs", "screening"), "greeting.yaml", []string{"Hi there."})
	writeScriptYAML(t, filepath.Join(dir, "configs", "screening"), "questions.yaml", []string{"Question one?", "Question two?"})
	writeScriptYAML(t, filepath.Join(dir, "configs", "screening"), "closing.yaml", []string{"Goodbye."})

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadScriptConfig()
	require.NoError(t, err)
	require.Equal(t, "Hi there.", cfg.Greeting)
	require.Equal(t, []string{"Question one?", "Question two?"}, cfg.Questions)
	require.Equal(t, "Goodbye.", cfg.Closing)
}

func TestLoadScriptConfig_MissingFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = LoadScriptConfig()
	require.Error(t, err)
}

func TestGetScriptConfig_FallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg := GetScriptConfig()
	require.NotEmpty(t, cfg.Greeting)
	require.Len(t, cfg.Questions, 3)
	require.NotEmpty(t, cfg.Closing)
}

func TestDefaultScriptConfig_CoversRequiredTopics(t *testing.T) {
	cfg := DefaultScriptConfig()
	joined := ""
	for _, q := range cfg.Questions {
		joined += q + " "
	}
	require.Contains(t, joined, "notice period")
	require.Contains(t, joined, "compensation")
}
