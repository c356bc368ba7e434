package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cdlconvert/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	inputDir   string
	outputDir  string
	logDir     string
	historyDB  string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	t.Setenv("CDLCONVERT_OUTPUT_DIR", "")

	env := &cliTestEnv{
		baseDir:    base,
		inputDir:   filepath.Join(base, "in"),
		outputDir:  filepath.Join(base, "out"),
		logDir:     filepath.Join(base, "logs"),
		historyDB:  filepath.Join(base, "history.db"),
		configPath: filepath.Join(homeDir, ".config", "cdlconvert", "config.toml"),
	}
	writeTestConfig(t, env, "")
	return env
}

// writeTestConfig writes the environment's config file; extra is appended
// inside the [convert] section.
func writeTestConfig(t *testing.T, env *cliTestEnv, extra string) {
	t.Helper()

	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q

[convert]
%s

[history]
path = %q

[logging]
level = "error"
`, env.outputDir, env.logDir, extra, env.historyDB)
	testsupport.WriteFixture(t, filepath.Dir(env.configPath), filepath.Base(env.configPath), content)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
