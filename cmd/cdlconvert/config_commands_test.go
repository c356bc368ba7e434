package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "[INFO] "+env.configPath)
	requireContains(t, out, "[OK] "+env.outputDir+" (will be created)")
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatalf("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateFailsOnUnwritableDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	blocker := filepath.Join(env.baseDir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	env.outputDir = filepath.Join(blocker, "out")
	writeTestConfig(t, env, "")

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err == nil {
		t.Fatalf("expected validate to fail when the output dir sits under a file")
	}
	requireContains(t, out, "[ERROR]")
}

func TestConfigShowAppliesFlagOverrides(t *testing.T) {
	env := setupCLITestEnv(t)
	writeTestConfig(t, env, `output_formats = ["cc", "cdl"]`)

	out, _, err := runCLI(t, []string{"--log-format", "JSON", "config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# "+env.configPath)
	requireContains(t, out, "'json'")
	requireContains(t, out, "'cdl'")
}

func TestInvalidConfigFails(t *testing.T) {
	env := setupCLITestEnv(t)
	writeTestConfig(t, env, `bogus_key = true`)

	if _, _, err := runCLI(t, []string{"config", "show"}, env.configPath); err == nil {
		t.Fatalf("expected unknown keys to be rejected")
	}
}
