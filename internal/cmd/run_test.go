package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// resetConfigState restores the package's viper state after a test
// that executed the root command with a config file.
func resetConfigState(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		viper.Reset()
		cfgFile = ""
		_ = viper.BindPFlag("directory", runCmd.Flags().Lookup("directory"))
		_ = viper.BindPFlag("output-prefix", runCmd.Flags().Lookup("output-prefix"))
		_ = viper.BindPFlag("rules", runCmd.Flags().Lookup("rules"))
	})
}

func TestConfigFileSuppliesRunSettings(t *testing.T) {
	resetConfigState(t)

	dir := t.TempDir()
	logsDir := filepath.Join(dir, "traces")
	if err := os.Mkdir(logsDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(logsDir, "a.log"), []byte("value match\n"), 0644); err != nil {
		t.Fatal(err)
	}

	prefix := filepath.Join(dir, "results")
	rules := filepath.Join(dir, "rules.json")
	cfgPath := filepath.Join(dir, "canlens.yaml")
	cfg := fmt.Sprintf("directory: %s\noutput-prefix: %s\nrules: %s\n", logsDir, prefix, rules)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"run", "--config", cfgPath, "--preview", "0"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}

	// The run must have read every setting from the config file: logs
	// from its directory, artifacts at its prefix, rules at its path.
	for _, p := range []string{prefix + ".txt", prefix + ".html", rules} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s from config-file settings: %v", p, err)
		}
	}
}

func TestFlagOverridesConfigFile(t *testing.T) {
	resetConfigState(t)

	dir := t.TempDir()
	logsDir := filepath.Join(dir, "traces")
	if err := os.Mkdir(logsDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(logsDir, "a.log"), []byte("line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfgPrefix := filepath.Join(dir, "from-config")
	flagPrefix := filepath.Join(dir, "from-flag")
	rules := filepath.Join(dir, "rules.json")
	cfgPath := filepath.Join(dir, "canlens.yaml")
	cfg := fmt.Sprintf("directory: %s\noutput-prefix: %s\nrules: %s\n", logsDir, cfgPrefix, rules)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"run", "--config", cfgPath, "-o", flagPrefix, "--preview", "0"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(flagPrefix + ".txt"); err != nil {
		t.Errorf("expected artifact at flag prefix: %v", err)
	}
	if _, err := os.Stat(cfgPrefix + ".txt"); !os.IsNotExist(err) {
		t.Errorf("artifact written at config prefix despite explicit flag, stat err: %v", err)
	}
}
