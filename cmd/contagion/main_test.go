package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/contagion/internal/graph"
)

// isolateHome sets HOME to a temp directory to avoid touching real ~/.contagion/
// and clears CONTAGION_* overrides. MUST be called for any test that loads config.
func isolateHome(t *testing.T, tmpDir string) {
	t.Helper()
	tmpHome := filepath.Join(tmpDir, "home")
	if err := os.MkdirAll(tmpHome, 0700); err != nil {
		t.Fatalf("Failed to create temp home: %v", err)
	}
	t.Setenv("HOME", tmpHome)
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "CONTAGION_") {
			t.Setenv(name, "")
		}
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCmd()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// writeGraphFile writes g as an adjacency JSON file and returns its path.
func writeGraphFile(t *testing.T, dir, name string, g *graph.Graph) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create graph file: %v", err)
	}
	defer f.Close()
	if err := graph.WriteJSON(f, g); err != nil {
		t.Fatalf("write graph file: %v", err)
	}
	return path
}

func decodeJSON(t *testing.T, data string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(data), v); err != nil {
		t.Fatalf("decode output: %v\n%s", err, data)
	}
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	rootCmd := newRootCmd()
	want := map[string]bool{"version": false, "run": false, "graph": false, "models": false, "config": false, "mcp-server": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var got map[string]string
	decodeJSON(t, out, &got)
	if got["version"] != version {
		t.Errorf("version = %q, want %q", got["version"], version)
	}

	out, err = execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "contagion version ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestModelsCmd(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	out, err := execute(t, "models", "--json", "--root", tmpDir)
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	var got []struct {
		Name       string `json:"name"`
		Default    bool   `json:"default"`
		Stochastic bool   `json:"stochastic"`
	}
	decodeJSON(t, out, &got)
	if len(got) != 5 {
		t.Fatalf("got %d models, want 5", len(got))
	}
	for _, m := range got {
		if m.Default != (m.Name == "majority_colored") {
			t.Errorf("%s default = %v", m.Name, m.Default)
		}
		if m.Stochastic != (m.Name == "random_p" || m.Name == "weighted_random") {
			t.Errorf("%s stochastic = %v", m.Name, m.Stochastic)
		}
	}
}

func TestLogLevelFlagValidated(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	if _, err := execute(t, "models", "--root", tmpDir, "--log-level", "loud"); err == nil {
		t.Error("expected error for invalid --log-level")
	}
}

func TestMCPServerCmd_BadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	cfgDir := filepath.Join(tmpDir, ".contagion")
	os.MkdirAll(cfgDir, 0700)
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("storage:\n  backend: postgres\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := execute(t, "mcp-server", "--root", tmpDir); err == nil {
		t.Error("mcp-server should fail to start with an unknown storage backend")
	}
}
