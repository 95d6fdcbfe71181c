package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/contagion/internal/backup"
	"github.com/nvandessel/contagion/internal/graph"
)

func TestGraphBackupRestore(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	for name, g := range map[string]*graph.Graph{"ring": graph.Cycle(5), "line": graph.Path(4)} {
		file := writeGraphFile(t, tmpDir, name+".json", g)
		if _, err := execute(t, "graph", "import", name, file, "--root", tmpDir); err != nil {
			t.Fatalf("import %s: %v", name, err)
		}
	}

	archive := filepath.Join(tmpDir, "graphs.json.gz")
	out, err := execute(t, "graph", "backup", "-o", archive, "--json", "--root", tmpDir)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	var report struct {
		Path   string `json:"path"`
		Graphs int    `json:"graphs"`
	}
	decodeJSON(t, out, &report)
	if report.Graphs != 2 || report.Path != archive {
		t.Errorf("backup report = %+v", report)
	}

	if _, err := execute(t, "graph", "delete", "ring", "--root", tmpDir); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, err = execute(t, "graph", "restore", archive, "--root", tmpDir)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if want := "Restored 1 graph(s), skipped 1 existing"; !strings.Contains(out, want) {
		t.Errorf("restore output = %q, want %q", out, want)
	}

	out, err = execute(t, "graph", "list", "--root", tmpDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "ring") || !strings.Contains(out, "line") {
		t.Errorf("list after restore:\n%s", out)
	}
}

func TestGraphBackup_DefaultDirRotates(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	dir, err := backup.DefaultDir()
	if err != nil {
		t.Fatalf("DefaultDir: %v", err)
	}
	if !strings.HasPrefix(dir, filepath.Join(tmpDir, "home")) {
		t.Fatalf("DefaultDir %s is outside the test home", dir)
	}
	for _, stamp := range []string{"20200101-000000", "20200102-000000"} {
		old := filepath.Join(dir, "contagion-backup-"+stamp+".json.gz")
		if err := backup.Write(old, &backup.Archive{}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	if _, err := execute(t, "graph", "backup", "--keep", "2", "--root", tmpDir); err != nil {
		t.Fatalf("backup: %v", err)
	}
	list, err := backup.List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("kept %d archives, want 2", len(list))
	}
	if strings.Contains(list[1].Path, "20200101") {
		t.Errorf("oldest archive survived rotation: %v", list)
	}
}

func TestGraphRestore_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	corrupt := filepath.Join(tmpDir, "bad.json.gz")
	if err := backup.Write(corrupt, &backup.Archive{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(corrupt)
	os.WriteFile(corrupt, append(data, 0x00), 0600)

	if _, err := execute(t, "graph", "restore", corrupt, "--root", tmpDir); !errors.Is(err, backup.ErrChecksumMismatch) {
		t.Errorf("corrupt archive error = %v, want ErrChecksumMismatch", err)
	}
	if _, err := execute(t, "graph", "restore", corrupt, "--mode", "append", "--root", tmpDir); err == nil {
		t.Error("unknown mode should fail")
	}

	project := filepath.Join(tmpDir, "project")
	if err := os.MkdirAll(project, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if _, err := execute(t, "graph", "restore", corrupt, "--root", project); err == nil || !strings.Contains(err.Error(), "backup path rejected") {
		t.Errorf("restore outside allowed dirs error = %v", err)
	}
	if _, err := execute(t, "graph", "backup", "-o", filepath.Join(tmpDir, "out.json.gz"), "--root", project); err == nil || !strings.Contains(err.Error(), "backup path rejected") {
		t.Errorf("backup outside allowed dirs error = %v", err)
	}
}
