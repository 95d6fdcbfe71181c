package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/store"
)

func seededStore(t *testing.T, graphs map[string]*graph.Graph) store.GraphStore {
	t.Helper()
	gs, err := store.NewSQLiteGraphStore(store.DefaultDBPath(t.TempDir()))
	if err != nil {
		t.Fatalf("NewSQLiteGraphStore: %v", err)
	}
	t.Cleanup(func() { gs.Close() })
	for name, g := range graphs {
		if err := gs.SaveGraph(context.Background(), name, g); err != nil {
			t.Fatalf("SaveGraph(%s): %v", name, err)
		}
	}
	return gs
}

func storedNames(t *testing.T, gs store.GraphStore) []string {
	t.Helper()
	infos, err := gs.ListGraphs(context.Background())
	if err != nil {
		t.Fatalf("ListGraphs: %v", err)
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}

func TestBackupRestore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	unordered, err := graph.FromNeighborLists(
		[]string{"n3", "n1", "n2", "n0"},
		[][]int{{3, 1}, {2, 0}, {1, 3}, {2, 0}},
	)
	if err != nil {
		t.Fatalf("FromNeighborLists: %v", err)
	}
	src := seededStore(t, map[string]*graph.Graph{"ring": graph.Cycle(5), "odd": unordered})

	path := filepath.Join(t.TempDir(), "out", "b.json.gz")
	archive, err := Backup(ctx, src, path)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if len(archive.Graphs) != 2 {
		t.Fatalf("archived %d graphs, want 2", len(archive.Graphs))
	}

	header, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if header.GraphCount != 2 || header.NodeCount != 9 {
		t.Errorf("header counts = %d graphs / %d nodes, want 2/9", header.GraphCount, header.NodeCount)
	}
	if err := Verify(path); err != nil {
		t.Errorf("Verify: %v", err)
	}

	dst := seededStore(t, nil)
	res, err := Restore(ctx, dst, path, RestoreMerge)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if d := cmp.Diff([]string{"odd", "ring"}, storedNames(t, dst)); d != "" {
		t.Errorf("stored graphs (-want +got):\n%s", d)
	}
	if len(res.Restored) != 2 || len(res.Skipped) != 0 {
		t.Errorf("result = %+v", res)
	}

	got, err := dst.LoadGraph(ctx, "odd")
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	for i := 0; i < unordered.Len(); i++ {
		if d := cmp.Diff(unordered.Neighbors(i), got.Neighbors(i)); d != "" {
			t.Errorf("neighbors of %s (-want +got):\n%s", unordered.ID(i), d)
		}
	}
}

func TestRestore_Modes(t *testing.T) {
	ctx := context.Background()
	src := seededStore(t, map[string]*graph.Graph{"a": graph.Path(3), "b": graph.Path(4)})
	path := filepath.Join(t.TempDir(), "b.json.gz")
	if _, err := Backup(ctx, src, path); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	t.Run("merge keeps existing", func(t *testing.T) {
		dst := seededStore(t, map[string]*graph.Graph{"a": graph.Complete(6), "c": graph.Path(2)})
		res, err := Restore(ctx, dst, path, RestoreMerge)
		if err != nil {
			t.Fatalf("Restore: %v", err)
		}
		want := &RestoreResult{Restored: []string{"b"}, Skipped: []string{"a"}}
		if d := cmp.Diff(want, res); d != "" {
			t.Errorf("result (-want +got):\n%s", d)
		}
		g, _ := dst.LoadGraph(ctx, "a")
		if g.Len() != 6 {
			t.Errorf("merge overwrote existing graph a (len %d)", g.Len())
		}
	})

	t.Run("replace clears the store", func(t *testing.T) {
		dst := seededStore(t, map[string]*graph.Graph{"a": graph.Complete(6), "c": graph.Path(2)})
		res, err := Restore(ctx, dst, path, RestoreReplace)
		if err != nil {
			t.Fatalf("Restore: %v", err)
		}
		want := &RestoreResult{Restored: []string{"a", "b"}, Deleted: []string{"a", "c"}}
		if d := cmp.Diff(want, res); d != "" {
			t.Errorf("result (-want +got):\n%s", d)
		}
		if d := cmp.Diff([]string{"a", "b"}, storedNames(t, dst)); d != "" {
			t.Errorf("stored graphs (-want +got):\n%s", d)
		}
	})
}

func TestRestore_CorruptArchive(t *testing.T) {
	ctx := context.Background()
	src := seededStore(t, map[string]*graph.Graph{"a": graph.Path(3)})
	path := filepath.Join(t.TempDir(), "b.json.gz")
	if _, err := Backup(ctx, src, path); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	data, _ := os.ReadFile(path)
	data[len(data)-1] ^= 0xff
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	dst := seededStore(t, map[string]*graph.Graph{"keep": graph.Path(2)})
	if _, err := Restore(ctx, dst, path, RestoreReplace); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("Restore error = %v, want ErrChecksumMismatch", err)
	}
	if d := cmp.Diff([]string{"keep"}, storedNames(t, dst)); d != "" {
		t.Errorf("failed restore touched the store (-want +got):\n%s", d)
	}
}

func TestRestore_InvalidArchivedGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.json.gz")
	bad := &Archive{Graphs: []ArchiveGraph{{Name: "bad", IDs: []string{"a", "b"}, Neighbors: [][]int{{1}, {}}}}}
	if err := Write(path, bad); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := Restore(context.Background(), seededStore(t, nil), path, RestoreMerge); !errors.Is(err, graph.ErrGraphIntegrity) {
		t.Errorf("Restore error = %v, want ErrGraphIntegrity", err)
	}
}

func TestReadHeader_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"empty":       "",
		"not json":    "hello\n",
		"old version": `{"version": 9}` + "\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			os.WriteFile(path, []byte(content), 0600)
			if _, err := ReadHeader(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestListAndRotate(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var paths []string
	for i := 0; i < 4; i++ {
		p := GeneratePath(dir, base.Add(time.Duration(i)*time.Hour))
		if err := Write(p, &Archive{CreatedAt: base}); err != nil {
			t.Fatalf("Write: %v", err)
		}
		paths = append(paths, p)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600)

	list, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 4 || list[0].Path != paths[3] {
		t.Fatalf("List = %+v, want 4 archives newest first", list)
	}

	deleted, err := Rotate(dir, 2)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if d := cmp.Diff([]string{paths[1], paths[0]}, deleted); d != "" {
		t.Errorf("deleted (-want +got):\n%s", d)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("Rotate removed a file it did not generate")
	}

	if list, _ := List(filepath.Join(dir, "missing")); list != nil {
		t.Errorf("List(missing) = %v, want nil", list)
	}
}

func TestParseRestoreMode(t *testing.T) {
	for in, want := range map[string]RestoreMode{"": RestoreMerge, "merge": RestoreMerge, "replace": RestoreReplace} {
		got, err := ParseRestoreMode(in)
		if err != nil || got != want {
			t.Errorf("ParseRestoreMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseRestoreMode("append"); err == nil {
		t.Error("ParseRestoreMode(append) should fail")
	}
}
