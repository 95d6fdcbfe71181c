package teams

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/spreading"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"unix lines", "1\n2\n3\n", []string{"1", "2", "3"}},
		{"windows lines", "1\r\n2\r\n", []string{"1", "2"}},
		{"blank lines skipped", "\n\n4\n  \n5", []string{"4", "5"}},
		{"duplicates kept once", "7\n8\n7\n", []string{"7", "8"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseSelection: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("nodes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTeamNameFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/tmp/red.txt", "red", false},
		{"teams/blue", "blue", false},
		{"a/team one.txt", "teamone", false},
		{"a/!!!.txt", "", true},
	}
	for _, tt := range tests {
		got, err := TeamNameFromPath(tt.path)
		if tt.wantErr {
			if !errors.Is(err, ErrEmptyTeamName) {
				t.Errorf("TeamNameFromPath(%q) err = %v, want ErrEmptyTeamName", tt.path, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("TeamNameFromPath(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	red := filepath.Join(dir, "red.txt")
	blue := filepath.Join(dir, "blue.txt")
	writeFile(t, red, "0\n1\n")
	writeFile(t, blue, "4\r\n")

	seeds, err := LoadFiles([]string{red, blue})
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	want := spreading.SeedSet{"red": {"0", "1"}, "blue": {"4"}}
	if diff := cmp.Diff(want, seeds); diff != "" {
		t.Errorf("seeds mismatch (-want +got):\n%s", diff)
	}

	dup := filepath.Join(dir, "other", "red.txt")
	writeFile(t, dup, "2\n")
	if _, err := LoadFiles([]string{red, dup}); !errors.Is(err, ErrDuplicateTeam) {
		t.Errorf("LoadFiles duplicate err = %v, want ErrDuplicateTeam", err)
	}

	if _, err := LoadFiles([]string{filepath.Join(dir, "missing.txt")}); err == nil {
		t.Error("LoadFiles missing file: expected error")
	}
}

func TestLatestSubmission(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2.10.1-1700000000"), "1\n")
	writeFile(t, filepath.Join(dir, "2.10.1-1700000500"), "2\n")
	writeFile(t, filepath.Join(dir, "2.10.10-1800000000"), "3\n")
	writeFile(t, filepath.Join(dir, "other-1900000000"), "4\n")
	if err := os.MkdirAll(filepath.Join(dir, "2.10.1-9999999999"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := LatestSubmission(dir, "2.10.1")
	if err != nil {
		t.Fatalf("LatestSubmission: %v", err)
	}
	if want := filepath.Join(dir, "2.10.1-1700000500"); got != want {
		t.Errorf("LatestSubmission = %q, want %q", got, want)
	}

	if _, err := LatestSubmission(dir, "8.35.1"); !errors.Is(err, ErrNoSubmission) {
		t.Errorf("missing graph err = %v, want ErrNoSubmission", err)
	}
}

func TestLoadTeamsDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "red", "g-1"), "0\n")
	writeFile(t, filepath.Join(root, "red", "g-2"), "1\n")
	writeFile(t, filepath.Join(root, "blue", "g-5"), "3\n4\n")
	if err := os.MkdirAll(filepath.Join(root, "green"), 0o755); err != nil {
		t.Fatal(err)
	}

	seeds, err := LoadTeamsDir(root, "g", []string{"red", "blue", "green"})
	if err != nil {
		t.Fatalf("LoadTeamsDir: %v", err)
	}
	want := spreading.SeedSet{"red": {"1"}, "blue": {"3", "4"}, "green": nil}
	if diff := cmp.Diff(want, seeds); diff != "" {
		t.Errorf("seeds mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadTeamsDir(root, "g", []string{"absent"}); err == nil {
		t.Error("missing team directory: expected error")
	}
	if _, err := LoadTeamsDir(root, "g", []string{"red", "red"}); !errors.Is(err, ErrDuplicateTeam) {
		t.Errorf("duplicate err = %v, want ErrDuplicateTeam", err)
	}
}

func TestSanitize(t *testing.T) {
	g := graph.Path(5)
	in := spreading.SeedSet{
		"red":   {"0", "1"},
		"blue":  {"4", "99", "x"},
		"green": nil,
	}

	got, rejected := Sanitize(g, in)

	want := spreading.SeedSet{"red": {"0", "1"}, "blue": nil, "green": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sanitized seeds mismatch (-want +got):\n%s", diff)
	}
	wantRej := []Rejection{{Team: "blue", Unknown: []string{"99", "x"}}}
	if diff := cmp.Diff(wantRej, rejected); diff != "" {
		t.Errorf("rejections mismatch (-want +got):\n%s", diff)
	}
	if err := spreading.ValidateSeeds(g, got); err != nil {
		t.Errorf("sanitized seeds should validate: %v", err)
	}

	got["red"][0] = "mutated"
	if in["red"][0] != "0" {
		t.Error("Sanitize must not alias the input slices")
	}
}
