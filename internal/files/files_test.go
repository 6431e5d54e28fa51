package files

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.list"), "")
	writeFile(t, filepath.Join(root, "a.LIST"), "")
	writeFile(t, filepath.Join(root, "nested", "deep", "c.list"), "")
	writeFile(t, filepath.Join(root, "profile.ini"), "")
	writeFile(t, filepath.Join(root, "notes.txt"), "")
	writeFile(t, filepath.Join(root, ".git", "hidden.list"), "")

	got, err := Find(root, []string{".list"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	want := []string{
		filepath.Join(root, "a.LIST"),
		filepath.Join(root, "b.list"),
		filepath.Join(root, "nested", "deep", "c.list"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("Find() = %q, want %q", got, want)
	}

	got, err = Find(root, []string{".ini", ".txt"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Find() = %q, want 2 files", got)
	}
}

func TestFind_MissingRoot(t *testing.T) {
	if _, err := Find(filepath.Join(t.TempDir(), "nope"), []string{".list"}); err == nil {
		t.Fatal("Find() error = nil, want error")
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "trailing newline", in: "a\nb\n", want: []string{"a", "b"}},
		{name: "no trailing newline", in: "a\nb", want: []string{"a", "b"}},
		{name: "crlf", in: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "bom", in: "\xef\xbb\xbf# title\nx", want: []string{"# title", "x"}},
		{name: "blank lines kept", in: "a\n\n\nb", want: []string{"a", "", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitLines([]byte(tt.in)); !slices.Equal(got, tt.want) {
				t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteLines_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.list")
	writeFile(t, path, "old content that is longer than the new one\n")
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatal(err)
	}

	lines := []string{"# title", "", "DOMAIN,example.com"}
	if err := WriteLines(path, lines); err != nil {
		t.Fatalf("WriteLines() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# title\n\nDOMAIN,example.com\n" {
		t.Errorf("content = %q", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}
	if !slices.Equal(got, lines) {
		t.Errorf("ReadLines() = %q, want %q", got, lines)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the target file", len(entries))
	}
}
