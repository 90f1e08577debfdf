package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isCSS(name string) bool {
	return strings.HasSuffix(name, ".css")
}

func matchAll(string) bool { return true }

// createZip writes archive with given entries, names ending with "/" become
// directory entries.
func createZip(t *testing.T, entries [][2]string) string {
	t.Helper()

	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for _, e := range entries {
		if strings.HasSuffix(e[0], "/") {
			hdr := &zip.FileHeader{Name: e[0]}
			hdr.SetMode(os.ModeDir | 0755)
			if _, err := w.CreateHeader(hdr); err != nil {
				t.Fatalf("Failed to create directory %s: %v", e[0], err)
			}
			continue
		}
		fw, err := w.Create(e[0])
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e[0], err)
		}
		if _, err := fw.Write([]byte(e[1])); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e[0], err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finish zip: %v", err)
	}
	return zipPath
}

func TestWalk(t *testing.T) {
	zipPath := createZip(t, [][2]string{
		{"mimetype", "application/epub+zip"},
		{"OEBPS/", ""},
		{"OEBPS/style.css", "p { margin: 0; }"},
		{"OEBPS/fonts/fonts.css", "@font-face {}"},
		{"OEBPS/chapter1.xhtml", "<html/>"},
	})

	t.Run("matching entries with content", func(t *testing.T) {
		visited := make(map[string]string)
		err := Walk(context.Background(), zipPath, isCSS, func(name string, r io.Reader) error {
			data, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			visited[name] = string(data)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if len(visited) != 2 {
			t.Errorf("visited %d files, want 2: %v", len(visited), visited)
		}
		if visited["OEBPS/style.css"] != "p { margin: 0; }" {
			t.Errorf("content = %q", visited["OEBPS/style.css"])
		}
	})

	t.Run("directories skipped", func(t *testing.T) {
		var visited []string
		err := Walk(context.Background(), zipPath, matchAll, func(name string, _ io.Reader) error {
			visited = append(visited, name)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		for _, name := range visited {
			if strings.HasSuffix(name, "/") {
				t.Errorf("directory entry visited: %s", name)
			}
		}
		if len(visited) != 4 {
			t.Errorf("visited %d files, want 4", len(visited))
		}
	})

	t.Run("early termination", func(t *testing.T) {
		stopErr := errors.New("stop walking")
		var visited int
		err := Walk(context.Background(), zipPath, matchAll, func(string, io.Reader) error {
			visited++
			if visited == 2 {
				return stopErr
			}
			return nil
		})
		if !errors.Is(err, stopErr) {
			t.Errorf("Walk() error = %v, want %v", err, stopErr)
		}
		if visited != 2 {
			t.Errorf("visited %d files, want 2", visited)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Walk(ctx, zipPath, matchAll, func(string, io.Reader) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Walk() error = %v, want context.Canceled", err)
		}
	})
}

func TestWalk_InvalidArchive(t *testing.T) {
	t.Run("nonexistent file", func(t *testing.T) {
		err := Walk(context.Background(), filepath.Join(t.TempDir(), "missing.zip"), matchAll, func(string, io.Reader) error { return nil })
		if err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})

	t.Run("invalid zip file", func(t *testing.T) {
		invalidZip := filepath.Join(t.TempDir(), "invalid.zip")
		if err := os.WriteFile(invalidZip, []byte("not a zip file"), 0644); err != nil {
			t.Fatalf("Failed to create invalid zip: %v", err)
		}
		err := Walk(context.Background(), invalidZip, matchAll, func(string, io.Reader) error { return nil })
		if err == nil {
			t.Error("Expected error for invalid zip file")
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		zipPath := createZip(t, [][2]string{{"../evil.css", "p {}"}})
		err := Walk(context.Background(), zipPath, matchAll, func(string, io.Reader) error { return nil })
		if err == nil {
			t.Error("Expected error for unsafe entry")
		}
	})
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"style.css", true},
		{"OEBPS/css/style.css", true},
		{"a..b/style.css", true},
		{"/etc/style.css", false},
		{`\windows\style.css`, false},
		{"../style.css", false},
		{"OEBPS/../../style.css", false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
