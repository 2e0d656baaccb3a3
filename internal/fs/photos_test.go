package fs

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestIsImage(t *testing.T) {
	for path, want := range map[string]bool{
		"a.jpg":    true,
		"b.JPEG":   true,
		"c.png":    true,
		"c.txt":    false,
		"noext":    false,
		"d.tar.gz": false,
	} {
		if got := IsImage(path); got != want {
			t.Errorf("IsImage(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestCrawler_FindPhotos(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.jpg":        "a",
		"b.jpeg":       "b",
		"c.txt":        "c",
		"sub/d.png":    "d",
		"thumbs/e.jpg": "e",
		"sub/f.xmp":    "f",
		IgnoreFileName: "thumbs\n",
	})

	rel := func(paths []string) []string {
		out := make([]string, len(paths))
		for i, p := range paths {
			r, _ := filepath.Rel(root, p)
			out[i] = filepath.ToSlash(r)
		}
		return out
	}

	t.Run("recursive", func(t *testing.T) {
		photos, err := NewCrawler(nil).FindPhotos(root, true)
		if err != nil {
			t.Fatalf("FindPhotos() error = %v", err)
		}
		if got, want := rel(photos), []string{"a.jpg", "b.jpeg", "sub/d.png"}; !slices.Equal(got, want) {
			t.Errorf("FindPhotos() = %v, want %v", got, want)
		}
	})

	t.Run("flat", func(t *testing.T) {
		photos, err := NewCrawler(nil).FindPhotos(root, false)
		if err != nil {
			t.Fatalf("FindPhotos() error = %v", err)
		}
		if got, want := rel(photos), []string{"a.jpg", "b.jpeg"}; !slices.Equal(got, want) {
			t.Errorf("FindPhotos() = %v, want %v", got, want)
		}
	})

	t.Run("extra patterns", func(t *testing.T) {
		photos, err := NewCrawler([]string{"sub"}).FindPhotos(root, true)
		if err != nil {
			t.Fatalf("FindPhotos() error = %v", err)
		}
		if got, want := rel(photos), []string{"a.jpg", "b.jpeg"}; !slices.Equal(got, want) {
			t.Errorf("FindPhotos() = %v, want %v", got, want)
		}
	})

	t.Run("single file", func(t *testing.T) {
		photos, err := NewCrawler(nil).FindPhotos(filepath.Join(root, "a.jpg"), true)
		if err != nil {
			t.Fatalf("FindPhotos() error = %v", err)
		}
		if len(photos) != 1 {
			t.Errorf("FindPhotos() = %v, want one photo", photos)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := NewCrawler(nil).FindPhotos(filepath.Join(root, "nope"), true); err == nil {
			t.Error("FindPhotos() expected error")
		}
	})
}

func TestChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	sum, err := Checksum(path)
	if err != nil {
		t.Fatalf("Checksum() error = %v", err)
	}
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if sum != want {
		t.Errorf("Checksum() = %s, want %s", sum, want)
	}
}
