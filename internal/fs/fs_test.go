package fs

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("id\n1\n"), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestOSTree_ReadFolder(t *testing.T) {
	tests := []struct {
		name        string
		setupFunc   func(t *testing.T, root string)
		wantExists  bool
		wantEntries int
		wantFiles   []string
	}{
		{
			name:       "missing folder",
			setupFunc:  func(_ *testing.T, _ string) {},
			wantExists: false,
		},
		{
			name: "path is a file",
			setupFunc: func(t *testing.T, root string) {
				mustWrite(t, filepath.Join(root, "data"))
			},
			wantExists: false,
		},
		{
			name: "empty folder",
			setupFunc: func(t *testing.T, root string) {
				if err := os.Mkdir(filepath.Join(root, "data"), 0o755); err != nil {
					t.Fatalf("mkdir: %v", err)
				}
			},
			wantExists:  true,
			wantEntries: 0,
		},
		{
			name: "files and subdirectory",
			setupFunc: func(t *testing.T, root string) {
				mustWrite(t, filepath.Join(root, "data", "b.csv"))
				mustWrite(t, filepath.Join(root, "data", "a.csv"))
				mustWrite(t, filepath.Join(root, "data", "nested", "c.csv"))
			},
			wantExists:  true,
			wantEntries: 3,
			wantFiles:   []string{"a.csv", "b.csv"},
		},
		{
			name: "only a subdirectory",
			setupFunc: func(t *testing.T, root string) {
				if err := os.MkdirAll(filepath.Join(root, "data", "nested"), 0o755); err != nil {
					t.Fatalf("mkdir: %v", err)
				}
			},
			wantExists:  true,
			wantEntries: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setupFunc(t, root)

			got, err := OSTree{}.ReadFolder(context.Background(), filepath.Join(root, "data"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Exists != tt.wantExists {
				t.Errorf("Exists = %v, want %v", got.Exists, tt.wantExists)
			}
			if got.Entries != tt.wantEntries {
				t.Errorf("Entries = %d, want %d", got.Entries, tt.wantEntries)
			}
			if !reflect.DeepEqual(got.Files, tt.wantFiles) {
				t.Errorf("Files = %v, want %v", got.Files, tt.wantFiles)
			}
		})
	}
}

func TestOSTree_ReadFolder_FollowsFileSymlinks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target.csv")
	mustWrite(t, target)
	dir := filepath.Join(root, "data")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(dir, "link.csv")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := OSTree{}.ReadFolder(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.Files, []string{"link.csv"}) {
		t.Errorf("Files = %v, want [link.csv]", got.Files)
	}
}

func TestOSTree_FileExists(t *testing.T) {
	root := t.TempDir()
	present := filepath.Join(root, "x.csv")
	mustWrite(t, present)

	tests := []struct {
		path string
		want bool
	}{
		{present, true},
		{filepath.Join(root, "y.csv"), false},
	}

	for _, tt := range tests {
		got, err := OSTree{}.FileExists(context.Background(), tt.path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDirExists(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f")
	mustWrite(t, file)

	if !DirExists(root) {
		t.Error("DirExists(root) = false, want true")
	}
	if DirExists(file) {
		t.Error("DirExists(file) = true, want false")
	}
	if DirExists(filepath.Join(root, "nope")) {
		t.Error("DirExists(missing) = true, want false")
	}
}
