package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Dir serves references from a directory on disk.
type Dir struct {
	root string
}

func NewDir(root string) *Dir {
	return &Dir{root: root}
}

func (d *Dir) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	path, err := d.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", ref, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", ref, err)
	}
	return f, nil
}

// Handler serves the directory read-only. Mount it with http.StripPrefix.
func (d *Dir) Handler() http.Handler {
	files := http.FileServer(http.Dir(d.root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, err := d.resolve(r.URL.Path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if fi, err := os.Stat(path); err != nil || fi.IsDir() {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func (d *Dir) resolve(ref string) (string, error) {
	ref = CleanRef(ref)
	if ref == "" {
		return "", ErrNotFound
	}
	// Hidden files and dot segments (".env", ".git/", "..") are never served.
	for _, seg := range strings.Split(ref, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", fmt.Errorf("open %s: %w", ref, fs.ErrPermission)
		}
	}
	path := filepath.Join(d.root, filepath.FromSlash(ref))
	if !isSubpath(d.root, path) {
		return "", fmt.Errorf("open %s: %w", ref, fs.ErrPermission)
	}
	return path, nil
}

func isSubpath(root, child string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absChild, err := filepath.Abs(child)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absChild)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (d *Dir) Exists(_ context.Context, ref string) bool {
	path, err := d.resolve(ref)
	if err != nil {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
