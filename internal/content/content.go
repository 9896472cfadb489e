// Package content opens the static resources the viewer reads: the course catalog,
// transcript files and thumbnails. References are either absolute http(s) URLs or
// paths relative to a content root (a local directory or an object storage bucket).
package content

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
)

var ErrNotFound = errors.New("content not found")

// Source opens a reference for reading. Callers close the returned reader.
type Source interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Linker turns a reference into a URL a browser can load.
type Linker interface {
	Link(ctx context.Context, ref string) (string, error)
}

// IsURL reports whether ref is an absolute http or https URL.
func IsURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Router sends absolute URLs to Remote and everything else to Local.
type Router struct {
	Local  Source
	Remote Source
}

func (r Router) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if IsURL(ref) {
		if r.Remote == nil {
			return nil, ErrNotFound
		}
		return r.Remote.Open(ctx, ref)
	}
	if r.Local == nil {
		return nil, ErrNotFound
	}
	return r.Local.Open(ctx, ref)
}

func (r Router) Exists(ctx context.Context, ref string) bool {
	if IsURL(ref) {
		return Exists(ctx, r.Remote, ref)
	}
	return Exists(ctx, r.Local, ref)
}

// PathLinker links relative references under a URL prefix, e.g. "/content/".
// Absolute URLs are returned unchanged.
type PathLinker struct {
	Prefix string
}

func (l PathLinker) Link(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return "", ErrNotFound
	}
	if IsURL(ref) {
		return ref, nil
	}
	segments := strings.Split(CleanRef(ref), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimSuffix(l.Prefix, "/") + "/" + strings.Join(segments, "/"), nil
}

// CleanRef normalizes a relative reference: forward slashes, no leading "./" or "/".
func CleanRef(ref string) string {
	ref = strings.ReplaceAll(ref, "\\", "/")
	for {
		switch {
		case strings.HasPrefix(ref, "./"):
			ref = ref[2:]
		case strings.HasPrefix(ref, "/"):
			ref = ref[1:]
		default:
			return ref
		}
	}
}

// Checker is implemented by sources that can test for a reference without reading it.
type Checker interface {
	Exists(ctx context.Context, ref string) bool
}

// Exists reports whether src can open ref.
func Exists(ctx context.Context, src Source, ref string) bool {
	if src == nil || ref == "" {
		return false
	}
	if c, ok := src.(Checker); ok {
		return c.Exists(ctx, ref)
	}
	rc, err := src.Open(ctx, ref)
	if err != nil {
		return false
	}
	_ = rc.Close()
	return true
}
