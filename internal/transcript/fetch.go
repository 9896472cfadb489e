package transcript

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lightgray/lightgray/internal/content"
)

const (
	DefaultTimeout  = 10 * time.Second
	maxResourceSize = 8 << 20
)

// Fetcher loads transcript resources through a content source.
type Fetcher struct {
	src     content.Source
	timeout time.Duration
}

func NewFetcher(src content.Source, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{src: src, timeout: timeout}
}

// Fetch degrades every failure to an empty transcript. The failure is logged, never
// returned: a missing transcript must not break the page that shows it.
func (f *Fetcher) Fetch(ctx context.Context, ref string) []Segment {
	if ref == "" {
		return nil
	}
	segments, err := f.FetchStrict(ctx, ref)
	if err != nil {
		slog.Warn("transcript: fetch failed, showing no transcript", "ref", ref, "error", err)
		return nil
	}
	return segments
}

// FetchStrict is Fetch with the error reported to the caller.
func (f *Fetcher) FetchStrict(ctx context.Context, ref string) ([]Segment, error) {
	if f.src == nil {
		return nil, content.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	rc, err := f.src.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxResourceSize+1))
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	if len(data) > maxResourceSize {
		return nil, fmt.Errorf("transcript exceeds %d bytes", maxResourceSize)
	}
	return Parse(data)
}
