// Package catalog reads the static course catalog: a JSON object mapping course
// names to the videos of that course.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lightgray/lightgray/internal/content"
)

const DefaultPath = "playlists_data.json"

// Video is one entry of a course. URL identifies it within the course.
type Video struct {
	Title         string     `json:"video_title" validate:"required"`
	URL           string     `json:"video_url" validate:"required,url"`
	TranscriptRef string     `json:"txt_file_path,omitempty"`
	ThumbnailRef  string     `json:"thumbnail_file_path,omitempty"`
	RecordedAt    *time.Time `json:"recorded_at,omitempty"`
}

type Course struct {
	Name   string
	Videos []Video
}

// record mirrors the on-disk shape. The extractor writes null for missing paths and a
// timestamp without zone, so both are decoded loosely.
type record struct {
	Title         string  `json:"video_title"`
	URL           string  `json:"video_url"`
	TranscriptRef *string `json:"txt_file_path"`
	ThumbnailRef  *string `json:"thumbnail_file_path"`
	RecordedAt    string  `json:"recorded_at"`
}

// Reader loads the catalog from a content source on every call; the catalog is
// treated as immutable for the lifetime of one request.
type Reader struct {
	src      content.Source
	path     string
	validate *validator.Validate
}

func NewReader(src content.Source, path string) *Reader {
	if path == "" {
		path = DefaultPath
	}
	return &Reader{src: src, path: path, validate: validator.New()}
}

// ListCourses never fails: a missing, unreadable or malformed catalog is an empty one.
func (r *Reader) ListCourses(ctx context.Context) map[string][]Video {
	courses, err := r.load(ctx)
	if err != nil {
		slog.Warn("catalog: unavailable, serving empty catalog", "path", r.path, "error", err)
		return map[string][]Video{}
	}
	return courses
}

// GetCourse returns the named course. Unknown names, and courses left with no valid
// videos, are reported as absent.
func (r *Reader) GetCourse(ctx context.Context, name string) (Course, bool) {
	videos, ok := r.ListCourses(ctx)[name]
	if !ok || len(videos) == 0 {
		return Course{}, false
	}
	return Course{Name: name, Videos: videos}, true
}

func (r *Reader) load(ctx context.Context) (map[string][]Video, error) {
	if r.src == nil {
		return nil, content.ErrNotFound
	}
	rc, err := r.src.Open(ctx, r.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return r.Parse(data)
}

// Parse decodes catalog JSON. Entries that fail validation are skipped with a warning;
// only a document that is not a JSON object of arrays is an error.
func (r *Reader) Parse(data []byte) (map[string][]Video, error) {
	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	courses := make(map[string][]Video, len(raw))
	for name, entries := range raw {
		if strings.TrimSpace(name) == "" {
			slog.Warn("catalog: skipping course with empty name")
			continue
		}
		seen := make(map[string]bool, len(entries))
		videos := make([]Video, 0, len(entries))
		for i, entry := range entries {
			v, err := r.parseVideo(entry)
			if err != nil {
				slog.Warn("catalog: skipping malformed video", "course", name, "index", i, "error", err)
				continue
			}
			if seen[v.URL] {
				slog.Warn("catalog: skipping duplicate video", "course", name, "url", v.URL)
				continue
			}
			seen[v.URL] = true
			videos = append(videos, v)
		}
		courses[name] = videos
	}
	return courses, nil
}

func (r *Reader) parseVideo(entry json.RawMessage) (Video, error) {
	var rec record
	if err := json.Unmarshal(entry, &rec); err != nil {
		return Video{}, fmt.Errorf("decode video: %w", err)
	}
	v := Video{
		Title: strings.TrimSpace(rec.Title),
		URL:   strings.TrimSpace(rec.URL),
	}
	if rec.TranscriptRef != nil {
		v.TranscriptRef = strings.TrimSpace(*rec.TranscriptRef)
	}
	if rec.ThumbnailRef != nil {
		v.ThumbnailRef = strings.TrimSpace(*rec.ThumbnailRef)
	}
	if ts, ok := parseRecordedAt(rec.RecordedAt); ok {
		v.RecordedAt = &ts
	}
	if err := r.validate.Struct(v); err != nil {
		return Video{}, err
	}
	return v, nil
}

var recordedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseRecordedAt(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range recordedAtLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Names returns course names in a stable order.
func Names(courses map[string][]Video) []string {
	names := make([]string, 0, len(courses))
	for name := range courses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DisplayName renders a course key the way the extractor derived it from the
// playlist title: underscores become spaces.
func DisplayName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// VideoID extracts the player id from the "v" query parameter of a watch URL.
func VideoID(videoURL string) string {
	u, err := url.Parse(videoURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("v")
}
