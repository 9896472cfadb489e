// Package viewer renders the public course pages and the JSON endpoints the
// browser player uses to follow a transcript.
package viewer

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/lightgray/lightgray/internal/catalog"
	"github.com/lightgray/lightgray/internal/content"
	"github.com/lightgray/lightgray/internal/settings"
	"github.com/lightgray/lightgray/internal/transcript"
)

const placeholderThumbnail = "/static/no-image.svg"

// SettingsSource supplies the SEO record for page heads. It must not fail.
type SettingsSource interface {
	Current(ctx context.Context) settings.Settings
}

type Config struct {
	Catalog     *catalog.Reader
	Transcripts *transcript.Fetcher
	// Content answers existence checks for transcript and thumbnail references.
	Content  content.Source
	Linker   content.Linker
	Settings SettingsSource
}

type Handler struct {
	catalog     *catalog.Reader
	transcripts *transcript.Fetcher
	content     content.Source
	linker      content.Linker
	settings    SettingsSource
}

func NewHandler(cfg Config) *Handler {
	h := &Handler{
		catalog:     cfg.Catalog,
		transcripts: cfg.Transcripts,
		content:     cfg.Content,
		linker:      cfg.Linker,
		settings:    cfg.Settings,
	}
	if h.transcripts == nil {
		h.transcripts = transcript.NewFetcher(cfg.Content, transcript.DefaultTimeout)
	}
	if h.linker == nil {
		h.linker = content.PathLinker{Prefix: "/content/"}
	}
	if h.settings == nil {
		h.settings = (*settings.Store)(nil)
	}
	return h
}

// CourseHref is the page URL of a course, optionally selecting a video.
func CourseHref(course, videoURL string) string {
	href := "/courses/" + url.PathEscape(course)
	if videoURL != "" {
		href += "?video=" + url.QueryEscape(videoURL)
	}
	return href
}

func transcriptHref(course, videoURL string) string {
	return "/api/courses/" + url.PathEscape(course) + "/transcript?video=" + url.QueryEscape(videoURL)
}

// courseParam returns the decoded {course} route parameter.
func courseParam(r *http.Request) string {
	name := chi.URLParam(r, "course")
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

func (h *Handler) thumbnailURL(ctx context.Context, ref string) string {
	if ref == "" {
		return placeholderThumbnail
	}
	if !content.IsURL(ref) && !content.Exists(ctx, h.content, ref) {
		return placeholderThumbnail
	}
	link, err := h.linker.Link(ctx, ref)
	if err != nil {
		return placeholderThumbnail
	}
	return link
}

func (h *Handler) hasTranscript(ctx context.Context, v catalog.Video) bool {
	return v.TranscriptRef != "" && content.Exists(ctx, h.content, v.TranscriptRef)
}
