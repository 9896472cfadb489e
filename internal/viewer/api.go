package viewer

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lightgray/lightgray/internal/catalog"
	"github.com/lightgray/lightgray/internal/httputil"
	"github.com/lightgray/lightgray/internal/transcript"
)

type videoResponse struct {
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	VideoID       string     `json:"videoId,omitempty"`
	HasTranscript bool       `json:"hasTranscript"`
	Thumbnail     string     `json:"thumbnail"`
	RecordedAt    *time.Time `json:"recordedAt,omitempty"`
	Href          string     `json:"href"`
}

type courseResponse struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	Href        string          `json:"href"`
	Videos      []videoResponse `json:"videos"`
}

type transcriptAtResponse struct {
	Text  string   `json:"text"`
	Found bool     `json:"found"`
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

type overviewCourse struct {
	Name   string   `json:"name"`
	Titles []string `json:"titles"`
}

type overviewResponse struct {
	Courses     []overviewCourse `json:"courses"`
	TotalVideos int              `json:"totalVideos"`
}

// ListCourses serves every course with its videos in display order.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses := h.catalog.ListCourses(r.Context())

	out := make([]courseResponse, 0, len(courses))
	for _, name := range catalog.Names(courses) {
		videos := catalog.SortVideos(courses[name])
		if len(videos) == 0 {
			continue
		}
		c := courseResponse{
			Name:        name,
			DisplayName: catalog.DisplayName(name),
			Href:        CourseHref(name, ""),
			Videos:      make([]videoResponse, 0, len(videos)),
		}
		for _, v := range videos {
			c.Videos = append(c.Videos, videoResponse{
				Title:         v.Title,
				URL:           v.URL,
				VideoID:       catalog.VideoID(v.URL),
				HasTranscript: v.TranscriptRef != "",
				Thumbnail:     h.thumbnailURL(r.Context(), v.ThumbnailRef),
				RecordedAt:    v.RecordedAt,
				Href:          CourseHref(name, v.URL),
			})
		}
		out = append(out, c)
	}

	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) currentVideo(w http.ResponseWriter, r *http.Request) (catalog.Video, bool) {
	course, ok := h.catalog.GetCourse(r.Context(), courseParam(r))
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "course not found")
		return catalog.Video{}, false
	}
	v, ok := catalog.ResolveCurrentVideo(course, r.URL.Query().Get("video"))
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "course not found")
		return catalog.Video{}, false
	}
	return v, true
}

// Transcript serves the segments of the resolved video. Any failure to load them
// yields an empty array.
func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	v, ok := h.currentVideo(w, r)
	if !ok {
		return
	}

	segments := h.transcripts.Fetch(r.Context(), v.TranscriptRef)
	if segments == nil {
		segments = []transcript.Segment{}
	}
	w.Header().Set("Cache-Control", "private, max-age=300")
	httputil.WriteJSON(w, http.StatusOK, segments)
}

// TranscriptAt answers which segment is shown at playback position t.
func (h *Handler) TranscriptAt(w http.ResponseWriter, r *http.Request) {
	t, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "t must be a number of seconds")
		return
	}

	v, ok := h.currentVideo(w, r)
	if !ok {
		return
	}

	seg, found := transcript.Synchronize(t, h.transcripts.Fetch(r.Context(), v.TranscriptRef))
	resp := transcriptAtResponse{Text: seg.Text, Found: found}
	if found {
		resp.Start, resp.End = &seg.Start, &seg.End
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// CatalogOverview lists course names and video titles for the admin surface.
func (h *Handler) CatalogOverview(w http.ResponseWriter, r *http.Request) {
	courses := h.catalog.ListCourses(r.Context())

	resp := overviewResponse{Courses: make([]overviewCourse, 0, len(courses))}
	for _, name := range catalog.Names(courses) {
		videos := catalog.SortVideos(courses[name])
		c := overviewCourse{Name: name, Titles: make([]string, 0, len(videos))}
		for _, v := range videos {
			c.Titles = append(c.Titles, v.Title)
		}
		resp.TotalVideos += len(videos)
		resp.Courses = append(resp.Courses, c)
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
