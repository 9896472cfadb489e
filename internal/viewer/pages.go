package viewer

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/lightgray/lightgray/internal/catalog"
	"github.com/lightgray/lightgray/internal/httputil"
	"github.com/lightgray/lightgray/internal/settings"
)

var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.SEO.HeadTitle}}</title>
    <meta name="description" content="{{.SEO.MetaDescription}}">
    <meta name="keywords" content="{{.SEO.MetaKeywords}}">
    <meta name="author" content="{{.SEO.MetaAuthor}}">
    <link rel="icon" type="image/svg+xml" href="/static/logo.svg">
    <link rel="stylesheet" href="/static/style.css">
</head>
<body>
<header>
    <h1><img src="/static/logo.svg" alt="">{{.SEO.WebTitle}}</h1>
    <p>{{.SEO.WebSubtitle}}</p>
    <nav><a href="/">Home</a></nav>
</header>
<main>
{{end}}

{{define "foot"}}
</main>
<footer>
    <p>&copy; {{.Year}} {{.SEO.WebTitle}}</p>
</footer>
</body>
</html>
{{end}}

{{define "home"}}{{template "head" .}}
{{if .Courses}}
    <div class="grid-container">
    {{range .Courses}}
        <div class="course-tile">
            <a href="{{.Href}}">
                <img src="{{.Thumbnail}}" alt="{{.Name}}" loading="lazy">
                <h3>{{.DisplayName}}</h3>
            </a>
            <span class="video-count">{{.VideoCount}} videos</span>
        </div>
    {{end}}
    </div>
{{else}}
    <p class="empty-state">No courses available.</p>
{{end}}
{{template "foot" .}}{{end}}

{{define "course"}}{{template "head" .}}
<div class="course-container">
    <div class="video-list">
        <h2>{{.DisplayName}}</h2>
        <ul>
        {{range .Videos}}
            <li{{if .Current}} class="current"{{end}}><a href="{{.Href}}">{{.Title}}</a></li>
        {{end}}
        </ul>
    </div>
    <div class="video-content">
        <h2>{{.Current.Title}}</h2>
        {{if .VideoID}}
        <iframe id="ytplayer" src="https://www.youtube.com/embed/{{.VideoID}}?enablejsapi=1" title="{{.Current.Title}}" allow="autoplay; encrypted-media; picture-in-picture" allowfullscreen></iframe>
        {{else}}
        <p class="empty-state">Video not available.</p>
        {{end}}
        {{if .TranscriptURL}}
        <div id="transcription" class="transcription" aria-live="polite" data-src="{{.TranscriptURL}}"></div>
        <script nonce="{{.Nonce}}" src="/static/transcript.js"></script>
        {{end}}
    </div>
</div>
{{template "foot" .}}{{end}}

{{define "not-found"}}{{template "head" .}}
<p class="empty-state">{{.Message}}</p>
{{template "foot" .}}{{end}}
`))

type pageData struct {
	SEO   settings.Settings
	Nonce string
	Year  int
}

type courseTile struct {
	Name        string
	DisplayName string
	Href        string
	Thumbnail   string
	VideoCount  int
}

type homePageData struct {
	pageData
	Courses []courseTile
}

type videoLink struct {
	Title   string
	Href    string
	Current bool
}

type coursePageData struct {
	pageData
	DisplayName   string
	Videos        []videoLink
	Current       catalog.Video
	VideoID       string
	TranscriptURL string
}

type notFoundPageData struct {
	pageData
	Message string
}

func (h *Handler) basePage(r *http.Request) pageData {
	return pageData{
		SEO:   h.settings.Current(r.Context()),
		Nonce: httputil.NonceFromContext(r.Context()),
		Year:  time.Now().Year(),
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("viewer: render page", "template", name, "error", err)
	}
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	courses := h.catalog.ListCourses(r.Context())

	data := homePageData{pageData: h.basePage(r)}
	for _, name := range catalog.Names(courses) {
		videos := catalog.SortVideos(courses[name])
		if len(videos) == 0 {
			continue
		}
		data.Courses = append(data.Courses, courseTile{
			Name:        name,
			DisplayName: catalog.DisplayName(name),
			Href:        CourseHref(name, ""),
			Thumbnail:   h.thumbnailURL(r.Context(), videos[0].ThumbnailRef),
			VideoCount:  len(videos),
		})
	}

	h.render(w, http.StatusOK, "home", data)
}

func (h *Handler) Course(w http.ResponseWriter, r *http.Request) {
	h.renderCourse(w, r, courseParam(r), r.URL.Query().Get("video"))
}

func (h *Handler) renderCourse(w http.ResponseWriter, r *http.Request, name, requestedURL string) {
	course, ok := h.catalog.GetCourse(r.Context(), name)
	if !ok {
		h.notFound(w, r, "Course not found.")
		return
	}
	current, ok := catalog.ResolveCurrentVideo(course, requestedURL)
	if !ok {
		h.notFound(w, r, "Course not found.")
		return
	}

	data := coursePageData{
		pageData:    h.basePage(r),
		DisplayName: catalog.DisplayName(name),
		Current:     current,
		VideoID:     catalog.VideoID(current.URL),
	}
	for _, v := range catalog.SortVideos(course.Videos) {
		data.Videos = append(data.Videos, videoLink{
			Title:   v.Title,
			Href:    CourseHref(name, v.URL),
			Current: v.URL == current.URL,
		})
	}
	if h.hasTranscript(r.Context(), current) {
		data.TranscriptURL = transcriptHref(name, current.URL)
	}

	h.render(w, http.StatusOK, "course", data)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, message string) {
	h.render(w, http.StatusNotFound, "not-found", notFoundPageData{pageData: h.basePage(r), Message: message})
}

// Legacy keeps old index.php?page=... links working.
func (h *Handler) Legacy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("page") != "course" {
		http.Redirect(w, r, "/", http.StatusMovedPermanently)
		return
	}
	course := q.Get("course")
	if course == "" {
		h.notFound(w, r, "Course not found.")
		return
	}
	http.Redirect(w, r, CourseHref(course, q.Get("video")), http.StatusMovedPermanently)
}

// NotFound renders the site's 404 page for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "Page not found.")
}
