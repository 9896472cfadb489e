package viewer

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func transcriptTarget(path, videoURL string, extra ...string) string {
	q := url.Values{}
	if videoURL != "" {
		q.Set("video", videoURL)
	}
	for i := 0; i+1 < len(extra); i += 2 {
		q.Set(extra[i], extra[i+1])
	}
	return path + "?" + q.Encode()
}

func TestListCoursesAPI(t *testing.T) {
	rec := get(t, newRouter(newTestHandler(t, testCatalog)), "/api/courses")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var courses []courseResponse
	if err := json.NewDecoder(rec.Body).Decode(&courses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected 1 course, got %d", len(courses))
	}
	c := courses[0]
	if c.Name != "Go_Basics" || c.DisplayName != "Go Basics" {
		t.Errorf("unexpected course %+v", c)
	}
	if len(c.Videos) != 3 || c.Videos[0].Title != "Arrays" || c.Videos[2].Title != "variables" {
		t.Fatalf("unexpected videos %+v", c.Videos)
	}
	if c.Videos[2].Thumbnail != "/content/miniaturas/Go_Basics/variables.jpg" {
		t.Errorf("unexpected thumbnail link %q", c.Videos[2].Thumbnail)
	}
	if !c.Videos[2].HasTranscript || c.Videos[0].HasTranscript {
		t.Error("unexpected hasTranscript flags")
	}
	if c.Videos[0].VideoID != "ARR1" {
		t.Errorf("expected video id ARR1, got %q", c.Videos[0].VideoID)
	}
}

func TestListCoursesAPI_EmptyIsArray(t *testing.T) {
	rec := get(t, newRouter(newTestHandler(t, "")), "/api/courses")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestTranscriptAPI(t *testing.T) {
	h := newRouter(newTestHandler(t, testCatalog))

	t.Run("segments of selected video", func(t *testing.T) {
		rec := get(t, h, transcriptTarget("/api/courses/Go_Basics/transcript", "https://www.youtube.com/watch?v=VAR1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var segs []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&segs); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(segs) != 3 || segs[1].Text != "World" {
			t.Errorf("unexpected segments %+v", segs)
		}
	})

	t.Run("video without transcript", func(t *testing.T) {
		rec := get(t, h, transcriptTarget("/api/courses/Go_Basics/transcript", "https://www.youtube.com/watch?v=ARR1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("expected empty array, got %s", rec.Body.String())
		}
	})

	t.Run("unknown course", func(t *testing.T) {
		rec := get(t, h, "/api/courses/Nope/transcript")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTranscriptAtAPI(t *testing.T) {
	h := newRouter(newTestHandler(t, testCatalog))
	const video = "https://www.youtube.com/watch?v=VAR1"

	tests := []struct {
		name       string
		t          string
		wantStatus int
		wantText   string
		wantFound  bool
	}{
		{"inside first", "1.0", http.StatusOK, "Hello", true},
		{"shared boundary picks earlier", "2.5", http.StatusOK, "Hello", true},
		{"inside second", "3", http.StatusOK, "World", true},
		{"gap", "7", http.StatusOK, "", false},
		{"past end", "20", http.StatusOK, "", false},
		{"negative", "-1", http.StatusOK, "", false},
		{"NaN", "NaN", http.StatusOK, "", false},
		{"not a number", "abc", http.StatusBadRequest, "", false},
		{"missing", "", http.StatusBadRequest, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := transcriptTarget("/api/courses/Go_Basics/transcript/at", video)
			if tt.t != "" {
				target = transcriptTarget("/api/courses/Go_Basics/transcript/at", video, "t", tt.t)
			}
			rec := get(t, h, target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp transcriptAtResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Text != tt.wantText || resp.Found != tt.wantFound {
				t.Errorf("got text=%q found=%v, want text=%q found=%v", resp.Text, resp.Found, tt.wantText, tt.wantFound)
			}
		})
	}
}

func TestCatalogOverview(t *testing.T) {
	rec := get(t, newRouter(newTestHandler(t, testCatalog)), "/api/admin/catalog")

	var resp overviewResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalVideos != 3 {
		t.Errorf("expected 3 videos, got %d", resp.TotalVideos)
	}
	if len(resp.Courses) != 2 || resp.Courses[0].Name != "Broken" || len(resp.Courses[0].Titles) != 0 {
		t.Errorf("unexpected overview %+v", resp.Courses)
	}
}
