package catalog

import (
	"sort"
	"strings"
)

// SortVideos returns a copy of videos ordered by title, case-insensitively.
// Equal titles fall back to URL so the order never depends on catalog order.
func SortVideos(videos []Video) []Video {
	sorted := make([]Video, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := strings.ToLower(sorted[i].Title), strings.ToLower(sorted[j].Title)
		if ti != tj {
			return ti < tj
		}
		return sorted[i].URL < sorted[j].URL
	})
	return sorted
}

// ResolveCurrentVideo picks the video to play. A requested URL that matches nothing is
// treated exactly like no request: the first video in title order wins. The boolean is
// false only when the course has no videos.
func ResolveCurrentVideo(course Course, requestedURL string) (Video, bool) {
	sorted := SortVideos(course.Videos)
	if len(sorted) == 0 {
		return Video{}, false
	}
	if requestedURL != "" {
		for _, v := range sorted {
			if v.URL == requestedURL {
				return v, true
			}
		}
	}
	return sorted[0], true
}
