package validate

import (
	"strconv"
	"strings"
	"testing"
)

func TestLengthChecks(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) string
		max   int
		field string
	}{
		{"HeadTitle", HeadTitle, MaxHeadTitleLength, "head title"},
		{"MetaDescription", MetaDescription, MaxMetaDescriptionLength, "meta description"},
		{"MetaKeywords", MetaKeywords, MaxMetaKeywordsLength, "meta keywords"},
		{"MetaAuthor", MetaAuthor, MaxMetaAuthorLength, "meta author"},
		{"WebTitle", WebTitle, MaxWebTitleLength, "web title"},
		{"WebSubtitle", WebSubtitle, MaxWebSubtitleLength, "web subtitle"},
		{"Name", Name, MaxNameLength, "name"},
		{"Email", Email, MaxEmailLength, "email"},
		{"Username", Username, MaxUsernameLength, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(""); got != "" {
				t.Errorf("empty: got %q", got)
			}
			if got := tt.check(strings.Repeat("a", tt.max)); got != "" {
				t.Errorf("at limit: got %q", got)
			}
			want := tt.field + " must be " + strconv.Itoa(tt.max) + " characters or fewer"
			if got := tt.check(strings.Repeat("a", tt.max+1)); got != want {
				t.Errorf("over limit: got %q, want %q", got, want)
			}
		})
	}
}

func TestLengthCountsRunes(t *testing.T) {
	accented := strings.Repeat("ñ", MaxWebTitleLength)
	if got := WebTitle(accented); got != "" {
		t.Errorf("expected %d multi-byte characters to be within the limit, got %q", MaxWebTitleLength, got)
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid", "strongpass123", ""},
		{"too short", "short", "password must be at least 8 characters"},
		{"at max", strings.Repeat("a", 72), ""},
		{"too long", strings.Repeat("a", 73), "password must be at most 72 characters"},
	}
	for _, tt := range tests {
		if got := Password(tt.input); got != tt.want {
			t.Errorf("Password(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFirst(t *testing.T) {
	if got := First("", "b", "c"); got != "b" {
		t.Errorf("First = %q, want %q", got, "b")
	}
	if got := First("", ""); got != "" {
		t.Errorf("First = %q, want empty", got)
	}
}

func TestFieldLimits(t *testing.T) {
	limits := FieldLimits()
	if limits["webSubtitle"] != MaxWebSubtitleLength {
		t.Errorf("unexpected webSubtitle limit %d", limits["webSubtitle"])
	}
	if len(limits) != 10 {
		t.Errorf("expected 10 limits, got %d", len(limits))
	}
}
