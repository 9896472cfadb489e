package validate

import (
	"fmt"
	"unicode/utf8"
)

// Text field length limits for the admin forms.
const (
	MaxHeadTitleLength       = 200
	MaxMetaDescriptionLength = 500
	MaxMetaKeywordsLength    = 500
	MaxMetaAuthorLength      = 200
	MaxWebTitleLength        = 200
	MaxWebSubtitleLength     = 300
	MaxNameLength            = 200
	MaxEmailLength           = 320
	MaxUsernameLength        = 50
	MinPasswordLength        = 8
	MaxPasswordLength        = 72 // bcrypt ignores anything longer
)

func checkLen(value string, max int, field string) string {
	if utf8.RuneCountInString(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func HeadTitle(s string) string { return checkLen(s, MaxHeadTitleLength, "head title") }
func MetaDescription(s string) string {
	return checkLen(s, MaxMetaDescriptionLength, "meta description")
}
func MetaKeywords(s string) string { return checkLen(s, MaxMetaKeywordsLength, "meta keywords") }
func MetaAuthor(s string) string   { return checkLen(s, MaxMetaAuthorLength, "meta author") }
func WebTitle(s string) string     { return checkLen(s, MaxWebTitleLength, "web title") }
func WebSubtitle(s string) string  { return checkLen(s, MaxWebSubtitleLength, "web subtitle") }
func Name(s string) string         { return checkLen(s, MaxNameLength, "name") }
func Email(s string) string        { return checkLen(s, MaxEmailLength, "email") }
func Username(s string) string     { return checkLen(s, MaxUsernameLength, "username") }

// Password checks byte length, which is what bcrypt limits.
func Password(s string) string {
	if len(s) < MinPasswordLength {
		return fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}
	if len(s) > MaxPasswordLength {
		return fmt.Sprintf("password must be at most %d characters", MaxPasswordLength)
	}
	return ""
}

// First returns the first non-empty message, or "".
func First(messages ...string) string {
	for _, m := range messages {
		if m != "" {
			return m
		}
	}
	return ""
}

// FieldLimits returns a map of field names to max lengths for the /api/limits endpoint.
func FieldLimits() map[string]int {
	return map[string]int{
		"headTitle":       MaxHeadTitleLength,
		"metaDescription": MaxMetaDescriptionLength,
		"metaKeywords":    MaxMetaKeywordsLength,
		"metaAuthor":      MaxMetaAuthorLength,
		"webTitle":        MaxWebTitleLength,
		"webSubtitle":     MaxWebSubtitleLength,
		"name":            MaxNameLength,
		"email":           MaxEmailLength,
		"username":        MaxUsernameLength,
		"password":        MaxPasswordLength,
	}
}
