package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	nonWordChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// GenerateSlug derives a URL-safe identifier from a title. A suffix
// taken from the current unix-millisecond clock keeps slugs unique
// across articles and events that share a title.
func GenerateSlug(title string) string {
	slug := strings.ToLower(title)
	slug = nonWordChars.ReplaceAllString(slug, "")
	slug = whitespace.ReplaceAllString(slug, "-")
	slug = dashRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	return slug + "-" + millis[len(millis)-6:]
}
