// Package links derives navigable URLs from authored call-to-action data.
package links

import (
	"regexp"
	"strings"

	"cms-site/pkg/models"
)

// Fallback is returned when nothing else resolves; it never navigates.
const Fallback = "#"

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// articleTypes are the reference content types that route under /article/.
var articleTypes = map[string]bool{
	"article":          true,
	"detailed_article": true,
}

// Resolve returns the URL for a CTA. The first non-empty candidate wins:
// external URL, expanded reference URL, synthesized article path, href, "#".
func Resolve(cta *models.CTA) string {
	return ResolveWithTitle(cta, "")
}

// ResolveWithTitle is Resolve with a title to slug when the reference
// itself carries none, such as the title of the card holding the CTA.
func ResolveWithTitle(cta *models.CTA, title string) string {
	if cta == nil {
		return Fallback
	}
	if ext := strings.TrimSpace(cta.ExternalURL); ext != "" {
		return ext
	}
	if len(cta.Link) > 0 {
		ref := cta.Link[0]
		if ref.URL != "" {
			return ref.URL
		}
		if articleTypes[ref.ContentTypeUID] {
			t := ref.Title
			if t == "" {
				t = title
			}
			if slug := Slugify(t); slug != "" {
				return "/article/" + slug
			}
			if ref.UID != "" {
				return "/article/" + ref.UID
			}
		}
	}
	if cta.Href != "" {
		return cta.Href
	}
	return Fallback
}

// Slugify lowercases, drops characters outside [a-z0-9 whitespace -],
// turns whitespace runs into single hyphens, collapses repeated hyphens and
// trims hyphens from both ends.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Localize prefixes site-relative URLs with the locale segment. External
// URLs, anchors and already-prefixed paths are returned unchanged.
func Localize(url, locale string) string {
	if locale == "" || !strings.HasPrefix(url, "/") || strings.HasPrefix(url, "//") {
		return url
	}
	prefix := "/" + locale
	if url == prefix || strings.HasPrefix(url, prefix+"/") {
		return url
	}
	if url == "/" {
		return prefix
	}
	return prefix + url
}
