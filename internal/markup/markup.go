// Package markup holds the two text-cleanup helpers the normalizer needs:
// stripping tags from feed descriptions and finding the first <img src>.
//
// Limits of the default Regex implementation: entities are not decoded,
// attribute values must be double-quoted, and tags inside comments or CDATA
// are treated like any other tag. DOM trades speed for correct parsing.
package markup

import "regexp"

// Extractor is the narrow surface the normalizer depends on.
type Extractor interface {
	// StripTags removes markup from s and returns the remaining text.
	StripTags(s string) string
	// FirstImageSrc returns the src of the first <img> in s, or "".
	FirstImageSrc(s string) string
}

// Mode selects an Extractor by name.
type Mode string

const (
	ModeRegex Mode = "regex"
	ModeDOM   Mode = "dom"
)

// New returns the Extractor for mode, defaulting to Regex.
func New(mode Mode) Extractor {
	if mode == ModeDOM {
		return NewDOM()
	}
	return Regex{}
}

var (
	tagRe = regexp.MustCompile(`<[^>]+>`)
	imgRe = regexp.MustCompile(`<img[^>]+src="([^">]+)"`)
)

// Regex is the pattern-matching Extractor.
type Regex struct{}

// StripTags deletes anything that looks like a tag. Entities stay encoded.
func (Regex) StripTags(s string) string {
	return tagRe.ReplaceAllString(s, "")
}

// FirstImageSrc matches <img ... src="..."> and returns the quoted value.
func (Regex) FirstImageSrc(s string) string {
	m := imgRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// StripTags is a convenience for Regex{}.StripTags.
func StripTags(s string) string { return Regex{}.StripTags(s) }

// FirstImageSrc is a convenience for Regex{}.FirstImageSrc.
func FirstImageSrc(s string) string { return Regex{}.FirstImageSrc(s) }
