package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// DOM parses fragments as HTML. Script and style bodies are dropped by the
// sanitizer before text extraction, and entities come back decoded.
type DOM struct {
	policy *bluemonday.Policy
}

// NewDOM returns a DOM extractor with a UGC sanitizing policy.
func NewDOM() *DOM {
	return &DOM{policy: bluemonday.UGCPolicy()}
}

func (d *DOM) StripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	clean := d.policy.Sanitize(s)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return Regex{}.StripTags(s)
	}
	return doc.Text()
}

func (d *DOM) FirstImageSrc(s string) string {
	if !strings.Contains(s, "<img") && !strings.Contains(s, "<IMG") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return Regex{}.FirstImageSrc(s)
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}
