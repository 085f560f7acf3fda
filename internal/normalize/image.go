package normalize

import (
	"net/url"

	"github.com/mmcdole/gofeed"
)

// imageURL walks the fallback chain, first match wins:
//
//  1. first enclosure URL
//  2. first <img src> in content
//  3. first <img src> in description
//  4. item image, then media:thumbnail / media:content (medium=image)
//
// An empty result means the render layer shows its default image.
func (n *Normalizer) imageURL(item *gofeed.Item) string {
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil && item.Enclosures[0].URL != "" {
		return item.Enclosures[0].URL
	}
	if src := n.extractor.FirstImageSrc(item.Content); src != "" {
		return src
	}
	if src := n.extractor.FirstImageSrc(item.Description); src != "" {
		return src
	}
	return mediaImageURL(item)
}

// mediaImageURL reads the image hints gofeed exposes outside the markup.
func mediaImageURL(item *gofeed.Item) string {
	if item.Image != nil && isHTTPURL(item.Image.URL) {
		return item.Image.URL
	}

	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	for _, thumb := range media["thumbnail"] {
		if u := thumb.Attrs["url"]; isHTTPURL(u) {
			return u
		}
	}
	for _, content := range media["content"] {
		if content.Attrs["medium"] == "image" {
			if u := content.Attrs["url"]; isHTTPURL(u) {
				return u
			}
		}
	}
	return ""
}

func isHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
