package feeds

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/infblueocean/khabar/internal/model"
)

//go:embed sources.yaml
var defaultSourcesYAML []byte

// Source is one configured feed URL.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Catalog maps each category to its fixed list of sources.
type Catalog map[model.Category][]Source

// DefaultCatalog returns the built-in source list.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultSourcesYAML)
	if err != nil {
		panic(fmt.Sprintf("feeds: embedded sources.yaml is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path yields DefaultCatalog.
func LoadCatalog(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes YAML of the form {indian: [...], global: [...]}.
// Unknown categories and sources without a URL are rejected.
func ParseCatalog(data []byte) (Catalog, error) {
	var raw map[string][]Source
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}

	c := make(Catalog, len(raw))
	for key, sources := range raw {
		cat, err := model.ParseCategory(key)
		if err != nil {
			return nil, err
		}
		for i, s := range sources {
			if strings.TrimSpace(s.URL) == "" {
				return nil, fmt.Errorf("%s source %d (%q) has no url", cat, i, s.Name)
			}
			if s.Name == "" {
				sources[i].Name = s.URL
			}
		}
		c[cat] = sources
	}
	return c, nil
}

// URLs returns the source URLs for cat in catalog order.
func (c Catalog) URLs(cat model.Category) []string {
	sources := c[cat]
	urls := make([]string, len(sources))
	for i, s := range sources {
		urls[i] = s.URL
	}
	return urls
}

// NameFor returns the configured name for url, or url itself.
func (c Catalog) NameFor(url string) string {
	for _, sources := range c {
		for _, s := range sources {
			if s.URL == url {
				return s.Name
			}
		}
	}
	return url
}
