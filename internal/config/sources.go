package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PublicationSource is the static description of one publication. Loaded at
// startup, never mutated at runtime.
type PublicationSource struct {
	Name         string   `yaml:"name"`
	FeedURLs     []string `yaml:"feed_urls"`
	SitemapURL   string   `yaml:"sitemap_url"`
	ExcludedURLs []string `yaml:"excluded_urls"` // known non-article section pages
}

type sourcesFile struct {
	Publications []PublicationSource `yaml:"publications"`
}

// LoadSources reads the publications list from a YAML file.
func LoadSources(path string) ([]PublicationSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources config: %w", err)
	}
	defer f.Close()

	var file sourcesFile
	if err := yaml.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("parse sources config: %w", err)
	}

	if len(file.Publications) == 0 {
		return nil, fmt.Errorf("sources config %s lists no publications", path)
	}

	seen := map[string]bool{}
	for _, pub := range file.Publications {
		if pub.Name == "" {
			return nil, fmt.Errorf("sources config %s has a publication without a name", path)
		}
		if seen[pub.Name] {
			return nil, fmt.Errorf("sources config %s lists %q twice", path, pub.Name)
		}
		seen[pub.Name] = true
		if len(pub.FeedURLs) == 0 && pub.SitemapURL == "" {
			return nil, fmt.Errorf("publication %q has neither feeds nor a sitemap", pub.Name)
		}
	}

	return file.Publications, nil
}

// FilterSources returns the publications whose names appear in subset,
// preserving the configured order. An empty subset keeps everything.
func FilterSources(sources []PublicationSource, subset []string) []PublicationSource {
	if len(subset) == 0 {
		return sources
	}
	wanted := make(map[string]bool, len(subset))
	for _, name := range subset {
		wanted[name] = true
	}
	var out []PublicationSource
	for _, pub := range sources {
		if wanted[pub.Name] {
			out = append(out, pub)
		}
	}
	return out
}
