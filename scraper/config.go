package scraper

import (
	"errors"
	"fmt"
	"net/url"
)

// Discovery modes.
const (
	// ModeSection collects links under the configured section anchors, or
	// from the whole content container when no anchors are configured.
	ModeSection = "section"
	// ModeFeed treats the listing URL as an RSS or Atom feed.
	ModeFeed = "feed"
)

// ErrInvalidMode is returned for an unknown discovery mode.
var ErrInvalidMode = errors.New("mode must be section or feed")

// SourceConfig defines one wiki listing page and how to discover character
// links on it.
type SourceConfig struct {
	Label      string   `yaml:"label" json:"label"`
	URL        string   `yaml:"url" json:"url"`
	Domain     string   `yaml:"domain" json:"domain"`
	SectionIDs []string `yaml:"section_ids,omitempty" json:"section_ids,omitempty"`
	Mode       string   `yaml:"mode,omitempty" json:"mode,omitempty"` // Default: "section"
	// Denylist overrides DefaultDenylist when non-empty.
	Denylist []string `yaml:"denylist,omitempty" json:"denylist,omitempty"`
}

// DiscoveryMode returns the effective mode.
func (s SourceConfig) DiscoveryMode() string {
	if s.Mode == "" {
		return ModeSection
	}
	return s.Mode
}

// PathDenylist returns the effective denylist of path markers.
func (s SourceConfig) PathDenylist() []string {
	if len(s.Denylist) > 0 {
		return s.Denylist
	}
	return DefaultDenylist()
}

// Validate checks that the source can be crawled.
func (s SourceConfig) Validate() error {
	if s.Label == "" {
		return errors.New("source label is empty")
	}
	if err := absoluteURL(s.URL); err != nil {
		return fmt.Errorf("source %s url: %w", s.Label, err)
	}
	if err := absoluteURL(s.Domain); err != nil {
		return fmt.Errorf("source %s domain: %w", s.Label, err)
	}
	switch s.DiscoveryMode() {
	case ModeSection, ModeFeed:
	default:
		return fmt.Errorf("source %s: %w", s.Label, ErrInvalidMode)
	}
	return nil
}

func absoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https scheme")
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// DefaultDenylist returns path markers of wiki pages that are never
// character articles.
func DefaultDenylist() []string {
	return []string{"Category:", "Episode:", "List_of", "Help:", "File:", "Special:", "Template:"}
}

// ExtractConfig defines how fields are pulled from a character detail page
// and how far bounded scans may go.
type ExtractConfig struct {
	TitleSelectors   []string `yaml:"title_selectors,omitempty" json:"title_selectors,omitempty"`
	PowerLabels      []string `yaml:"power_labels,omitempty" json:"power_labels,omitempty"`
	ImageSelectors   []string `yaml:"image_selectors,omitempty" json:"image_selectors,omitempty"`
	ContentSelectors []string `yaml:"content_selectors,omitempty" json:"content_selectors,omitempty"`
	ArticlePrefix    string   `yaml:"article_prefix,omitempty" json:"article_prefix,omitempty"`
	MaxSectionScan   int      `yaml:"max_section_scan,omitempty" json:"max_section_scan,omitempty"`
	MaxPowerElements int      `yaml:"max_power_elements,omitempty" json:"max_power_elements,omitempty"`
	PaletteSize      int      `yaml:"palette_size,omitempty" json:"palette_size,omitempty"`
}

// NewExtractConfig creates an extraction configuration with default values.
func NewExtractConfig() ExtractConfig {
	return ExtractConfig{
		TitleSelectors: []string{"h1.page-header__title", "h1#firstHeading", "h1"},
		PowerLabels:    []string{"Power", "Abilities", "Skills", "Attacks", "Techniques", "Weapon"},
		// Info-panel image first; the same URL is stored and used for the
		// palette.
		ImageSelectors: []string{
			".pi-image img",
			".pi-media img",
			".pi-image-thumbnail",
			"image-thumbnail",
			".image img",
			"img",
		},
		ContentSelectors: []string{".mw-parser-output", "#mw-content-text"},
		ArticlePrefix:    "/wiki/",
		MaxSectionScan:   200,
		MaxPowerElements: 5,
		PaletteSize:      3,
	}
}

// WithDefaults returns a copy with unset fields taken from NewExtractConfig.
func (c ExtractConfig) WithDefaults() ExtractConfig {
	d := NewExtractConfig()
	if len(c.TitleSelectors) == 0 {
		c.TitleSelectors = d.TitleSelectors
	}
	if len(c.PowerLabels) == 0 {
		c.PowerLabels = d.PowerLabels
	}
	if len(c.ImageSelectors) == 0 {
		c.ImageSelectors = d.ImageSelectors
	}
	if len(c.ContentSelectors) == 0 {
		c.ContentSelectors = d.ContentSelectors
	}
	if c.ArticlePrefix == "" {
		c.ArticlePrefix = d.ArticlePrefix
	}
	if c.MaxSectionScan <= 0 {
		c.MaxSectionScan = d.MaxSectionScan
	}
	if c.MaxPowerElements <= 0 {
		c.MaxPowerElements = d.MaxPowerElements
	}
	if c.PaletteSize <= 0 {
		c.PaletteSize = d.PaletteSize
	}
	return c
}
