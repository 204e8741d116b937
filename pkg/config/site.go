package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SiteConfig describes the locales and geography tables of the site.
type SiteConfig struct {
	Locales         []string          `yaml:"locales" toml:"locales"`
	DefaultLocale   string            `yaml:"default_locale" toml:"default_locale"`
	MasterLocale    string            `yaml:"master_locale" toml:"master_locale"`
	RTLLocales      []string          `yaml:"rtl_locales" toml:"rtl_locales"`
	LocaleNames     map[string]string `yaml:"locale_names" toml:"locale_names"`
	StoreLocales    map[string]string `yaml:"store_locales" toml:"store_locales"`
	CountryNames    map[string]string `yaml:"country_names" toml:"country_names"`
	ListingPageSize int               `yaml:"listing_page_size" toml:"listing_page_size"`
	RelatedLimit    int               `yaml:"related_limit" toml:"related_limit"`
}

func DefaultSite() *SiteConfig {
	return &SiteConfig{
		Locales:       []string{"en", "id", "th", "ar"},
		DefaultLocale: "en",
		MasterLocale:  "en",
		RTLLocales:    []string{"ar"},
		LocaleNames: map[string]string{
			"en": "English",
			"id": "Indonesia",
			"th": "ไทย",
			"ar": "العربية",
		},
		StoreLocales: map[string]string{},
		CountryNames: map[string]string{
			"ID": "Indonesia",
			"US": "United States",
			"GB": "United Kingdom",
			"AU": "Australia",
			"SG": "Singapore",
			"MY": "Malaysia",
			"JP": "Japan",
			"DE": "Germany",
			"FR": "France",
			"NL": "Netherlands",
			"TH": "Thailand",
			"VN": "Vietnam",
			"PH": "Philippines",
			"IN": "India",
			"CN": "China",
			"KR": "South Korea",
			"HK": "Hong Kong",
			"TW": "Taiwan",
			"NZ": "New Zealand",
			"CA": "Canada",
		},
		ListingPageSize: 12,
		RelatedLimit:    4,
	}
}

// LoadSite reads a site file. The format is chosen by extension; fields
// left out of the file keep their defaults.
func LoadSite(path string) (*SiteConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site config: %w", err)
	}
	return ParseSite(content, filepath.Ext(path))
}

func ParseSite(content []byte, ext string) (*SiteConfig, error) {
	site := DefaultSite()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, site); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(content, site); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported site config format: %s", ext)
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return site, nil
}

func (s *SiteConfig) Validate() error {
	if len(s.Locales) == 0 {
		return fmt.Errorf("site config: at least one locale is required")
	}
	if !slices.Contains(s.Locales, s.DefaultLocale) {
		return fmt.Errorf("site config: default locale %q is not in locales", s.DefaultLocale)
	}
	if s.ListingPageSize <= 0 {
		s.ListingPageSize = 12
	}
	if s.RelatedLimit <= 0 {
		s.RelatedLimit = 4
	}
	return nil
}

func (s *SiteConfig) IsSupported(locale string) bool {
	return slices.Contains(s.Locales, locale)
}

func (s *SiteConfig) IsRTL(locale string) bool {
	return slices.Contains(s.RTLLocales, locale)
}

// StoreLocale maps an app locale to the store's locale code. The master
// locale maps to "" so no language is sent with the query.
func (s *SiteConfig) StoreLocale(appLocale string) string {
	if appLocale == "" || appLocale == s.MasterLocale {
		return ""
	}
	if mapped, ok := s.StoreLocales[appLocale]; ok && mapped != "" {
		return mapped
	}
	return appLocale
}

// CountryName resolves an ISO code (any case) to the name used by audience
// rules. Unknown values pass through unchanged.
func (s *SiteConfig) CountryName(code string) string {
	if name, ok := s.CountryNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}
