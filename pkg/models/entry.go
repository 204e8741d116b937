package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ContentType is the store namespace an entry belongs to.
type ContentType string

const (
	ContentTypeHome    ContentType = "home_page"
	ContentTypeArticle ContentType = "article"
	ContentTypeListing ContentType = "article_listing_page"
	ContentTypeLanding ContentType = "landing_page"

	ContentTypeWebConfig ContentType = "web_configuration"
)

// RoutableContentTypes is the fixed resolution order for URL lookups. When
// two namespaces hold the same URL, the earlier one wins.
var RoutableContentTypes = []ContentType{
	ContentTypeHome,
	ContentTypeArticle,
	ContentTypeListing,
	ContentTypeLanding,
}

// Entry is one of HomeEntry, ArticleEntry, ListingEntry or LandingEntry.
type Entry interface {
	Base() *BaseEntry
	ContentType() ContentType
}

type SEO struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	CanonicalURL string `json:"canonical_url,omitempty"`
	NoIndex      bool   `json:"no_index,omitempty"`
	NoFollow     bool   `json:"no_follow,omitempty"`
}

type Asset struct {
	UID      string `json:"uid,omitempty"`
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type Taxonomy struct {
	TaxonomyUID string `json:"taxonomy_uid"`
	TermUID     string `json:"term_uid"`
}

// BaseEntry holds the fields every routable entry shares. ContentTypeUID is
// stamped by the resolver; the store does not fill it reliably.
type BaseEntry struct {
	UID            string      `json:"uid"`
	Title          string      `json:"title"`
	URL            string      `json:"url"`
	Locale         string      `json:"locale,omitempty"`
	SEO            *SEO        `json:"seo,omitempty"`
	ContentTypeUID ContentType `json:"_content_type_uid,omitempty"`
}

func (b *BaseEntry) Base() *BaseEntry { return b }

type HeroItem struct {
	UID        string      `json:"uid"`
	Title      string      `json:"title,omitempty"`
	Heading    string      `json:"heading,omitempty"`
	URL        string      `json:"url,omitempty"`
	Summary    string      `json:"summary,omitempty"`
	Content    string      `json:"content,omitempty"`
	CoverImage *Asset      `json:"cover_image,omitempty"`
	Image      []HeroImage `json:"image,omitempty"`
}

type HeroImage struct {
	Image        *Asset `json:"image,omitempty"`
	ImageAltText string `json:"image_alt_text,omitempty"`
}

// UnmarshalJSON decodes each known field on its own, so a field whose type
// drifted in the store is left empty instead of failing the whole entry.
// A hero item that is not an object decodes as empty.
func (h *HeroItem) UnmarshalJSON(data []byte) error {
	*h = HeroItem{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	targets := map[string]any{
		"uid":         &h.UID,
		"title":       &h.Title,
		"heading":     &h.Heading,
		"url":         &h.URL,
		"summary":     &h.Summary,
		"content":     &h.Content,
		"cover_image": &h.CoverImage,
		"image":       &h.Image,
	}
	for key, dst := range targets {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			resetField(dst)
		}
	}
	return nil
}

func resetField(dst any) {
	switch v := dst.(type) {
	case *string:
		*v = ""
	case **Asset:
		*v = nil
	case *[]HeroImage:
		*v = nil
	}
}

type HomeEntry struct {
	BaseEntry
	Hero       []HeroItem `json:"hero,omitempty"`
	Components Blocks     `json:"components,omitempty"`
}

func (*HomeEntry) ContentType() ContentType { return ContentTypeHome }

type RelatedSettings struct {
	Heading          string `json:"heading,omitempty"`
	SubHeading       string `json:"sub_heading,omitempty"`
	NumberOfArticles int    `json:"number_of_articles,omitempty"`
}

type ArticleEntry struct {
	BaseEntry
	Summary             string           `json:"summary,omitempty"`
	Content             json.RawMessage  `json:"content,omitempty"`
	CoverImage          *Asset           `json:"cover_image,omitempty"`
	RelatedArticles     *RelatedSettings `json:"related_articles,omitempty"`
	ShowRelatedArticles bool             `json:"show_related_articles,omitempty"`
	Taxonomies          []Taxonomy       `json:"taxonomies,omitempty"`
}

func (*ArticleEntry) ContentType() ContentType { return ContentTypeArticle }

type ListingEntry struct {
	BaseEntry
	Headline       string     `json:"headline,omitempty"`
	Description    string     `json:"description,omitempty"`
	FeaturedImage  *Asset     `json:"featured_image,omitempty"`
	TaxonomyFilter []Taxonomy `json:"taxonomy_filter,omitempty"`
}

func (*ListingEntry) ContentType() ContentType { return ContentTypeListing }

type LandingEntry struct {
	BaseEntry
	Hero       []HeroItem `json:"hero,omitempty"`
	Components Blocks     `json:"components,omitempty"`
}

func (*LandingEntry) ContentType() ContentType { return ContentTypeLanding }

// DecodeEntry decodes a raw store record as the given content type and
// stamps the discriminant on it.
func DecodeEntry(ct ContentType, raw []byte) (Entry, error) {
	var entry Entry
	switch ct {
	case ContentTypeHome:
		entry = &HomeEntry{}
	case ContentTypeArticle:
		entry = &ArticleEntry{}
	case ContentTypeListing:
		entry = &ListingEntry{}
	case ContentTypeLanding:
		entry = &LandingEntry{}
	default:
		return nil, fmt.Errorf("unknown content type: %s", ct)
	}
	if err := json.Unmarshal(raw, entry); err != nil {
		return nil, fmt.Errorf("decode %s entry: %w", ct, err)
	}
	entry.Base().ContentTypeUID = ct
	return entry, nil
}

// Components returns the author-ordered block list of entries that carry one.
func Components(e Entry) []Block {
	switch v := e.(type) {
	case *HomeEntry:
		return v.Components
	case *LandingEntry:
		return v.Components
	}
	return nil
}
