package models

import "html/template"

// Node kinds produced by the block renderers.
const (
	NodeTeaser         = "teaser"
	NodeCardCollection = "card_collection"
	NodeCarousel       = "text_and_image_carousel"
	NodeSection        = "section_with_blocks"
	NodeCTA            = "cta"
	NodeRichText       = "rich_text"
	NodeCard           = "card"
	NodeSlide          = "slide"
)

type LinkView struct {
	Text string `json:"text,omitempty"`
	URL  string `json:"url"`
}

type ImageView struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// ViewNode is the render output of one block or one of its children.
type ViewNode struct {
	Kind       string        `json:"kind"`
	Key        string        `json:"key,omitempty"`
	Heading    string        `json:"heading,omitempty"`
	Subheading string        `json:"subheading,omitempty"`
	Body       template.HTML `json:"body,omitempty"`
	Image      *ImageView    `json:"image,omitempty"`
	Link       *LinkView     `json:"link,omitempty"`
	Layout     string        `json:"layout,omitempty"`
	Theme      string        `json:"theme,omitempty"`
	Items      []ViewNode    `json:"items,omitempty"`
}

type Meta struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Robots       string `json:"robots"`
	CanonicalURL string `json:"canonical_url,omitempty"`
}

type ArticleCard struct {
	UID     string     `json:"uid"`
	Title   string     `json:"title"`
	URL     string     `json:"url"`
	Summary string     `json:"summary,omitempty"`
	Image   *ImageView `json:"image,omitempty"`
}

// PageView is everything a template needs to render one page.
type PageView struct {
	Locale         string        `json:"locale"`
	Dir            string        `json:"dir"`
	ContentType    ContentType   `json:"content_type"`
	Meta           Meta          `json:"meta"`
	Entry          Entry         `json:"entry"`
	Hero           []ViewNode    `json:"hero,omitempty"`
	Blocks         []ViewNode    `json:"blocks"`
	Articles       []ArticleCard `json:"articles,omitempty"`
	Total          int           `json:"total,omitempty"`
	Related        []ArticleCard `json:"related,omitempty"`
	WebConfig      *WebConfig    `json:"web_config,omitempty"`
	VariantAliases []string      `json:"variant_aliases,omitempty"`
}
