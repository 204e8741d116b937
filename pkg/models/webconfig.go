package models

type NavLink struct {
	Text         string      `json:"text"`
	Link         []Reference `json:"link,omitempty"`
	ExternalLink string      `json:"external_link,omitempty"`
	Thumbnail    *Asset      `json:"thumbnail,omitempty"`
}

type NavSection struct {
	Title string      `json:"title,omitempty"`
	Link  []Reference `json:"link,omitempty"`
	Links []NavLink   `json:"links,omitempty"`
}

type MegaMenu struct {
	UID      string       `json:"uid"`
	Title    string       `json:"title"`
	Sections []NavSection `json:"sections,omitempty"`
}

type NavigationItem struct {
	Text     string      `json:"text"`
	Link     []Reference `json:"link,omitempty"`
	MegaMenu []MegaMenu  `json:"mega_menu,omitempty"`
}

type Navigation struct {
	UID   string           `json:"uid"`
	Title string           `json:"title"`
	Items []NavigationItem `json:"items,omitempty"`
}

type FooterMenu struct {
	UID      string       `json:"uid"`
	Title    string       `json:"title"`
	Sections []NavSection `json:"sections,omitempty"`
}

type ConsentAction struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

type ConsentModal struct {
	Heading        string          `json:"heading,omitempty"`
	Content        string          `json:"content,omitempty"`
	ConsentActions []ConsentAction `json:"consent_actions,omitempty"`
}

// WebConfig is the site-wide navigation and chrome entry.
type WebConfig struct {
	UID              string        `json:"uid"`
	Title            string        `json:"title"`
	Logo             *Asset        `json:"logo,omitempty"`
	MainNavigation   []Navigation  `json:"main_navigation,omitempty"`
	FooterNavigation []FooterMenu  `json:"footer_navigation,omitempty"`
	ConsentModal     *ConsentModal `json:"consent_modal,omitempty"`
}
