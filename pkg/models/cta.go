package models

import "github.com/goccy/go-json"

// Reference points at another entry. URL is empty when the store did not
// expand the reference.
type Reference struct {
	UID            string `json:"uid"`
	URL            string `json:"url,omitempty"`
	ContentTypeUID string `json:"_content_type_uid,omitempty"`
	Title          string `json:"title,omitempty"`
}

// CTA is a call-to-action as authored; any field may be missing.
type CTA struct {
	ExternalURL string      `json:"external_url,omitempty"`
	Href        string      `json:"href,omitempty"`
	Link        []Reference `json:"link,omitempty"`
	Text        string      `json:"text,omitempty"`
	Title       string      `json:"title,omitempty"`
}

// Label returns the text to show on the CTA.
func (c *CTA) Label() string {
	if c == nil {
		return ""
	}
	if c.Title != "" {
		return c.Title
	}
	return c.Text
}

// DecodeCTA converts a loosely typed payload value into a CTA. Authors use
// both a single object and a one-element list; the first element wins.
func DecodeCTA(v any) *CTA {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		v = list[0]
	}
	if _, ok := v.(map[string]any); !ok {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var cta CTA
	if err := json.Unmarshal(raw, &cta); err != nil {
		return nil
	}
	return &cta
}
