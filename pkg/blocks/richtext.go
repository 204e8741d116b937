package blocks

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// RichText turns authored text fields into sanitized HTML. Authors supply
// raw HTML strings, Markdown strings and JSON RTE documents; all of them
// go through the same sanitizer.
type RichText struct {
	policy *bluemonday.Policy
	md     goldmark.Markdown
}

func NewRichText() *RichText {
	policy := bluemonday.UGCPolicy()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return &RichText{policy: policy, md: goldmark.New()}
}

// HTML sanitizes an authored HTML fragment.
func (rt *RichText) HTML(s string) template.HTML {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return template.HTML(rt.policy.Sanitize(s))
}

// Plain escapes text meant to be shown verbatim.
func (rt *RichText) Plain(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

func (rt *RichText) Markdown(s string) template.HTML {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := rt.md.Convert([]byte(s), &buf); err != nil {
		return rt.Plain(s)
	}
	return rt.HTML(buf.String())
}

// JSON renders a raw field that is either a JSON string of HTML or a JSON
// RTE document.
func (rt *RichText) JSON(raw []byte) template.HTML {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return rt.Any(v, false)
}

// Any renders a decoded payload value. Strings are HTML, or Markdown when
// markdown is set; objects are JSON RTE documents.
func (rt *RichText) Any(v any, markdown bool) template.HTML {
	switch val := v.(type) {
	case string:
		if markdown {
			return rt.Markdown(val)
		}
		return rt.HTML(val)
	case map[string]any:
		raw, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		var doc rteNode
		if err := json.Unmarshal(raw, &doc); err != nil {
			return ""
		}
		var b strings.Builder
		writeNode(&b, doc)
		return rt.HTML(b.String())
	}
	return ""
}

type rteNode struct {
	Type          string         `json:"type"`
	Text          *string        `json:"text"`
	Bold          bool           `json:"bold"`
	Italic        bool           `json:"italic"`
	Underline     bool           `json:"underline"`
	Strikethrough bool           `json:"strikethrough"`
	InlineCode    bool           `json:"inlineCode"`
	Attrs         map[string]any `json:"attrs"`
	Children      []rteNode      `json:"children"`
}

func (n rteNode) attr(keys ...string) string {
	for _, k := range keys {
		if s, ok := n.Attrs[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

var elementTags = map[string]string{
	"p": "p", "h1": "h1", "h2": "h2", "h3": "h3", "h4": "h4", "h5": "h5", "h6": "h6",
	"ul": "ul", "ol": "ol", "li": "li", "blockquote": "blockquote", "code": "pre",
	"table": "table", "thead": "thead", "tbody": "tbody", "tr": "tr", "td": "td", "th": "th",
}

func writeNode(b *strings.Builder, n rteNode) {
	if n.Text != nil {
		writeText(b, n)
		return
	}
	switch n.Type {
	case "doc", "fragment", "":
		writeChildren(b, n)
	case "a":
		b.WriteString(`<a href="` + html.EscapeString(n.attr("url", "href")) + `">`)
		writeChildren(b, n)
		b.WriteString("</a>")
	case "img":
		b.WriteString(`<img src="` + html.EscapeString(n.attr("url", "src")) + `" alt="` + html.EscapeString(n.attr("alt")) + `">`)
	case "hr":
		b.WriteString("<hr>")
	default:
		tag, ok := elementTags[n.Type]
		if !ok {
			tag = "span"
		}
		b.WriteString("<" + tag + ">")
		writeChildren(b, n)
		b.WriteString("</" + tag + ">")
	}
}

func writeChildren(b *strings.Builder, n rteNode) {
	for _, c := range n.Children {
		writeNode(b, c)
	}
}

func writeText(b *strings.Builder, n rteNode) {
	text := html.EscapeString(*n.Text)
	text = strings.ReplaceAll(text, "\n", "<br>")
	marks := []struct {
		on  bool
		tag string
	}{
		{n.InlineCode, "code"},
		{n.Strikethrough, "s"},
		{n.Underline, "u"},
		{n.Italic, "em"},
		{n.Bold, "strong"},
	}
	for _, m := range marks {
		if m.on {
			text = "<" + m.tag + ">" + text + "</" + m.tag + ">"
		}
	}
	b.WriteString(text)
}
