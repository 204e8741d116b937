package blocks

import (
	"html/template"

	"cms-site/pkg/links"
	"cms-site/pkg/models"
)

// link resolves a CTA value into a link view, or nil when there is nothing
// to click on.
func link(v any, title, locale string) *models.LinkView {
	cta := models.DecodeCTA(v)
	if cta == nil {
		return nil
	}
	label := cta.Label()
	url := links.ResolveWithTitle(cta, title)
	if label == "" && url == links.Fallback {
		return nil
	}
	return &models.LinkView{Text: label, URL: links.Localize(url, locale)}
}

func (r *Registry) teaser(p map[string]any, locale string) *models.ViewNode {
	heading := str(p, "heading", "title")
	node := &models.ViewNode{
		Kind:    models.NodeTeaser,
		Key:     metadataUID(p),
		Heading: heading,
		Body:    r.rich.Plain(str(p, "content", "description")),
		Image:   image(p, "image", heading),
		Link:    link(p["cta"], "", locale),
	}
	if node.Heading == "" && node.Body == "" && node.Image == nil && node.Link == nil {
		return nil
	}
	return node
}

func (r *Registry) cardCollection(p map[string]any, locale string) *models.ViewNode {
	cards := list(p, "cards")
	if cards == nil {
		cards = list(p, "items")
	}
	node := &models.ViewNode{
		Kind: models.NodeCardCollection,
		Key:  metadataUID(p),
	}
	if header := obj(p, "header"); header != nil {
		node.Heading = str(header, "heading")
		node.Subheading = str(header, "sub_heading")
	} else {
		node.Heading = str(p, "heading", "title")
		node.Subheading = str(p, "sub_heading", "subtitle")
	}
	for _, c := range cards {
		title := str(c, "title", "heading")
		node.Items = append(node.Items, models.ViewNode{
			Kind:       models.NodeCard,
			Key:        metadataUID(c),
			Heading:    title,
			Subheading: str(c, "subtitle", "sub_heading"),
			Body:       r.rich.Plain(str(c, "content", "description")),
			Image:      image(c, "image", title),
			Link:       link(c["cta"], title, locale),
		})
	}
	if len(node.Items) == 0 && node.Heading == "" {
		return nil
	}
	return node
}

func (r *Registry) carousel(p map[string]any, locale string) *models.ViewNode {
	items := list(p, "carousel_items")
	if len(items) == 0 {
		return nil
	}
	node := &models.ViewNode{
		Kind:    models.NodeCarousel,
		Key:     metadataUID(p),
		Heading: str(p, "heading", "title"),
	}
	for _, it := range items {
		heading := str(it, "heading", "title")
		node.Items = append(node.Items, models.ViewNode{
			Kind:    models.NodeSlide,
			Key:     metadataUID(it),
			Heading: heading,
			Body:    r.rich.Plain(str(it, "content", "description")),
			Image:   image(it, "image", heading),
			Link:    link(it["cta"], heading, locale),
		})
	}
	return node
}

// section renders a split image/copy section. Children arrive either as
// {block: {...}} wrappers or as bare objects.
func (r *Registry) section(p map[string]any, locale string) *models.ViewNode {
	children := list(p, "blocks")
	if children == nil {
		children = list(p, "block")
	}
	node := &models.ViewNode{
		Kind:       models.NodeSection,
		Key:        metadataUID(p),
		Heading:    str(p, "heading", "title"),
		Subheading: str(p, "sub_heading", "description"),
	}
	for _, c := range children {
		if inner := obj(c, "block"); inner != nil {
			c = inner
		}
		title := str(c, "title", "heading")
		node.Items = append(node.Items, models.ViewNode{
			Kind:    models.NodeCard,
			Key:     metadataUID(c),
			Heading: title,
			Body:    r.rich.HTML(str(c, "copy", "content", "rich_text")),
			Image:   image(c, "image", title),
			Link:    link(c["cta"], title, locale),
			Layout:  str(c, "layout"),
		})
	}
	if len(node.Items) == 0 {
		return nil
	}
	return node
}

func (r *Registry) cta(p map[string]any, locale string) *models.ViewNode {
	var v any = p
	if inner, ok := p["cta"]; ok {
		v = inner
	}
	l := link(v, "", locale)
	if l == nil {
		return nil
	}
	return &models.ViewNode{
		Kind:    models.NodeCTA,
		Key:     metadataUID(p),
		Heading: str(p, "heading"),
		Link:    l,
		Theme:   str(p, "theme", "variant"),
	}
}

func (r *Registry) richText(p map[string]any, _ string) *models.ViewNode {
	var body template.HTML
	for _, k := range []string{"rich_text", "content", "copy", "json_rte"} {
		if v, ok := p[k]; ok {
			body = r.rich.Any(v, false)
			break
		}
	}
	return bodyNode(p, body)
}

// text treats string content as Markdown and object content as JSON RTE.
func (r *Registry) text(p map[string]any, _ string) *models.ViewNode {
	var body template.HTML
	for _, k := range []string{"content", "text", "body"} {
		if v, ok := p[k]; ok {
			body = r.rich.Any(v, true)
			break
		}
	}
	return bodyNode(p, body)
}

func bodyNode(p map[string]any, body template.HTML) *models.ViewNode {
	if body == "" {
		return nil
	}
	return &models.ViewNode{
		Kind:    models.NodeRichText,
		Key:     metadataUID(p),
		Heading: str(p, "heading", "title"),
		Body:    body,
	}
}
