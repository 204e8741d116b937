package blocks

import "cms-site/pkg/models"

func str(p map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := p[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func obj(p map[string]any, key string) map[string]any {
	switch v := p[key].(type) {
	case map[string]any:
		return v
	case []any:
		if len(v) > 0 {
			m, _ := v[0].(map[string]any)
			return m
		}
	}
	return nil
}

// list returns p[key] as a list of objects. A single object counts as a
// one-element list; non-object elements are dropped.
func list(p map[string]any, key string) []map[string]any {
	switch v := p[key].(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// image reads the asset shapes authors use: {url}, {image: {url}} and a
// list of either. alt is used when the payload carries no alt text.
func image(p map[string]any, key, alt string) *models.ImageView {
	m := obj(p, key)
	if m == nil {
		return nil
	}
	altText := str(p, key+"_alt_text")
	if nested := obj(m, "image"); nested != nil {
		if a := str(m, "image_alt_text"); a != "" {
			altText = a
		}
		m = nested
	}
	url := str(m, "url")
	if url == "" {
		return nil
	}
	if altText == "" {
		altText = str(m, "title")
	}
	if altText == "" {
		altText = alt
	}
	return &models.ImageView{URL: url, Alt: altText}
}

func metadataUID(p map[string]any) string {
	if m := obj(p, "_metadata"); m != nil {
		return str(m, "uid")
	}
	return ""
}
