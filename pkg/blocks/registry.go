// Package blocks renders author-ordered page components into view nodes.
//
// Dispatch is two-tier. The block key is looked up in a table of known
// discriminants first; unknown keys fall through an ordered list of payload
// shape predicates. A block matching neither renders nothing.
package blocks

import (
	perrors "cms-site/pkg/errors"
	"cms-site/pkg/models"

	"github.com/rs/zerolog"
)

// RenderFunc maps one block payload to a view node. A nil node means the
// payload had nothing worth rendering.
type RenderFunc func(payload map[string]any, locale string) *models.ViewNode

type rule struct {
	name   string
	match  func(payload map[string]any) bool
	render RenderFunc
}

type Registry struct {
	exact     map[string]RenderFunc
	fallbacks []rule
	rich      *RichText
	logger    zerolog.Logger
}

func NewRegistry(logger zerolog.Logger) *Registry {
	r := &Registry{
		rich:   NewRichText(),
		logger: logger,
	}
	r.exact = map[string]RenderFunc{
		"teaser":                  r.teaser,
		"card_collection":         r.cardCollection,
		"text_and_image_carousel": r.carousel,
		"section_with_blocks":     r.section,
		"blocks":                  r.section,
		"cta":                     r.cta,
		"call_to_action":          r.cta,
		"rich_text":               r.richText,
		"text":                    r.text,
	}
	// Order matters: the first matching predicate wins.
	r.fallbacks = []rule{
		{name: "carousel", match: hasAny("carousel_items"), render: r.carousel},
		{name: "card_collection", match: hasAny("cards", "items"), render: r.cardCollection},
		{name: "section", match: hasAny("blocks", "block"), render: r.section},
	}
	return r
}

// Register adds or replaces the renderer for an exact block key.
func (r *Registry) Register(key string, fn RenderFunc) {
	r.exact[key] = fn
}

// Lookup picks the renderer for a block. The error carries MALFORMED_BLOCK
// when neither the key nor the payload shape is recognised.
func (r *Registry) Lookup(b models.Block) (RenderFunc, error) {
	if fn, ok := r.exact[b.Key]; ok {
		return fn, nil
	}
	for _, rl := range r.fallbacks {
		if rl.match(b.Payload) {
			return rl.render, nil
		}
	}
	return nil, perrors.Newf(perrors.ErrMalformedBlock, "unrecognised block %q", b.Key)
}

func (r *Registry) Render(b models.Block, locale string) *models.ViewNode {
	fn, err := r.Lookup(b)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Skipping block")
		return nil
	}
	return fn(b.Payload, locale)
}

// RenderAll renders blocks in author order, dropping the ones that render
// to nothing.
func (r *Registry) RenderAll(blocks []models.Block, locale string) []models.ViewNode {
	out := make([]models.ViewNode, 0, len(blocks))
	for _, b := range blocks {
		if node := r.Render(b, locale); node != nil {
			out = append(out, *node)
		}
	}
	return out
}

// RichText exposes the registry's rich text converter for entry fields that
// are not blocks, such as article bodies.
func (r *Registry) RichText() *RichText {
	return r.rich
}

func hasAny(keys ...string) func(map[string]any) bool {
	return func(p map[string]any) bool {
		for _, k := range keys {
			if v, ok := p[k]; ok && v != nil {
				return true
			}
		}
		return false
	}
}
