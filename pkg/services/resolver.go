package services

import (
	"context"
	"strings"

	"cms-site/pkg/config"
	perrors "cms-site/pkg/errors"
	"cms-site/pkg/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// references expanded per content type so CTAs and heroes carry their
// linked entries.
var references = map[models.ContentType][]string{
	models.ContentTypeHome:    {"hero", "components.teaser.cta.link"},
	models.ContentTypeArticle: {"related_articles"},
	models.ContentTypeLanding: {"hero", "components.teaser.cta.link"},
}

// Resolver finds the single entry that owns a URL across all routable
// content types.
type Resolver struct {
	Store  EntryStore
	Site   *config.SiteConfig
	Order  []models.ContentType
	Logger zerolog.Logger
}

func NewResolver(store EntryStore, site *config.SiteConfig, logger zerolog.Logger) *Resolver {
	return &Resolver{
		Store:  store,
		Site:   site,
		Order:  models.RoutableContentTypes,
		Logger: logger,
	}
}

// Resolve queries each content type in order and returns the first entry
// whose url equals url, with or without a trailing slash. A failed lookup
// for one type counts as a miss for that type only. The error is NOT_FOUND
// when every type misses.
func (r *Resolver) Resolve(ctx context.Context, url, locale string, aliases []string) (models.Entry, error) {
	url = NormalizePath(url)
	storeLocale := r.Site.StoreLocale(locale)

	for _, ct := range r.Order {
		entry, err := r.lookup(ctx, ct, url, storeLocale, aliases)
		if err != nil {
			r.Logger.Debug().Err(err).Str("content_type", string(ct)).Str("url", url).Msg("Lookup failed, trying next type")
			continue
		}
		if entry != nil {
			return entry, nil
		}
	}
	return nil, perrors.Newf(perrors.ErrNotFound, "no entry for %s", url).
		WithDetail("locale", locale)
}

func (r *Resolver) lookup(ctx context.Context, ct models.ContentType, url, storeLocale string, aliases []string) (models.Entry, error) {
	q := Query{
		Locale:            storeLocale,
		VariantAliases:    aliases,
		Limit:             1,
		IncludeReferences: references[ct],
	}
	if url == "/" {
		q.Equal = map[string]any{"url": url}
	} else {
		q.Or = []map[string]any{{"url": url}, {"url": url + "/"}}
		q.Limit = 2
	}
	res, err := r.Store.Query(ctx, ct, q)
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Entries) == 0 {
		return nil, nil
	}
	raw := res.Entries[0]
	for _, e := range res.Entries[1:] {
		if urlOf(e) == url {
			raw = e
			break
		}
	}
	return models.DecodeEntry(ct, raw)
}

func urlOf(raw json.RawMessage) string {
	var v struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(raw, &v)
	return v.URL
}

// NormalizePath gives a path a single leading slash and no trailing slash.
// It is the canonical form for cache keys; the resolver also matches the
// trailing-slash variant.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}
