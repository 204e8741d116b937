package services

import (
	"context"
	"sort"

	"cms-site/pkg/config"
	perrors "cms-site/pkg/errors"
	"cms-site/pkg/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ListOptions pages and filters an article listing.
type ListOptions struct {
	Limit          int
	Skip           int
	TaxonomyFilter []models.Taxonomy
}

type ArticleList struct {
	Articles []*models.ArticleEntry `json:"articles"`
	Total    int                    `json:"total"`
}

// Catalog answers the supplementary queries a page needs besides its own
// entry. Every method returns a SOFT_FETCH_FAILURE error on failure; callers
// treat that as an empty result.
type Catalog struct {
	Store  EntryStore
	Site   *config.SiteConfig
	Logger zerolog.Logger
}

func NewCatalog(store EntryStore, site *config.SiteConfig, logger zerolog.Logger) *Catalog {
	return &Catalog{Store: store, Site: site, Logger: logger}
}

var cardFields = []string{"uid", "title", "url", "summary", "cover_image", "taxonomies", "locale"}

func (c *Catalog) Articles(ctx context.Context, locale string, opts ListOptions) (ArticleList, error) {
	if opts.Limit <= 0 {
		opts.Limit = c.Site.ListingPageSize
	}
	res, err := c.Store.Query(ctx, models.ContentTypeArticle, Query{
		Or:           TaxonomyFilter(opts.TaxonomyFilter),
		Locale:       c.Site.StoreLocale(locale),
		Limit:        opts.Limit,
		Skip:         opts.Skip,
		IncludeCount: true,
		Only:         cardFields,
	})
	if err != nil {
		return ArticleList{}, perrors.Wrap(err, perrors.ErrSoftFetchFailure, "list articles")
	}
	articles := decodeArticles(res.Entries, c.Logger)
	total := res.Count
	if total < len(articles) {
		total = len(articles)
	}
	return ArticleList{Articles: articles, Total: total}, nil
}

// RelatedArticles lists articles sharing any of the given taxonomy terms,
// excluding the article itself.
func (c *Catalog) RelatedArticles(ctx context.Context, uid string, taxonomies []models.Taxonomy, limit int, locale string) ([]*models.ArticleEntry, error) {
	if len(taxonomies) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = c.Site.RelatedLimit
	}
	res, err := c.Store.Query(ctx, models.ContentTypeArticle, Query{
		NotEqual: map[string]any{"uid": uid},
		Or:       TaxonomyFilter(taxonomies),
		Locale:   c.Site.StoreLocale(locale),
		Limit:    limit,
		Only:     cardFields,
	})
	if err != nil {
		return nil, perrors.Wrap(err, perrors.ErrSoftFetchFailure, "related articles")
	}
	return decodeArticles(res.Entries, c.Logger), nil
}

var webConfigReferences = []string{
	"main_navigation",
	"main_navigation.items.mega_menu",
	"footer_navigation",
}

// WebConfig returns the site-wide navigation entry, or nil when none is
// published for the locale.
func (c *Catalog) WebConfig(ctx context.Context, locale string) (*models.WebConfig, error) {
	res, err := c.Store.Query(ctx, models.ContentTypeWebConfig, Query{
		Locale:            c.Site.StoreLocale(locale),
		Limit:             1,
		IncludeReferences: webConfigReferences,
	})
	if err != nil {
		return nil, perrors.Wrap(err, perrors.ErrSoftFetchFailure, "web configuration")
	}
	if len(res.Entries) == 0 {
		return nil, nil
	}
	var wc models.WebConfig
	if err := json.Unmarshal(res.Entries[0], &wc); err != nil {
		return nil, perrors.Wrap(err, perrors.ErrSoftFetchFailure, "decode web configuration")
	}
	return &wc, nil
}

// AllPagePaths lists every routable URL except the root, sorted. A failing
// content type is skipped.
func (c *Catalog) AllPagePaths(ctx context.Context, locale string) []string {
	seen := map[string]bool{}
	var paths []string
	for _, ct := range models.RoutableContentTypes {
		res, err := c.Store.Query(ctx, ct, Query{
			Locale: c.Site.StoreLocale(locale),
			Only:   []string{"url"},
		})
		if err != nil {
			c.Logger.Warn().Err(err).Str("content_type", string(ct)).Msg("Failed to list page paths")
			continue
		}
		for _, raw := range res.Entries {
			var e struct {
				URL string `json:"url"`
			}
			if json.Unmarshal(raw, &e) != nil || e.URL == "" || e.URL == "/" || seen[e.URL] {
				continue
			}
			seen[e.URL] = true
			paths = append(paths, e.URL)
		}
	}
	sort.Strings(paths)
	return paths
}

func decodeArticles(raws []json.RawMessage, logger zerolog.Logger) []*models.ArticleEntry {
	out := make([]*models.ArticleEntry, 0, len(raws))
	for _, raw := range raws {
		entry, err := models.DecodeEntry(models.ContentTypeArticle, raw)
		if err != nil {
			logger.Debug().Err(err).Msg("Skipping undecodable article")
			continue
		}
		out = append(out, entry.(*models.ArticleEntry))
	}
	return out
}
