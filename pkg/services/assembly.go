package services

import (
	"context"
	"html/template"
	"strings"
	"time"

	"cms-site/pkg/blocks"
	"cms-site/pkg/config"
	perrors "cms-site/pkg/errors"
	"cms-site/pkg/links"
	"cms-site/pkg/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PageRequest identifies one page render.
type PageRequest struct {
	URL            string
	Locale         string
	VariantAliases []string
	// Page is the 1-based listing page; values below 1 mean the first page.
	Page int
}

// Assembler builds a PageView from the resolved entry, the site-wide web
// configuration and any supplementary listings the content type needs.
type Assembler struct {
	Resolver     *Resolver
	Catalog      *Catalog
	Blocks       *blocks.Registry
	Cache        *PageCache
	Site         *config.SiteConfig
	BaseURL      string
	FetchTimeout time.Duration
	Logger       zerolog.Logger
}

func (a *Assembler) Assemble(ctx context.Context, url, locale string, aliases []string) (*models.PageView, error) {
	return a.AssemblePage(ctx, PageRequest{URL: url, Locale: locale, VariantAliases: aliases})
}

// AssemblePage returns NOT_FOUND when no content type owns the URL. Every
// other fetch failure leaves its section empty.
func (a *Assembler) AssemblePage(ctx context.Context, req PageRequest) (*models.PageView, error) {
	req.URL = NormalizePath(req.URL)
	if req.Page < 1 {
		req.Page = 1
	}
	cacheable := req.Page == 1
	if cacheable {
		if view, ok := a.Cache.Get(req.Locale, req.URL, req.VariantAliases); ok {
			return view, nil
		}
	}

	var (
		entry     models.Entry
		webConfig *models.WebConfig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entry, err = a.Resolver.Resolve(gctx, req.URL, req.Locale, req.VariantAliases)
		return err
	})
	g.Go(func() error {
		fctx, cancel := a.fetchContext(gctx)
		defer cancel()
		wc, err := a.Catalog.WebConfig(fctx, req.Locale)
		if err != nil {
			a.Logger.Warn().Err(err).Str("locale", req.Locale).Msg("Web configuration unavailable")
			return nil
		}
		webConfig = wc
		return nil
	})
	if err := g.Wait(); err != nil {
		if !perrors.IsNotFound(err) {
			err = perrors.Wrap(err, perrors.ErrNotFound, "resolve "+req.URL)
		}
		return nil, err
	}

	view := &models.PageView{
		Locale:         req.Locale,
		Dir:            "ltr",
		ContentType:    entry.ContentType(),
		Meta:           a.meta(entry, req.Locale),
		Entry:          entry,
		Blocks:         []models.ViewNode{},
		WebConfig:      webConfig,
		VariantAliases: req.VariantAliases,
	}
	if a.Site.IsRTL(req.Locale) {
		view.Dir = "rtl"
	}

	a.supplement(ctx, view, entry, req)

	switch e := entry.(type) {
	case *models.HomeEntry:
		view.Hero = heroNodes(e.Hero, req.Locale)
		view.Blocks = a.Blocks.RenderAll(e.Components, req.Locale)
	case *models.LandingEntry:
		view.Hero = heroNodes(e.Hero, req.Locale)
		view.Blocks = a.Blocks.RenderAll(e.Components, req.Locale)
	case *models.ArticleEntry:
		if body := a.Blocks.RichText().JSON(e.Content); body != "" {
			view.Blocks = append(view.Blocks, models.ViewNode{
				Kind: models.NodeRichText,
				Key:  e.UID,
				Body: body,
			})
		}
	}

	if cacheable {
		a.Cache.Put(req.Locale, req.URL, req.VariantAliases, view)
	}
	return view, nil
}

// supplement runs the content-type specific fetches in parallel. None of
// them can fail the page.
func (a *Assembler) supplement(ctx context.Context, view *models.PageView, entry models.Entry, req PageRequest) {
	var g errgroup.Group

	switch e := entry.(type) {
	case *models.ListingEntry:
		g.Go(func() error {
			fctx, cancel := a.fetchContext(ctx)
			defer cancel()
			limit := a.Site.ListingPageSize
			list, err := a.Catalog.Articles(fctx, req.Locale, ListOptions{
				Limit:          limit,
				Skip:           (req.Page - 1) * limit,
				TaxonomyFilter: e.TaxonomyFilter,
			})
			if err != nil {
				a.Logger.Warn().Err(err).Str("url", req.URL).Msg("Article listing unavailable")
				return nil
			}
			view.Articles = articleCards(list.Articles, req.Locale)
			view.Total = list.Total
			return nil
		})
	case *models.ArticleEntry:
		if !e.ShowRelatedArticles || len(e.Taxonomies) == 0 {
			break
		}
		g.Go(func() error {
			fctx, cancel := a.fetchContext(ctx)
			defer cancel()
			limit := 0
			if e.RelatedArticles != nil {
				limit = e.RelatedArticles.NumberOfArticles
			}
			related, err := a.Catalog.RelatedArticles(fctx, e.UID, e.Taxonomies, limit, req.Locale)
			if err != nil {
				a.Logger.Warn().Err(err).Str("uid", e.UID).Msg("Related articles unavailable")
				return nil
			}
			view.Related = articleCards(related, req.Locale)
			return nil
		})
	}

	_ = g.Wait()
}

func (a *Assembler) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.FetchTimeout > 0 {
		return context.WithTimeout(ctx, a.FetchTimeout)
	}
	return context.WithCancel(ctx)
}

func (a *Assembler) meta(entry models.Entry, locale string) models.Meta {
	base := entry.Base()
	m := models.Meta{Title: base.Title, Robots: "index, follow"}

	switch e := entry.(type) {
	case *models.ArticleEntry:
		m.Description = e.Summary
	case *models.ListingEntry:
		m.Description = e.Description
	}

	if seo := base.SEO; seo != nil {
		if seo.Title != "" {
			m.Title = seo.Title
		}
		if seo.Description != "" {
			m.Description = seo.Description
		}
		index, follow := "index", "follow"
		if seo.NoIndex {
			index = "noindex"
		}
		if seo.NoFollow {
			follow = "nofollow"
		}
		m.Robots = index + ", " + follow
		m.CanonicalURL = seo.CanonicalURL
	}
	if m.CanonicalURL == "" && a.BaseURL != "" {
		m.CanonicalURL = strings.TrimRight(a.BaseURL, "/") + links.Localize(base.URL, locale)
	}
	return m
}

func heroNodes(items []models.HeroItem, locale string) []models.ViewNode {
	var out []models.ViewNode
	for _, h := range items {
		heading := h.Heading
		if heading == "" {
			heading = h.Title
		}
		if h.UID == "" && heading == "" {
			continue
		}
		node := models.ViewNode{
			Kind:    models.NodeTeaser,
			Key:     h.UID,
			Heading: heading,
		}
		switch {
		case h.Summary != "":
			node.Body = plain(h.Summary)
		case h.Content != "":
			node.Body = plain(h.Content)
		}
		if h.CoverImage != nil && h.CoverImage.URL != "" {
			node.Image = &models.ImageView{URL: h.CoverImage.URL, Alt: heading}
		} else if len(h.Image) > 0 && h.Image[0].Image != nil {
			node.Image = &models.ImageView{URL: h.Image[0].Image.URL, Alt: h.Image[0].ImageAltText}
		}
		if h.URL != "" {
			node.Link = &models.LinkView{Text: heading, URL: links.Localize(h.URL, locale)}
		}
		out = append(out, node)
	}
	return out
}

func articleCards(articles []*models.ArticleEntry, locale string) []models.ArticleCard {
	cards := make([]models.ArticleCard, 0, len(articles))
	for _, art := range articles {
		url := art.URL
		if url == "" {
			url = "/article/" + links.Slugify(art.Title)
		}
		card := models.ArticleCard{
			UID:     art.UID,
			Title:   art.Title,
			URL:     links.Localize(url, locale),
			Summary: art.Summary,
		}
		if art.CoverImage != nil && art.CoverImage.URL != "" {
			card.Image = &models.ImageView{URL: art.CoverImage.URL, Alt: art.Title}
		}
		cards = append(cards, card)
	}
	return cards
}

func plain(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}
