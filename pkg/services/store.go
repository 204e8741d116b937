package services

import (
	"context"

	"cms-site/pkg/models"

	"github.com/goccy/go-json"
)

//go:generate mockgen -destination=mock_store.go -package=services cms-site/pkg/services EntryStore

// EntryStore is the read-only content store, queried by content type and
// filter. The pipeline never writes to it.
type EntryStore interface {
	Query(ctx context.Context, contentType models.ContentType, q Query) (*Result, error)
}

// Query is one filtered lookup. Zero values mean "not set".
type Query struct {
	Equal             map[string]any
	NotEqual          map[string]any
	Or                []map[string]any
	Locale            string
	VariantAliases    []string
	Limit             int
	Skip              int
	IncludeCount      bool
	IncludeReferences []string
	Only              []string
}

type Result struct {
	Entries []json.RawMessage
	Count   int
}

// TaxonomyFilter turns taxonomy terms into an $or clause.
func TaxonomyFilter(terms []models.Taxonomy) []map[string]any {
	if len(terms) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(terms))
	for _, t := range terms {
		out = append(out, map[string]any{
			"taxonomies.taxonomy_uid": t.TaxonomyUID,
			"taxonomies.term_uid":     t.TermUID,
		})
	}
	return out
}
