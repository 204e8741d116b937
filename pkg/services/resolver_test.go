package services

import (
	"context"
	"errors"
	"testing"

	"cms-site/pkg/config"
	perrors "cms-site/pkg/errors"
	"cms-site/pkg/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func entries(raws ...string) *Result {
	res := &Result{}
	for _, r := range raws {
		res.Entries = append(res.Entries, json.RawMessage(r))
	}
	res.Count = len(res.Entries)
	return res
}

func newTestResolver(t *testing.T) (*Resolver, *MockEntryStore) {
	ctrl := gomock.NewController(t)
	store := NewMockEntryStore(ctrl)
	return NewResolver(store, config.DefaultSite(), zerolog.Nop()), store
}

func TestResolveEarlierTypeWins(t *testing.T) {
	r, store := newTestResolver(t)
	gomock.InOrder(
		store.EXPECT().Query(gomock.Any(), models.ContentTypeHome, gomock.Any()).Return(entries(), nil),
		store.EXPECT().Query(gomock.Any(), models.ContentTypeArticle, gomock.Any()).
			Return(entries(`{"uid": "art", "title": "Shared", "url": "/shared"}`), nil),
	)
	// landing_page also holds /shared but must never be asked.

	entry, err := r.Resolve(context.Background(), "/shared", "en", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypeArticle, entry.ContentType())
	assert.Equal(t, "art", entry.Base().UID)
	assert.Equal(t, models.ContentTypeArticle, entry.Base().ContentTypeUID)
}

func TestResolveSwallowsPerTypeFailures(t *testing.T) {
	r, store := newTestResolver(t)
	gomock.InOrder(
		store.EXPECT().Query(gomock.Any(), models.ContentTypeHome, gomock.Any()).Return(nil, errors.New("timeout")),
		store.EXPECT().Query(gomock.Any(), models.ContentTypeArticle, gomock.Any()).
			Return(nil, perrors.New(perrors.ErrStoreStatus, "status 502")),
		store.EXPECT().Query(gomock.Any(), models.ContentTypeListing, gomock.Any()).
			Return(entries(`{"uid": 42}`), nil),
		store.EXPECT().Query(gomock.Any(), models.ContentTypeLanding, gomock.Any()).
			Return(entries(`{"uid": "land", "url": "/promo"}`), nil),
	)

	entry, err := r.Resolve(context.Background(), "promo", "en", nil)
	require.NoError(t, err)
	assert.IsType(t, &models.LandingEntry{}, entry)
}

func TestResolveNotFound(t *testing.T) {
	r, store := newTestResolver(t)
	store.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(entries(), nil).Times(4)

	_, err := r.Resolve(context.Background(), "/missing", "en", nil)
	require.Error(t, err)
	assert.True(t, perrors.IsNotFound(err))
}

func TestResolveQueryShape(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		locale     string
		wantOr     []map[string]any
		wantEqual  map[string]any
		wantLimit  int
		wantLocale string
	}{
		{"master locale omitted", "/about/", "en", []map[string]any{{"url": "/about"}, {"url": "/about/"}}, nil, 2, ""},
		{"other locale applied", "about", "th", []map[string]any{{"url": "/about"}, {"url": "/about/"}}, nil, 2, "th"},
		{"root", "", "ar", nil, map[string]any{"url": "/"}, 1, "ar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := newTestResolver(t)
			aliases := []string{"cs_personalize_e1_v1"}
			store.EXPECT().Query(gomock.Any(), models.ContentTypeHome, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ models.ContentType, q Query) (*Result, error) {
					assert.Equal(t, tt.wantOr, q.Or)
					assert.Equal(t, tt.wantEqual, q.Equal)
					assert.Equal(t, tt.wantLocale, q.Locale)
					assert.Equal(t, aliases, q.VariantAliases)
					assert.Equal(t, tt.wantLimit, q.Limit)
					assert.Contains(t, q.IncludeReferences, "hero")
					return entries(`{"uid": "home", "url": "/"}`), nil
				})

			entry, err := r.Resolve(context.Background(), tt.url, tt.locale, aliases)
			require.NoError(t, err)
			assert.Equal(t, "home", entry.Base().UID)
		})
	}
}

func TestResolveTrailingSlashEntry(t *testing.T) {
	r, store := newTestResolver(t)
	store.EXPECT().Query(gomock.Any(), models.ContentTypeHome, gomock.Any()).Return(entries(), nil)
	store.EXPECT().Query(gomock.Any(), models.ContentTypeArticle, gomock.Any()).
		Return(entries(`{"uid": "about", "url": "/about/"}`), nil)

	entry, err := r.Resolve(context.Background(), "/about", "en", nil)
	require.NoError(t, err)
	assert.Equal(t, "about", entry.Base().UID)
}

func TestResolvePrefersExactURL(t *testing.T) {
	r, store := newTestResolver(t)
	store.EXPECT().Query(gomock.Any(), models.ContentTypeHome, gomock.Any()).
		Return(entries(`{"uid": "slashed", "url": "/about/"}`, `{"uid": "plain", "url": "/about"}`), nil)

	entry, err := r.Resolve(context.Background(), "/about/", "en", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", entry.Base().UID)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/", NormalizePath(""))
	assert.Equal(t, "/", NormalizePath("/"))
	assert.Equal(t, "/a/b", NormalizePath("a/b/"))
	assert.Equal(t, "/a", NormalizePath("  /a "))
}
