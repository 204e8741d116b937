package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perrors "cms-site/pkg/errors"
	"cms-site/pkg/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryClientQuery(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"entries": [{"uid": "e1", "url": "/about"}], "count": 7}`))
	}))
	defer server.Close()

	client := NewDeliveryClient(server.URL+"/", "key", "token", "production", time.Second, zerolog.Nop())
	res, err := client.Query(context.Background(), models.ContentTypeLanding, Query{
		Equal:             map[string]any{"url": "/about"},
		NotEqual:          map[string]any{"uid": "x"},
		Locale:            "th",
		VariantAliases:    []string{"cs_personalize_a_1", "cs_personalize_b_2"},
		Limit:             1,
		Skip:              3,
		IncludeCount:      true,
		IncludeReferences: []string{"hero"},
		Only:              []string{"url"},
	})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, 7, res.Count)

	require.NotNil(t, got)
	assert.Equal(t, "/v3/content_types/landing_page/entries", got.URL.Path)
	assert.Equal(t, "key", got.Header.Get("api_key"))
	assert.Equal(t, "token", got.Header.Get("access_token"))

	q := got.URL.Query()
	assert.Equal(t, "production", q.Get("environment"))
	assert.Equal(t, "th", q.Get("locale"))
	assert.Equal(t, "1", q.Get("limit"))
	assert.Equal(t, "3", q.Get("skip"))
	assert.Equal(t, "true", q.Get("include_count"))
	assert.Equal(t, []string{"hero"}, q["include[]"])
	assert.Equal(t, []string{"url"}, q["only[BASE][]"])
	assert.Equal(t, "true", q.Get("include_variant"))
	assert.Equal(t, "cs_personalize_a_1,cs_personalize_b_2", q.Get("variant_alias"))

	var filter map[string]any
	require.NoError(t, json.Unmarshal([]byte(q.Get("query")), &filter))
	assert.Equal(t, "/about", filter["url"])
	assert.Equal(t, map[string]any{"$ne": "x"}, filter["uid"])
}

func TestDeliveryClientOmitsUnsetParams(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"entries": []}`))
	}))
	defer server.Close()

	client := NewDeliveryClient(server.URL, "key", "token", "staging", time.Second, zerolog.Nop())
	res, err := client.Query(context.Background(), models.ContentTypeHome, Query{})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)

	q := got.URL.Query()
	for _, k := range []string{"query", "locale", "limit", "skip", "include_variant", "variant_alias"} {
		assert.False(t, q.Has(k), k)
	}
}

func TestDeliveryClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   perrors.ErrorCode
	}{
		{"server error", http.StatusInternalServerError, `{"error_message": "boom"}`, perrors.ErrStoreStatus},
		{"unauthorized", http.StatusUnauthorized, `{}`, perrors.ErrStoreStatus},
		{"bad body", http.StatusOK, `{"entries": [`, perrors.ErrStoreDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewDeliveryClient(server.URL, "key", "token", "production", time.Second, zerolog.Nop())
			_, err := client.Query(context.Background(), models.ContentTypeArticle, Query{})
			require.Error(t, err)
			assert.Equal(t, tt.code, perrors.CodeOf(err))
		})
	}
}

func TestDeliveryClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewDeliveryClient(server.URL, "key", "token", "production", 50*time.Millisecond, zerolog.Nop())
	_, err := client.Query(context.Background(), models.ContentTypeArticle, Query{})
	assert.Error(t, err)
}
