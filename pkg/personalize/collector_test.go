package personalize

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"testing"

	"cms-site/pkg/config"
	"cms-site/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	param      string
	setErr     error
	panicOnSet bool
	reset      bool
	attrs      models.Attributes
}

func (s *fakeSession) Set(_ context.Context, attrs models.Attributes) error {
	if s.panicOnSet {
		panic("backend exploded")
	}
	s.attrs = attrs
	return s.setErr
}
func (s *fakeSession) Reset()                     { s.reset = true }
func (s *fakeSession) UserUID() string            { return "user-1" }
func (s *fakeSession) Manifest() *models.Manifest { return nil }
func (s *fakeSession) VariantParam() string       { return s.param }
func (s *fakeSession) AddStateToResponse(h http.Header) {
	h.Add("Set-Cookie", UserUIDCookie+"=user-1; Path=/")
}

type fakeBackend struct {
	session *fakeSession
	initErr error
	calls   int
}

func (b *fakeBackend) Init(context.Context, string, *http.Request) (Session, error) {
	b.calls++
	if b.initErr != nil {
		return nil, b.initErr
	}
	return b.session, nil
}

func newCollector(b Backend) *Collector {
	return &Collector{
		Backend:      b,
		ProjectUID:   "proj",
		Site:         config.DefaultSite(),
		DebugHeaders: true,
		Logger:       zerolog.Nop(),
	}
}

// capture records the request the collector forwarded.
type capture struct {
	req *http.Request
}

func (c *capture) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.req = r
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("page"))
}

func TestCollectorInjectsVariantAndState(t *testing.T) {
	session := &fakeSession{param: "0_luxury"}
	c := newCollector(&fakeBackend{session: session})
	next := &capture{}

	r := httptest.NewRequest(http.MethodGet, "/en/offers?_country=id&_reset=1&keep=1", nil)
	r.Header.Set("User-Agent", "Mozilla/5.0 (iPad; CPU OS 14_0)")
	w := httptest.NewRecorder()

	c.Middleware(next).ServeHTTP(w, r)

	require.NotNil(t, next.req)
	q := next.req.URL.Query()
	assert.Equal(t, "0_luxury", q.Get(VariantQueryParam))
	assert.Equal(t, "1", q.Get("keep"))
	assert.False(t, q.Has(CountryOverrideParam))
	assert.False(t, q.Has(ResetParam))
	assert.True(t, session.reset)

	assert.Equal(t, models.Attributes{
		models.AttrCountry:         "Indonesia",
		models.AttrDeviceType:      "Tablet",
		models.AttrOperatingSystem: "iOS",
	}, session.attrs)

	res := w.Result()
	assert.Equal(t, "no-store, must-revalidate", res.Header.Get("Cache-Control"))
	assert.NotEmpty(t, res.Header.Values("Set-Cookie"))
	assert.Equal(t, "0_luxury", res.Header.Get(HeaderVariant))
	assert.Contains(t, res.Header.Get(HeaderAttributes), `"Country":"Indonesia"`)

	// The inbound request itself is left alone.
	assert.Equal(t, "id", r.URL.Query().Get(CountryOverrideParam))
}

func TestCollectorFailOpen(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
	}{
		{"attribute submission fails", &fakeBackend{session: &fakeSession{param: "0_a", setErr: errors.New("boom")}}},
		{"backend panics", &fakeBackend{session: &fakeSession{param: "0_a", panicOnSet: true}}},
		{"init fails", &fakeBackend{initErr: errors.New("unreachable")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCollector(tt.backend)
			next := &capture{}

			r := httptest.NewRequest(http.MethodGet, "/en/offers?_country=ID", nil)
			r.Header.Set("User-Agent", "curl/8.0")
			before, err := httputil.DumpRequest(r, true)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			c.Middleware(next).ServeHTTP(w, r)

			require.Same(t, r, next.req)
			after, err := httputil.DumpRequest(next.req, true)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))

			res := w.Result()
			assert.Empty(t, res.Header.Values("Set-Cookie"))
			assert.Equal(t, "public, max-age=60", res.Header.Get("Cache-Control"))
			assert.Empty(t, res.Header.Get(HeaderVariant))
		})
	}
}

func TestCollectorSkipsAssets(t *testing.T) {
	backend := &fakeBackend{session: &fakeSession{}}
	c := newCollector(backend)

	for _, path := range []string{"/_next/static/x.js", "/favicon.ico", "/api/personalize/debug", "/images/logo.SVG", "/static/site.css"} {
		next := &capture{}
		r := httptest.NewRequest(http.MethodGet, path, nil)
		c.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)
		assert.Same(t, r, next.req, path)
	}
	assert.Zero(t, backend.calls)
}

func TestCollectorNoVariantLeavesQueryClean(t *testing.T) {
	c := newCollector(&fakeBackend{session: &fakeSession{}})
	next := &capture{}

	r := httptest.NewRequest(http.MethodGet, "/en", nil)
	w := httptest.NewRecorder()
	c.Middleware(next).ServeHTTP(w, r)

	assert.False(t, next.req.URL.Query().Has(VariantQueryParam))
	assert.Empty(t, w.Result().Header.Get(HeaderVariant))
	assert.Equal(t, "no-store, must-revalidate", w.Result().Header.Get("Cache-Control"))
}

func TestCountrySignals(t *testing.T) {
	c := newCollector(nil)

	r := httptest.NewRequest(http.MethodGet, "/en", nil)
	r.Header.Set("cf-ipcountry", "XX")
	r.Header.Set("x-vercel-ip-country", "SG")
	assert.Equal(t, "Singapore", c.Attributes(r)[models.AttrCountry])

	r = httptest.NewRequest(http.MethodGet, "/en", nil)
	r.Header.Set("cf-ipcountry", "GB")
	r.Header.Set("x-vercel-ip-country", "SG")
	assert.Equal(t, "United Kingdom", c.Attributes(r)[models.AttrCountry])

	r = httptest.NewRequest(http.MethodGet, "/en", nil)
	_, ok := c.Attributes(r)[models.AttrCountry]
	assert.False(t, ok)
	assert.Equal(t, "Desktop", c.Attributes(r)[models.AttrDeviceType])
}

func TestCollectorGinAdapter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := newCollector(&fakeBackend{session: &fakeSession{param: "1_b"}})

	router := gin.New()
	router.Use(c.Gin())
	var seen string
	router.GET("/:locale", func(ctx *gin.Context) {
		seen = ctx.Query(VariantQueryParam)
		ctx.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/en", nil))

	assert.Equal(t, "1_b", seen)
	assert.Equal(t, "no-store, must-revalidate", w.Header().Get("Cache-Control"))
}

func TestCollectorGinAdapterOverridesHandlerCacheHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := newCollector(&fakeBackend{session: &fakeSession{param: "1_b"}})

	router := gin.New()
	router.Use(c.Gin())
	router.GET("/:locale", func(ctx *gin.Context) {
		ctx.Header("Cache-Control", "private, no-store")
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/:locale/empty", func(ctx *gin.Context) {
		ctx.Header("Cache-Control", "public, max-age=60")
		ctx.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/en", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store, must-revalidate", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/en/empty", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "no-store, must-revalidate", w.Header().Get("Cache-Control"))
}
