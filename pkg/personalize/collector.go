package personalize

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"cms-site/pkg/config"
	perrors "cms-site/pkg/errors"
	"cms-site/pkg/models"
	"cms-site/pkg/useragent"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	// Test-only query parameters, stripped before forwarding.
	CountryOverrideParam = "_country"
	ResetParam           = "_reset"

	HeaderVariant    = "x-personalize-variant"
	HeaderAttributes = "x-personalize-attributes"

	noStore = "no-store, must-revalidate"
)

var (
	assetPrefixes  = []string{"/_next/", "/api/", "/static/", "/assets/", "/v3/"}
	assetFiles     = []string{"/favicon.ico", "/robots.txt", "/sitemap.xml", "/sitemap.json"}
	assetExtension = regexp.MustCompile(`(?i)\.(svg|png|jpg|jpeg|gif|webp|ico|css|js|map|woff|woff2|ttf|eot)$`)
)

// Collector builds the visitor attribute set at the edge, obtains a variant
// parameter from the backend and forwards the request with it. Any failure
// forwards the original request untouched.
type Collector struct {
	Backend      Backend
	ProjectUID   string
	Site         *config.SiteConfig
	Timeout      time.Duration
	DebugHeaders bool
	Logger       zerolog.Logger
}

// Outcome is a successful collection: the request to forward and the state
// to put on the response.
type Outcome struct {
	Request      *http.Request
	Session      Session
	Attributes   models.Attributes
	VariantParam string
}

// Skip reports whether path is an asset or API call that passes through.
func Skip(path string) bool {
	for _, p := range assetPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	for _, f := range assetFiles {
		if path == f {
			return true
		}
	}
	return assetExtension.MatchString(path)
}

// Collect runs the collection for one request. r is never modified; a
// panic anywhere inside is reported as a PersonalizationFailure.
func (c *Collector) Collect(r *http.Request) (out *Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = perrors.Newf(perrors.ErrPersonalizationFailure, "panic: %v", rec)
		}
	}()
	if c.Backend == nil {
		return nil, perrors.New(perrors.ErrPersonalizationFailure, "no backend configured")
	}

	ctx, cancel := context.WithTimeout(r.Context(), c.timeout())
	defer cancel()

	session, err := c.Backend.Init(ctx, c.ProjectUID, r)
	if err != nil {
		return nil, perrors.Wrap(err, perrors.ErrPersonalizationFailure, "init session")
	}

	query := r.URL.Query()
	if query.Get(ResetParam) == "1" {
		session.Reset()
	}

	attrs := c.Attributes(r)
	if err := session.Set(ctx, attrs); err != nil {
		return nil, perrors.Wrap(err, perrors.ErrPersonalizationFailure, "submit attributes")
	}

	param := session.VariantParam()
	if param != "" {
		query.Set(VariantQueryParam, param)
	}
	query.Del(CountryOverrideParam)
	query.Del(ResetParam)

	fwd := r.Clone(r.Context())
	u := *r.URL
	u.RawQuery = query.Encode()
	fwd.URL = &u
	fwd.RequestURI = ""

	return &Outcome{Request: fwd, Session: session, Attributes: attrs, VariantParam: param}, nil
}

// Attributes derives Country, Device Type and Operating System. Country is
// omitted when no signal is present.
func (c *Collector) Attributes(r *http.Request) models.Attributes {
	ua := useragent.Classify(r.Header.Get("User-Agent"))
	attrs := models.Attributes{
		models.AttrDeviceType:      ua.Device,
		models.AttrOperatingSystem: ua.OS,
	}
	if country := c.country(r); country != "" {
		attrs[models.AttrCountry] = country
	}
	return attrs
}

func (c *Collector) country(r *http.Request) string {
	site := c.Site
	if site == nil {
		site = config.DefaultSite()
	}
	if v := r.URL.Query().Get(CountryOverrideParam); v != "" {
		return site.CountryName(v)
	}
	if v := r.Header.Get("cf-ipcountry"); v != "" && v != "XX" {
		return site.CountryName(v)
	}
	if v := r.Header.Get("x-vercel-ip-country"); v != "" {
		return site.CountryName(v)
	}
	return ""
}

// ApplyHeaders puts the personalization state on a response header set.
func (c *Collector) ApplyHeaders(out *Outcome, h http.Header) {
	out.Session.AddStateToResponse(h)
	h.Set("Cache-Control", noStore)
	if !c.DebugHeaders {
		return
	}
	if out.VariantParam != "" {
		h.Set(HeaderVariant, out.VariantParam)
	}
	if raw, err := json.Marshal(out.Attributes); err == nil {
		h.Set(HeaderAttributes, string(raw))
	}
}

// Middleware wraps next, typically a reverse proxy to the origin.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Skip(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		out, err := c.Collect(r)
		if err != nil {
			c.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Personalization skipped")
			next.ServeHTTP(w, r)
			return
		}
		c.Logger.Debug().Stringer("outcome", out).Str("path", r.URL.Path).Msg("Personalization applied")
		next.ServeHTTP(&personalizedWriter{ResponseWriter: w, apply: func(h http.Header) {
			c.ApplyHeaders(out, h)
		}}, out.Request)
	})
}

// Gin runs the collector in-process ahead of the page handlers.
func (c *Collector) Gin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if Skip(ctx.Request.URL.Path) {
			ctx.Next()
			return
		}
		out, err := c.Collect(ctx.Request)
		if err != nil {
			c.Logger.Warn().Err(err).Str("path", ctx.Request.URL.Path).Msg("Personalization skipped")
			ctx.Next()
			return
		}
		c.Logger.Debug().Stringer("outcome", out).Str("path", ctx.Request.URL.Path).Msg("Personalization applied")
		w := &ginPersonalizedWriter{ResponseWriter: ctx.Writer, apply: func(h http.Header) {
			c.ApplyHeaders(out, h)
		}}
		ctx.Writer = w
		ctx.Request = out.Request
		ctx.Next()
		ctx.Writer = w.ResponseWriter
		// gin flushes bodiless responses on its own writer, past the wrapper.
		if !w.applied && !ctx.Writer.Written() {
			w.applyOnce()
		}
	}
}

// ginPersonalizedWriter is the gin counterpart of personalizedWriter. gin
// defers the status line until the first body write, so headers are applied
// there.
type ginPersonalizedWriter struct {
	gin.ResponseWriter
	apply   func(http.Header)
	applied bool
}

func (w *ginPersonalizedWriter) applyOnce() {
	if !w.applied {
		w.applied = true
		w.apply(w.Header())
	}
}

func (w *ginPersonalizedWriter) WriteHeaderNow() {
	w.applyOnce()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *ginPersonalizedWriter) Write(b []byte) (int, error) {
	w.applyOnce()
	return w.ResponseWriter.Write(b)
}

func (w *ginPersonalizedWriter) WriteString(s string) (int, error) {
	w.applyOnce()
	return w.ResponseWriter.WriteString(s)
}

func (w *ginPersonalizedWriter) Flush() {
	w.applyOnce()
	w.ResponseWriter.Flush()
}

func (c *Collector) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 2 * time.Second
}

// personalizedWriter applies the state headers right before the upstream
// status line goes out, so upstream cache headers cannot override them.
type personalizedWriter struct {
	http.ResponseWriter
	apply   func(http.Header)
	written bool
}

func (w *personalizedWriter) WriteHeader(status int) {
	if !w.written {
		w.written = true
		w.apply(w.Header())
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *personalizedWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *personalizedWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		if !w.written {
			w.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

func (w *personalizedWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (o *Outcome) String() string {
	return fmt.Sprintf("variant=%q attributes=%v", o.VariantParam, o.Attributes)
}
