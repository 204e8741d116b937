package personalize

import (
	"net/http"
	"net/url"
	"strings"

	"cms-site/pkg/models"

	"github.com/goccy/go-json"
)

const (
	// VariantQueryParam is the reserved query key the edge collector writes.
	VariantQueryParam = "personalize_variants"

	ManifestCookie = "cs-personalize-manifest"
	UserUIDCookie  = "cs-personalize-user-uid"
	// VariantsCookie holds a raw variant parameter on deployments that
	// persist it directly instead of a manifest.
	VariantsCookie = "personalize-variants"

	SourceQuery  = "query"
	SourceCookie = "cookie"
	SourceNone   = "none"
)

// VariantSource yields the variant assignment carried by a request. ok is
// false when the source has nothing to say, letting the next one answer.
type VariantSource interface {
	Name() string
	Variants(r *http.Request) (v Variants, ok bool)
}

// QuerySource reads the variant parameter injected by the edge collector.
// A present, non-empty parameter is authoritative even if every pair in it
// is malformed.
type QuerySource struct {
	Param string
}

func (QuerySource) Name() string { return SourceQuery }

func (s QuerySource) Variants(r *http.Request) (Variants, bool) {
	param := s.Param
	if param == "" {
		param = VariantQueryParam
	}
	raw := strings.TrimSpace(r.URL.Query().Get(param))
	if raw == "" {
		return nil, false
	}
	return Decode(raw), true
}

// CookieSource reads the manifest cookie, falling back to a raw variant
// parameter cookie. Used where no edge proxy sits in front of the server.
type CookieSource struct{}

func (CookieSource) Name() string { return SourceCookie }

func (CookieSource) Variants(r *http.Request) (Variants, bool) {
	if m, err := ManifestFromRequest(r); err == nil && m != nil {
		return FromManifest(m), true
	}
	if c, err := r.Cookie(VariantsCookie); err == nil && c.Value != "" {
		raw, err := url.QueryUnescape(c.Value)
		if err != nil {
			raw = c.Value
		}
		return Decode(raw), true
	}
	return nil, false
}

// Resolution is the effective variant set for one request.
type Resolution struct {
	Source   string   `json:"source"`
	Variants Variants `json:"variants"`
	Aliases  []string `json:"aliases"`
}

// Precedence tries sources in order and uses only the first that answers;
// sources are never merged.
type Precedence []VariantSource

// DefaultPrecedence puts the edge-injected query parameter ahead of cookies.
func DefaultPrecedence() Precedence {
	return Precedence{QuerySource{Param: VariantQueryParam}, CookieSource{}}
}

func (p Precedence) Resolve(r *http.Request) Resolution {
	for _, src := range p {
		if v, ok := src.Variants(r); ok {
			return Resolution{Source: src.Name(), Variants: v, Aliases: v.Aliases()}
		}
	}
	return Resolution{Source: SourceNone, Variants: Variants{}, Aliases: []string{}}
}

// FromManifest keeps the experiences that have an active variant.
func FromManifest(m *models.Manifest) Variants {
	out := Variants{}
	if m == nil {
		return out
	}
	for _, exp := range m.Experiences {
		if exp.ShortUID == "" || exp.ActiveVariantShortUID == nil || *exp.ActiveVariantShortUID == "" {
			continue
		}
		out[exp.ShortUID] = *exp.ActiveVariantShortUID
	}
	return out
}

// ManifestFromRequest decodes the manifest cookie. It returns nil, nil when
// the cookie is absent.
func ManifestFromRequest(r *http.Request) (*models.Manifest, error) {
	c, err := r.Cookie(ManifestCookie)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	return ParseManifest(c.Value)
}

// ParseManifest accepts the cookie value raw or URL-escaped.
func ParseManifest(value string) (*models.Manifest, error) {
	raw := value
	if !strings.HasPrefix(raw, "{") {
		unescaped, err := url.QueryUnescape(raw)
		if err != nil {
			return nil, err
		}
		raw = unescaped
	}
	var m models.Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// EncodeManifest produces the cookie value for a manifest.
func EncodeManifest(m *models.Manifest) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(raw)), nil
}
