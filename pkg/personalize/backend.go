package personalize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cms-site/pkg/models"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Backend is the personalization service. Which variant a visitor gets is
// decided there; this package only captures and carries the result.
type Backend interface {
	Init(ctx context.Context, projectUID string, r *http.Request) (Session, error)
}

// Session is one visitor's exchange with the backend for a single request.
type Session interface {
	Set(ctx context.Context, attrs models.Attributes) error
	Reset()
	UserUID() string
	Manifest() *models.Manifest
	// VariantParam returns "" when no experience has an active variant.
	VariantParam() string
	AddStateToResponse(h http.Header)
}

var (
	ErrMissingProject = errors.New("personalize project uid is not configured")
	ErrBackendStatus  = errors.New("unexpected status from personalize backend")
)

// Ensure EdgeClient implements Backend.
var _ Backend = (*EdgeClient)(nil)

// EdgeClient talks to the Personalize Edge API over HTTP.
type EdgeClient struct {
	httpClient *http.Client
	baseURL    string
	cookieTTL  time.Duration
}

func NewEdgeClient(baseURL string, timeout time.Duration) *EdgeClient {
	return &EdgeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cookieTTL:  365 * 24 * time.Hour,
	}
}

// Init identifies the visitor from the uid cookie, minting a new uid for
// first visits, and picks up the manifest they already carry.
func (c *EdgeClient) Init(_ context.Context, projectUID string, r *http.Request) (Session, error) {
	if projectUID == "" {
		return nil, ErrMissingProject
	}
	s := &edgeSession{client: c, projectUID: projectUID}
	if ck, err := r.Cookie(UserUIDCookie); err == nil && ck.Value != "" {
		s.userUID = ck.Value
	} else {
		s.userUID = uuid.NewString()
		s.dirty = true
	}
	if m, err := ManifestFromRequest(r); err == nil {
		s.manifest = m
	}
	return s, nil
}

type edgeSession struct {
	client     *EdgeClient
	projectUID string
	userUID    string
	manifest   *models.Manifest
	dirty      bool
}

func (s *edgeSession) UserUID() string            { return s.userUID }
func (s *edgeSession) Manifest() *models.Manifest { return s.manifest }

// Reset forgets the visitor: a fresh uid and no manifest.
func (s *edgeSession) Reset() {
	s.userUID = uuid.NewString()
	s.manifest = nil
	s.dirty = true
}

// Set submits the attributes and refreshes the manifest so the variant
// parameter reflects them.
func (s *edgeSession) Set(ctx context.Context, attrs models.Attributes) error {
	body, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}
	if _, err := s.do(ctx, http.MethodPatch, "/user-attributes", body); err != nil {
		return err
	}
	raw, err := s.do(ctx, http.MethodGet, "/manifest", nil)
	if err != nil {
		return err
	}
	var m models.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("failed to decode manifest: %w", err)
	}
	s.manifest = &m
	s.dirty = true
	return nil
}

func (s *edgeSession) VariantParam() string {
	return Encode(FromManifest(s.manifest))
}

// AddStateToResponse writes the identity and manifest cookies.
func (s *edgeSession) AddStateToResponse(h http.Header) {
	if !s.dirty {
		return
	}
	maxAge := int(s.client.cookieTTL / time.Second)
	cookies := []*http.Cookie{{
		Name:     UserUIDCookie,
		Value:    s.userUID,
		Path:     "/",
		MaxAge:   maxAge,
		SameSite: http.SameSiteLaxMode,
	}}
	if s.manifest != nil {
		if v, err := EncodeManifest(s.manifest); err == nil {
			cookies = append(cookies, &http.Cookie{
				Name:     ManifestCookie,
				Value:    v,
				Path:     "/",
				MaxAge:   maxAge,
				SameSite: http.SameSiteLaxMode,
			})
		}
	} else {
		cookies = append(cookies, &http.Cookie{Name: ManifestCookie, Value: "", Path: "/", MaxAge: -1})
	}
	for _, ck := range cookies {
		if v := ck.String(); v != "" {
			h.Add("Set-Cookie", v)
		}
	}
}

func (s *edgeSession) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.client.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-project-uid", s.projectUID)
	req.Header.Set("x-cs-personalize-user-uid", s.userUID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d %s %s", ErrBackendStatus, resp.StatusCode, method, path)
	}
	return raw, nil
}
