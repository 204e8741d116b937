package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	perrors "cms-site/pkg/errors"
	"cms-site/pkg/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Ensure DeliveryClient implements EntryStore.
var _ EntryStore = (*DeliveryClient)(nil)

// DeliveryClient reads entries from the Contentstack Content Delivery API.
type DeliveryClient struct {
	httpClient  *http.Client
	host        string
	apiKey      string
	token       string
	environment string
	timeout     time.Duration
	logger      zerolog.Logger
}

func NewDeliveryClient(host, apiKey, token, environment string, timeout time.Duration, logger zerolog.Logger) *DeliveryClient {
	return &DeliveryClient{
		httpClient:  &http.Client{Timeout: timeout},
		host:        strings.TrimRight(host, "/"),
		apiKey:      apiKey,
		token:       token,
		environment: environment,
		timeout:     timeout,
		logger:      logger,
	}
}

type deliveryResponse struct {
	Entries []json.RawMessage `json:"entries"`
	Count   int               `json:"count"`
}

func (c *DeliveryClient) Query(ctx context.Context, contentType models.ContentType, q Query) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint, err := c.buildURL(contentType, q)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("content_type", string(contentType)).Str("url", endpoint).Msg("Querying entries")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api_key", c.apiKey)
	req.Header.Set("access_token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, perrors.Newf(perrors.ErrStoreStatus, "%s: status %d", contentType, resp.StatusCode).
			WithDetail("body", truncate(string(body), 200))
	}

	var out deliveryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, perrors.Wrapf(err, perrors.ErrStoreDecode, "%s: decode entries", contentType)
	}
	return &Result{Entries: out.Entries, Count: out.Count}, nil
}

func (c *DeliveryClient) buildURL(contentType models.ContentType, q Query) (string, error) {
	params := url.Values{}
	params.Set("environment", c.environment)

	filter := map[string]any{}
	for k, v := range q.Equal {
		filter[k] = v
	}
	for k, v := range q.NotEqual {
		filter[k] = map[string]any{"$ne": v}
	}
	if len(q.Or) > 0 {
		filter["$or"] = q.Or
	}
	if len(filter) > 0 {
		raw, err := json.Marshal(filter)
		if err != nil {
			return "", fmt.Errorf("failed to marshal query: %w", err)
		}
		params.Set("query", string(raw))
	}
	if q.Locale != "" {
		params.Set("locale", q.Locale)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Skip > 0 {
		params.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.IncludeCount {
		params.Set("include_count", "true")
	}
	for _, ref := range q.IncludeReferences {
		params.Add("include[]", ref)
	}
	for _, field := range q.Only {
		params.Add("only[BASE][]", field)
	}
	if len(q.VariantAliases) > 0 {
		params.Set("include_variant", "true")
		params.Set("variant_alias", strings.Join(q.VariantAliases, ","))
	}

	return fmt.Sprintf("%s/v3/content_types/%s/entries?%s", c.host, url.PathEscape(string(contentType)), params.Encode()), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
