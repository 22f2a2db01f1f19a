package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/shelfwise/shelfwise-backend/pkg/errors"
)

const (
	defaultBaseURL               = "https://world.openfoodfacts.org/api/v0/product"
	defaultTimeout               = 8 * time.Second
	responseBodyReadLimit  int64 = 1024
	statusProductFound           = 1
)

// ErrNotFound reports that the catalog has no record for the barcode.
// Callers treat lookup failures and not-found identically, but the
// distinction matters for telemetry.
var ErrNotFound = errors.New("catalog: product not found")

// Client wraps the public product catalog used to enrich new products.
// Every lookup is read-only and best-effort; the ingestion pipeline must
// keep working when this API is slow or down.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured catalog base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout bounds every lookup issued by the client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the catalog client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client
}

// ProductData is the normalized enrichment payload for one barcode.
// Every field except Barcode may be empty.
type ProductData struct {
	Barcode     string
	Name        string
	Brand       string
	ImageURL    string
	Ingredients string
	NutriScore  string
	EcoScore    string
	Allergens   string
	Origin      string
	Packaging   string
	Categories  []string
}

// Lookup fetches public metadata for the barcode. Returns ErrNotFound when
// the catalog has no record; any other error means the catalog itself was
// unreachable or answered garbage.
func (c *Client) Lookup(ctx context.Context, barcode string) (*ProductData, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}
	trimmed := strings.TrimSpace(barcode)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}

	lookupURL := fmt.Sprintf("%s/%s.json", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build catalog request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute catalog request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "catalog request failed")
	}

	var apiResp struct {
		Status  int    `json:"status"`
		Code    string `json:"code"`
		Product struct {
			ProductName   string   `json:"product_name"`
			Brands        string   `json:"brands"`
			ImageURL      string   `json:"image_url"`
			Ingredients   string   `json:"ingredients_text"`
			NutriScore    string   `json:"nutriscore_grade"`
			EcoScore      string   `json:"ecoscore_grade"`
			Allergens     string   `json:"allergens"`
			Origins       string   `json:"origins"`
			Packaging     string   `json:"packaging"`
			CategoriesTag []string `json:"categories_tags"`
		} `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode catalog response")
	}

	if apiResp.Status != statusProductFound {
		return nil, ErrNotFound
	}

	return &ProductData{
		Barcode:     trimmed,
		Name:        strings.TrimSpace(apiResp.Product.ProductName),
		Brand:       strings.TrimSpace(apiResp.Product.Brands),
		ImageURL:    strings.TrimSpace(apiResp.Product.ImageURL),
		Ingredients: strings.TrimSpace(apiResp.Product.Ingredients),
		NutriScore:  strings.TrimSpace(apiResp.Product.NutriScore),
		EcoScore:    strings.TrimSpace(apiResp.Product.EcoScore),
		Allergens:   strings.TrimSpace(apiResp.Product.Allergens),
		Origin:      strings.TrimSpace(apiResp.Product.Origins),
		Packaging:   strings.TrimSpace(apiResp.Product.Packaging),
		Categories:  normalizeCategories(apiResp.Product.CategoriesTag),
	}, nil
}

// normalizeCategories strips language prefixes like "en:" and drops empties.
func normalizeCategories(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		cleaned := strings.TrimSpace(tag)
		if idx := strings.Index(cleaned, ":"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.ReplaceAll(cleaned, "-", " ")
		if cleaned == "" {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}
