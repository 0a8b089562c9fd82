package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"insyn-search/loader"
	"insyn-search/models"

	"go.uber.org/zap"
)

const (
	ExportURL       = "https://marknadssok.fi.se/Publiceringsklient/sv-SE/Search/Search"
	AutoCompleteURL = "https://marknadssok.fi.se/Publiceringsklient/sv-SE/AutoComplete/H%C3%A4mtaAutoCompleteListaFull"

	DefaultTimeout = 30 * time.Second

	exportAccept       = "text/csv; charset=utf-8"
	autoCompleteAccept = "application/json, text/javascript, */*; q=0.01"

	searchFunction = "Insyn"
	issuerField    = "Utgivare"
)

// Endpoint names used in errors and logs.
const (
	EndpointExport       = "export"
	EndpointAutoComplete = "autocomplete"
)

// Client talks to Finansinspektionen's Insynsregistret. It holds no mutable
// state and is safe for concurrent use.
type Client struct {
	httpClient      *http.Client
	exportURL       string
	autoCompleteURL string
	logger          *zap.Logger
}

// Option configures a Client built by NewClient.
type Option func(*options)

type options struct {
	timeout         time.Duration
	transport       http.RoundTripper
	exportURL       string
	autoCompleteURL string
	logger          *zap.Logger
}

// WithTimeout bounds every upstream call. Zero keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTransport replaces the proxying transport, e.g. with a stub in tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithEndpoints points the client at other export and autocomplete URLs.
func WithEndpoints(exportURL, autoCompleteURL string) Option {
	return func(o *options) {
		o.exportURL = exportURL
		o.autoCompleteURL = autoCompleteURL
	}
}

// WithLogger sets where the client logs. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewClient builds a client that sends every request through the proxies in
// cfg. Invalid proxy URLs are rejected here rather than on first use.
func NewClient(cfg models.ProxyConfig, opts ...Option) (*Client, error) {
	o := options{
		timeout:         DefaultTimeout,
		exportURL:       ExportURL,
		autoCompleteURL: AutoCompleteURL,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.transport
	if transport == nil {
		proxyFunc, err := cfg.ProxyFunc()
		if err != nil {
			return nil, err
		}
		base := http.DefaultTransport.(*http.Transport).Clone()
		base.Proxy = proxyFunc
		transport = base
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   o.timeout,
		},
		exportURL:       o.exportURL,
		autoCompleteURL: o.autoCompleteURL,
		logger:          o.logger,
	}, nil
}

// FetchRecords downloads the export for one issuer and date ranges and
// returns one record per exported row, in upstream order.
func (c *Client) FetchRecords(ctx context.Context, q models.RecordQuery) ([]models.Record, error) {
	params := url.Values{
		"SearchFunctionType":     {searchFunction},
		"Utgivare":               {q.Company},
		"Transaktionsdatum.From": {q.Transaction.From.String()},
		"Transaktionsdatum.To":   {q.Transaction.To.String()},
		"Publiceringsdatum.From": {q.Publication.From.String()},
		"Publiceringsdatum.To":   {q.Publication.To.String()},
		"button":                 {"export"},
		"Page":                   {"1"},
	}

	body, err := c.get(ctx, EndpointExport, c.exportURL, params, exportAccept)
	if err != nil {
		return nil, err
	}

	text, err := loader.DecodeBody(body)
	if err != nil {
		return nil, &MalformedResponseError{Endpoint: EndpointExport, Reason: "undecodable body", Err: err}
	}

	records, stats, err := loader.ParseRecords(loader.Normalize(text))
	if err != nil {
		return nil, &MalformedResponseError{Endpoint: EndpointExport, Reason: "unparseable export", Err: err}
	}
	if stats.Mismatched() {
		c.logger.Warn("export rows did not match header width, truncated",
			zap.String("company", q.Company),
			zap.Int("rows", stats.Rows),
			zap.Int("short_rows", stats.ShortRows),
			zap.Int("long_rows", stats.LongRows),
		)
	}

	c.logger.Debug("fetched records",
		zap.String("company", q.Company),
		zap.Int("rows", stats.Rows),
	)
	return records, nil
}

// Search asks the registry's issuer autocomplete for keyword and returns the
// JSON it answered with, unmodified.
func (c *Client) Search(ctx context.Context, keyword string) (json.RawMessage, error) {
	params := url.Values{
		"sokfunktion": {searchFunction},
		"sokterm":     {keyword},
		"falt":        {issuerField},
	}

	body, err := c.get(ctx, EndpointAutoComplete, c.autoCompleteURL, params, autoCompleteAccept)
	if err != nil {
		return nil, err
	}

	text, err := loader.DecodeBody(body)
	if err != nil {
		return nil, &MalformedResponseError{Endpoint: EndpointAutoComplete, Reason: "undecodable body", Err: err}
	}

	raw := bytes.TrimSpace([]byte(text))
	if !json.Valid(raw) {
		return nil, &MalformedResponseError{Endpoint: EndpointAutoComplete, Reason: "body is not JSON"}
	}
	return json.RawMessage(raw), nil
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, params url.Values, accept string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s url: %w", endpoint, err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamRequestError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream response",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamRequestError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamRequestError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return body, nil
}
