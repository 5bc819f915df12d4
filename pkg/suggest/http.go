package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

// KindPlaceholder in an HTTP source endpoint is replaced by the escaped
// autocomplete kind.
const KindPlaceholder = "{kind}"

// HTTPSource fetches suggestions from a JSON endpoint. By default it expects
// {"data":[{"value":...,"label":...}]} and sends the query as ?q=.
type HTTPSource struct {
	endpoint    string
	method      string
	client      *http.Client
	queryParam  string
	limitParam  string
	limit       int
	params      map[string]string
	headers     map[string]string
	resultsPath string
	valueField  string
	labelField  string
	logger      *slog.Logger
}

var _ choice.Fetcher = (*HTTPSource)(nil)

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the client; the default has a 10s timeout.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithMethod overrides the request method.
func WithMethod(method string) HTTPOption {
	return func(s *HTTPSource) {
		if method = strings.ToUpper(strings.TrimSpace(method)); method != "" {
			s.method = method
		}
	}
}

// WithQueryParam renames the query parameter carrying the typed text.
func WithQueryParam(name string) HTTPOption {
	return func(s *HTTPSource) {
		if strings.TrimSpace(name) != "" {
			s.queryParam = name
		}
	}
}

// WithLimit sends limit through the named parameter.
func WithLimit(param string, limit int) HTTPOption {
	return func(s *HTTPSource) {
		s.limitParam = strings.TrimSpace(param)
		s.limit = limit
	}
}

// WithParams adds static query parameters to every request.
func WithParams(params map[string]string) HTTPOption {
	return func(s *HTTPSource) {
		for key, value := range params {
			s.params[key] = value
		}
	}
}

// WithHeader adds a request header.
func WithHeader(key, value string) HTTPOption {
	return func(s *HTTPSource) {
		s.headers[key] = value
	}
}

// WithResultsPath sets the dot path to the result list. An empty path means
// the payload itself is the list.
func WithResultsPath(path string) HTTPOption {
	return func(s *HTTPSource) {
		s.resultsPath = strings.TrimSpace(path)
	}
}

// WithValueField sets the dot path of each result's value.
func WithValueField(path string) HTTPOption {
	return func(s *HTTPSource) {
		if strings.TrimSpace(path) != "" {
			s.valueField = path
		}
	}
}

// WithLabelField sets the dot path of each result's label.
func WithLabelField(path string) HTTPOption {
	return func(s *HTTPSource) {
		if strings.TrimSpace(path) != "" {
			s.labelField = path
		}
	}
}

// WithHTTPLogger injects a structured logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(s *HTTPSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHTTPSource builds a source querying endpoint.
func NewHTTPSource(endpoint string, opts ...HTTPOption) (*HTTPSource, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("suggest: http endpoint is required")
	}
	if _, err := url.Parse(strings.ReplaceAll(endpoint, KindPlaceholder, "kind")); err != nil {
		return nil, fmt.Errorf("suggest: parse endpoint: %w", err)
	}
	s := &HTTPSource{
		endpoint:    endpoint,
		method:      http.MethodGet,
		client:      &http.Client{Timeout: 10 * time.Second},
		queryParam:  "q",
		params:      make(map[string]string),
		headers:     make(map[string]string),
		resultsPath: "data",
		valueField:  "value",
		labelField:  "label",
		logger:      discardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Fetch implements choice.Fetcher.
func (s *HTTPSource) Fetch(ctx context.Context, kind, query string) ([]option.Option, error) {
	reqURL, err := url.Parse(strings.ReplaceAll(s.endpoint, KindPlaceholder, url.PathEscape(kind)))
	if err != nil {
		return nil, fmt.Errorf("suggest: parse url: %w", err)
	}
	q := reqURL.Query()
	for key, value := range s.params {
		q.Set(key, value)
	}
	q.Set(s.queryParam, query)
	if s.limitParam != "" && s.limit > 0 {
		q.Set(s.limitParam, strconv.Itoa(s.limit))
	}
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, s.method, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("suggest: request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range s.headers {
		req.Header.Set(key, value)
	}

	started := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("suggest: do request: %w", err)
	}
	defer resp.Body.Close()

	s.logger.Debug("suggest: http fetch",
		"kind", kind,
		"url", reqURL.String(),
		"status", resp.StatusCode,
		"elapsed", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("suggest: unexpected status %d", resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("suggest: decode: %w", err)
	}

	items := extractResults(payload, s.resultsPath)
	out := make([]option.Option, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			// bare entries are their own value
			if item != nil {
				out = append(out, option.Option{Value: item})
			}
			continue
		}
		value, ok := pickValue(obj, s.valueField)
		if !ok || value == nil {
			continue
		}
		label, _ := pickValue(obj, s.labelField)
		labelText, _ := label.(string)
		out = append(out, option.Option{Label: labelText, Value: value})
	}
	return out, nil
}

func extractResults(payload any, path string) []any {
	if payload == nil {
		return nil
	}
	cur := payload
	if path != "" {
		for _, segment := range strings.Split(path, ".") {
			node, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = node[segment]
		}
	}
	list, _ := cur.([]any)
	return list
}

func pickValue(m map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = m
	for _, segment := range strings.Split(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
