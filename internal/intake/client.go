package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"codelens/internal/cache/memory"
	"codelens/internal/logger"
)

const (
	DefaultBackendURL     = "http://localhost:8080"
	DefaultAnalyzeTimeout = 30 * time.Second
	DefaultRatePerMinute  = 30

	maxAnalysisBytes = 64 << 20
)

type ClientConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerMinute int
	CacheEntries  int
	CacheTTL      time.Duration
	HTTPClient    *http.Client
}

// AnalysisClient calls the external analysis service. Calls are rate
// limited and successful results are cached per repository.
type AnalysisClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	cache   *memory.TTLCache[string, json.RawMessage]
}

func NewAnalysisClient(cfg ClientConfig) *AnalysisClient {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBackendURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultAnalyzeTimeout
	}
	perMin := cfg.RatePerMinute
	if perMin <= 0 {
		perMin = DefaultRatePerMinute
	}
	entries := cfg.CacheEntries
	if entries <= 0 {
		entries = 64
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &AnalysisClient{
		baseURL: base,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		timeout: timeout,
		http:    hc,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin),
		cache:   memory.NewTTLCache[string, json.RawMessage](entries, 256<<20, ttl),
	}
}

func cacheKey(ref RepoRef) string {
	return strings.ToLower(ref.Owner + "/" + ref.Repo)
}

// CacheStats exposes the result cache counters.
func (c *AnalysisClient) CacheStats() memory.Stats { return c.cache.Stats() }

// Analyze posts {owner, repo, url} to <base>/api/analyze and returns the
// JSON object the service answers with.
func (c *AnalysisClient) Analyze(ctx context.Context, ref RepoRef) (json.RawMessage, error) {
	key := cacheKey(ref)
	if data, ok := c.cache.Get(key); ok {
		logger.FromContext(ctx).Debugw("analysis cache hit", logger.FieldRepo, key)
		return data, nil
	}
	if !c.limiter.Allow() {
		return nil, errors.Wrapf(ErrRateLimited, "analyze %s", key)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(ref)
	if err != nil {
		return nil, errors.Wrap(err, "encode analyze request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build analyze request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	logger.FromContext(ctx).Infow("analysis response",
		logger.FieldRepo, key,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDurationMS, time.Since(started).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(ErrRepoNotFound, "analyze %s", key)
	case resp.StatusCode == http.StatusForbidden:
		return nil, errors.Wrapf(ErrAccessDenied, "analyze %s", key)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.Wrapf(ErrUpstream, "analyze %s: status %d", key, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxAnalysisBytes))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	if !isJSONObject(raw) {
		return nil, errors.Wrapf(ErrInvalidUpstreamData, "analyze %s", key)
	}
	data := json.RawMessage(bytes.TrimSpace(raw))
	c.cache.Set(key, data, len(data))
	return data, nil
}

func isJSONObject(raw []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	return obj != nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Mark(errors.Wrap(err, "analysis request"), ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Mark(errors.Wrap(err, "analysis request"), ErrTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "analysis request")
	}
	// Anything else from the transport means the service was not reachable.
	var urlErr *url.Error
	var opErr *net.OpError
	switch {
	case errors.As(err, &urlErr), errors.As(err, &opErr), errors.As(err, &netErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return errors.Mark(errors.Wrap(err, "analysis request"), ErrUnavailable)
	}
	return errors.Wrap(err, "analysis request")
}
