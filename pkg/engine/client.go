package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depscope/depscope/pkg/cache"
	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/httputil"
	"github.com/depscope/depscope/pkg/observability"
)

const resolvePath = "/api/v1/resolve"

// Client calls the remote resolution engine over HTTP.
//
// A failed call is never an error for the caller: every transport or
// protocol failure degrades to "could not resolve" so the dispatcher can
// fall back to in-process parsing. Typed failures the engine itself
// reports do surface, as deps.ResolutionError values.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	cache    cache.Cache
	keyer    cache.Keyer
	cacheTTL time.Duration

	retries    int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithCache enables response caching for successful resolutions. Keys are
// derived from the content hashes of the source files, so an edited file
// never serves a stale response.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		if c.keyer == nil {
			c.keyer = cache.NewDefaultKeyer()
		}
		c.cacheTTL = ttl
	}
}

// WithKeyer overrides the cache key scheme, e.g. with a scoped keyer when
// several tools share one cache backend.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) { c.keyer = k }
}

// WithRetry overrides the retry policy for transient transport failures.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = attempts
		c.retryDelay = delay
	}
}

// NewClient creates an engine client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     log.Default(),
		retries:    3,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve asks the engine to resolve one dependency source.
//
// The resolved flag reports whether the engine produced a dependency list;
// an empty list with resolved=true is a valid outcome (the engine looked
// and found nothing). When resolved is false the caller should fall back
// to in-process parsing; errs may still carry the engine's typed failures.
// targets holds the files consumed by a successful resolution.
func (c *Client) Resolve(ctx context.Context, src deps.Source) (found []deps.FoundDependency, resolved bool, errs []error, targets []string) {
	wireSrc := EncodeSource(src)

	cacheKey := c.cacheKey(wireSrc, src)
	if result, ok := c.cachedResult(ctx, cacheKey); ok {
		observability.Cache().OnCacheHit(ctx, "engine")
		return c.interpret(src, *result)
	}
	if cacheKey != "" {
		observability.Cache().OnCacheMiss(ctx, "engine")
	}

	observability.Engine().OnRequest(ctx, wireSrc.Kind, src.DisplayPaths())
	start := time.Now()
	result, err := c.call(ctx, ResolveRequest{Sources: []WireSource{wireSrc}})
	if err != nil {
		observability.Engine().OnError(ctx, wireSrc.Kind, err)
		c.logger.Debug("engine call failed", "error", err)
		return nil, false, nil, nil
	}

	found, resolved, errs, targets = c.interpret(src, *result)
	observability.Engine().OnResponse(ctx, wireSrc.Kind, resolved, time.Since(start))
	if resolved && cacheKey != "" {
		c.storeResult(ctx, cacheKey, *result)
	}
	return found, resolved, errs, targets
}

// call performs the HTTP round trip and returns the first result.
func (c *Client) call(ctx context.Context, reqBody ResolveRequest) (*ResolveResult, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	var resp ResolveResponse
	err = httputil.Retry(ctx, c.retries, c.retryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+resolvePath, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		if httpResp.StatusCode >= 500 || httpResp.StatusCode == http.StatusTooManyRequests {
			return &httputil.RetryableError{Err: fmt.Errorf("engine returned %d", httpResp.StatusCode)}
		}
		if httpResp.StatusCode != http.StatusOK {
			return errors.New(errors.ErrCodeEngineProtocol, "engine returned %d", httpResp.StatusCode)
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return errors.Wrap(errors.ErrCodeEngineProtocol, err, "decoding engine response")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errors.ErrCodeEngineProtocol) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeEngineUnavailable, err, "calling resolution engine")
	}

	if len(resp.Results) == 0 {
		return nil, errors.New(errors.ErrCodeEngineProtocol, "engine returned no results")
	}
	if len(resp.Results) > 1 {
		c.logger.Warn("too many results from resolution engine", "expected", 1, "got", len(resp.Results))
	}
	return &resp.Results[0], nil
}

// interpret applies the adapter semantics to one engine result.
func (c *Client) interpret(src deps.Source, result ResolveResult) ([]deps.FoundDependency, bool, []error, []string) {
	sourceFile := errorSourceFile(src)

	if result.Result.Ok != nil {
		// Tracked-only kinds (no ecosystem) should never come back
		// resolved; if one does, the engine and our tables disagree.
		if deps.SourceEcosystem(src) == deps.EcosystemNone {
			return nil, false, []error{deps.ResolutionError{
				Kind:       deps.ResolutionInternal,
				Message:    "engine resolved a source kind with no supported ecosystem",
				SourceFile: sourceFile,
			}}, nil
		}

		ok := result.Result.Ok
		found := make([]deps.FoundDependency, len(ok.Dependencies))
		for i, wd := range ok.Dependencies {
			found[i] = DecodeDependency(wd)
		}
		var errs []error
		for _, we := range ok.Errors {
			errs = append(errs, deps.ResolutionError{
				Kind:       deps.ResolutionErrorKind(we.Kind),
				Message:    we.Message,
				SourceFile: sourceFile,
			})
		}
		return found, true, errs, resolveTargets(src)
	}

	if result.Result.Err != nil {
		var errs []error
		for _, we := range result.Result.Err.Errors {
			errs = append(errs, deps.ResolutionError{
				Kind:       deps.ResolutionErrorKind(we.Kind),
				Message:    we.Message,
				SourceFile: sourceFile,
			})
		}
		return nil, false, errs, nil
	}

	return nil, false, []error{deps.ResolutionError{
		Kind:       deps.ResolutionInternal,
		Message:    "engine result carried neither ok nor err",
		SourceFile: sourceFile,
	}}, nil
}

// errorSourceFile picks the path errors are attributed to: the lockfile
// when present, else the manifest.
func errorSourceFile(src deps.Source) string {
	switch s := src.(type) {
	case deps.ManifestOnly:
		return s.Manifest.Path
	case deps.LockfileOnly:
		return s.Lockfile.Path
	case deps.ManifestLockfile:
		return s.Lockfile.Path
	case deps.MultiLockfile:
		if len(s.Sources) > 0 {
			return errorSourceFile(s.Sources[0])
		}
	}
	return ""
}

// resolveTargets returns the files consumed as data by a successful
// resolution: the manifest for manifest-only sources, else the lockfile.
func resolveTargets(src deps.Source) []string {
	switch s := src.(type) {
	case deps.ManifestOnly:
		return []string{s.Manifest.Path}
	case deps.LockfileOnly:
		return []string{s.Lockfile.Path}
	case deps.ManifestLockfile:
		return []string{s.Lockfile.Path}
	case deps.MultiLockfile:
		var targets []string
		for _, child := range s.Sources {
			targets = append(targets, resolveTargets(child)...)
		}
		return targets
	}
	return nil
}

// cacheKey derives the cache key from the source kind and the content
// hashes of every source file. Returns "" when caching is disabled or a
// file cannot be read.
func (c *Client) cacheKey(wireSrc WireSource, src deps.Source) string {
	if c.cache == nil {
		return ""
	}
	files := src.SourceFiles()
	hashes := make([]string, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		hashes = append(hashes, cache.Hash(data))
	}
	return c.keyer.EngineKey(wireSrc.Kind, hashes)
}

func (c *Client) cachedResult(ctx context.Context, key string) (*ResolveResult, bool) {
	if key == "" {
		return nil, false
	}
	data, hit, err := c.cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, false
	}
	var result ResolveResult
	if err := json.Unmarshal(data, &result); err != nil {
		_ = c.cache.Delete(ctx, key)
		return nil, false
	}
	return &result, true
}

func (c *Client) storeResult(ctx context.Context, key string, result ResolveResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Debug("engine cache store failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "engine", len(data))
}
