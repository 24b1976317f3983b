// Package fetcher resolves the content of a single roadmap node from the
// upstream roadmap content service.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/foomo/roadmapserver/pkg/metrics"
	"github.com/foomo/roadmapserver/pkg/storage"
	"github.com/foomo/roadmapserver/requests"
	"github.com/foomo/roadmapserver/responses"
	"github.com/foomo/roadmapserver/roadmap"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultUpstreamURL = "https://roadmap.sh"
	DefaultRevalidate  = time.Hour
	DefaultTimeout     = 10 * time.Second

	// upstream bytes read for the details of a failed request
	errorBodyLimit = 4 * responses.DetailsLimit
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	Fetcher struct {
		l           *zap.Logger
		httpClient  *http.Client
		upstreamURL string
		revalidate  time.Duration
		timeout     time.Duration
		storage     storage.Storage
		cache       *Cache
		group       singleflight.Group
	}
	Option func(*Fetcher)
	// Result content of a node
	Result struct {
		// URL upstream url the content was loaded from
		URL string
		// Body upstream response body, byte for byte
		Body []byte
		// Content typed and defaulted representation of Body
		Content *roadmap.NodeContent
		// Cached true if Body came from the cache
		Cached bool
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithHTTPClient(v *http.Client) Option {
	return func(o *Fetcher) {
		o.httpClient = v
	}
}

// WithUpstreamURL base url of the roadmap content service
func WithUpstreamURL(v string) Option {
	return func(o *Fetcher) {
		o.upstreamURL = strings.TrimSuffix(v, "/")
	}
}

// WithRevalidate duration until cached content is fetched again, 0 disables the cache
func WithRevalidate(v time.Duration) Option {
	return func(o *Fetcher) {
		o.revalidate = v
	}
}

// WithTimeout upper bound of a single upstream request
func WithTimeout(v time.Duration) Option {
	return func(o *Fetcher) {
		o.timeout = v
	}
}

// WithCacheStorage storage for the content cache, defaults to an in-memory bucket
func WithCacheStorage(v storage.Storage) Option {
	return func(o *Fetcher) {
		o.storage = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(ctx context.Context, l *zap.Logger, opts ...Option) (*Fetcher, error) {
	inst := &Fetcher{
		l:           l.Named("fetcher"),
		httpClient:  http.DefaultClient,
		upstreamURL: DefaultUpstreamURL,
		revalidate:  DefaultRevalidate,
		timeout:     DefaultTimeout,
	}

	for _, opt := range opts {
		opt(inst)
	}

	if inst.storage == nil {
		s, err := storage.NewBlobStorage(ctx, "mem://", "")
		if err != nil {
			return nil, errors.Wrap(err, "failed to create default cache storage")
		}
		inst.storage = s
	}

	cache, err := NewCache(inst.l, inst.storage, inst.revalidate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cache")
	}
	inst.cache = cache

	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// URL upstream url of the given node request
func (f *Fetcher) URL(req *requests.Node) string {
	return f.upstreamURL + "/" + url.PathEscape(req.RoadmapSlug) + "/" + req.Key() + ".json"
}

// Fetch validates the parameters and returns the node content. Errors are
// of type *responses.Error carrying the http status to reply with.
func (f *Fetcher) Fetch(ctx context.Context, roadmapSlug, nodeID, name string) (*Result, error) {
	return f.FetchNode(ctx, requests.NewNode(roadmapSlug, nodeID, name))
}

// FetchNode see Fetch
func (f *Fetcher) FetchNode(ctx context.Context, req *requests.Node) (*Result, error) {
	if err := req.Validate(); err != nil {
		metrics.InvalidNodeRequests.WithLabelValues().Inc()
		return nil, err
	}

	var (
		key       = req.RoadmapSlug + "/" + req.Key() + ".json.zst"
		upstream  = f.URL(req)
		l         = f.l.With(zap.String("url", upstream))
		result    = &Result{URL: upstream}
		fromCache = false
	)

	if body, ok := f.cache.Get(ctx, key); ok {
		result.Body = body
		fromCache = true
	} else {
		// one outbound request per node, detached from the caller so a
		// canceled request does not fail the others waiting for it
		ch := f.group.DoChan(key, func() (interface{}, error) {
			body, err := f.get(context.WithoutCancel(ctx), upstream)
			if err != nil {
				return nil, err
			}
			if err := f.cache.Set(context.WithoutCancel(ctx), key, body); err != nil {
				l.Warn("failed to cache node content", zap.Error(err))
			}
			return body, nil
		})
		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			l.Debug("caller gone before upstream replied", zap.Error(ctx.Err()))
			return nil, responses.NewBadGateway("Upstream error", ctx.Err().Error())
		}
		if res.Err != nil {
			l.Info("failed to fetch node content", zap.Error(res.Err))
			return nil, res.Err
		}
		if res.Shared {
			l.Debug("shared upstream response")
		}
		result.Body = res.Val.([]byte)
	}

	content := &roadmap.NodeContent{}
	if err := json.Unmarshal(result.Body, content); err != nil {
		return nil, responses.NewBadGateway("Invalid upstream response", string(result.Body))
	}
	result.Content = content.Normalize()
	result.Cached = fromCache
	return result, nil
}

func (f *Fetcher) Close() error {
	return f.cache.Close()
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (f *Fetcher) get(ctx context.Context, upstream string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	code := "error"
	defer func() {
		metrics.UpstreamRequestCounter.WithLabelValues(code).Inc()
		metrics.UpstreamRequestDuration.WithLabelValues(code).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstream, nil)
	if err != nil {
		return nil, responses.NewBadGateway("Upstream error", err.Error())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, responses.NewBadGateway("Upstream timeout", err.Error())
		}
		return nil, responses.NewBadGateway("Upstream unreachable", err.Error())
	}
	defer resp.Body.Close()
	code = strconv.Itoa(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, responses.NewBadGateway(fmt.Sprintf("Upstream error (%d)", resp.StatusCode), string(details))
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, resp.Body); err != nil {
		if isTimeout(err) {
			return nil, responses.NewBadGateway("Upstream timeout", err.Error())
		}
		return nil, responses.NewBadGateway("Upstream error", err.Error())
	}
	if err := json.Unmarshal(buf.Bytes(), &roadmap.NodeContent{}); err != nil {
		return nil, responses.NewBadGateway("Invalid upstream response", buf.String())
	}
	return buf.Bytes(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
