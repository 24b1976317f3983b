package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	httputils "github.com/foomo/keel/utils/net/http"
	"github.com/foomo/roadmapserver/pkg/fetcher"
	"github.com/foomo/roadmapserver/pkg/metrics"
	"github.com/foomo/roadmapserver/pkg/render"
	"github.com/foomo/roadmapserver/pkg/repo"
	"github.com/foomo/roadmapserver/requests"
	"github.com/foomo/roadmapserver/responses"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultBasePath = "/api/roadmap"

	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html; charset=utf-8"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	HTTP struct {
		l        *zap.Logger
		basePath string
		repo     *repo.Repo
		fetcher  *fetcher.Fetcher
		router   chi.Router
	}
	HTTPOption func(*HTTP)
	// htmlRenderer renders a fragment into the response
	htmlRenderer func(w *bytes.Buffer) error
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns the roadmap api
func NewHTTP(l *zap.Logger, repo *repo.Repo, fetcher *fetcher.Fetcher, opts ...HTTPOption) http.Handler {
	inst := &HTTP{
		l:        l.Named("http"),
		basePath: DefaultBasePath,
		repo:     repo,
		fetcher:  fetcher,
	}

	for _, opt := range opts {
		opt(inst)
	}

	r := chi.NewRouter()
	r.Route(inst.basePath, func(r chi.Router) {
		r.Get("/node", inst.instrument(RouteGetNode, inst.getNode))
		r.Get("/node/html", inst.instrument(RouteGetNodeHTML, inst.getNodeHTML))
		r.Get("/roadmaps", inst.instrument(RouteGetRoadmaps, inst.getRoadmaps))
		r.Route("/roadmaps/{slug}", func(r chi.Router) {
			r.Get("/tree", inst.instrument(RouteGetTree, inst.getTree))
			r.Get("/tree/html", inst.instrument(RouteGetTreeHTML, inst.getTreeHTML))
			r.Get("/topics", inst.instrument(RouteGetTopics, inst.getTopics))
			r.Get("/topics/html", inst.instrument(RouteGetTopicsHTML, inst.getTopicsHTML))
		})
		r.Get("/index", inst.instrument(RouteGetIndex, inst.getIndex))
		r.Post("/update", inst.instrument(RouteUpdate, inst.update))
	})
	inst.router = r

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithBasePath(v string) HTTPOption {
	return func(o *HTTP) {
		o.basePath = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) instrument(route Route, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ServiceRequestCounter.WithLabelValues(string(route), strconv.Itoa(status)).Inc()
		metrics.ServiceRequestDuration.WithLabelValues(string(route), strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	}
}

func (h *HTTP) getNode(w http.ResponseWriter, r *http.Request) {
	res, err := h.fetcher.FetchNode(r.Context(), requests.NodeFromQuery(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("X-Cache", cacheHeader(res.Cached))
	_, _ = w.Write(res.Body)
}

func (h *HTTP) getNodeHTML(w http.ResponseWriter, r *http.Request) {
	res, err := h.fetcher.FetchNode(r.Context(), requests.NodeFromQuery(r.URL.Query()))
	if err != nil {
		h.writeErrorHTML(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(res.Cached))
	h.writeHTML(w, r, func(b *bytes.Buffer) error {
		return render.Content(b, res.Content)
	})
}

func (h *HTTP) getRoadmaps(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.repo.Roadmaps())
}

func (h *HTTP) getTree(w http.ResponseWriter, r *http.Request) {
	if rm, ok := h.roadmap(w, r, h.writeError); ok {
		h.writeJSON(w, r, http.StatusOK, rm.Tree)
	}
}

func (h *HTTP) getTreeHTML(w http.ResponseWriter, r *http.Request) {
	if rm, ok := h.roadmap(w, r, h.writeErrorHTML); ok {
		h.writeHTML(w, r, func(b *bytes.Buffer) error {
			return render.Tree(b, rm.Slug, rm.Tree)
		})
	}
}

func (h *HTTP) getTopics(w http.ResponseWriter, r *http.Request) {
	if rm, ok := h.roadmap(w, r, h.writeError); ok {
		h.writeJSON(w, r, http.StatusOK, rm.Topics)
	}
}

func (h *HTTP) getTopicsHTML(w http.ResponseWriter, r *http.Request) {
	if rm, ok := h.roadmap(w, r, h.writeErrorHTML); ok {
		h.writeHTML(w, r, func(b *bytes.Buffer) error {
			return render.Topics(b, rm.Slug, rm.Topics)
		})
	}
}

func (h *HTTP) getIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.repo.WriteIndexBytes(r.Context(), &buf); err != nil {
		h.l.Warn("failed to write index", zap.Error(err))
		h.writeError(w, r, responses.NewError(http.StatusServiceUnavailable, "Index not loaded"))
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	_, _ = w.Write(buf.Bytes())
}

func (h *HTTP) update(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.repo.Update(r.Context()))
}

// roadmap resolves the slug url param and replies with an error if it is unknown
func (h *HTTP) roadmap(w http.ResponseWriter, r *http.Request, writeErr func(http.ResponseWriter, *http.Request, error)) (*repo.Roadmap, bool) {
	if !h.repo.Loaded() {
		writeErr(w, r, responses.NewError(http.StatusServiceUnavailable, "Index not loaded"))
		return nil, false
	}
	slug := chi.URLParam(r, "slug")
	rm, ok := h.repo.GetRoadmap(slug)
	if !ok {
		metrics.UnknownRoadmapRequests.WithLabelValues().Inc()
		writeErr(w, r, responses.NewErrorf(http.StatusNotFound, "Unknown roadmap %q", slug))
		return nil, false
	}
	return rm, true
}

func (h *HTTP) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, errors.Wrap(err, "failed to encode reply"))
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (h *HTTP) writeHTML(w http.ResponseWriter, r *http.Request, fn htmlRenderer) {
	var b bytes.Buffer
	if err := fn(&b); err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, errors.Wrap(err, "failed to render html"))
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	_, _ = w.Write(b.Bytes())
}

func (h *HTTP) writeError(w http.ResponseWriter, r *http.Request, err error) {
	respErr := h.responseError(err)
	h.writeJSON(w, r, respErr.Status, respErr)
}

func (h *HTTP) writeErrorHTML(w http.ResponseWriter, r *http.Request, err error) {
	respErr := h.responseError(err)
	var b bytes.Buffer
	if err := render.Error(&b, respErr.Message); err != nil {
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, errors.Wrap(err, "failed to render error"))
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(respErr.Status)
	_, _ = w.Write(b.Bytes())
}

func (h *HTTP) responseError(err error) *responses.Error {
	var respErr *responses.Error
	if errors.As(err, &respErr) {
		if respErr.Status >= http.StatusInternalServerError {
			h.l.Warn("request failed", zap.Error(err))
		}
		return respErr
	}
	h.l.Error("unexpected error", zap.Error(err))
	return responses.NewError(http.StatusInternalServerError, "Internal server error")
}

func cacheHeader(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}
