package repo

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foomo/roadmapserver/pkg/metrics"
	"github.com/foomo/roadmapserver/responses"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Repo roadmap index repository
type (
	Repo struct {
		l                       *zap.Logger
		url                     string
		poll                    bool
		pollInterval            time.Duration
		roots                   []string
		onLoaded                func()
		loaded                  *atomic.Bool
		history                 *History
		httpClient              *http.Client
		updateInProgressChannel chan chan updateResponse
		directory               map[string]*Roadmap
		revision                string
		numEntries              int
		directoryLock           sync.RWMutex
		jsonBuffer              *bytes.Buffer
		jsonBufferLock          sync.RWMutex
	}
	Option func(*Repo)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// New url is either a http(s) url or a local file path of a json index
func New(l *zap.Logger, url string, history *History, opts ...Option) *Repo {
	inst := &Repo{
		l:                       l.Named("repo"),
		url:                     url,
		poll:                    false,
		loaded:                  &atomic.Bool{},
		pollInterval:            time.Minute,
		history:                 history,
		httpClient:              http.DefaultClient,
		directory:               map[string]*Roadmap{},
		updateInProgressChannel: make(chan chan updateResponse),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithHTTPClient(v *http.Client) Option {
	return func(o *Repo) {
		o.httpClient = v
	}
}

func WithPoll(v bool) Option {
	return func(o *Repo) {
		o.poll = v
	}
}

func WithPollInterval(v time.Duration) Option {
	return func(o *Repo) {
		o.pollInterval = v
	}
}

// WithRoots limits the exposed roadmaps to the given root labels
func WithRoots(v ...string) Option {
	return func(o *Repo) {
		o.roots = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (r *Repo) Loaded() bool {
	return r.loaded.Load()
}

func (r *Repo) Directory() map[string]*Roadmap {
	r.directoryLock.RLock()
	defer r.directoryLock.RUnlock()
	return r.directory
}

// Revision sha256 of the loaded index
func (r *Repo) Revision() string {
	r.directoryLock.RLock()
	defer r.directoryLock.RUnlock()
	return r.revision
}

func (r *Repo) JSONBufferBytes() []byte {
	r.jsonBufferLock.RLock()
	defer r.jsonBufferLock.RUnlock()
	if r.jsonBuffer == nil {
		return nil
	}
	return r.jsonBuffer.Bytes()
}

func (r *Repo) SetJSONBuffer(v *bytes.Buffer) {
	r.jsonBufferLock.Lock()
	defer r.jsonBufferLock.Unlock()
	r.jsonBuffer = v
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (r *Repo) OnLoaded(fn func()) {
	r.onLoaded = fn
}

// GetRoadmap by slug
func (r *Repo) GetRoadmap(slug string) (*Roadmap, bool) {
	rm, ok := r.Directory()[slug]
	return rm, ok
}

// Roadmaps summaries of all loaded roadmaps sorted by slug
func (r *Repo) Roadmaps() []responses.Roadmap {
	directory := r.Directory()
	ret := make([]responses.Roadmap, 0, len(directory))
	for _, rm := range directory {
		ret = append(ret, rm.Summary())
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Slug < ret[j].Slug
	})
	return ret
}

// WriteIndexBytes writes the raw index to the provided writer.
// It serves from the in-memory buffer, falling back to storage only when empty.
// The result is wrapped as service response, e.g: {"reply": <index>}
func (r *Repo) WriteIndexBytes(ctx context.Context, w io.Writer) error {
	data := r.JSONBufferBytes()
	if len(data) == 0 {
		var buf bytes.Buffer
		if err := r.history.GetCurrent(ctx, &buf); err != nil {
			return errors.Wrap(err, "failed to read index from storage")
		}
		data = buf.Bytes()
	}
	data = bytes.TrimSpace(data)

	if _, err := w.Write([]byte(`{"reply":`)); err != nil {
		return errors.Wrap(err, "failed to write index JSON prefix")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "failed to write index JSON data")
	}
	if _, err := w.Write([]byte(`}`)); err != nil {
		return errors.Wrap(err, "failed to write index JSON suffix")
	}
	return nil
}

// Update loads the index and rebuilds all roadmaps if it changed. Only one
// update runs at a time, concurrent calls are rejected.
func (r *Repo) Update(ctx context.Context) *responses.Update {
	r.l.Info("update triggered")
	return r.respond(ctx, time.Now(), r.tryUpdate(ctx))
}

func (r *Repo) respond(ctx context.Context, start time.Time, res updateResponse) *responses.Update {
	updateResponse := &responses.Update{}
	updateResponse.Stats.RepoRuntime = res.repoRuntime.Seconds()

	if res.err != nil {
		updateResponse.Success = false
		updateResponse.ErrorMessage = res.err.Error()
		updateResponse.Stats.NumberOfRoadmaps = -1
		updateResponse.Stats.NumberOfEntries = -1
		updateResponse.Stats.NumberOfNodes = -1
		updateResponse.Stats.NumberOfTopics = -1

		// only restore if the update failed during processing
		if !errors.Is(res.err, ErrUpdateRejected) {
			r.l.Error("failed to update repository", zap.Error(res.err))
			if err := r.tryToRestoreCurrent(ctx); err != nil {
				r.l.Error("failed to restore preceding index version", zap.Error(err))
			} else {
				r.l.Info("successfully restored current index from history")
			}
		}
	} else {
		updateResponse.Success = true
		if res.changed {
			if err := r.history.Add(ctx, r.Revision(), r.JSONBufferBytes()); err != nil {
				r.l.Error("could not persist current index in history", zap.Error(err))
				metrics.HistoryPersistFailedCounter.WithLabelValues().Inc()
			} else {
				r.l.Info("successfully persisted current index to history")
			}
		}
		r.directoryLock.RLock()
		updateResponse.Stats.NumberOfEntries = r.numEntries
		for _, rm := range r.directory {
			updateResponse.Stats.NumberOfRoadmaps++
			updateResponse.Stats.NumberOfNodes += rm.NumNodes
			updateResponse.Stats.NumberOfTopics += len(rm.Topics)
		}
		r.directoryLock.RUnlock()
	}
	updateResponse.Stats.OwnRuntime = time.Since(start).Seconds() - updateResponse.Stats.RepoRuntime
	return updateResponse
}

func (r *Repo) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	l := r.l.Named("start")

	up := make(chan bool, 1)
	g.Go(func() error {
		l.Debug("starting update routine")
		up <- true
		return r.UpdateRoutine(gCtx)
	})
	l.Debug("waiting for UpdateRoutine")
	<-up

	l.Debug("trying to restore previous index")
	if err := r.tryToRestoreCurrent(gCtx); errors.Is(err, os.ErrNotExist) {
		l.Info("previous index file does not exist")
	} else if err != nil {
		l.Warn("could not restore previous index", zap.Error(err))
	} else {
		l.Info("restored previous index", zap.String("revision", r.Revision()))
	}

	if r.poll {
		g.Go(func() error {
			l.Debug("starting poll routine")
			return r.PollRoutine(gCtx)
		})
	}

	l.Debug("trying to update initial state")
	if resp := r.respond(gCtx, time.Now(), r.queueUpdate(gCtx)); !resp.Success {
		l.Error("failed to update initial state",
			zap.String("error", resp.ErrorMessage),
			zap.Float64("own_runtime", resp.Stats.OwnRuntime),
			zap.Float64("repo_runtime", resp.Stats.RepoRuntime),
		)
	}

	return g.Wait()
}
