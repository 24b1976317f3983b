package repo

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/foomo/roadmapserver/pkg/metrics"
	"github.com/foomo/roadmapserver/pkg/utils"
	"github.com/foomo/roadmapserver/roadmap"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	json              = jsoniter.ConfigCompatibleWithStandardLibrary
	ErrUpdateRejected = errors.New("update rejected: queue full")
	ErrNoRoadmaps     = errors.New("index contains no roadmaps")
)

type updateResponse struct {
	repoRuntime time.Duration
	changed     bool
	err         error
}

func (r *Repo) PollRoutine(ctx context.Context) error {
	l := r.l.Named("routine.poll")
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case <-ticker.C:
			chanReponse := make(chan updateResponse)
			select {
			case r.updateInProgressChannel <- chanReponse:
			case <-ctx.Done():
				return nil
			}
			response := <-chanReponse
			switch {
			case response.err != nil:
				l.Error("update failed", zap.Error(response.err))
			case response.changed:
				l.Info("update success", zap.String("revision", r.Revision()))
			default:
				l.Debug("index is up to date", zap.String("revision", r.Revision()))
			}
		}
	}
}

func (r *Repo) UpdateRoutine(ctx context.Context) error {
	l := r.l.Named("routine.update")
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case resChan := <-r.updateInProgressChannel:
			start := time.Now()
			l := l.With(zap.String("run_id", uuid.New().String()))

			l.Info("update started")

			res := r.update(context.WithoutCancel(ctx))
			if res.err != nil {
				l.Error("update failed", zap.Error(res.err))
				metrics.UpdatesFailedCounter.WithLabelValues().Inc()
			} else {
				if r.markLoaded() {
					l.Info("initial update success")
				} else {
					l.Info("update success", zap.Bool("changed", res.changed))
				}
				metrics.UpdatesCompletedCounter.WithLabelValues().Inc()
			}

			resChan <- res

			metrics.UpdateDuration.WithLabelValues().Observe(time.Since(start).Seconds())
		}
	}
}

// markLoaded returns true on the first transition into the loaded state
func (r *Repo) markLoaded() bool {
	if !r.loaded.CompareAndSwap(false, true) {
		return false
	}
	if r.onLoaded != nil {
		r.onLoaded()
	}
	return true
}

// do not call directly, but only through channel
func (r *Repo) update(ctx context.Context) updateResponse {
	start := time.Now()
	data, err := r.get(ctx, r.url)
	res := updateResponse{repoRuntime: time.Since(start)}
	if err != nil {
		// we have no json to load - the source did not reply
		res.err = err
		return res
	}
	r.l.Debug("loading json", zap.String("source", r.url), zap.Int("length", len(data)))
	res.changed, res.err = r.load(data)
	return res
}

// load builds the directory for the given index bytes unless the revision is unchanged
func (r *Repo) load(data []byte) (bool, error) {
	revision := revisionOf(data)
	if revision == r.Revision() {
		r.l.Debug("index is up to date", zap.String("revision", revision))
		return false, nil
	}

	entries, err := r.loadEntriesFromJSON(data)
	if err != nil {
		return false, err
	}

	directory, err := r.buildDirectory(entries)
	if err != nil {
		return false, err
	}

	r.SetJSONBuffer(bytes.NewBuffer(data))
	r.directoryLock.Lock()
	r.directory = directory
	r.revision = revision
	r.numEntries = len(entries)
	r.directoryLock.Unlock()

	r.l.Info("loaded index",
		zap.String("revision", revision),
		zap.Int("entries", len(entries)),
		zap.Int("roadmaps", len(directory)),
	)
	return true, nil
}

func (r *Repo) loadEntriesFromJSON(data []byte) ([]roadmap.IndexEntry, error) {
	var entries []roadmap.IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		if len(data) > 10 {
			r.l.Debug("could not parse json",
				zap.String("jsonStart", string(data[:10])),
				zap.String("jsonEnd", string(data[len(data)-10:])),
			)
		}
		return nil, errors.Wrap(err, "failed to deserialize index entries")
	}
	return entries, nil
}

// buildDirectory creates one roadmap per distinct root label
func (r *Repo) buildDirectory(entries []roadmap.IndexEntry) (map[string]*Roadmap, error) {
	var labels []string
	seen := map[string]bool{}
	for _, entry := range entries {
		label := entry.Path()[0]
		if label == "" || seen[label] || !r.rootAllowed(label) {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}

	var err error
	directory := make(map[string]*Roadmap, len(labels))
	for _, label := range labels {
		rm := newRoadmap(label, entries)
		if rm.Slug == "" {
			err = multierr.Append(err, errors.Errorf("root label %q has an empty slug", label))
			continue
		}
		if existing, ok := directory[rm.Slug]; ok {
			err = multierr.Append(err, errors.Errorf("duplicate roadmap slug %q for %q and %q", rm.Slug, existing.Label, label))
			continue
		}
		directory[rm.Slug] = rm
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to build roadmaps")
	}
	if len(directory) == 0 {
		return nil, ErrNoRoadmaps
	}
	return directory, nil
}

func (r *Repo) rootAllowed(label string) bool {
	if len(r.roots) == 0 {
		return true
	}
	for _, root := range r.roots {
		if root == label {
			return true
		}
	}
	return false
}

func (r *Repo) tryToRestoreCurrent(ctx context.Context) error {
	buffer := &bytes.Buffer{}
	if err := r.history.GetCurrent(ctx, buffer); err != nil {
		return err
	}
	if _, err := r.load(buffer.Bytes()); err != nil {
		return err
	}
	r.markLoaded()
	return nil
}

// get reads the index from a http(s) url or a local file
func (r *Repo) get(ctx context.Context, url string) ([]byte, error) {
	return read(ctx, r.httpClient, url)
}

// LoadIndex reads and decodes the index entries from a http(s) url or a local file
func LoadIndex(ctx context.Context, client *http.Client, src string) ([]roadmap.IndexEntry, error) {
	data, err := read(ctx, client, src)
	if err != nil {
		return nil, err
	}
	var entries []roadmap.IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "failed to deserialize index entries")
	}
	return entries, nil
}

func read(ctx context.Context, client *http.Client, src string) ([]byte, error) {
	if !utils.IsValidUrl(src) {
		data, err := os.ReadFile(strings.TrimPrefix(src, "file://"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to read index file")
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create get index request")
	}
	req.Header.Set("Accept", "application/json")
	response, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get index")
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("bad response code from index source %q want %d", response.Status, http.StatusOK)
	}

	buffer := &bytes.Buffer{}
	if _, err := io.Copy(buffer, response.Body); err != nil {
		return nil, errors.Wrap(err, "failed to copy IO stream")
	}
	return buffer.Bytes(), nil
}

// limit ressources and allow only one update request at once
func (r *Repo) tryUpdate(ctx context.Context) updateResponse {
	c := make(chan updateResponse)
	select {
	case r.updateInProgressChannel <- c:
		r.l.Debug("update request added to queue")
		return r.awaitUpdate(ctx, c)
	default:
		r.l.Info("update request rejected, an update is already in progress")
		return updateResponse{err: ErrUpdateRejected}
	}
}

// queueUpdate waits for the update routine instead of rejecting
func (r *Repo) queueUpdate(ctx context.Context) updateResponse {
	c := make(chan updateResponse)
	select {
	case r.updateInProgressChannel <- c:
		return r.awaitUpdate(ctx, c)
	case <-ctx.Done():
		return updateResponse{err: ctx.Err()}
	}
}

func (r *Repo) awaitUpdate(ctx context.Context, c chan updateResponse) updateResponse {
	select {
	case ur := <-c:
		return ur
	case <-ctx.Done():
		// the routine still owns c, drain it so it does not block
		go func() { <-c }()
		return updateResponse{err: ctx.Err()}
	}
}

func revisionOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
