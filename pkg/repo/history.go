package repo

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/foomo/roadmapserver/pkg/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	HistoryIndexJSONPrefix = "roadmapserver-index-"
	HistoryIndexJSONSuffix = ".json"
	CurrentKey             = HistoryIndexJSONPrefix + "current" + HistoryIndexJSONSuffix

	// fixed width so backup keys sort by age
	historyTimeFormat = "2006-01-02T15-04-05.000000000Z"
	// revision characters kept in a backup key
	historyRevisionLength = 12
)

type (
	// History keeps the last good index snapshots. The current snapshot is
	// restored on start and after a failed update.
	History struct {
		l       *zap.Logger
		storage storage.Storage
		dir     string
		limit   int
		now     func() time.Time
		mu      sync.RWMutex
	}
	HistoryOption func(*History)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// HistoryWithHistoryLimit number of backups kept next to the current snapshot
func HistoryWithHistoryLimit(v int) HistoryOption {
	return func(o *History) {
		o.limit = v
	}
}

// HistoryWithHistoryDir directory of the default filesystem storage
func HistoryWithHistoryDir(v string) HistoryOption {
	return func(o *History) {
		o.dir = v
	}
}

func HistoryWithStorage(v storage.Storage) HistoryOption {
	return func(o *History) {
		o.storage = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewHistory(l *zap.Logger, opts ...HistoryOption) (*History, error) {
	inst := &History{
		l:     l.Named("history"),
		dir:   "/var/lib/roadmapserver",
		limit: 2,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(inst)
	}

	if inst.storage == nil {
		s, err := storage.NewFilesystemStorage(inst.dir)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create default history storage")
		}
		inst.storage = s
	}

	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Add stores an index snapshot as a backup and as the current one, then
// prunes backups beyond the limit
func (h *History) Add(ctx context.Context, revision string, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := h.backupKey(revision)
	h.l.Debug("persisting snapshot",
		zap.String("backup", key),
		zap.String("revision", revision),
		zap.Int("length", len(data)),
	)

	for _, k := range []string{key, CurrentKey} {
		if err := h.storage.Write(ctx, k, data); err != nil {
			return errors.Wrapf(err, "failed to write snapshot %q", k)
		}
	}

	removed, err := h.prune(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to prune history")
	}
	if len(removed) > 0 {
		h.l.Debug("pruned history", zap.Strings("removed", removed))
	}
	return nil
}

// GetCurrent appends the current snapshot to buf. It returns an error
// matching os.ErrNotExist if nothing was persisted yet.
func (h *History) GetCurrent(ctx context.Context, buf *bytes.Buffer) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := h.storage.Read(ctx, CurrentKey)
	if err != nil {
		return err
	}
	_, err = buf.Write(data)
	return err
}

// Close closes the underlying storage
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.storage.Close()
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *History) backupKey(revision string) string {
	if len(revision) > historyRevisionLength {
		revision = revision[:historyRevisionLength]
	}
	key := HistoryIndexJSONPrefix + h.now().UTC().Format(historyTimeFormat)
	if revision != "" {
		key += "-" + revision
	}
	return key + HistoryIndexJSONSuffix
}

// backups newest first, the current snapshot excluded
func (h *History) backups(ctx context.Context) ([]string, error) {
	keys, err := h.storage.List(ctx, HistoryIndexJSONPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list history")
	}
	var ret []string
	for _, key := range keys {
		if key != CurrentKey && strings.HasSuffix(key, HistoryIndexJSONSuffix) {
			ret = append(ret, key)
		}
	}
	return ret, nil
}

// outdated backups beyond keep
func (h *History) outdated(ctx context.Context, keep int) ([]string, error) {
	keys, err := h.backups(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) <= keep {
		return nil, nil
	}
	return keys[keep:], nil
}

func (h *History) prune(ctx context.Context) ([]string, error) {
	keys, err := h.outdated(ctx, h.limit)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		if err := h.storage.Delete(ctx, key); err != nil {
			return nil, errors.Wrapf(err, "failed to remove %q", key)
		}
	}
	return keys, nil
}
