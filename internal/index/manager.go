package index

import (
	"context"
	"fmt"
	"time"

	"github.com/drive-intranet/internal/config"
	"github.com/drive-intranet/internal/drive"
	"github.com/drive-intranet/internal/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// defaultRefreshTimeout bounds a crawl when index.refresh_timeout is unset
const defaultRefreshTimeout = 30 * time.Minute

// Manager keeps the descendant index of the configured root folder up to date
type Manager struct {
	store    *Store
	lister   drive.ChildLister
	rootID   string
	maxDepth int
	timeout  time.Duration

	group singleflight.Group
}

// NewManager creates a new index manager
func NewManager(cfg config.Config, lister drive.ChildLister, store *Store) *Manager {
	if store == nil {
		store = NewStore(cfg.Index.TTL)
	}
	timeout := cfg.Index.RefreshTimeout
	if timeout <= 0 {
		timeout = defaultRefreshTimeout
	}
	return &Manager{
		store:    store,
		lister:   lister,
		rootID:   cfg.Drive.RootFolderID,
		maxDepth: cfg.Drive.MaxDepth,
		timeout:  timeout,
	}
}

// RootID returns the id of the folder the index is built from
func (m *Manager) RootID() string {
	return m.rootID
}

// Refresh crawls the root folder and replaces the index. Concurrent calls
// share one crawl. The crawl is detached from the caller's cancellation and
// bounded by the refresh timeout; ctx only bounds how long this caller waits.
func (m *Manager) Refresh(ctx context.Context, ts oauth2.TokenSource) (int, error) {
	ch := m.group.DoChan(m.rootID, func() (interface{}, error) {
		crawlCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		return m.crawl(crawlCtx, ts)
	})

	select {
	case res := <-ch:
		if res.Shared {
			logrus.Debugf("Joined index refresh already running for %s", m.rootID)
		}
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (m *Manager) crawl(ctx context.Context, ts oauth2.TokenSource) (int, error) {
	logrus.Infof("Refreshing descendant index of %s (max depth %d)", m.rootID, m.maxDepth)
	start := time.Now()

	ids, err := drive.Crawl(ctx, m.lister, ts, m.rootID, m.maxDepth)
	if err != nil {
		logrus.Errorf("Index refresh failed, keeping previous index: %v", err)
		return 0, fmt.Errorf("failed to refresh index: %w", err)
	}

	m.store.Set(m.rootID, ids)

	elapsed := time.Since(start)
	metrics.RecordCrawl(elapsed, len(ids))
	logrus.Infof("Descendant index refreshed: %d ids in %v", len(ids), elapsed)
	return len(ids), nil
}

// Contains reports whether file lies inside the root folder's subtree. Without
// an index only the root and its immediate children are recognised.
func (m *Manager) Contains(file *drive.File) bool {
	if file == nil {
		return false
	}
	if m.store.HasIndex(m.rootID) {
		return m.store.Has(m.rootID, file.ID)
	}
	return file.ID == m.rootID || file.HasParent(m.rootID)
}

// Filter keeps the files that lie inside the root folder's subtree
func (m *Manager) Filter(files []*drive.File) []*drive.File {
	out := make([]*drive.File, 0, len(files))
	for _, f := range files {
		if m.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// Snapshot returns the current index state
func (m *Manager) Snapshot() Snapshot {
	return m.store.Snapshot(m.rootID)
}

// Ready reports whether the index has been built
func (m *Manager) Ready() bool {
	return m.store.HasIndex(m.rootID)
}
