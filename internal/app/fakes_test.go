package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/displaywall/backend/internal/core"
	"github.com/displaywall/backend/internal/domain"
)

// fakeCatalog is an in-memory CatalogStore with per-method error injection.
type fakeCatalog struct {
	mu        sync.Mutex
	items     []*domain.MediaItem
	insertErr error
	getErr    error
	allErr    error
	saveErr   error
	deleteErr error
	optsErr   error
	findErr   error
}

func (f *fakeCatalog) Insert(_ context.Context, item *domain.MediaItem) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
	return nil
}

func (f *fakeCatalog) Get(_ context.Context, id domain.MediaID) (*domain.MediaItem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID == id {
			cp := *it
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalog) All(_ context.Context) ([]*domain.MediaItem, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.MediaItem, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0; i-- {
		out = append(out, f.items[i])
	}
	return out, nil
}

func (f *fakeCatalog) Save(_ context.Context, item *domain.MediaItem) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.items {
		if it.ID == item.ID {
			f.items[i] = item
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeCatalog) Delete(_ context.Context, id domain.MediaID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.items {
		if it.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeCatalog) Options(_ context.Context) (core.CategoryOptions, error) {
	if f.optsErr != nil {
		return nil, f.optsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	opts := make(core.CategoryOptions)
	for _, it := range f.items {
		if _, ok := opts[it.Category]; !ok {
			opts[it.Category] = []string{}
		}
		if it.Subcategory == "" {
			continue
		}
		seen := false
		for _, sub := range opts[it.Category] {
			if sub == it.Subcategory {
				seen = true
				break
			}
		}
		if !seen {
			opts[it.Category] = append(opts[it.Category], it.Subcategory)
		}
	}
	return opts, nil
}

func (f *fakeCatalog) FindOne(_ context.Context, category, subcategory string) (*domain.MediaItem, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.Category == category && it.Subcategory == subcategory {
			cp := *it
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeAssets records stores and deletes; URLs are deterministic.
type fakeAssets struct {
	mu        sync.Mutex
	n         int
	stored    []string
	deleted   []string
	storeErr  error
	deleteErr error
}

func (f *fakeAssets) Store(_ context.Context, data []byte, contentType string) (core.AssetDescriptor, error) {
	if f.storeErr != nil {
		return core.AssetDescriptor{}, f.storeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	kind := domain.KindImage
	if strings.HasPrefix(contentType, "video/") {
		kind = domain.KindVideo
	}
	url := fmt.Sprintf("https://assets.test/%d", f.n)
	f.stored = append(f.stored, url)
	return core.AssetDescriptor{Kind: kind, URL: url}, nil
}

func (f *fakeAssets) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, url)
	f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeAssets) deletedCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, d := range f.deleted {
		if d == url {
			n++
		}
	}
	return n
}

// fakePublisher records everything the components try to fan out.
type fakePublisher struct {
	mu        sync.Mutex
	published []any
	snapshots int
	resyncs   []core.SessionID
}

func (f *fakePublisher) Publish(v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, v)
}

func (f *fakePublisher) Snapshot(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots++
}

func (f *fakePublisher) SnapshotTo(_ context.Context, sid core.SessionID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resyncs = append(f.resyncs, sid)
}

func (f *fakePublisher) events() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.published...)
}

func (f *fakePublisher) snapshotCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshots
}

// fakeConn is a SignalConnection capturing frames.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	err    error
}

func (c *fakeConn) TrySend(f core.Frame) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}
