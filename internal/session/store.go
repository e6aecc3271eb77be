package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
)

// MemoryStore keeps sessions in process memory. Data is stored encoded so
// callers never share maps or slices with the store.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string][]byte),
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("session: decoding %s: %w: %w", id, errCorrupt, err)
	}
	if expired(&data, m.ttl, m.now()) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return &data, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, data *Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: encoding %s: %w", id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = raw
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// FileStore keeps one JSON file per session in a directory.
type FileStore struct {
	mu  sync.Mutex
	dir string
	ttl time.Duration
	now func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates dir when needed.
func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("session: creating store directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, ttl: ttl, now: time.Now}, nil
}

// path maps a session id to its file. Only xid-shaped ids are accepted so a
// forged id can never point outside dir.
func (f *FileStore) path(id string) (string, error) {
	if _, err := xid.FromString(id); err != nil {
		return "", fmt.Errorf("session: malformed id %q", id)
	}
	return filepath.Join(f.dir, id+".json"), nil
}

func (f *FileStore) Load(_ context.Context, id string) (*Data, error) {
	p, err := f.path(id)
	if err != nil {
		return nil, ErrNotFound
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: reading %s: %w", id, err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("session: decoding %s: %w: %w", id, errCorrupt, err)
	}
	if expired(&data, f.ttl, f.now()) {
		os.Remove(p)
		return nil, ErrNotFound
	}
	return &data, nil
}

// Save writes to a temporary file and renames it into place so a reader
// never sees a half-written session.
func (f *FileStore) Save(_ context.Context, id string, data *Data) error {
	p, err := f.path(id)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: encoding %s: %w", id, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("session: writing %s: %w", id, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("session: replacing %s: %w", id, err)
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	p, err := f.path(id)
	if err != nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: deleting %s: %w", id, err)
	}
	return nil
}

// Purge deletes every idle-expired or undecodable session file and returns
// how many were removed.
func (f *FileStore) Purge(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, fmt.Errorf("session: listing %s: %w", f.dir, err)
	}

	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		id, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		if _, err := xid.FromString(id); err != nil {
			continue
		}
		_, err := f.Load(ctx, id)
		switch {
		case errors.Is(err, ErrNotFound):
			removed++
		case errors.Is(err, errCorrupt):
			// unreadable sessions can never be resumed
			if err := f.Delete(ctx, id); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

func expired(data *Data, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(data.LastSeen) > ttl
}
