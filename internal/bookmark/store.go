package bookmark

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Bookmark is the opaque resume token for one channel. It is replaced
// whole on every delivery, never merged.
type Bookmark string

// Store persists one bookmark per channel as a plain text file under
// root, with an in-process cache in front. Channels operate on disjoint
// keys, so the mutex only guards the cache map itself.
type Store struct {
	root  string
	mu    sync.Mutex
	cache map[string]Bookmark
}

func NewStore(root string) *Store {
	return &Store{
		root:  root,
		cache: make(map[string]Bookmark),
	}
}

// Load returns the bookmark for channel, consulting the cache first. A
// missing or unreadable file is not an error: the channel simply starts
// fresh.
func (s *Store) Load(channel string) (Bookmark, bool) {
	s.mu.Lock()
	bm, ok := s.cache[channel]
	s.mu.Unlock()
	if ok {
		return bm, true
	}

	data, err := os.ReadFile(s.path(channel))
	if err != nil {
		return "", false
	}

	bm = Bookmark(strings.TrimSpace(string(data)))
	if bm == "" {
		return "", false
	}

	s.mu.Lock()
	s.cache[channel] = bm
	s.mu.Unlock()
	return bm, true
}

// Update writes the bookmark to stable storage and then updates the
// cache. The cache is updated even when the write fails, so in-memory
// state stays consistent for the rest of the process; the caller logs
// the returned error.
func (s *Store) Update(channel string, bm Bookmark) error {
	err := os.MkdirAll(s.root, 0755)
	if err == nil {
		err = os.WriteFile(s.path(channel), []byte(bm), 0644)
	}

	s.mu.Lock()
	s.cache[channel] = bm
	s.mu.Unlock()

	return err
}

// ClearCache drops every cached entry, forcing the next Load to hit
// storage. Used by tests to verify the persisted representation.
func (s *Store) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]Bookmark)
	s.mu.Unlock()
}

func (s *Store) path(channel string) string {
	return filepath.Join(s.root, sanitize(channel)+".bookmark")
}

// sanitize keeps channel names like "Microsoft-Windows-Sysmon/Operational"
// from escaping the storage root.
func sanitize(channel string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	return r.Replace(channel)
}
