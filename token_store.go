package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var _ TokenStore = (*MemoryTokenStore)(nil)
var _ TokenStore = (*FileTokenStore)(nil)

// MemoryTokenStore keeps the session token in process memory only. The
// session does not survive a restart; useful for tests and for callers
// that manage persistence themselves.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewMemoryTokenStore returns an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Save overwrites the stored token. Saving an empty token is a no-op.
func (s *MemoryTokenStore) Save(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
}

// Read returns the stored token, if any.
func (s *MemoryTokenStore) Read() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.set
}

// Clear removes the stored token. Safe to call when nothing is stored.
func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
}

// DefaultTokenDir is the directory used by FileTokenStore when none is
// configured, relative to the user home directory.
const DefaultTokenDir = ".config/idp-session"

// tokenFileName is the single slot the file store writes under its dir.
const tokenFileName = "session-token"

// FileTokenStore persists the session token to a single file so the
// session survives process restarts. The file is written with 0600
// permissions under a 0700 directory. Write and delete failures are
// swallowed and logged at debug: the worst case is a session that only
// lasts the current process lifetime.
type FileTokenStore struct {
	mu     sync.Mutex
	path   string
	logger Logger
}

// NewFileTokenStore creates a token store rooted at dir. An empty dir
// resolves to DefaultTokenDir under the user home directory. A nil
// logger falls back to DefaultLogger.
func NewFileTokenStore(dir string, logger Logger) *FileTokenStore {
	if logger == nil {
		logger = DefaultLogger
	}
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, DefaultTokenDir)
		}
	}
	return &FileTokenStore{
		path:   filepath.Join(dir, tokenFileName),
		logger: logger,
	}
}

// Save overwrites the persisted token. Saving an empty token is a no-op.
func (s *FileTokenStore) Save(token string) {
	if token == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		s.logger.Debug("token store: create dir failed: %v", err)
		return
	}

	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		s.logger.Debug("token store: write failed: %v", err)
	}
}

// Read returns the persisted token, if any.
func (s *FileTokenStore) Read() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false
	}

	return token, true
}

// Clear removes the persisted token. Safe to call when nothing is stored.
func (s *FileTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Debug("token store: remove failed: %v", err)
	}
}
