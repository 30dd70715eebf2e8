package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/apexcoaching123/client-tracker/internal/model"
)

type fileState struct {
	// Users maps user ID to the set of done keys, serialized as
	// "date|clientId|taskId" strings.
	Users map[string]map[string]bool `json:"users"`
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo is the persistent completion ledger, user-scoped via ForUser.
type FileRepo struct {
	store  *fileStore
	userID string
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &fileStore{
		path: filepath.Join(dataDir, "completions.json"),
		s:    fileState{Users: map[string]map[string]bool{}},
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return &FileRepo{store: st, userID: "default"}, nil
}

func (s *fileStore) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Users == nil {
		loaded.Users = map[string]map[string]bool{}
	}
	// Drop malformed keys and stored-false noise from older files.
	for uid, keys := range loaded.Users {
		clean := make(map[string]bool, len(keys))
		for ks, done := range keys {
			if _, ok := parseKey(ks); ok && done {
				clean[ks] = true
			}
		}
		loaded.Users[uid] = clean
	}
	s.s = loaded
	return nil
}

func (s *fileStore) saveLocked() error {
	b, err := json.MarshalIndent(s.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (r *FileRepo) ForUser(userID string) *FileRepo {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "default"
	}
	return &FileRepo{store: r.store, userID: userID}
}

func (r *FileRepo) keysLocked() map[string]bool {
	keys, ok := r.store.s.Users[r.userID]
	if !ok {
		keys = map[string]bool{}
		r.store.s.Users[r.userID] = keys
	}
	return keys
}

func (r *FileRepo) Done(date string, clientID model.ClientID, taskID model.TaskID) bool {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	keys, ok := r.store.s.Users[r.userID]
	if !ok {
		return false
	}
	return keys[Key{date, clientID, taskID}.String()]
}

func (r *FileRepo) Set(date string, clientID model.ClientID, taskID model.TaskID, done bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	keys := r.keysLocked()
	ks := Key{date, clientID, taskID}.String()
	if done {
		keys[ks] = true
	} else {
		delete(keys, ks)
	}
	return r.store.saveLocked()
}

func (r *FileRepo) Toggle(date string, clientID model.ClientID, taskID model.TaskID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	keys := r.keysLocked()
	ks := Key{date, clientID, taskID}.String()
	if keys[ks] {
		delete(keys, ks)
		return false, r.store.saveLocked()
	}
	keys[ks] = true
	return true, r.store.saveLocked()
}

func (r *FileRepo) ListBetween(from, to string) ([]Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	keys := r.store.s.Users[r.userID]
	out := []Entry{}
	for ks := range keys {
		k, ok := parseKey(ks)
		if !ok || k.Date < from || k.Date > to {
			continue
		}
		out = append(out, Entry{Key: k, Done: true})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, nil
}

// Entries returns every done key for the user. Used to build sync
// snapshots.
func (r *FileRepo) Entries() ([]Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	keys := r.store.s.Users[r.userID]
	out := make([]Entry, 0, len(keys))
	for ks := range keys {
		if k, ok := parseKey(ks); ok {
			out = append(out, Entry{Key: k, Done: true})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, nil
}

// Replace overwrites the user's ledger. Used by the sync policy when a
// remote snapshot wins.
func (r *FileRepo) Replace(entries []Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	keys := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Done {
			keys[e.Key.String()] = true
		}
	}
	r.store.s.Users[r.userID] = keys
	return r.store.saveLocked()
}
