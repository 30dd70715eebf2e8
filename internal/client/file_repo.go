package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apexcoaching123/client-tracker/internal/model"
)

type fileState struct {
	Users map[string]userClientState `json:"users"`
}

type userClientState struct {
	Clients map[model.ClientID]model.Client `json:"clients"`
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo is the persistent roster repository. It is user-scoped; call
// ForUser(userID) to get a scoped view.
type FileRepo struct {
	store  *fileStore
	userID string
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &fileStore{
		path: filepath.Join(dataDir, "clients.json"),
		s:    fileState{Users: map[string]userClientState{}},
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
		loaded.Users = map[string]userClientState{}
	}
	for uid, us := range loaded.Users {
		if us.Clients == nil {
			us.Clients = map[model.ClientID]model.Client{}
			loaded.Users[uid] = us
		}
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

func (r *FileRepo) userStateLocked() userClientState {
	us, ok := r.store.s.Users[r.userID]
	if !ok {
		us = userClientState{Clients: map[model.ClientID]model.Client{}}
		r.store.s.Users[r.userID] = us
	}
	if us.Clients == nil {
		us.Clients = map[model.ClientID]model.Client{}
		r.store.s.Users[r.userID] = us
	}
	return us
}

func (r *FileRepo) List() ([]model.Client, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	us, ok := r.store.s.Users[r.userID]
	if !ok {
		return []model.Client{}, nil
	}
	out := make([]model.Client, 0, len(us.Clients))
	for _, c := range us.Clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *FileRepo) Get(id model.ClientID) (model.Client, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	us, ok := r.store.s.Users[r.userID]
	if !ok {
		return model.Client{}, ErrNotFound
	}
	c, ok := us.Clients[id]
	if !ok {
		return model.Client{}, ErrNotFound
	}
	return c, nil
}

func (r *FileRepo) Create(c model.Client) (model.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := ValidateNew(&c); err != nil {
		return model.Client{}, err
	}
	us := r.userStateLocked()
	now := time.Now()
	c.ID = NewID()
	c.CreatedAt = now
	c.UpdatedAt = now
	us.Clients[c.ID] = c
	if err := r.store.saveLocked(); err != nil {
		return model.Client{}, err
	}
	return c, nil
}

func (r *FileRepo) Update(id model.ClientID, p Patch) (model.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	c, ok := us.Clients[id]
	if !ok {
		return model.Client{}, ErrNotFound
	}
	if err := ApplyPatch(&c, p); err != nil {
		return model.Client{}, err
	}
	c.UpdatedAt = time.Now()
	us.Clients[id] = c
	if err := r.store.saveLocked(); err != nil {
		return model.Client{}, err
	}
	return c, nil
}

func (r *FileRepo) Delete(id model.ClientID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	if _, ok := us.Clients[id]; !ok {
		return ErrNotFound
	}
	delete(us.Clients, id)
	return r.store.saveLocked()
}

// Replace overwrites the whole roster. Used by the sync policy when a
// remote snapshot wins.
func (r *FileRepo) Replace(clients []model.Client) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := userClientState{Clients: make(map[model.ClientID]model.Client, len(clients))}
	for _, c := range clients {
		us.Clients[c.ID] = c
	}
	r.store.s.Users[r.userID] = us
	return r.store.saveLocked()
}
