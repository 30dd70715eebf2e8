package rule

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/apexcoaching123/client-tracker/internal/model"
)

type fileState struct {
	Users map[string]userRuleState `json:"users"`
}

type userRuleState struct {
	Seeded bool          `json:"seeded"`
	Set    model.RuleSet `json:"set"`
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo is the persistent rule repository, one JSON file shared by all
// users, scoped per user via ForUser.
type FileRepo struct {
	store  *fileStore
	userID string
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &fileStore{
		path: filepath.Join(dataDir, "rules.json"),
		s:    fileState{Users: map[string]userRuleState{}},
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
		loaded.Users = map[string]userRuleState{}
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

// userStateLocked returns the caller's rule state, seeding the defaults
// the first time a user is seen.
func (r *FileRepo) userStateLocked() userRuleState {
	us, ok := r.store.s.Users[r.userID]
	if !ok || !us.Seeded {
		us = userRuleState{Seeded: true, Set: DefaultRuleSet()}
		r.store.s.Users[r.userID] = us
	}
	return us
}

func (r *FileRepo) List() (model.RuleSet, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us, ok := r.store.s.Users[r.userID]
	if ok && us.Seeded {
		return cloneSet(us.Set), nil
	}
	us = r.userStateLocked()
	if err := r.store.saveLocked(); err != nil {
		return model.RuleSet{}, err
	}
	return cloneSet(us.Set), nil
}

func (r *FileRepo) Create(rule model.Rule) (model.Rule, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	if err := Validate(&rule); err != nil {
		return model.Rule{}, err
	}
	if err := insert(&us.Set, rule); err != nil {
		return model.Rule{}, err
	}
	r.store.s.Users[r.userID] = us
	if err := r.store.saveLocked(); err != nil {
		return model.Rule{}, err
	}
	return rule, nil
}

func (r *FileRepo) Delete(id model.RuleID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	if !remove(&us.Set, id) {
		return ErrNotFound
	}
	r.store.s.Users[r.userID] = us
	return r.store.saveLocked()
}

// Replace overwrites the whole rule set. Used by the sync policy when a
// remote snapshot wins.
func (r *FileRepo) Replace(set model.RuleSet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.s.Users[r.userID] = userRuleState{Seeded: true, Set: cloneSet(set)}
	return r.store.saveLocked()
}
