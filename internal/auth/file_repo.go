package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileState is the on-disk account store. Sessions are keyed by token
// hash since that is the lookup every authenticated request performs;
// sessionIds maps session ID back to its token hash for revocation.
type fileState struct {
	Coaches    map[string]User         `json:"coaches"`
	EmailIndex map[string]string       `json:"emailIndex"`
	Challenges map[string]OTPChallenge `json:"challenges"`
	Sessions   map[string]Session      `json:"sessions"`
	SessionIDs map[string]string       `json:"sessionIds"`
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo persists coach accounts, pending OTP challenges, and live
// sessions. Unlike the data repos it is not user-scoped: it is the thing
// that decides who the user is.
type FileRepo struct {
	store *fileStore
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &fileStore{
		path: filepath.Join(dataDir, "auth.json"),
		s:    newFileState(),
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return &FileRepo{store: st}, nil
}

func newFileState() fileState {
	return fileState{
		Coaches:    map[string]User{},
		EmailIndex: map[string]string{},
		Challenges: map[string]OTPChallenge{},
		Sessions:   map[string]Session{},
		SessionIDs: map[string]string{},
	}
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
	if loaded.Coaches == nil {
		loaded.Coaches = map[string]User{}
	}
	if loaded.EmailIndex == nil {
		loaded.EmailIndex = map[string]string{}
	}
	if loaded.Challenges == nil {
		loaded.Challenges = map[string]OTPChallenge{}
	}
	if loaded.Sessions == nil {
		loaded.Sessions = map[string]Session{}
	}
	if loaded.SessionIDs == nil {
		loaded.SessionIDs = map[string]string{}
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

func newID(prefix string) string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return prefix + "_" + hex.EncodeToString(b[:])
}

// GetOrCreateUser resolves an email to its coach account, minting one on
// first login. The bool reports whether an account was created.
func (r *FileRepo) GetOrCreateUser(email string, now time.Time) (User, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if id, ok := r.store.s.EmailIndex[email]; ok {
		if u, ok := r.store.s.Coaches[id]; ok {
			return u, false, nil
		}
	}

	u := User{
		ID:        newID("coach"),
		Email:     email,
		CreatedAt: now,
	}
	r.store.s.Coaches[u.ID] = u
	r.store.s.EmailIndex[email] = u.ID
	if err := r.store.saveLocked(); err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (r *FileRepo) GetUserByID(id string) (User, bool) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.s.Coaches[id]
	return u, ok
}

// PutChallenge upserts by email, so a fresh code replaces a stale one.
func (r *FileRepo) PutChallenge(ch OTPChallenge) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.s.Challenges[ch.Email] = ch
	return r.store.saveLocked()
}

func (r *FileRepo) GetChallenge(email string) (OTPChallenge, bool) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	ch, ok := r.store.s.Challenges[email]
	return ch, ok
}

func (r *FileRepo) DeleteChallenge(email string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.s.Challenges, email)
	return r.store.saveLocked()
}

func (r *FileRepo) CreateSession(sess Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.s.Sessions[sess.TokenHash] = sess
	r.store.s.SessionIDs[sess.ID] = sess.TokenHash
	return r.store.saveLocked()
}

func (r *FileRepo) GetSessionByTokenHash(tokenHash string) (Session, bool) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sess, ok := r.store.s.Sessions[tokenHash]
	return sess, ok
}

func (r *FileRepo) DeleteSessionByID(sessionID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	th, ok := r.store.s.SessionIDs[sessionID]
	if !ok {
		return nil
	}
	delete(r.store.s.SessionIDs, sessionID)
	delete(r.store.s.Sessions, th)
	return r.store.saveLocked()
}

func (r *FileRepo) DeleteSessionByTokenHash(tokenHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	sess, ok := r.store.s.Sessions[tokenHash]
	if !ok {
		return nil
	}
	delete(r.store.s.Sessions, tokenHash)
	delete(r.store.s.SessionIDs, sess.ID)
	return r.store.saveLocked()
}

func (r *FileRepo) TouchSession(sessionID string, lastSeen time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	th, ok := r.store.s.SessionIDs[sessionID]
	if !ok {
		return nil
	}
	sess, ok := r.store.s.Sessions[th]
	if !ok {
		return nil
	}
	sess.LastSeen = lastSeen
	r.store.s.Sessions[th] = sess
	return r.store.saveLocked()
}
