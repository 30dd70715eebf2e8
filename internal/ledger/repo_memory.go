package ledger

import (
	"sort"
	"sync"

	"github.com/apexcoaching123/client-tracker/internal/model"
)

// MemoryRepo keeps completions in memory. Only true flags are stored;
// clearing a flag deletes the key, keeping the map sparse.
type MemoryRepo struct {
	mu   sync.RWMutex
	done map[Key]bool
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{done: map[Key]bool{}}
}

func (r *MemoryRepo) Done(date string, clientID model.ClientID, taskID model.TaskID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.done[Key{date, clientID, taskID}]
}

func (r *MemoryRepo) Set(date string, clientID model.ClientID, taskID model.TaskID, done bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := Key{date, clientID, taskID}
	if done {
		r.done[k] = true
	} else {
		delete(r.done, k)
	}
	return nil
}

func (r *MemoryRepo) Toggle(date string, clientID model.ClientID, taskID model.TaskID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := Key{date, clientID, taskID}
	if r.done[k] {
		delete(r.done, k)
		return false, nil
	}
	r.done[k] = true
	return true, nil
}

func (r *MemoryRepo) ListBetween(from, to string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Entry{}
	for k := range r.done {
		if k.Date < from || k.Date > to {
			continue
		}
		out = append(out, Entry{Key: k, Done: true})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, nil
}
