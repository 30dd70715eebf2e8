package client

import (
	"sort"
	"sync"
	"time"

	"github.com/apexcoaching123/client-tracker/internal/model"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	clients map[model.ClientID]model.Client
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{clients: map[model.ClientID]model.Client{}}
}

func (r *MemoryRepo) List() ([]model.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepo) Get(id model.ClientID) (model.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok {
		return model.Client{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) Create(c model.Client) (model.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ValidateNew(&c); err != nil {
		return model.Client{}, err
	}
	now := time.Now()
	c.ID = NewID()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.clients[c.ID] = c
	return c, nil
}

func (r *MemoryRepo) Update(id model.ClientID, p Patch) (model.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		return model.Client{}, ErrNotFound
	}
	if err := ApplyPatch(&c, p); err != nil {
		return model.Client{}, err
	}
	c.UpdatedAt = time.Now()
	r.clients[id] = c
	return c, nil
}

func (r *MemoryRepo) Delete(id model.ClientID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[id]; !ok {
		return ErrNotFound
	}
	delete(r.clients, id)
	return nil
}
