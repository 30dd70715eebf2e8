package rule

import (
	"sync"

	"github.com/apexcoaching123/client-tracker/internal/model"
)

// MemoryRepo keeps the rule set in memory. Used by tests and the ops
// seed command.
type MemoryRepo struct {
	mu     sync.RWMutex
	set    model.RuleSet
	seeded bool
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// seedLocked installs the defaults on first touch. Deleting every rule
// afterwards leaves the set empty; defaults never resurrect.
func (r *MemoryRepo) seedLocked() {
	if r.seeded {
		return
	}
	r.set = DefaultRuleSet()
	r.seeded = true
}

func (r *MemoryRepo) List() (model.RuleSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seedLocked()
	return cloneSet(r.set), nil
}

func (r *MemoryRepo) Create(rule model.Rule) (model.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seedLocked()

	if err := Validate(&rule); err != nil {
		return model.Rule{}, err
	}
	if err := insert(&r.set, rule); err != nil {
		return model.Rule{}, err
	}
	return rule, nil
}

func (r *MemoryRepo) Delete(id model.RuleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seedLocked()

	if !remove(&r.set, id) {
		return ErrNotFound
	}
	return nil
}
