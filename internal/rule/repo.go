// Package rule stores the user-editable touch-point rule definitions.
package rule

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/apexcoaching123/client-tracker/internal/model"
)

var (
	ErrNotFound    = errors.New("rule not found")
	ErrDuplicateID = errors.New("rule id already in use")
	ErrInvalidRule = errors.New("invalid rule")
)

type Repo interface {
	// List returns the current rule set. An untouched store yields the
	// seeded defaults.
	List() (model.RuleSet, error)
	Create(r model.Rule) (model.Rule, error)
	Delete(id model.RuleID) error
}

func newID() model.RuleID {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return model.RuleID("rule_" + hex.EncodeToString(b[:]))
}

// Validate checks a rule before insertion and fills in a generated ID
// when none was supplied.
func Validate(r *model.Rule) error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return ErrInvalidRule
	}
	switch r.Kind {
	case model.RuleOnboarding:
		if r.Weekday < 0 || r.Weekday > 6 {
			return ErrInvalidRule
		}
		r.Week = 0
		r.Cadence = model.Cadence{}
	case model.RuleWeekly:
		if r.Weekday < 0 || r.Weekday > 6 {
			return ErrInvalidRule
		}
		if r.Cadence.EveryNWeeks < 0 || r.Cadence.StartWeek < 0 {
			return ErrInvalidRule
		}
		r.Week = 0
	case model.RuleMilestone:
		if r.Week < 1 {
			return ErrInvalidRule
		}
		r.Weekday = 0
		r.Cadence = model.Cadence{}
	default:
		return ErrInvalidRule
	}
	if r.ID == "" {
		r.ID = newID()
	}
	return nil
}

func insert(rs *model.RuleSet, r model.Rule) error {
	if rs.HasID(r.ID) {
		return ErrDuplicateID
	}
	switch r.Kind {
	case model.RuleOnboarding:
		rs.Onboarding = append(rs.Onboarding, r)
	case model.RuleWeekly:
		rs.Weekly = append(rs.Weekly, r)
	case model.RuleMilestone:
		rs.Milestones = append(rs.Milestones, r)
	}
	return nil
}

func remove(rs *model.RuleSet, id model.RuleID) bool {
	drop := func(in []model.Rule) ([]model.Rule, bool) {
		for i, r := range in {
			if r.ID == id {
				return append(in[:i], in[i+1:]...), true
			}
		}
		return in, false
	}
	var ok bool
	if rs.Onboarding, ok = drop(rs.Onboarding); ok {
		return true
	}
	if rs.Weekly, ok = drop(rs.Weekly); ok {
		return true
	}
	if rs.Milestones, ok = drop(rs.Milestones); ok {
		return true
	}
	return false
}

func cloneSet(rs model.RuleSet) model.RuleSet {
	out := model.RuleSet{
		Onboarding: make([]model.Rule, len(rs.Onboarding)),
		Weekly:     make([]model.Rule, len(rs.Weekly)),
		Milestones: make([]model.Rule, len(rs.Milestones)),
	}
	copy(out.Onboarding, rs.Onboarding)
	copy(out.Weekly, rs.Weekly)
	copy(out.Milestones, rs.Milestones)
	return out
}
