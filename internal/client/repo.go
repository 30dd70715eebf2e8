// Package client stores the coaching roster.
package client

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/apexcoaching123/client-tracker/internal/dates"
	"github.com/apexcoaching123/client-tracker/internal/model"
)

var (
	ErrNotFound     = errors.New("client not found")
	ErrInvalidName  = errors.New("client name is required")
	ErrInvalidDate  = errors.New("start date must be YYYY-MM-DD")
	ErrInvalidPlan  = errors.New("unknown program type")
	ErrInvalidPatch = errors.New("invalid client patch")
)

// Patch is a partial update. nil pointer means no change. The start date
// is deliberately absent: enrollment is immutable and the whole schedule
// hangs off it.
type Patch struct {
	Name    *string            `json:"name,omitempty"`
	Program *model.ProgramType `json:"program,omitempty"`
	Goal    *model.Goal        `json:"goal,omitempty"`
	Notes   *string            `json:"notes,omitempty"`
}

type Repo interface {
	List() ([]model.Client, error)
	Get(id model.ClientID) (model.Client, error)
	Create(c model.Client) (model.Client, error)
	Update(id model.ClientID, p Patch) (model.Client, error)
	Delete(id model.ClientID) error
}

// NewID returns a random client id.
func NewID() model.ClientID {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return model.ClientID("client_" + hex.EncodeToString(b[:]))
}

// ValidateNew enforces the write-boundary contract: everything past this
// point assumes well-formed dates. It fills in the default program type.
func ValidateNew(c *model.Client) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrInvalidName
	}
	if !dates.IsValid(c.StartDate) {
		return ErrInvalidDate
	}
	if c.Program == "" {
		c.Program = model.ProgramFixed12
	}
	if !c.Program.Valid() {
		return ErrInvalidPlan
	}
	return nil
}

// ApplyPatch mutates c with the non-nil fields of p.
func ApplyPatch(c *model.Client, p Patch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return ErrInvalidName
		}
		c.Name = name
	}
	if p.Program != nil {
		if !p.Program.Valid() {
			return ErrInvalidPlan
		}
		c.Program = *p.Program
	}
	if p.Goal != nil {
		c.Goal = *p.Goal
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	return nil
}
