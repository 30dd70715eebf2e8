// Package ledger persists the per-day completion flags. The ledger is a
// sparse map over (date, client, task); an absent key reads as not done.
// Entries keyed by deleted rules go stale but are inert.
package ledger

import (
	"strings"

	"github.com/apexcoaching123/client-tracker/internal/model"
)

// Key is the composite completion key. Date is either a calendar date or
// the synthetic prestart bucket.
type Key struct {
	Date     string         `json:"date"`
	ClientID model.ClientID `json:"clientId"`
	TaskID   model.TaskID   `json:"taskId"`
}

func (k Key) String() string {
	return k.Date + "|" + string(k.ClientID) + "|" + string(k.TaskID)
}

// parseKey is the inverse of Key.String. Malformed strings yield a zero
// Key; stores skip those on load.
func parseKey(s string) (Key, bool) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Key{}, false
	}
	return Key{Date: parts[0], ClientID: model.ClientID(parts[1]), TaskID: model.TaskID(parts[2])}, true
}

// Entry is one completion flag with its key, as returned by range queries.
type Entry struct {
	Key
	Done bool `json:"done"`
}

type Repo interface {
	// Done reports the flag for a key; unknown keys are false.
	Done(date string, clientID model.ClientID, taskID model.TaskID) bool
	// Set upserts by composite key, so retried writes converge.
	Set(date string, clientID model.ClientID, taskID model.TaskID, done bool) error
	// Toggle flips the flag and returns the new value.
	Toggle(date string, clientID model.ClientID, taskID model.TaskID) (bool, error)
	// ListBetween returns every done entry with from <= date <= to.
	// Civil dates compare lexicographically, so this is a string range.
	ListBetween(from, to string) ([]Entry, error)
}
