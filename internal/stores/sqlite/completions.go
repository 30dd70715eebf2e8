package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/apexcoaching123/client-tracker/internal/ledger"
	"github.com/apexcoaching123/client-tracker/internal/model"
)

// LedgerRepo implements ledger.Repo over the completions table. The
// primary key over (user, date, client, task) gives the upsert-by-
// composite-key contract: retried toggles converge.
type LedgerRepo struct {
	db     *sql.DB
	userID string
}

func (r *LedgerRepo) Done(date string, clientID model.ClientID, taskID model.TaskID) bool {
	var done int
	err := r.db.QueryRow(
		"SELECT done FROM completions WHERE user_id = ? AND date = ? AND client_id = ? AND task_id = ?",
		r.userID, date, clientID, taskID).Scan(&done)
	if err != nil {
		return false
	}
	return done != 0
}

func (r *LedgerRepo) Set(date string, clientID model.ClientID, taskID model.TaskID, done bool) error {
	val := 0
	if done {
		val = 1
	}
	_, err := r.db.Exec(
		`INSERT INTO completions (user_id, date, client_id, task_id, done)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, date, client_id, task_id) DO UPDATE SET done = excluded.done`,
		r.userID, date, clientID, taskID, val)
	if err != nil {
		return fmt.Errorf("set completion: %w", err)
	}
	return nil
}

func (r *LedgerRepo) Toggle(date string, clientID model.ClientID, taskID model.TaskID) (bool, error) {
	next := !r.Done(date, clientID, taskID)
	if err := r.Set(date, clientID, taskID, next); err != nil {
		return false, err
	}
	return next, nil
}

func (r *LedgerRepo) ListBetween(from, to string) ([]ledger.Entry, error) {
	rows, err := r.db.Query(
		`SELECT date, client_id, task_id FROM completions
		 WHERE user_id = ? AND done = 1 AND date >= ? AND date <= ?
		 ORDER BY date, client_id, task_id`,
		r.userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	out := []ledger.Entry{}
	for rows.Next() {
		var e ledger.Entry
		e.Done = true
		if err := rows.Scan(&e.Date, &e.ClientID, &e.TaskID); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ ledger.Repo = (*LedgerRepo)(nil)
