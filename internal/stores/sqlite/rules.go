package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/apexcoaching123/client-tracker/internal/model"
	"github.com/apexcoaching123/client-tracker/internal/rule"
)

// RuleRepo implements rule.Repo over the rules table. The seeded flag
// lives in rule_seeds so that a user who deletes every rule keeps an
// empty set instead of getting the defaults back.
type RuleRepo struct {
	db     *sql.DB
	userID string
}

func (r *RuleRepo) seed() error {
	var seen string
	err := r.db.QueryRow("SELECT user_id FROM rule_seeds WHERE user_id = ?", r.userID).Scan(&seen)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check rule seed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pos := 0
	for _, rl := range rule.DefaultRuleSet().All() {
		if err := insertRule(tx, r.userID, rl, pos); err != nil {
			return err
		}
		pos++
	}
	if _, err := tx.Exec("INSERT INTO rule_seeds (user_id) VALUES (?)", r.userID); err != nil {
		return err
	}
	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertRule(db execer, userID string, rl model.Rule, pos int) error {
	_, err := db.Exec(
		`INSERT INTO rules (user_id, id, kind, title, weekday, week, cadence_every, cadence_start, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, rl.ID, rl.Kind, rl.Title, rl.Weekday, rl.Week,
		rl.Cadence.EveryNWeeks, rl.Cadence.StartWeek, pos)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return rule.ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

func (r *RuleRepo) List() (model.RuleSet, error) {
	if err := r.seed(); err != nil {
		return model.RuleSet{}, err
	}

	rows, err := r.db.Query(
		`SELECT id, kind, title, weekday, week, cadence_every, cadence_start
		 FROM rules WHERE user_id = ? ORDER BY position, id`, r.userID)
	if err != nil {
		return model.RuleSet{}, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rs model.RuleSet
	for rows.Next() {
		var rl model.Rule
		if err := rows.Scan(&rl.ID, &rl.Kind, &rl.Title, &rl.Weekday, &rl.Week,
			&rl.Cadence.EveryNWeeks, &rl.Cadence.StartWeek); err != nil {
			return model.RuleSet{}, fmt.Errorf("scan rule: %w", err)
		}
		switch rl.Kind {
		case model.RuleOnboarding:
			rs.Onboarding = append(rs.Onboarding, rl)
		case model.RuleWeekly:
			rs.Weekly = append(rs.Weekly, rl)
		case model.RuleMilestone:
			rs.Milestones = append(rs.Milestones, rl)
		}
	}
	return rs, rows.Err()
}

func (r *RuleRepo) Create(rl model.Rule) (model.Rule, error) {
	if err := r.seed(); err != nil {
		return model.Rule{}, err
	}
	if err := rule.Validate(&rl); err != nil {
		return model.Rule{}, err
	}

	var pos int
	if err := r.db.QueryRow(
		"SELECT COALESCE(MAX(position), -1) + 1 FROM rules WHERE user_id = ?",
		r.userID).Scan(&pos); err != nil {
		return model.Rule{}, fmt.Errorf("next rule position: %w", err)
	}
	if err := insertRule(r.db, r.userID, rl, pos); err != nil {
		return model.Rule{}, err
	}
	return rl, nil
}

func (r *RuleRepo) Delete(id model.RuleID) error {
	if err := r.seed(); err != nil {
		return err
	}
	res, err := r.db.Exec("DELETE FROM rules WHERE user_id = ? AND id = ?", r.userID, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rule.ErrNotFound
	}
	return nil
}
