package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/apexcoaching123/client-tracker/internal/client"
	"github.com/apexcoaching123/client-tracker/internal/model"
)

// ClientRepo implements client.Repo over the clients table.
type ClientRepo struct {
	db     *sql.DB
	userID string
}

const clientCols = "id, name, start_date, program, goal, notes, created_at, updated_at"

func scanClient(row interface{ Scan(...any) error }) (model.Client, error) {
	var c model.Client
	err := row.Scan(&c.ID, &c.Name, &c.StartDate, &c.Program, &c.Goal, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *ClientRepo) List() ([]model.Client, error) {
	rows, err := r.db.Query(
		"SELECT "+clientCols+" FROM clients WHERE user_id = ? ORDER BY name, id",
		r.userID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	out := []model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ClientRepo) Get(id model.ClientID) (model.Client, error) {
	row := r.db.QueryRow(
		"SELECT "+clientCols+" FROM clients WHERE user_id = ? AND id = ?",
		r.userID, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, client.ErrNotFound
	}
	if err != nil {
		return model.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (r *ClientRepo) Create(c model.Client) (model.Client, error) {
	if err := client.ValidateNew(&c); err != nil {
		return model.Client{}, err
	}
	now := time.Now()
	c.ID = client.NewID()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.Exec(
		"INSERT INTO clients (user_id, "+clientCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.userID, c.ID, c.Name, c.StartDate, c.Program, c.Goal, c.Notes, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return model.Client{}, fmt.Errorf("insert client: %w", err)
	}
	return c, nil
}

func (r *ClientRepo) Update(id model.ClientID, p client.Patch) (model.Client, error) {
	c, err := r.Get(id)
	if err != nil {
		return model.Client{}, err
	}
	if err := client.ApplyPatch(&c, p); err != nil {
		return model.Client{}, err
	}
	c.UpdatedAt = time.Now()

	_, err = r.db.Exec(
		"UPDATE clients SET name = ?, program = ?, goal = ?, notes = ?, updated_at = ? WHERE user_id = ? AND id = ?",
		c.Name, c.Program, c.Goal, c.Notes, c.UpdatedAt, r.userID, id)
	if err != nil {
		return model.Client{}, fmt.Errorf("update client: %w", err)
	}
	return c, nil
}

func (r *ClientRepo) Delete(id model.ClientID) error {
	res, err := r.db.Exec("DELETE FROM clients WHERE user_id = ? AND id = ?", r.userID, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return client.ErrNotFound
	}
	return nil
}
