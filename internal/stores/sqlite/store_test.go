package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexcoaching123/client-tracker/internal/client"
	"github.com/apexcoaching123/client-tracker/internal/model"
	"github.com/apexcoaching123/client-tracker/internal/rule"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestClientRepoCRUD(t *testing.T) {
	s := openStore(t)
	repo := s.Clients("u1")

	created, err := repo.Create(model.Client{Name: "Maya", StartDate: "2024-01-01"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maya", got.Name)
	assert.Equal(t, model.ProgramFixed12, got.Program)

	notes := "remote client"
	updated, err := repo.Update(created.ID, client.Patch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "remote client", updated.Notes)
	assert.Equal(t, "2024-01-01", updated.StartDate)

	require.NoError(t, repo.Delete(created.ID))
	_, err = repo.Get(created.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(created.ID), client.ErrNotFound)
}

func TestClientRepoScopesUsers(t *testing.T) {
	s := openStore(t)

	_, err := s.Clients("alice").Create(model.Client{Name: "Maya", StartDate: "2024-01-01"})
	require.NoError(t, err)

	got, err := s.Clients("bob").List()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRuleRepoSeedsOncePerUser(t *testing.T) {
	s := openStore(t)
	repo := s.Rules("u1")

	set, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, set.All(), 7)

	for _, rl := range set.All() {
		require.NoError(t, repo.Delete(rl.ID))
	}

	set, err = repo.List()
	require.NoError(t, err)
	assert.True(t, set.Empty(), "defaults must not resurrect after a wipe")
}

func TestRuleRepoDuplicateID(t *testing.T) {
	s := openStore(t)
	repo := s.Rules("u1")

	_, err := repo.List()
	require.NoError(t, err)

	_, err = repo.Create(model.Rule{ID: "wk-weigh-in", Kind: model.RuleWeekly, Title: "Again", Weekday: 2})
	assert.ErrorIs(t, err, rule.ErrDuplicateID)
}

func TestRuleRepoPreservesCadenceAndOrder(t *testing.T) {
	s := openStore(t)

	set, err := s.Rules("u1").List()
	require.NoError(t, err)
	require.Len(t, set.Weekly, 3)
	assert.Equal(t, model.RuleID("wk-weigh-in"), set.Weekly[0].ID)
	assert.Equal(t, model.Cadence{EveryNWeeks: 2, StartWeek: 5}, set.Weekly[1].Cadence)
}

func TestLedgerRepoToggleAndRange(t *testing.T) {
	s := openStore(t)
	led := s.Ledger("u1")

	done, err := led.Toggle("2024-01-01", "cl_1", "t1")
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, led.Done("2024-01-01", "cl_1", "t1"))

	done, err = led.Toggle("2024-01-01", "cl_1", "t1")
	require.NoError(t, err)
	assert.False(t, done)
	assert.False(t, led.Done("2024-01-01", "cl_1", "t1"))

	require.NoError(t, led.Set("2024-01-02", "cl_1", "t1", true))
	require.NoError(t, led.Set("2024-01-09", "cl_1", "t1", true))
	entries, err := led.ListBetween("2024-01-01", "2024-01-07")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-01-02", entries[0].Date)
}

func TestLedgerRepoSetIsIdempotent(t *testing.T) {
	s := openStore(t)
	led := s.Ledger("u1")

	require.NoError(t, led.Set("2024-01-01", "cl_1", "t1", true))
	require.NoError(t, led.Set("2024-01-01", "cl_1", "t1", true))
	assert.True(t, led.Done("2024-01-01", "cl_1", "t1"))

	entries, err := led.ListBetween("2024-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
