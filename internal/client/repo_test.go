package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexcoaching123/client-tracker/internal/model"
)

func TestValidateNew(t *testing.T) {
	c := model.Client{Name: "  Maya  ", StartDate: "2024-01-01"}
	require.NoError(t, ValidateNew(&c))
	assert.Equal(t, "Maya", c.Name)
	assert.Equal(t, model.ProgramFixed12, c.Program, "program defaults to fixed12")

	bad := model.Client{Name: "", StartDate: "2024-01-01"}
	assert.ErrorIs(t, ValidateNew(&bad), ErrInvalidName)

	bad = model.Client{Name: "Maya", StartDate: "01/01/2024"}
	assert.ErrorIs(t, ValidateNew(&bad), ErrInvalidDate)

	bad = model.Client{Name: "Maya", StartDate: "2024-01-01", Program: "forever"}
	assert.ErrorIs(t, ValidateNew(&bad), ErrInvalidPlan)
}

func TestApplyPatchIgnoresNilFields(t *testing.T) {
	c := model.Client{Name: "Maya", StartDate: "2024-01-01", Program: model.ProgramFixed12, Notes: "old"}

	notes := "new notes"
	require.NoError(t, ApplyPatch(&c, Patch{Notes: &notes}))
	assert.Equal(t, "Maya", c.Name)
	assert.Equal(t, "new notes", c.Notes)

	empty := "  "
	assert.ErrorIs(t, ApplyPatch(&c, Patch{Name: &empty}), ErrInvalidName)
}

func TestMemoryRepoCRUD(t *testing.T) {
	repo := NewMemoryRepo()

	created, err := repo.Create(model.Client{Name: "Maya", StartDate: "2024-01-01"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	program := model.ProgramSixMonth
	updated, err := repo.Update(created.ID, Patch{Program: &program})
	require.NoError(t, err)
	assert.Equal(t, model.ProgramSixMonth, updated.Program)
	assert.Equal(t, created.StartDate, updated.StartDate, "start date is immutable")

	require.NoError(t, repo.Delete(created.ID))
	_, err = repo.Get(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(created.ID), ErrNotFound)
}

func TestFileRepoPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	repo, err := NewFileRepo(dir)
	require.NoError(t, err)
	created, err := repo.Create(model.Client{Name: "Maya", StartDate: "2024-01-01"})
	require.NoError(t, err)

	reopened, err := NewFileRepo(dir)
	require.NoError(t, err)
	got, err := reopened.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maya", got.Name)
}

func TestFileRepoScopesUsers(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)

	alice := repo.ForUser("alice")
	bob := repo.ForUser("bob")

	_, err = alice.Create(model.Client{Name: "Maya", StartDate: "2024-01-01"})
	require.NoError(t, err)

	bobClients, err := bob.List()
	require.NoError(t, err)
	assert.Empty(t, bobClients)
}

func TestFileRepoReplace(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	require.NoError(t, err)
	_, err = repo.Create(model.Client{Name: "Old", StartDate: "2024-01-01"})
	require.NoError(t, err)

	require.NoError(t, repo.Replace([]model.Client{
		{ID: "cl_new", Name: "New", StartDate: "2024-02-01", Program: model.ProgramFixed12},
	}))

	got, err := repo.List()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.ClientID("cl_new"), got[0].ID)
}
