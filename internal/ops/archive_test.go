package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	writeFile(t, filepath.Join(dataDir, "clients", "clients.json"), `{"users":{}}`)
	writeFile(t, filepath.Join(dataDir, "completions", "completions.json"), `{"users":{"default":{"keys":{}}}}`)

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	require.NoError(t, Backup(dataDir, archive))

	restored := filepath.Join(t.TempDir(), "restored")
	require.NoError(t, Restore(archive, restored))

	want, err := Checksums(dataDir)
	require.NoError(t, err)
	got, err := Checksums(restored)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDrillDetectsDrift(t *testing.T) {
	dataDir := t.TempDir()
	writeFile(t, filepath.Join(dataDir, "clients", "clients.json"), `{"users":{}}`)

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	require.NoError(t, Backup(dataDir, archive))

	// Mutate the live data after the backup: the drill must notice.
	writeFile(t, filepath.Join(dataDir, "clients", "clients.json"), `{"users":{"default":{}}}`)

	err := Drill(dataDir, archive, filepath.Join(t.TempDir(), "restored"))
	assert.Error(t, err)
}

func TestRestoreRejectsPathTraversal(t *testing.T) {
	_, err := safeRelPath("../../etc/passwd")
	assert.Error(t, err)
	_, err = safeRelPath("/etc/passwd")
	assert.Error(t, err)

	rel, err := safeRelPath("clients/clients.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("clients", "clients.json"), rel)
}

func TestSeedDemoRefusesNonEmptyDir(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, SeedDemo(dataDir))

	err := SeedDemo(dataDir)
	assert.Error(t, err, "seeding twice must refuse")
}
