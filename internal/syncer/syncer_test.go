package syncer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexcoaching123/client-tracker/internal/client"
	"github.com/apexcoaching123/client-tracker/internal/ledger"
	"github.com/apexcoaching123/client-tracker/internal/model"
	"github.com/apexcoaching123/client-tracker/internal/rule"
)

type fakeRemote struct {
	mu    sync.Mutex
	snap  Snapshot
	has   bool
	saves int
}

func (f *fakeRemote) Load(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.has {
		return Snapshot{}, ErrNoSnapshot
	}
	return f.snap, nil
}

func (f *fakeRemote) Save(ctx context.Context, snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
	f.has = true
	f.saves++
	return nil
}

func newTestSyncer(t *testing.T, remote RemoteStore, opts Options) (*Syncer, *client.FileRepo, *ledger.FileRepo) {
	t.Helper()
	dir := t.TempDir()
	clients, err := client.NewFileRepo(dir)
	require.NoError(t, err)
	rules, err := rule.NewFileRepo(dir)
	require.NoError(t, err)
	led, err := ledger.NewFileRepo(dir)
	require.NoError(t, err)
	return New(remote, clients, rules, led, zerolog.Nop(), opts), clients, led
}

func TestFlushPushesLocalStateAfterDebounce(t *testing.T) {
	remote := &fakeRemote{}
	s, clients, _ := newTestSyncer(t, remote, Options{SaveDebounce: time.Millisecond})

	_, err := clients.Create(model.Client{Name: "Ada", StartDate: "2024-01-01"})
	require.NoError(t, err)
	s.MarkLocalEdit()
	time.Sleep(5 * time.Millisecond)

	s.flushOnce(context.Background())

	require.Equal(t, 1, remote.saves)
	assert.Len(t, remote.snap.Clients, 1)
	assert.Equal(t, "Ada", remote.snap.Clients[0].Name)
	assert.Equal(t, s.origin, remote.snap.Origin)
}

func TestFlushWaitsForDebounceToSettle(t *testing.T) {
	remote := &fakeRemote{}
	s, _, _ := newTestSyncer(t, remote, Options{SaveDebounce: time.Hour})

	s.MarkLocalEdit()
	s.flushOnce(context.Background())

	assert.Equal(t, 0, remote.saves, "edit still within debounce must not save")
}

func TestPollAppliesRemoteSnapshot(t *testing.T) {
	remote := &fakeRemote{
		has: true,
		snap: Snapshot{
			Origin:   "someone-else",
			Revision: 7,
			Clients:  []model.Client{{ID: "cl_1", Name: "Bo", StartDate: "2024-03-04"}},
		},
	}
	s, clients, _ := newTestSyncer(t, remote, Options{})

	s.pollOnce(context.Background())

	got, err := clients.List()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bo", got[0].Name)
}

func TestPollSuppressedDuringGraceWindow(t *testing.T) {
	remote := &fakeRemote{
		has: true,
		snap: Snapshot{
			Origin:   "someone-else",
			Revision: 7,
			Clients:  []model.Client{{ID: "cl_1", Name: "Bo", StartDate: "2024-03-04"}},
		},
	}
	s, clients, _ := newTestSyncer(t, remote, Options{GraceWindow: time.Hour})

	s.MarkLocalEdit()
	s.pollOnce(context.Background())

	got, err := clients.List()
	require.NoError(t, err)
	assert.Empty(t, got, "remote snapshot must not clobber a fresh local edit")
}

func TestPollSkipsOwnOriginAndOldRevisions(t *testing.T) {
	remote := &fakeRemote{}
	s, clients, _ := newTestSyncer(t, remote, Options{})

	remote.snap = Snapshot{
		Origin:   s.origin,
		Revision: 99,
		Clients:  []model.Client{{ID: "cl_1", Name: "Echo", StartDate: "2024-03-04"}},
	}
	remote.has = true
	s.pollOnce(context.Background())

	got, err := clients.List()
	require.NoError(t, err)
	assert.Empty(t, got, "own snapshots must be skipped")

	s.revision = 10
	remote.snap.Origin = "someone-else"
	remote.snap.Revision = 10
	s.pollOnce(context.Background())

	got, err = clients.List()
	require.NoError(t, err)
	assert.Empty(t, got, "already-seen revisions must be skipped")
}

func TestRoundTripThroughRemote(t *testing.T) {
	remote := &fakeRemote{}
	a, clientsA, ledA := newTestSyncer(t, remote, Options{SaveDebounce: time.Millisecond})
	b, clientsB, ledB := newTestSyncer(t, remote, Options{})

	c, err := clientsA.Create(model.Client{Name: "Ada", StartDate: "2024-01-01"})
	require.NoError(t, err)
	require.NoError(t, ledA.Set("2024-01-01", c.ID, "rule:wk-weigh-in", true))
	a.MarkLocalEdit()
	time.Sleep(5 * time.Millisecond)
	a.flushOnce(context.Background())

	b.pollOnce(context.Background())

	got, err := clientsB.List()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
	assert.True(t, ledB.Done("2024-01-01", c.ID, "rule:wk-weigh-in"))
}
