// Package syncer keeps a local file-backed store loosely in sync with a
// shared remote snapshot store. The policy is deliberately simple:
// last-writer-wins snapshots, polled on a fixed interval, with a grace
// window after any local edit during which remote snapshots are not
// applied, so the coach never sees their own change flicker away.
//
// Known limitation, accepted rather than fixed: two origins editing
// inside the same grace window can clobber each other's snapshot. This
// is not a merge; it is a poll-and-overwrite policy.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/apexcoaching123/client-tracker/internal/client"
	"github.com/apexcoaching123/client-tracker/internal/ledger"
	"github.com/apexcoaching123/client-tracker/internal/model"
	"github.com/apexcoaching123/client-tracker/internal/rule"
)

// Snapshot is the whole shared state as one document. Origin identifies
// the process that saved it so pollers can skip their own writes.
type Snapshot struct {
	Origin      string         `json:"origin"`
	Revision    int64          `json:"revision"`
	SavedAt     time.Time      `json:"savedAt"`
	Clients     []model.Client `json:"clients"`
	Rules       model.RuleSet  `json:"rules"`
	Completions []ledger.Entry `json:"completions"`
}

// ErrNoSnapshot is returned by RemoteStore.Load before the first save.
var ErrNoSnapshot = errors.New("no remote snapshot")

type RemoteStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

type Options struct {
	PollInterval time.Duration
	GraceWindow  time.Duration
	SaveDebounce time.Duration
}

type Syncer struct {
	remote  RemoteStore
	clients *client.FileRepo
	rules   *rule.FileRepo
	ledger  *ledger.FileRepo
	log     zerolog.Logger

	origin string
	opts   Options

	mu            sync.Mutex
	lastLocalEdit time.Time
	dirty         bool
	revision      int64
}

func New(remote RemoteStore, clients *client.FileRepo, rules *rule.FileRepo, led *ledger.FileRepo, log zerolog.Logger, opts Options) *Syncer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.GraceWindow <= 0 {
		opts.GraceWindow = 5 * time.Second
	}
	if opts.SaveDebounce <= 0 {
		opts.SaveDebounce = 800 * time.Millisecond
	}
	return &Syncer{
		remote:  remote,
		clients: clients,
		rules:   rules,
		ledger:  led,
		log:     log,
		origin:  uuid.NewString(),
		opts:    opts,
	}
}

// MarkLocalEdit records that the user just changed something. It opens
// the grace window and schedules a debounced save.
func (s *Syncer) MarkLocalEdit() {
	s.mu.Lock()
	s.lastLocalEdit = time.Now()
	s.dirty = true
	s.mu.Unlock()
}

// Run polls and flushes until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	poll := time.NewTicker(s.opts.PollInterval)
	flush := time.NewTicker(s.opts.SaveDebounce)
	defer poll.Stop()
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			// One final flush so a clean shutdown doesn't lose the last
			// edits.
			s.flushOnce(context.Background())
			return
		case <-poll.C:
			s.pollOnce(ctx)
		case <-flush.C:
			s.flushOnce(ctx)
		}
	}
}

// pollOnce loads the remote snapshot and applies it locally unless the
// grace window after a local edit is still open.
func (s *Syncer) pollOnce(ctx context.Context) {
	snap, err := s.remote.Load(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("sync poll failed")
		return
	}
	if snap.Origin == s.origin {
		return
	}

	s.mu.Lock()
	withinGrace := time.Since(s.lastLocalEdit) < s.opts.GraceWindow
	sameRevision := snap.Revision <= s.revision
	if !withinGrace && !sameRevision {
		s.revision = snap.Revision
	}
	s.mu.Unlock()

	if withinGrace {
		s.log.Debug().Int64("revision", snap.Revision).Msg("remote snapshot suppressed by edit grace window")
		return
	}
	if sameRevision {
		return
	}

	if err := s.apply(snap); err != nil {
		s.log.Error().Err(err).Msg("apply remote snapshot")
		return
	}
	s.log.Info().Int64("revision", snap.Revision).Str("origin", snap.Origin).Msg("applied remote snapshot")
}

func (s *Syncer) apply(snap Snapshot) error {
	if err := s.clients.Replace(snap.Clients); err != nil {
		return err
	}
	if err := s.rules.Replace(snap.Rules); err != nil {
		return err
	}
	return s.ledger.Replace(snap.Completions)
}

// flushOnce pushes the local state to the remote once the debounce has
// settled after the latest edit.
func (s *Syncer) flushOnce(ctx context.Context) {
	s.mu.Lock()
	settled := s.dirty && time.Since(s.lastLocalEdit) >= s.opts.SaveDebounce
	if settled {
		s.dirty = false
		s.revision++
	}
	rev := s.revision
	s.mu.Unlock()

	if !settled {
		return
	}

	snap, err := s.buildSnapshot(rev)
	if err != nil {
		s.log.Error().Err(err).Msg("build snapshot")
		s.MarkLocalEdit()
		return
	}
	if err := s.remote.Save(ctx, snap); err != nil {
		s.log.Warn().Err(err).Msg("sync save failed, will retry")
		s.MarkLocalEdit()
		return
	}
	s.log.Debug().Int64("revision", rev).Msg("saved snapshot")
}

func (s *Syncer) buildSnapshot(rev int64) (Snapshot, error) {
	clients, err := s.clients.List()
	if err != nil {
		return Snapshot{}, err
	}
	rules, err := s.rules.List()
	if err != nil {
		return Snapshot{}, err
	}
	entries, err := s.ledger.Entries()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Origin:      s.origin,
		Revision:    rev,
		SavedAt:     time.Now().UTC(),
		Clients:     clients,
		Rules:       rules,
		Completions: entries,
	}, nil
}
