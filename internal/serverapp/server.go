// Package serverapp wires the HTTP surface: storage, auth, the task
// engine, and the view handlers, all behind one ServeMux.
package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/apexcoaching123/client-tracker/internal/auth"
	"github.com/apexcoaching123/client-tracker/internal/client"
	"github.com/apexcoaching123/client-tracker/internal/config"
	"github.com/apexcoaching123/client-tracker/internal/engine"
	"github.com/apexcoaching123/client-tracker/internal/httpmw"
	"github.com/apexcoaching123/client-tracker/internal/ledger"
	"github.com/apexcoaching123/client-tracker/internal/model"
	"github.com/apexcoaching123/client-tracker/internal/rule"
	"github.com/apexcoaching123/client-tracker/internal/stores/sqlite"
	"github.com/apexcoaching123/client-tracker/internal/syncer"
	"github.com/apexcoaching123/client-tracker/internal/views"
)

type Options struct {
	Config *config.Config
	Logger zerolog.Logger
}

// App bundles the HTTP handler with the background sync loop so main
// can run both against one context.
type App struct {
	Handler http.Handler
	sync    *syncer.Syncer
	log     zerolog.Logger
}

// stores groups the per-concern repositories for one backend so the
// mux wiring below doesn't care which backend produced them.
type stores struct {
	clients func(userID string) client.Repo
	rules   func(userID string) rule.Repo
	ledger  func(userID string) ledger.Repo
	ready   func() error
}

func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := opts.Config
	log := opts.Logger
	dataDir := cfg.Server.DataDir
	if strings.TrimSpace(dataDir) == "" {
		dataDir = "data"
	}

	app := &App{log: log}

	var st stores
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		dbPath := cfg.Storage.SQLitePath
		if strings.TrimSpace(dbPath) == "" {
			dbPath = "client-tracker.db"
		}
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(dataDir, dbPath)
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, err
		}
		db, err := sqlite.Open(dbPath)
		if err != nil {
			return nil, err
		}
		st = stores{
			clients: func(userID string) client.Repo { return db.Clients(userID) },
			rules:   func(userID string) rule.Repo { return db.Rules(userID) },
			ledger:  func(userID string) ledger.Repo { return db.Ledger(userID) },
			ready:   db.Ping,
		}
		if cfg.Sync.Enabled {
			log.Warn().Msg("sync is only supported with the file backend, disabling")
		}
	case config.BackendFile:
		clientRepo, err := client.NewFileRepo(filepath.Join(dataDir, "clients"))
		if err != nil {
			return nil, err
		}
		ruleRepo, err := rule.NewFileRepo(filepath.Join(dataDir, "rules"))
		if err != nil {
			return nil, err
		}
		ledgerRepo, err := ledger.NewFileRepo(filepath.Join(dataDir, "completions"))
		if err != nil {
			return nil, err
		}
		st = stores{
			clients: func(userID string) client.Repo { return clientRepo.ForUser(userID) },
			rules:   func(userID string) rule.Repo { return ruleRepo.ForUser(userID) },
			ledger:  func(userID string) ledger.Repo { return ledgerRepo.ForUser(userID) },
			ready: func() error {
				_, err := clientRepo.List()
				return err
			},
		}
		if cfg.Sync.Enabled && cfg.Sync.RemoteURL != "" {
			app.sync = syncer.New(
				syncer.NewHTTPRemote(cfg.Sync.RemoteURL),
				clientRepo, ruleRepo, ledgerRepo,
				log.With().Str("component", "syncer").Logger(),
				syncer.Options{
					PollInterval: time.Duration(cfg.Sync.PollIntervalMS) * time.Millisecond,
					GraceWindow:  time.Duration(cfg.Sync.EditGraceWindowMS) * time.Millisecond,
					SaveDebounce: time.Duration(cfg.Sync.SaveDebounceMS) * time.Millisecond,
				},
			)
		}
	default:
		return nil, errors.New("unknown storage backend: " + cfg.Storage.Backend)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "client-tracker",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	authRepo, err := auth.NewFileRepo(filepath.Join(dataDir, "auth"))
	if err != nil {
		return nil, err
	}
	authService := auth.NewService(authRepo, log.With().Str("component", "auth").Logger(), auth.Options{
		OTPTTL:         time.Duration(cfg.Auth.OTPTTLMinutes) * time.Minute,
		SessionTTL:     time.Duration(cfg.Auth.SessionTTLHours) * time.Hour,
		MaxOTPAttempts: cfg.Auth.MaxOTPAttempts,
	})
	authHandler := auth.NewHandler(authService)
	mux.HandleFunc("/api/auth/request-otp", authHandler.RequestOTP)
	mux.HandleFunc("/api/auth/verify-otp", authHandler.VerifyOTP)
	mux.HandleFunc("/api/auth/session", authHandler.Session)
	mux.HandleFunc("/api/auth/logout", authHandler.Logout)

	userID := func(r *http.Request) string {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			return ""
		}
		return u.ID
	}

	clientHandler := client.NewHandler(nil)
	clientHandler.SetRepoResolver(func(r *http.Request) client.Repo {
		return st.clients(userID(r))
	})
	mux.Handle("/api/clients", authService.RequireAPI(app.markEdits(http.HandlerFunc(clientHandler.ClientsRoot))))
	mux.Handle("/api/clients/", authService.RequireAPI(app.markEdits(http.HandlerFunc(clientHandler.ClientsSub))))

	ruleHandler := rule.NewHandler(nil)
	ruleHandler.SetRepoResolver(func(r *http.Request) rule.Repo {
		return st.rules(userID(r))
	})
	mux.Handle("/api/rules", authService.RequireAPI(app.markEdits(http.HandlerFunc(ruleHandler.RulesRoot))))
	mux.Handle("/api/rules/", authService.RequireAPI(app.markEdits(http.HandlerFunc(ruleHandler.RulesSub))))

	ledgerHandler := ledger.NewHandler(nil)
	ledgerHandler.SetRepoResolver(func(r *http.Request) ledger.Repo {
		return st.ledger(userID(r))
	})
	mux.Handle("/api/completions/toggle", authService.RequireAPI(app.markEdits(http.HandlerFunc(ledgerHandler.Toggle))))
	mux.Handle("/api/completions", authService.RequireAPI(http.HandlerFunc(ledgerHandler.List)))

	eng := engine.New()
	if items := cfg.Engine.PrestartChecklist; len(items) > 0 {
		tasks := make([]model.Task, 0, len(items))
		for _, it := range items {
			tasks = append(tasks, model.Task{ID: model.TaskID(it.ID), Title: it.Title, Kind: model.TaskPrestart})
		}
		eng.Prestart = tasks
	}
	viewsHandler := views.NewHandler(eng, cfg.Engine.OverdueLookbackDays)
	viewsHandler.SetClientResolver(func(r *http.Request) client.Repo { return st.clients(userID(r)) })
	viewsHandler.SetRuleResolver(func(r *http.Request) rule.Repo { return st.rules(userID(r)) })
	viewsHandler.SetLedgerResolver(func(r *http.Request) ledger.Repo { return st.ledger(userID(r)) })
	mux.Handle("/api/views/day", authService.RequireAPI(http.HandlerFunc(viewsHandler.Day)))
	mux.Handle("/api/views/week", authService.RequireAPI(http.HandlerFunc(viewsHandler.Week)))
	mux.Handle("/api/views/overdue", authService.RequireAPI(http.HandlerFunc(viewsHandler.Overdue)))
	mux.Handle("/api/views/upcoming", authService.RequireAPI(http.HandlerFunc(viewsHandler.Upcoming)))
	mux.Handle("/api/views/roster", authService.RequireAPI(http.HandlerFunc(viewsHandler.Roster)))

	mux.Handle("/api/config", authService.RequireAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})))

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := st.ready(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "client-tracker",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	app.Handler = httpmw.Chain(
		mux,
		httpmw.WithAccessLog(log),
		httpmw.WithRequestID,
		httpmw.WithRecover(log),
	)
	return app, nil
}

// Start launches the background sync loop, if configured. It returns
// immediately; the loop stops when ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	if a.sync == nil {
		return
	}
	go a.sync.Run(ctx)
	a.log.Info().Msg("sync enabled")
}

// markEdits opens the sync grace window after any mutating request, so
// the poller doesn't overwrite what the coach just changed.
func (a *App) markEdits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if a.sync == nil {
			return
		}
		switch r.Method {
		case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
			a.sync.MarkLocalEdit()
		}
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
