package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  Server  `yaml:"server" json:"server"`
	Storage Storage `yaml:"storage" json:"storage"`
	Engine  Engine  `yaml:"engine" json:"engine"`
	Sync    Sync    `yaml:"sync" json:"sync"`
	Auth    Auth    `yaml:"auth" json:"auth"`
}

type Server struct {
	Addr    string `yaml:"addr" json:"addr"`
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Storage struct {
	// Backend is "file" (JSON files under data_dir) or "sqlite".
	Backend string `yaml:"backend" json:"backend"`
	// SQLitePath is the database file for the sqlite backend. Relative
	// paths resolve under data_dir.
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`
}

type Engine struct {
	// OverdueLookbackDays bounds how far back the overdue view
	// re-evaluates each client.
	OverdueLookbackDays int `yaml:"overdue_lookback_days" json:"overdue_lookback_days"`
	// PrestartChecklist lists the items shown for not-yet-started
	// clients. Empty disables the checklist entirely.
	PrestartChecklist []ChecklistItem `yaml:"prestart_checklist" json:"prestart_checklist"`
}

type ChecklistItem struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
}

type Sync struct {
	Enabled           bool   `yaml:"enabled" json:"enabled"`
	RemoteURL         string `yaml:"remote_url" json:"remote_url"`
	PollIntervalMS    int    `yaml:"poll_interval_ms" json:"poll_interval_ms"`
	EditGraceWindowMS int    `yaml:"edit_grace_window_ms" json:"edit_grace_window_ms"`
	SaveDebounceMS    int    `yaml:"save_debounce_ms" json:"save_debounce_ms"`
}

type Auth struct {
	OTPTTLMinutes   int `yaml:"otp_ttl_minutes" json:"otp_ttl_minutes"`
	SessionTTLHours int `yaml:"session_ttl_hours" json:"session_ttl_hours"`
	MaxOTPAttempts  int `yaml:"max_otp_attempts" json:"max_otp_attempts"`
}

func Default() Config {
	return Config{
		Server: Server{
			Addr:    ":8484",
			DataDir: "data",
		},
		Storage: Storage{
			Backend:    "file",
			SQLitePath: "client-tracker.db",
		},
		Engine: Engine{
			OverdueLookbackDays: 30,
			PrestartChecklist: []ChecklistItem{
				{ID: "prestart:billing", Title: "Set up billing"},
				{ID: "prestart:meal-plan", Title: "Send meal plan"},
				{ID: "prestart:training-plan", Title: "Assign training plan"},
				{ID: "prestart:confirm-ready", Title: "Confirm client is ready to start"},
			},
		},
		Sync: Sync{
			Enabled:           false,
			PollIntervalMS:    2000,
			EditGraceWindowMS: 5000,
			SaveDebounceMS:    800,
		},
		Auth: Auth{
			OTPTTLMinutes:   10,
			SessionTTLHours: 7 * 24,
			MaxOTPAttempts:  5,
		},
	}
}

// Load reads the YAML config at path. A missing file is not an error;
// it yields the defaults, matching a fresh install.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return &cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = d.Server.DataDir
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = d.Storage.SQLitePath
	}
	if c.Engine.OverdueLookbackDays <= 0 {
		c.Engine.OverdueLookbackDays = d.Engine.OverdueLookbackDays
	}
	if c.Sync.PollIntervalMS <= 0 {
		c.Sync.PollIntervalMS = d.Sync.PollIntervalMS
	}
	if c.Sync.EditGraceWindowMS <= 0 {
		c.Sync.EditGraceWindowMS = d.Sync.EditGraceWindowMS
	}
	if c.Sync.SaveDebounceMS <= 0 {
		c.Sync.SaveDebounceMS = d.Sync.SaveDebounceMS
	}
	if c.Auth.OTPTTLMinutes <= 0 {
		c.Auth.OTPTTLMinutes = d.Auth.OTPTTLMinutes
	}
	if c.Auth.SessionTTLHours <= 0 {
		c.Auth.SessionTTLHours = d.Auth.SessionTTLHours
	}
	if c.Auth.MaxOTPAttempts <= 0 {
		c.Auth.MaxOTPAttempts = d.Auth.MaxOTPAttempts
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("storage.backend must be file or sqlite, got %q", c.Storage.Backend)
	}
	return nil
}
