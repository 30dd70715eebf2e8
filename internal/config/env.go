package config

import (
	"os"
	"strconv"
)

// ApplyEnv overlays environment variables on a loaded config. Falls back
// to the existing values when a variable is unset or malformed.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CT_DATA_DIR"); v != "" {
		c.Server.DataDir = v
	}
	if v := os.Getenv("CT_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("CT_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("CT_SYNC_REMOTE_URL"); v != "" {
		c.Sync.RemoteURL = v
		c.Sync.Enabled = true
	}
	if v := getEnvInt("CT_OVERDUE_LOOKBACK_DAYS"); v > 0 {
		c.Engine.OverdueLookbackDays = v
	}
	if v := getEnvInt("CT_SYNC_POLL_INTERVAL_MS"); v > 0 {
		c.Sync.PollIntervalMS = v
	}
	if v := getEnvInt("CT_SYNC_GRACE_WINDOW_MS"); v > 0 {
		c.Sync.EditGraceWindowMS = v
	}
	if v := getEnvInt("CT_SESSION_TTL_HOURS"); v > 0 {
		c.Auth.SessionTTLHours = v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
