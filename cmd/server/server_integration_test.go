package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/apexcoaching123/client-tracker/internal/config"
	"github.com/apexcoaching123/client-tracker/internal/serverapp"
)

func TestServer_ProtectedRoutesRequireAuth(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/api/clients",
		"/api/rules",
		"/api/views/day",
		"/api/views/roster",
	} {
		res := app.request(http.MethodGet, path, nil, "")
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %d", path, res.Code)
		}
	}

	toggleRes := app.json(http.MethodPost, "/api/completions/toggle", map[string]any{
		"date": "2024-01-03", "clientId": "c1", "taskId": "rule:wk-weigh-in",
	})
	if toggleRes.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for toggle, got %d", toggleRes.Code)
	}
}

func TestServer_OTPFlowAndDashboard(t *testing.T) {
	app := newTestApp(t)
	const email = "integration@example.com"

	app.login(t, email)

	sessionRes := app.request(http.MethodGet, "/api/auth/session", nil, "")
	if sessionRes.Code != http.StatusOK {
		t.Fatalf("session expected 200, got %d body=%s", sessionRes.Code, sessionRes.Body.String())
	}

	// 2024-01-01 is a Monday, so week boundaries land on Mondays and the
	// seeded midweek rules fire on Wednesday the 3rd.
	createRes := app.json(http.MethodPost, "/api/clients", map[string]any{
		"name":      "Maya Lindqvist",
		"startDate": "2024-01-01",
		"program":   "fixed12",
	})
	if createRes.Code != http.StatusCreated {
		t.Fatalf("create client expected 201, got %d body=%s", createRes.Code, createRes.Body.String())
	}
	created := decodeBodyMap(t, createRes)
	clientID := asString(t, created["id"])
	if clientID == "" {
		t.Fatalf("created client has no id: %s", createRes.Body.String())
	}

	day := app.dayView(t, "2024-01-03")
	rows := day.Rows
	if len(rows) != 1 {
		t.Fatalf("expected 1 day row, got %d", len(rows))
	}
	if rows[0].Week != 1 {
		t.Fatalf("expected week 1, got %d", rows[0].Week)
	}
	gotTasks := make([]string, 0, len(rows[0].Tasks))
	for _, task := range rows[0].Tasks {
		gotTasks = append(gotTasks, task.ID)
	}
	wantTasks := []string{"rule:onb-app-setup", "rule:wk-midweek-checkin"}
	if strings.Join(gotTasks, ",") != strings.Join(wantTasks, ",") {
		t.Fatalf("expected tasks %v, got %v", wantTasks, gotTasks)
	}
	if day.Progress.Done != 0 || day.Progress.Total != 2 {
		t.Fatalf("expected progress 0/2, got %d/%d", day.Progress.Done, day.Progress.Total)
	}

	toggleRes := app.json(http.MethodPost, "/api/completions/toggle", map[string]any{
		"date":     "2024-01-03",
		"clientId": clientID,
		"taskId":   "rule:onb-app-setup",
	})
	if toggleRes.Code != http.StatusOK {
		t.Fatalf("toggle expected 200, got %d body=%s", toggleRes.Code, toggleRes.Body.String())
	}
	toggled := decodeBodyMap(t, toggleRes)
	if done, _ := toggled["done"].(bool); !done {
		t.Fatalf("toggle expected done=true, got %s", toggleRes.Body.String())
	}

	day = app.dayView(t, "2024-01-03")
	if day.Progress.Done != 1 || day.Progress.Total != 2 {
		t.Fatalf("expected progress 1/2 after toggle, got %d/%d", day.Progress.Done, day.Progress.Total)
	}
}

func TestServer_OverdueShrinksAfterCompletion(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "coach@example.com")

	createRes := app.json(http.MethodPost, "/api/clients", map[string]any{
		"name":      "Jon Okafor",
		"startDate": "2024-01-01",
		"program":   "fixed12",
	})
	if createRes.Code != http.StatusCreated {
		t.Fatalf("create client expected 201, got %d body=%s", createRes.Code, createRes.Body.String())
	}
	clientID := asString(t, decodeBodyMap(t, createRes)["id"])

	// Days strictly before the 4th: Monday brings the welcome call and
	// weigh-in, Wednesday the app setup and midweek check-in.
	before := app.overdue(t, "2024-01-04", "3")
	if len(before) != 4 {
		t.Fatalf("expected 4 overdue items, got %d: %+v", len(before), before)
	}

	toggleRes := app.json(http.MethodPost, "/api/completions/toggle", map[string]any{
		"date":     "2024-01-03",
		"clientId": clientID,
		"taskId":   "rule:wk-midweek-checkin",
	})
	if toggleRes.Code != http.StatusOK {
		t.Fatalf("toggle expected 200, got %d body=%s", toggleRes.Code, toggleRes.Body.String())
	}

	after := app.overdue(t, "2024-01-04", "3")
	if len(after) != 3 {
		t.Fatalf("expected 3 overdue items after completion, got %d", len(after))
	}
	for _, item := range after {
		if item.Task.ID == "rule:wk-midweek-checkin" && item.Date == "2024-01-03" {
			t.Fatalf("completed task still listed as overdue: %+v", item)
		}
	}
}

func TestServer_LogoutEndsSession(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "coach@example.com")

	listRes := app.request(http.MethodGet, "/api/clients", nil, "")
	if listRes.Code != http.StatusOK {
		t.Fatalf("clients expected 200 while logged in, got %d", listRes.Code)
	}

	logoutRes := app.json(http.MethodPost, "/api/auth/logout", map[string]any{})
	if logoutRes.Code != http.StatusOK {
		t.Fatalf("logout expected 200, got %d body=%s", logoutRes.Code, logoutRes.Body.String())
	}

	listRes = app.request(http.MethodGet, "/api/clients", nil, "")
	if listRes.Code != http.StatusUnauthorized {
		t.Fatalf("clients expected 401 after logout, got %d", listRes.Code)
	}
}

type testApp struct {
	handler http.Handler
	logs    *bytes.Buffer
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := loadTestConfig(t)
	cfg.Server.DataDir = t.TempDir()
	cfg.Sync.Enabled = false

	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	app, err := serverapp.New(serverapp.Options{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("serverapp.New: %v", err)
	}

	return &testApp{
		handler: app.Handler,
		logs:    &logs,
		cookies: map[string]*http.Cookie{},
	}
}

func (a *testApp) json(method, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	return a.request(method, path, bytes.NewReader(b), "application/json")
}

func (a *testApp) request(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range a.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	a.captureCookies(rec.Result())
	return rec
}

func (a *testApp) captureCookies(res *http.Response) {
	for _, c := range res.Cookies() {
		if c == nil {
			continue
		}
		if c.MaxAge < 0 || strings.TrimSpace(c.Value) == "" {
			delete(a.cookies, c.Name)
			continue
		}
		cp := *c
		a.cookies[c.Name] = &cp
	}
}

func (a *testApp) login(t *testing.T, email string) {
	t.Helper()

	res := a.json(http.MethodPost, "/api/auth/request-otp", map[string]any{
		"email": email,
	})
	if res.Code != http.StatusOK {
		t.Fatalf("request otp expected 200, got %d body=%s", res.Code, res.Body.String())
	}

	code := otpCodeFromLogs(t, a.logs)
	verifyRes := a.json(http.MethodPost, "/api/auth/verify-otp", map[string]any{
		"email": email,
		"code":  code,
	})
	if verifyRes.Code != http.StatusOK {
		t.Fatalf("verify otp expected 200, got %d body=%s", verifyRes.Code, verifyRes.Body.String())
	}
}

type dayViewResponse struct {
	Date string `json:"date"`
	Rows []struct {
		Client struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"client"`
		Week  int `json:"week"`
		Tasks []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
			Kind  string `json:"kind"`
		} `json:"tasks"`
	} `json:"rows"`
	Progress struct {
		Done  int `json:"done"`
		Total int `json:"total"`
	} `json:"progress"`
}

func (a *testApp) dayView(t *testing.T, date string) dayViewResponse {
	t.Helper()
	res := a.request(http.MethodGet, "/api/views/day?date="+date, nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("day view expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	var out dayViewResponse
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode day view: %v body=%s", err, res.Body.String())
	}
	return out
}

type overdueItem struct {
	Date string `json:"date"`
	Task struct {
		ID string `json:"id"`
	} `json:"task"`
}

func (a *testApp) overdue(t *testing.T, date, lookback string) []overdueItem {
	t.Helper()
	res := a.request(http.MethodGet, "/api/views/overdue?date="+date+"&lookback="+lookback, nil, "")
	if res.Code != http.StatusOK {
		t.Fatalf("overdue expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	var out struct {
		Items []overdueItem `json:"items"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode overdue: %v body=%s", err, res.Body.String())
	}
	return out.Items
}

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfgPath := filepath.Join(projectRoot(t), "client-tracker.yml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config %s: %v", cfgPath, err)
	}
	return cfg
}

func projectRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

// The OTP is delivered through the server log; tests fish the code out
// of the structured log stream the same way an operator would.
func otpCodeFromLogs(t *testing.T, logs *bytes.Buffer) string {
	t.Helper()
	re := regexp.MustCompile(`"code":"([0-9]{6})"`)
	matches := re.FindAllStringSubmatch(logs.String(), -1)
	if len(matches) == 0 {
		t.Fatalf("no OTP code found in logs: %s", logs.String())
	}
	last := matches[len(matches)-1]
	return last[1]
}

func decodeBodyMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode json body failed: %v body=%s", err, rec.Body.String())
	}
	return out
}

func asString(t *testing.T, v any) string {
	t.Helper()
	s, ok := v.(string)
	if !ok {
		t.Fatalf("expected string, got %T (%v)", v, v)
	}
	return s
}
