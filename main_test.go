package main

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/wricardo/finesse/game/config"
	"github.com/wricardo/finesse/game/session"
	"github.com/wricardo/finesse/transport/websocket"
)

func TestConstants(t *testing.T) {
	if Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", Version)
	}
	if AppName != "Finesse Solver Server" {
		t.Errorf("Expected app name 'Finesse Solver Server', got %s", AppName)
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}
	if *host == "" {
		t.Error("Host should have a default value")
	}
	if *configDir == "" {
		t.Error("Config directory should have a default value")
	}
	if *sessionsDir == "" {
		t.Error("Sessions directory should have a default value")
	}
}

func TestEnvDefault(t *testing.T) {
	t.Setenv("FINESSE_TEST_DIR", "")
	if got := envDefault("FINESSE_TEST_DIR", "configs"); got != "configs" {
		t.Errorf("Expected fallback 'configs', got %q", got)
	}

	t.Setenv("FINESSE_TEST_DIR", "/tmp/presets")
	if got := envDefault("FINESSE_TEST_DIR", "configs"); got != "/tmp/presets" {
		t.Errorf("Expected env value, got %q", got)
	}
}

func TestWorkersDefault(t *testing.T) {
	tests := []struct {
		env  string
		want int
	}{
		{"", 0},
		{"4", 4},
		{"lots", 0},
	}

	for _, tt := range tests {
		t.Setenv("SOLVER_WORKERS", tt.env)
		if got := workersDefault(); got != tt.want {
			t.Errorf("SOLVER_WORKERS=%q: expected %d, got %d", tt.env, tt.want, got)
		}
	}
}

func TestNgrokAuthToken(t *testing.T) {
	original := *ngrokAuth
	defer func() { *ngrokAuth = original }()

	*ngrokAuth = ""
	t.Setenv("NGROK_AUTHTOKEN", "")
	t.Setenv("NGROK_AUTH_TOKEN", "underscore")
	if got := ngrokAuthToken(); got != "underscore" {
		t.Errorf("Expected underscore env token, got %q", got)
	}

	t.Setenv("NGROK_AUTHTOKEN", "plain")
	if got := ngrokAuthToken(); got != "plain" {
		t.Errorf("Expected NGROK_AUTHTOKEN to win, got %q", got)
	}

	*ngrokAuth = "flag"
	if got := ngrokAuthToken(); got != "flag" {
		t.Errorf("Expected flag to win, got %q", got)
	}
}

func withDirs(t *testing.T, presets string) {
	t.Helper()
	originalConfig, originalSessions := *configDir, *sessionsDir
	*configDir = presets
	*sessionsDir = t.TempDir()
	t.Cleanup(func() {
		*configDir = originalConfig
		*sessionsDir = originalSessions
	})
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	withDirs(t, "configs")

	svc, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	if svc.solver == nil || svc.pool == nil || svc.sessions == nil {
		t.Fatal("Expected all services to be initialized")
	}
	if svc.pool.Workers() < 1 {
		t.Errorf("Expected at least one worker, got %d", svc.pool.Workers())
	}
}

func TestInitializeServices_DefaultPreset(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	withDirs(t, "configs")
	original := *defaultPreset
	defer func() { *defaultPreset = original }()

	*defaultPreset = "well"
	svc, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()
	if got := svc.configs.GetDefault().Name; got != "well" {
		t.Errorf("Expected default preset well, got %q", got)
	}

	*defaultPreset = "no-such-preset"
	if _, err := initializeServices(); err == nil {
		t.Error("Expected error for an unknown default preset")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	withDirs(t, "/non/existent/path")

	if _, err := initializeServices(); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestSyncSessionsWithDisk(t *testing.T) {
	configManager, err := config.NewManager("configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	preset, err := configManager.LoadConfig("empty")
	if err != nil {
		t.Fatalf("Failed to load preset: %v", err)
	}

	persistence, err := session.NewFilePersistence(t.TempDir(), configManager)
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	manager := session.NewManagerWithPersistence(persistence)

	if _, err := manager.Create("keep", preset); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := manager.Create("gone", preset); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if pruned := syncSessionsWithDisk(manager, persistence); pruned != 0 {
		t.Errorf("Expected nothing pruned while files exist, got %d", pruned)
	}

	if err := persistence.Delete("gone"); err != nil {
		t.Fatalf("Failed to delete session file: %v", err)
	}

	if pruned := syncSessionsWithDisk(manager, persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := manager.Get("gone"); err == nil {
		t.Error("Expected pruned session to be gone from memory")
	}
	if _, err := manager.Get("keep"); err != nil {
		t.Errorf("Expected kept session to remain: %v", err)
	}

	if pruned := syncSessionsWithDisk(manager, nil); pruned != 0 {
		t.Errorf("Expected no pruning without persistence, got %d", pruned)
	}
}

func TestMainHandler(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	withDirs(t, "configs")

	svc, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	handler := newMainHandler(svc.solver, hub, "http://localhost:0")

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/healthz", http.StatusOK},
		{"GET", "/api/configs", http.StatusOK},
		{"GET", "/api/sessions/zzzz", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, w.Code)
		}
	}
}

func TestModes(t *testing.T) {
	for _, name := range []string{"server", "http", "stdio-mcp", "mcp-stdio", "mcp"} {
		if modes[name] == nil {
			t.Errorf("Mode %q is not registered", name)
		}
	}
	if _, ok := modes["desktop"]; ok {
		t.Error("Unexpected mode desktop")
	}
}

// closeCounter records how many response bodies were closed
type closeCounter struct {
	status int
	err    error
	closed int
}

func (c *closeCounter) RoundTrip(*http.Request) (*http.Response, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &http.Response{
		StatusCode: c.status,
		Body:       &trackedBody{Reader: strings.NewReader("ok"), counter: c},
	}, nil
}

type trackedBody struct {
	io.Reader
	counter *closeCounter
}

func (b *trackedBody) Close() error {
	b.counter.closed++
	return nil
}

func TestAPIAvailable(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		err        error
		want       bool
		wantClosed int
	}{
		{"healthy", http.StatusOK, nil, true, 1},
		{"not found still answers", http.StatusNotFound, nil, true, 1},
		{"server error", http.StatusServiceUnavailable, nil, false, 1},
		{"unreachable", 0, errors.New("connection refused"), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &closeCounter{status: tt.status, err: tt.err}
			client := &http.Client{Transport: rt}
			if got := apiAvailable(client, "http://localhost:1"); got != tt.want {
				t.Errorf("apiAvailable() = %v, want %v", got, tt.want)
			}
			if rt.closed != tt.wantClosed {
				t.Errorf("Expected %d closed bodies, got %d", tt.wantClosed, rt.closed)
			}
		})
	}
}
