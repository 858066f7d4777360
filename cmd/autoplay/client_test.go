package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/finesse/api"
	"github.com/wricardo/finesse/game/config"
	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
	"github.com/wricardo/finesse/game/session"
)

// newTestServer runs the real service stack over HTTP
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	// Absolute, so tests that chdir still find the lazily loaded presets
	configDir, err := filepath.Abs("../../configs")
	if err != nil {
		t.Fatalf("Failed to resolve config dir: %v", err)
	}
	configManager, err := config.NewManager(configDir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	pool := service.NewPool(2)
	t.Cleanup(pool.Close)

	solver := service.NewSolverService(session.NewManager(), configManager, pool)
	server := httptest.NewServer(api.NewServer(solver, nil))
	t.Cleanup(server.Close)
	return server
}

func TestClient_Session(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, "well")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if created.ID == "" || client.sessionID != created.ID {
		t.Fatalf("Expected the client to keep session id, got %q", client.sessionID)
	}
	if created.Config == nil || created.Config.Name != "well" {
		t.Errorf("Expected the well preset, got %+v", created.Config)
	}

	list, err := client.Placements(ctx, engine.PieceI)
	if err != nil {
		t.Fatalf("Placements failed: %v", err)
	}
	if !list.Reachable || list.Count == 0 || list.Count != len(list.Placements) {
		t.Fatalf("Unexpected placement list: reachable=%v count=%d len=%d", list.Reachable, list.Count, len(list.Placements))
	}

	result, err := client.Place(ctx, list.Placements[0].Placement)
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if result.State.Placements != 1 {
		t.Errorf("Expected one placement, got %d", result.State.Placements)
	}

	state, err := client.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Placements != 0 {
		t.Errorf("Expected reset to clear history, got %d placements", state.Placements)
	}

	got, err := client.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Expected session %s, got %s", created.ID, got.ID)
	}
}

func TestClient_Errors(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	_, err := client.CreateSession(ctx, "no-such-preset")
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected apiError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", apiErr.Status)
	}

	client.sessionID = "missing"
	if _, err := client.GetSession(ctx); err == nil {
		t.Error("Expected error for unknown session")
	}
}

func TestClient_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).CreateSession(context.Background(), "")
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected apiError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || !strings.Contains(apiErr.Message, "upstream down") {
		t.Errorf("Unexpected error: %v", apiErr)
	}
}

func TestPlay(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	if _, err := client.CreateSession(ctx, "empty"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	state, err := client.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	var records int
	stats, err := play(ctx, client, NewStrategy(DefaultWeights), NewBag(1), state, true, 30, func(*engine.PlacementRecord) {
		records++
	})
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if stats.Pieces != 30 || records != 30 {
		t.Errorf("Expected 30 pieces, got %d (%d callbacks)", stats.Pieces, records)
	}
	if stats.ToppedOut {
		t.Error("Did not expect a top out on an empty board")
	}
	if stats.Inputs < stats.Pieces {
		t.Errorf("Every piece needs at least a hard drop, got %d inputs", stats.Inputs)
	}
}

func TestPlay_TopOut(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	// The sandbox keeps full rows, so its 96 cells hold at most 24 pieces
	info, err := client.CreateSession(ctx, "sandbox")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	stats, err := play(ctx, client, NewStrategy(DefaultWeights), NewBag(1), info.State, false, 100, nil)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if !stats.ToppedOut {
		t.Fatalf("Expected a top out, placed %d pieces", stats.Pieces)
	}
	if stats.Pieces == 0 || stats.Pieces > 24 {
		t.Errorf("Unexpected piece count %d", stats.Pieces)
	}
	if stats.Lines != 0 {
		t.Errorf("Expected no cleared lines, got %d", stats.Lines)
	}
}

func TestOpenSession(t *testing.T) {
	server := newTestServer(t)
	t.Chdir(t.TempDir())
	ctx := context.Background()

	first, err := openSession(ctx, NewClient(server.URL), "", "tspin")
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	data, err := os.ReadFile(sessionFile)
	if err != nil || string(data) != first.ID {
		t.Fatalf("Expected session file with %s, got %q (%v)", first.ID, data, err)
	}

	resumed, err := openSession(ctx, NewClient(server.URL), "", "")
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if resumed.ID != first.ID {
		t.Errorf("Expected to resume %s, got %s", first.ID, resumed.ID)
	}

	fresh, err := openSession(ctx, NewClient(server.URL), "expired", "")
	if err != nil {
		t.Fatalf("fallback failed: %v", err)
	}
	if fresh.ID == first.ID || fresh.ID == "expired" {
		t.Errorf("Expected a new session, got %s", fresh.ID)
	}
}
