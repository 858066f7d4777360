package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wricardo/finesse/game/engine"
)

func createTestConfig() *engine.BoardConfig {
	return &engine.BoardConfig{
		Name:        "Test Config",
		Description: "Test preset",
		Rows:        6,
		Cols:        10,
		Layout: []string{
			"..........",
			"..........",
			"..........",
			"..........",
			"..........",
			"LLL.JJJJJJ",
		},
		ClearLines: true,
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"a1b2", true},
		{"test-session", true},
		{"delete_test", true},
		{"ABC", true},
		{"", false},
		{"../up", false},
		{"a/b", false},
		{"a b", false},
		{"a.json", false},
		{strings.Repeat("x", maxIDLength), true},
		{strings.Repeat("x", maxIDLength+1), false},
	}

	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session, err := manager.Create("test-session", config)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if session.Field == nil || session.Config != config {
		t.Fatal("Expected field and config to be set")
	}
	if got := session.Field.GetBoard().FilledCount(); got != 9 {
		t.Errorf("Expected preset layout with 9 filled cells, got %d", got)
	}
	if !session.CreatedAt.Equal(session.LastAccessedAt) {
		t.Error("A new session should be accessed when it is created")
	}

	invalid := createTestConfig()
	invalid.Name = ""

	tests := []struct {
		name    string
		id      string
		config  *engine.BoardConfig
		wantErr error // nil means any error
	}{
		{"duplicate", "test-session", config, ErrSessionAlreadyExists},
		{"duplicate in other case", "TEST-SESSION", config, ErrSessionAlreadyExists},
		{"bad characters", "../etc", config, ErrInvalidSessionID},
		{"invalid config", "fresh", invalid, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Create(tt.id, tt.config)
			if err == nil || (tt.wantErr != nil && !errors.Is(err, tt.wantErr)) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if manager.Count() != 1 {
		t.Errorf("Failed creates should not add sessions, have %d", manager.Count())
	}
}

func TestManager_GeneratedIDs(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 || !ValidID(session.ID) {
			t.Errorf("Expected a 4-character hex id, got %q", session.ID)
		}
		if seen[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		seen[session.ID] = true
	}
}

func TestManager_Lookup(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()
	created, _ := manager.Create("Get-Test", config)

	for _, id := range []string{"Get-Test", "get-test", "GET-TEST"} {
		session, err := manager.Get(id)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", id, err)
		}
		if session != created {
			t.Errorf("Get(%q) returned a different session", id)
		}
	}
	if created.ID != "Get-Test" {
		t.Errorf("Session should keep the id as given, got %s", created.ID)
	}

	if _, err := manager.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()
	manager.Create("delete-test", config)
	manager.Create("evict-test", config)

	if err := manager.Delete("DELETE-TEST"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := manager.Get("delete-test"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected session to be deleted")
	}
	if err := manager.Delete("delete-test"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}

	if err := manager.DeleteFromMemory("evict-test"); err != nil {
		t.Fatalf("DeleteFromMemory failed: %v", err)
	}
	if err := manager.DeleteFromMemory("evict-test"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected no sessions, got %d", manager.Count())
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	now := time.Now()
	ages := map[string]time.Duration{"old": 3 * time.Hour, "newest": 0, "middle": time.Hour, "also-middle": time.Hour}
	for id, age := range ages {
		session, err := manager.Create(id, config)
		if err != nil {
			t.Fatalf("Failed to create %s: %v", id, err)
		}
		session.LastAccessedAt = now.Add(-age)
	}

	var ids []string
	for _, s := range manager.List() {
		ids = append(ids, s.ID)
	}
	want := []string{"newest", "also-middle", "middle", "old"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("List order mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	manager.Create("active", config)
	expired, _ := manager.Create("expired", config)
	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected 1 session removed, got %d", removed)
	}
	if _, err := manager.Get("expired"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected expired session to be removed")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to remain")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("access-test", createTestConfig())
	original := session.LastAccessedAt

	time.Sleep(10 * time.Millisecond)
	if err := manager.UpdateLastAccessed("ACCESS-TEST"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !session.LastAccessedAt.After(original) {
		t.Error("Expected LastAccessedAt to advance")
	}

	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_WithoutPersistence(t *testing.T) {
	manager := NewManager()
	manager.Create("mem", createTestConfig())

	if err := manager.Save("mem"); err != nil {
		t.Errorf("Save without persistence should be a no-op, got %v", err)
	}
	if err := manager.SaveAllSessions(); err != nil {
		t.Errorf("SaveAllSessions without persistence should be a no-op, got %v", err)
	}
	if err := manager.LoadPersistedSessions(); err != nil {
		t.Errorf("LoadPersistedSessions without persistence should be a no-op, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := manager.Create(fmt.Sprintf("worker-%d", i%20), config); err != nil && !errors.Is(err, ErrSessionAlreadyExists) {
				errs <- err
			}
		}(i)
		go func() {
			defer wg.Done()
			if _, err := manager.Create("", config); err != nil {
				errs <- err
			}
			manager.List()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if got := manager.Count(); got != 120 {
		t.Errorf("Expected 20 named and 100 generated sessions, got %d", got)
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", config)
	session2, _ := manager.Create("iso-2", config)

	// Fill the gap in session 1 and clear its bottom row
	goal := engine.Placement{Type: engine.PieceI, X: 1, Y: 3, Rotation: 1}
	if _, err := session1.Field.Place(goal, nil); err != nil {
		t.Fatalf("Failed to place in session 1: %v", err)
	}

	if session1.Field.GetState().LinesCleared != 1 {
		t.Errorf("Expected session 1 to clear a line, got %d", session1.Field.GetState().LinesCleared)
	}
	if got := session2.Field.GetBoard().FilledCount(); got != 9 {
		t.Errorf("Session 2 should not be affected by session 1, has %d filled cells", got)
	}
	if len(session2.Field.GetHistory()) != 0 {
		t.Error("Session 2 should have an empty history")
	}
}
