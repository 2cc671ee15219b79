package session

import (
	"os"
	"testing"

	"github.com/debemdeboas/blogctl/internal/config"
	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/notify"
	"github.com/debemdeboas/blogctl/internal/store"
	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) (*Store, *store.MemoryStore) {
	t.Helper()
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	kv := store.NewMemoryStore()
	return New(kv), kv
}

func drain(sub *notify.Subscriber[Event]) []Event {
	var events []Event
	for {
		select {
		case e := <-sub.C:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestLoginLogout(t *testing.T) {
	s, kv := newTestStore(t)
	sub := s.Subscribe(16)

	if s.IsAuthenticated() {
		t.Fatal("Expected fresh store to be logged out")
	}

	user := model.User{ID: "1", Username: "alice", Email: "alice@example.com"}
	if err := s.SaveLogin("tok", user); err != nil {
		t.Fatalf("SaveLogin failed: %v", err)
	}

	if !s.IsAuthenticated() {
		t.Error("Expected authenticated session after login")
	}
	if v, _, _ := kv.Get(config.KeyIsAuthenticated); v != "true" {
		t.Errorf("Expected isAuthenticated='true', got %q", v)
	}
	got, err := s.User()
	if err != nil || got == nil || got.Username != "alice" {
		t.Errorf("Expected stored user alice, got %+v err=%v", got, err)
	}

	events := drain(sub)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events after login, got %d", len(events))
	}
	if events[0] != (Event{Key: config.KeyToken, Kind: KindSet}) {
		t.Errorf("Expected token set event first, got %+v", events[0])
	}

	if err := s.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if s.IsAuthenticated() || s.HasToken() {
		t.Error("Expected logged out session")
	}
	if u, _ := s.User(); u != nil {
		t.Errorf("Expected no user after logout, got %+v", u)
	}
	if events := drain(sub); len(events) != 3 {
		t.Errorf("Expected 3 delete events after logout, got %d", len(events))
	}

	t.Run("Logout when already logged out emits nothing", func(t *testing.T) {
		if err := s.Logout(); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}
		if events := drain(sub); len(events) != 0 {
			t.Errorf("Expected no events, got %v", events)
		}
	})
}

func TestSaveSignup(t *testing.T) {
	s, kv := newTestStore(t)

	if err := s.SaveSignup("tok"); err != nil {
		t.Fatalf("SaveSignup failed: %v", err)
	}
	if !s.HasToken() {
		t.Error("Expected token after signup")
	}
	if s.IsAuthenticated() {
		t.Error("Expected signup alone not to mark the session authenticated")
	}
	if _, ok, _ := kv.Get(config.KeyUser); ok {
		t.Error("Expected no user stored after signup")
	}
}

func TestExpire(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.SaveLogin("tok", model.User{Username: "bob"}); err != nil {
		t.Fatalf("SaveLogin failed: %v", err)
	}
	sub := s.Subscribe(8)

	if err := s.Expire(); err != nil {
		t.Fatalf("Expire failed: %v", err)
	}
	if s.HasToken() || s.IsAuthenticated() {
		t.Error("Expected token and flag to be cleared")
	}

	events := drain(sub)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	for _, e := range events {
		if e.Kind != KindDeleted {
			t.Errorf("Expected delete event, got %v", e.Kind)
		}
	}
}

func TestDraftPointer(t *testing.T) {
	s, _ := newTestStore(t)

	if _, ok := s.DraftPointer(); ok {
		t.Error("Expected no draft pointer initially")
	}

	if err := s.SetDraftPointer("7"); err != nil {
		t.Fatalf("SetDraftPointer failed: %v", err)
	}
	id, ok := s.DraftPointer()
	if !ok || id != "7" {
		t.Errorf("Expected pointer 7, got %q ok=%v", id, ok)
	}

	t.Run("ClearDraftPointerIf with other id", func(t *testing.T) {
		cleared, err := s.ClearDraftPointerIf("8")
		if err != nil || cleared {
			t.Errorf("Expected no clear, got cleared=%v err=%v", cleared, err)
		}
		if id, _ := s.DraftPointer(); id != "7" {
			t.Errorf("Expected pointer to stay 7, got %q", id)
		}
	})

	t.Run("ClearDraftPointerIf with matching id", func(t *testing.T) {
		cleared, err := s.ClearDraftPointerIf("7")
		if err != nil || !cleared {
			t.Errorf("Expected clear, got cleared=%v err=%v", cleared, err)
		}
		if _, ok := s.DraftPointer(); ok {
			t.Error("Expected pointer to be cleared")
		}
	})

	t.Run("Setting the zero id clears", func(t *testing.T) {
		s.SetDraftPointer("9")
		if err := s.SetDraftPointer(""); err != nil {
			t.Fatalf("SetDraftPointer failed: %v", err)
		}
		if _, ok := s.DraftPointer(); ok {
			t.Error("Expected pointer to be cleared")
		}
	})
}

func TestCorruptUser(t *testing.T) {
	s, kv := newTestStore(t)
	kv.Set(config.KeyUser, "{not json")
	if _, err := s.User(); err == nil {
		t.Error("Expected decode error for corrupt user")
	}
}
