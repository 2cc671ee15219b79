package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/debemdeboas/blogctl/internal/db"
	"github.com/rs/zerolog"
)

func openSQLite(t *testing.T, path string) (*SQLiteStore, *db.SQLite) {
	t.Helper()
	database := db.NewSQLite(path)
	if err := database.InitDB(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	s, err := NewSQLiteStore(database)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return s, database
}

func TestStores(t *testing.T) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	sqliteStore, database := openSQLite(t, filepath.Join(t.TempDir(), "kv.db"))
	defer database.Close()

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get("token"); ok || err != nil {
				t.Errorf("Expected empty store, got ok=%v err=%v", ok, err)
			}

			if err := s.Set("token", "abc"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Set("token", "def"); err != nil {
				t.Fatalf("Overwrite failed: %v", err)
			}
			v, ok, err := s.Get("token")
			if err != nil || !ok || v != "def" {
				t.Errorf("Expected token=def, got %q ok=%v err=%v", v, ok, err)
			}

			if err := s.Set("draftId", "7"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Delete("token", "draftId", "absent"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			for _, k := range []string{"token", "draftId"} {
				if _, ok, _ := s.Get(k); ok {
					t.Errorf("Expected %s to be deleted", k)
				}
			}

			if err := s.Delete(); err != nil {
				t.Errorf("Expected empty delete to succeed, got %v", err)
			}
		})
	}
}

func TestSQLiteStorePersists(t *testing.T) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	path := filepath.Join(t.TempDir(), "kv.db")

	first, database := openSQLite(t, path)
	if err := first.Set("draftId", "42"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := first.Set("isAuthenticated", "true"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := first.Delete("isAuthenticated"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	database.Close()

	second, database := openSQLite(t, path)
	defer database.Close()

	v, ok, _ := second.Get("draftId")
	if !ok || v != "42" {
		t.Errorf("Expected draftId=42 after reopen, got %q ok=%v", v, ok)
	}
	if _, ok, _ := second.Get("isAuthenticated"); ok {
		t.Error("Expected deleted key to stay deleted after reopen")
	}
}

func TestSQLiteStoreClosedDatabase(t *testing.T) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	s, database := openSQLite(t, filepath.Join(t.TempDir(), "kv.db"))
	database.Get().Close()

	if err := s.Set("token", "abc"); err == nil {
		t.Error("Expected error writing to a closed database")
	}
	if _, ok, _ := s.Get("token"); ok {
		t.Error("Expected failed write to leave the cache untouched")
	}
}
