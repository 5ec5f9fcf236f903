package windowstate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_GetReturnsDefaultWhenAbsent(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "windowstate.json"))

	def := WindowState{Width: 1024, Height: 768, X: 0, Y: 0}
	got := store.Get("main", def)
	if got != def {
		t.Fatalf("expected default state, got %+v", got)
	}
	if _, ok := store.Lookup("main"); ok {
		t.Fatalf("expected no persisted state for fresh store")
	}
}

func TestStore_SetThenGet(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "windowstate.json"))

	want := WindowState{Width: 800, Height: 600, X: -200, Y: 10}
	if err := store.Set("main", want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := store.Lookup("main")
	if !ok {
		t.Fatalf("expected persisted state after Set")
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windowstate.json")

	first := NewStore(path)
	want := WindowState{Width: 1280, Height: 720, X: 320, Y: 180, IsMaximized: true}
	if err := first.Set("main", want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := NewStore(path)
	got, ok := second.Lookup("main")
	if !ok {
		t.Fatalf("expected state to survive reopen")
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestStore_CorruptFileFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windowstate.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := NewStore(path)
	def := WindowState{Width: 640, Height: 480}
	if got := store.Get("main", def); got != def {
		t.Fatalf("expected default for corrupt file, got %+v", got)
	}

	// Writes must still succeed and replace the corrupt file.
	want := WindowState{Width: 800, Height: 600, X: 1, Y: 2}
	if err := store.Set("main", want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := store.Lookup("main"); !ok || got != want {
		t.Fatalf("expected %+v after rewrite, got %+v (ok=%v)", want, got, ok)
	}
}

func TestStore_SlotsAreIndependent(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "windowstate.json"))

	a := WindowState{Width: 100, Height: 200}
	b := WindowState{Width: 300, Height: 400}
	if err := store.Set("a", a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Set("b", b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := store.Lookup("a"); got != a {
		t.Fatalf("slot a: expected %+v, got %+v", a, got)
	}
	if got, _ := store.Lookup("b"); got != b {
		t.Fatalf("slot b: expected %+v, got %+v", b, got)
	}
}
