package windowstate

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/appshell/internal/platform"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticProbe(maximized bool) MaximizedProbe {
	return func() (bool, error) { return maximized, nil }
}

func TestSaver_DebounceCoalescesResizeBurst(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "windowstate.json"))
	saver := NewSaver(store, "main", 100*time.Millisecond, staticProbe(false), discardLogger())

	saver.ObserveBounds(platform.Rect{X: 0, Y: 0, Width: 500, Height: 400})
	time.Sleep(20 * time.Millisecond)
	saver.ObserveBounds(platform.Rect{X: 0, Y: 0, Width: 600, Height: 450})
	time.Sleep(20 * time.Millisecond)
	saver.ObserveBounds(platform.Rect{X: 5, Y: 10, Width: 700, Height: 500})

	// Quiet window has not elapsed yet; nothing persisted.
	if _, ok := store.Lookup("main"); ok {
		t.Fatalf("expected no write before quiet window elapses")
	}

	time.Sleep(250 * time.Millisecond)

	got, ok := store.Lookup("main")
	if !ok {
		t.Fatalf("expected a persisted state after quiet window")
	}
	want := WindowState{Width: 700, Height: 500, X: 5, Y: 10}
	if got != want {
		t.Fatalf("expected last geometry %+v, got %+v", want, got)
	}
}

func TestSaver_CloseSavesImmediately(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "windowstate.json"))
	saver := NewSaver(store, "main", time.Hour, staticProbe(false), discardLogger())

	saver.ObserveBounds(platform.Rect{X: 10, Y: 20, Width: 800, Height: 600})
	saver.OnClosed()

	got, ok := store.Lookup("main")
	if !ok {
		t.Fatalf("expected immediate save on close")
	}
	want := WindowState{Width: 800, Height: 600, X: 10, Y: 20}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSaver_MaximizeSafePersistence(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "windowstate.json"))
	stored := WindowState{Width: 800, Height: 600, X: 10, Y: 10}
	if err := store.Set("main", stored); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	maximized := false
	probe := func() (bool, error) { return maximized, nil }
	saver := NewSaver(store, "main", time.Hour, probe, discardLogger())
	saver.Seed(stored)

	// Window gets maximized: bounds jump to full screen, then close.
	maximized = true
	saver.ObserveBounds(platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080})
	saver.OnClosed()

	got, ok := store.Lookup("main")
	if !ok {
		t.Fatalf("expected persisted state")
	}
	want := WindowState{Width: 800, Height: 600, X: 10, Y: 10, IsMaximized: true}
	if got != want {
		t.Fatalf("restore geometry must survive maximize: expected %+v, got %+v", want, got)
	}
}

func TestSaver_UnmaximizeRestoresFlagOff(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "windowstate.json"))
	if err := store.Set("main", WindowState{Width: 800, Height: 600, X: 10, Y: 10, IsMaximized: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saver := NewSaver(store, "main", time.Hour, staticProbe(false), discardLogger())
	saver.ObserveBounds(platform.Rect{X: 15, Y: 25, Width: 900, Height: 700})
	saver.OnClosed()

	got, _ := store.Lookup("main")
	want := WindowState{Width: 900, Height: 700, X: 15, Y: 25}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSaver_ProbeFailureFallsBackToLastObserved(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "windowstate.json"))
	if err := store.Set("main", WindowState{Width: 640, Height: 480, X: 0, Y: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := 0
	probe := func() (bool, error) {
		calls++
		if calls > 1 {
			// Window destroyed; probe can no longer answer.
			return false, io.ErrClosedPipe
		}
		return true, nil
	}

	saver := NewSaver(store, "main", time.Hour, probe, discardLogger())
	saver.ObserveBounds(platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080})
	saver.OnClosed()

	got, _ := store.Lookup("main")
	want := WindowState{Width: 640, Height: 480, X: 0, Y: 0, IsMaximized: true}
	if got != want {
		t.Fatalf("expected cached maximized flag to apply: want %+v, got %+v", want, got)
	}
}

func TestSaver_SaveFailureDoesNotPanic(t *testing.T) {
	// Point the store at a path whose parent is a file, so writes fail.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := writeFile(blocker); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := NewStore(filepath.Join(blocker, "windowstate.json"))

	saver := NewSaver(store, "main", time.Hour, staticProbe(false), discardLogger())
	saver.ObserveBounds(platform.Rect{X: 0, Y: 0, Width: 800, Height: 600})
	saver.OnClosed() // must log, not panic or propagate
}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0600)
}
