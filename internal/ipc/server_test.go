package ipc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/appshell/internal/lifecycle"
	"github.com/1broseidon/appshell/internal/placement"
	"github.com/1broseidon/appshell/internal/platform"
	"github.com/1broseidon/appshell/internal/windows"
	"github.com/1broseidon/appshell/internal/windowstate"
)

// stubBackend is just enough platform for the window manager under test.
type stubBackend struct {
	nextID   platform.WindowID
	external []string
}

func (b *stubBackend) Displays() ([]platform.Display, error) {
	r := platform.Rect{Width: 1920, Height: 1080}
	return []platform.Display{{ID: 0, Name: "DP-1", Bounds: r, Usable: r}}, nil
}

func (b *stubBackend) DisplayNearestPointer() (platform.Display, error) {
	ds, _ := b.Displays()
	return ds[0], nil
}

func (b *stubBackend) CreateWindow(platform.WindowOptions) (platform.WindowID, error) {
	b.nextID++
	return b.nextID, nil
}

func (b *stubBackend) ShowWindow(platform.WindowID) error     { return nil }
func (b *stubBackend) MaximizeWindow(platform.WindowID) error { return nil }
func (b *stubBackend) WindowBounds(platform.WindowID) (platform.Rect, error) {
	return platform.Rect{}, errors.New("not implemented")
}
func (b *stubBackend) WindowMaximized(platform.WindowID) (bool, error) { return false, nil }
func (b *stubBackend) WindowAlive(platform.WindowID) bool              { return true }
func (b *stubBackend) LoadURL(platform.WindowID, string) error         { return nil }
func (b *stubBackend) SendToWindow(platform.WindowID, string, string) error {
	return nil
}
func (b *stubBackend) BindWindowEvents(platform.WindowID, platform.WindowEvents) error {
	return nil
}
func (b *stubBackend) OnAppReady(func(platform.ReadyInfo)) {}
func (b *stubBackend) SetMenu(platform.Menu) error         { return nil }
func (b *stubBackend) OpenExternal(url string) error {
	b.external = append(b.external, url)
	return nil
}
func (b *stubBackend) EventLoop()  {}
func (b *stubBackend) Disconnect() {}

func startTestServer(t *testing.T) (*Server, *Client, *stubBackend, chan struct{}) {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	backend := &stubBackend{nextID: 10}
	store := windowstate.NewStore(filepath.Join(t.TempDir(), "windowstate.json"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := windows.NewManager(backend, store, placement.NewPolicy("App Shell"),
		windows.Options{Title: "App Shell", DefaultURL: "https://app.example/"}, logger)

	gate := lifecycle.NewStartupGate()
	gate.Complete(nil)

	reloadChan := make(chan struct{}, 1)
	srv, err := NewServer(manager, backend, gate, reloadChan)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(srv.Stop)

	return srv, NewClient(), backend, reloadChan
}

func TestServer_GetStatus(t *testing.T) {
	_, client, _, _ := startTestServer(t)

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if !status.DaemonRunning {
		t.Fatal("expected daemon_running true")
	}
	if status.Phase != "ready" {
		t.Fatalf("expected phase ready, got %q", status.Phase)
	}
	if status.WindowCount != 0 {
		t.Fatalf("expected 0 windows, got %d", status.WindowCount)
	}
}

func TestServer_CreateAndListWindows(t *testing.T) {
	_, client, _, _ := startTestServer(t)

	id, err := client.CreateWindow("https://app.example/main.html")
	if err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a window id")
	}

	data, err := client.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows failed: %v", err)
	}
	if len(data.Windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(data.Windows))
	}
	if data.Windows[0].ID != id {
		t.Fatalf("listed id %d, created id %d", data.Windows[0].ID, id)
	}
	if data.Windows[0].URL != "https://app.example/main.html" {
		t.Fatalf("unexpected url %q", data.Windows[0].URL)
	}
}

func TestServer_OpenExternalEmptyURLIsNoOp(t *testing.T) {
	srv, client, backend, _ := startTestServer(t)

	// Empty URL succeeds without reaching the backend.
	if err := client.OpenExternal(""); err != nil {
		t.Fatalf("OpenExternal with empty url failed: %v", err)
	}
	if len(backend.external) != 0 {
		t.Fatalf("empty url reached the backend: %v", backend.external)
	}

	// So does a request with no payload at all.
	conn, err := net.Dial("unix", srv.socketPath)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(`{"command":"OPEN_EXTERNAL"}` + "\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	raw := make([]byte, 4096)
	n, err := conn.Read(raw)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(raw[:n], &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Status != "OK" {
		t.Fatalf("expected OK for payload-less open, got %+v", resp)
	}
	if len(backend.external) != 0 {
		t.Fatalf("payload-less open reached the backend: %v", backend.external)
	}

	if err := client.OpenExternal("https://example.com"); err != nil {
		t.Fatalf("OpenExternal failed: %v", err)
	}
	if len(backend.external) != 1 || backend.external[0] != "https://example.com" {
		t.Fatalf("unexpected external opens: %v", backend.external)
	}
}

func TestServer_ReloadSignalsDaemon(t *testing.T) {
	_, client, _, reloadChan := startTestServer(t)

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	select {
	case <-reloadChan:
	case <-time.After(time.Second):
		t.Fatal("reload was not signalled to the daemon")
	}
}

func TestServer_GetDisplays(t *testing.T) {
	_, client, _, _ := startTestServer(t)

	data, err := client.GetDisplays()
	if err != nil {
		t.Fatalf("GetDisplays failed: %v", err)
	}
	if len(data.Displays) != 1 || data.Displays[0].Name != "DP-1" {
		t.Fatalf("unexpected displays: %+v", data.Displays)
	}
	if data.Displays[0].Width != 1920 {
		t.Fatalf("unexpected display geometry: %+v", data.Displays[0])
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	srv, _, _, _ := startTestServer(t)

	conn, err := net.Dial("unix", srv.socketPath)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(`{"command":"BOGUS"}` + "\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	raw := make([]byte, 4096)
	n, err := conn.Read(raw)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(raw[:n], &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Status != "ERROR" || !strings.Contains(resp.Error, "Unknown command") {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestServer_FailedGateReportedInStatus(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	backend := &stubBackend{}
	store := windowstate.NewStore(filepath.Join(t.TempDir(), "windowstate.json"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := windows.NewManager(backend, store, placement.NewPolicy("App Shell"), windows.Options{}, logger)

	gate := lifecycle.NewStartupGate()
	gate.Complete(errors.New("contribution exploded"))

	srv, err := NewServer(manager, backend, gate, make(chan struct{}, 1))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer srv.Stop()

	status, err := NewClient().GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if status.Phase != "failed" {
		t.Fatalf("expected phase failed, got %q", status.Phase)
	}
	if !strings.Contains(status.StartError, "contribution exploded") {
		t.Fatalf("start error not surfaced: %q", status.StartError)
	}
}
