// Package mcp exposes the appshell daemon to MCP clients over stdio. Every
// tool is a thin wrapper over the daemon's unix-socket IPC protocol.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/appshell/internal/ipc"
)

const (
	ServerName    = "appshell"
	ServerVersion = "0.1.0"
)

// daemonClient is the slice of the IPC client the tools need. Tests swap in
// a fake.
type daemonClient interface {
	CreateWindow(url string) (uint32, error)
	OpenExternal(url string) error
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
}

// Server is the MCP server bridging tool calls to the appshell daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	client    daemonClient
}

// NewServer creates an MCP server talking to the daemon's default socket.
func NewServer() *Server {
	return newServerWithClient(ipc.NewClient())
}

func newServerWithClient(client daemonClient) *Server {
	s := &Server{
		client: client,
		mcpServer: mcpsdk.NewServer(
			&mcpsdk.Implementation{
				Name:    ServerName,
				Version: ServerVersion,
			},
			nil,
		),
	}
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_window",
		Description: "Open a new application window. Placement follows the persisted window state when available, otherwise the window is centered on the display nearest the pointer. Returns the native window ID.",
	}, s.handleCreateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_external",
		Description: "Open a URL with the desktop environment's default handler (browser, mail client, ...). The URL never loads inside a host window.",
	}, s.handleOpenExternal)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the daemon's lifecycle phase (starting/ready/failed), window count and uptime.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the daemon's open windows with their IDs and loaded URLs.",
	}, s.handleListWindows)
}

func (s *Server) handleCreateWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CreateWindowInput) (*mcpsdk.CallToolResult, CreateWindowOutput, error) {
	id, err := s.client.CreateWindow(args.URL)
	if err != nil {
		return nil, CreateWindowOutput{}, fmt.Errorf("create window: %w", err)
	}
	return nil, CreateWindowOutput{WindowID: id}, nil
}

func (s *Server) handleOpenExternal(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenExternalInput) (*mcpsdk.CallToolResult, OpenExternalOutput, error) {
	// The daemon treats an empty URL as a no-op; mirror that here rather
	// than round-trip to the socket.
	if args.URL == "" {
		return nil, OpenExternalOutput{Opened: false}, nil
	}
	if err := s.client.OpenExternal(args.URL); err != nil {
		return nil, OpenExternalOutput{}, fmt.Errorf("open external: %w", err)
	}
	return nil, OpenExternalOutput{Opened: true}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, fmt.Errorf("get status: %w", err)
	}
	return nil, GetStatusOutput{
		Phase:         status.Phase,
		StartError:    status.StartError,
		WindowCount:   status.WindowCount,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.client.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, fmt.Errorf("list windows: %w", err)
	}
	out := ListWindowsOutput{Windows: make([]WindowEntry, len(data.Windows))}
	for i, w := range data.Windows {
		out.Windows[i] = WindowEntry{ID: w.ID, Slot: w.Slot, URL: w.URL}
	}
	return nil, out, nil
}
