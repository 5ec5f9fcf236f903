// Package ipc implements the unix-socket control protocol between the
// appshell daemon and its CLI and MCP clients. Requests and responses are
// single JSON lines.
package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandCreateWindow CommandType = "CREATE_WINDOW"
	CommandOpenExternal CommandType = "OPEN_EXTERNAL"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandGetDisplays  CommandType = "GET_DISPLAYS"
	CommandListWindows  CommandType = "LIST_WINDOWS"
	CommandReload       CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// CreateWindowPayload represents the payload for CREATE_WINDOW
type CreateWindowPayload struct {
	URL string `json:"url,omitempty"`
}

// CreateWindowData is the data returned by CREATE_WINDOW
type CreateWindowData struct {
	WindowID uint32 `json:"window_id"`
}

// OpenExternalPayload represents the payload for OPEN_EXTERNAL
type OpenExternalPayload struct {
	URL string `json:"url"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Phase         string `json:"phase"` // "starting", "ready" or "failed"
	StartError    string `json:"start_error,omitempty"`
	WindowCount   int    `json:"window_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// DisplayInfo represents one display
type DisplayInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []DisplayInfo `json:"displays"`
}

// WindowInfo represents one tracked window
type WindowInfo struct {
	ID   uint32 `json:"id"`
	Slot string `json:"slot,omitempty"`
	URL  string `json:"url,omitempty"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
