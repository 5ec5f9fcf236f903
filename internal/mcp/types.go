package mcp

// CreateWindowInput is the input for the create_window tool.
type CreateWindowInput struct {
	URL string `json:"url,omitempty" jsonschema:"URL to load in the new window (default: the daemon's configured default URL)"`
}

// CreateWindowOutput is the output for the create_window tool.
type CreateWindowOutput struct {
	WindowID uint32 `json:"window_id"`
}

// OpenExternalInput is the input for the open_external tool.
type OpenExternalInput struct {
	URL string `json:"url,omitempty" jsonschema:"URL to open with the desktop environment's default handler; an empty URL is ignored"`
}

// OpenExternalOutput is the output for the open_external tool.
type OpenExternalOutput struct {
	Opened bool `json:"opened"`
}

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Phase         string `json:"phase"`
	StartError    string `json:"start_error,omitempty"`
	WindowCount   int    `json:"window_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowEntry describes one host window.
type WindowEntry struct {
	ID   uint32 `json:"id"`
	Slot string `json:"slot,omitempty"`
	URL  string `json:"url,omitempty"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowEntry `json:"windows"`
}
