package windows

import "github.com/1broseidon/appshell/internal/platform"

// DefaultMenu is the application menu installed once the host is ready. It
// replaces the native default menu with a single Help entry.
func DefaultMenu() platform.Menu {
	return platform.Menu{
		Items: []platform.MenuItem{
			{
				Label: "Help",
				Children: []platform.MenuItem{
					{Label: "Toggle Developer Tools", Role: "toggledevtools"},
				},
			},
		},
	}
}
