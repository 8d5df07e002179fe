// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Web backend: websocket sessions, layer API, HTTPS enforcement
// 0.2.0 - Scale player with info panels, tap picking
// 0.1.0 - Weather layer remapping, gesture machine, orbital model, TUI orrery
