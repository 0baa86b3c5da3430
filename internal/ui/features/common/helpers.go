// Package common provides shared types and utilities for UI features.
package common

// StatusLabel returns a human-readable label for a strategy or agent status.
func StatusLabel(status string) string {
	switch status {
	case "running":
		return "Running"
	case "paused":
		return "Paused"
	case "stopped":
		return "Stopped"
	case "":
		return "Stopped"
	default:
		return status
	}
}
