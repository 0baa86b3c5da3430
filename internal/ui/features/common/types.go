// Package common provides shared types and utilities for UI features.
package common

// NavItem is one entry in the sidebar navigation.
type NavItem struct {
	Label string
	Path  string
}

// Nav is the dashboard navigation in display order.
var Nav = []NavItem{
	{Label: "Home", Path: "/"},
	{Label: "Data", Path: "/data"},
	{Label: "Strategies", Path: "/strategies"},
	{Label: "Terminal", Path: "/terminal"},
	{Label: "Settings", Path: "/settings"},
}
