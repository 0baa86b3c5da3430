// Package home provides the dashboard landing page.
package home

import "github.com/leapstack-labs/datagrid/internal/dataservice"

// DashboardData holds everything the landing page shows.
type DashboardData struct {
	Summary    string
	Datasets   []dataservice.DatasetInfo
	Strategies []dataservice.Strategy
	Agents     []dataservice.Agent
}
