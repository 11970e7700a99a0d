package model

// DashboardCounts is the aggregate read behind the dashboard view.
type DashboardCounts struct {
	TotalTasks int64            `json:"total_tasks"`
	ByStatus   map[Status]int64 `json:"by_status"`
	TotalUsers int64            `json:"total_users"`
	TotalTeams int64            `json:"total_teams"`
}
