package model

// ItemCounts holds per-status totals for one item kind.
type ItemCounts struct {
	Total    int64 `json:"total"`
	Claimed  int64 `json:"claimed"`
	Active   int64 `json:"active"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
}

// Report is the administrator overview of users and items.
type Report struct {
	TotalUsers  int64      `json:"total_users"`
	ActiveUsers int64      `json:"active_users"`
	BannedUsers int64      `json:"banned_users"`
	Lost        ItemCounts `json:"lost_items"`
	Found       ItemCounts `json:"found_items"`
}

// ItemStats is the public count of reports per kind.
type ItemStats struct {
	Total      int64 `json:"total"`
	TotalLost  int64 `json:"total_lost"`
	TotalFound int64 `json:"total_found"`
}
