package models

// Audit entry outcome tags.
const (
	AuditSuccess = "success"
	AuditFailed  = "failed"
)

// AuditEntry is an immutable record of a user or system action, including
// best-effort request provenance. Entries are kept newest-first.
type AuditEntry struct {
	ID        string `json:"id"`
	UserID    int    `json:"userId"`
	Username  string `json:"username"`
	Action    string `json:"action"`
	Module    string `json:"module"`
	Details   string `json:"details"`
	IPAddress string `json:"ipAddress"`
	RawIP     string `json:"rawIP"`
	Location  string `json:"location"`
	UserAgent string `json:"userAgent"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

// ActionCount is one row of the per-action breakdown in AuditStats.
type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// ModuleCount is one row of the per-module breakdown in AuditStats.
type ModuleCount struct {
	Module string `json:"module"`
	Count  int    `json:"count"`
}

// AuditStats summarizes activity for one user or for the whole log.
type AuditStats struct {
	TotalActions  int           `json:"totalActions"`
	TodayActions  int           `json:"todayActions"`
	RecentActions []ActionCount `json:"recentActions"`
	ModuleStats   []ModuleCount `json:"moduleStats"`
}
