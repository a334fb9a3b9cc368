package dto

// Pagination carries paging metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
}

// SessionExport is one closed session's final roster plus its audit trail,
// in a stable field order for downstream CSV/PDF generation.
type SessionExport struct {
	Session SessionResponse      `json:"session"`
	Summary RosterSummary        `json:"summary"`
	Roster  []RosterEntry        `json:"roster"`
	Audit   []AuditEntryResponse `json:"audit"`
}

// ExportListResponse pages over closed sessions for the reporting collaborator.
type ExportListResponse struct {
	Items      []SessionExport `json:"items"`
	Pagination Pagination      `json:"pagination"`
}
