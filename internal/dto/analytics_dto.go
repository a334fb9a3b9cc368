package dto

// AttendanceSummaryResponse aggregates marked statuses across closed sessions.
type AttendanceSummaryResponse struct {
	Sessions    int64   `json:"sessions"`
	Present     int64   `json:"present"`
	Late        int64   `json:"late"`
	Absent      int64   `json:"absent"`
	Disputed    int64   `json:"disputed"`
	PresentRate float64 `json:"present_rate"`
}

// SubjectRate is the attendance rate for one subject across its closed sessions.
type SubjectRate struct {
	Subject  string  `json:"subject"`
	Sessions int64   `json:"sessions"`
	Marked   int64   `json:"marked"`
	Attended int64   `json:"attended"`
	Rate     float64 `json:"rate"`
}

// LowAttendanceStudent is a student whose attendance rate fell below threshold.
type LowAttendanceStudent struct {
	StudentID  uint    `json:"student_id"`
	RollNumber string  `json:"roll_number"`
	Name       string  `json:"name"`
	Sessions   int64   `json:"sessions"`
	Attended   int64   `json:"attended"`
	Rate       float64 `json:"rate"`
}

// LowAttendanceResponse lists students under the configured threshold.
type LowAttendanceResponse struct {
	Threshold float64                `json:"threshold"`
	Students  []LowAttendanceStudent `json:"students"`
}
