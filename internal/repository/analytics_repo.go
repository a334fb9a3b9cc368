package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campusface/attendance-api/internal/models"
)

// StatusCount is one aggregated (status, count) row over closed sessions.
type StatusCount struct {
	Status models.AttendanceStatus
	Count  int64
}

// SubjectAggregate is the per-subject attendance tally over closed sessions.
type SubjectAggregate struct {
	Subject  string
	Sessions int64
	Marked   int64
	Attended int64
}

// StudentAggregate is the per-student attendance tally over closed sessions.
type StudentAggregate struct {
	StudentID  uint
	RollNumber string
	Name       string
	Sessions   int64
	Attended   int64
}

// AnalyticsRepository aggregates persisted attendance records. All queries
// scope to closed sessions so in-flight rosters never skew the numbers.
type AnalyticsRepository interface {
	CountClosedSessions(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	SubjectAggregates(ctx context.Context) ([]SubjectAggregate, error)
	StudentAggregates(ctx context.Context) ([]StudentAggregate, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository constructs the analytics repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CountClosedSessions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClassSession{}).
		Where("state = ?", models.SessionClosed).
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Select("attendance_records.status AS status, COUNT(*) AS count").
		Joins("JOIN class_sessions ON class_sessions.id = attendance_records.session_id").
		Where("class_sessions.state = ?", models.SessionClosed).
		Group("attendance_records.status").
		Scan(&counts).Error
	return counts, err
}

func (r *analyticsRepository) SubjectAggregates(ctx context.Context) ([]SubjectAggregate, error) {
	var aggregates []SubjectAggregate
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Select(`class_sessions.subject AS subject,
			COUNT(DISTINCT class_sessions.id) AS sessions,
			COUNT(*) AS marked,
			SUM(CASE WHEN attendance_records.status IN ('present', 'late') THEN 1 ELSE 0 END) AS attended`).
		Joins("JOIN class_sessions ON class_sessions.id = attendance_records.session_id").
		Where("class_sessions.state = ?", models.SessionClosed).
		Group("class_sessions.subject").
		Order("class_sessions.subject ASC").
		Scan(&aggregates).Error
	return aggregates, err
}

func (r *analyticsRepository) StudentAggregates(ctx context.Context) ([]StudentAggregate, error) {
	var aggregates []StudentAggregate
	err := r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Select(`attendance_records.student_id AS student_id,
			students.roll_number AS roll_number,
			students.name AS name,
			COUNT(*) AS sessions,
			SUM(CASE WHEN attendance_records.status IN ('present', 'late') THEN 1 ELSE 0 END) AS attended`).
		Joins("JOIN class_sessions ON class_sessions.id = attendance_records.session_id").
		Joins("JOIN students ON students.id = attendance_records.student_id").
		Where("class_sessions.state = ?", models.SessionClosed).
		Group("attendance_records.student_id, students.roll_number, students.name").
		Order("students.roll_number ASC").
		Scan(&aggregates).Error
	return aggregates, err
}
