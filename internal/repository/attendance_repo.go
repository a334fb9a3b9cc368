package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/campusface/attendance-api/internal/models"
)

// ConflictCandidate pairs an attendance record with the session it belongs
// to, for overlap evaluation by the proxy detector.
type ConflictCandidate struct {
	Record  models.AttendanceRecord
	Session models.ClassSession
}

// AttendanceRepository persists rosters and their append-only audit trail.
// Mutations that change a record go through ApplyChange so the roster write
// and its audit entry commit in a single transaction.
type AttendanceRepository interface {
	InitRoster(ctx context.Context, records []models.AttendanceRecord) error
	GetRecord(ctx context.Context, sessionID, studentID uint) (models.AttendanceRecord, error)
	ListBySession(ctx context.Context, sessionID uint) ([]models.AttendanceRecord, error)
	ApplyChange(ctx context.Context, record *models.AttendanceRecord, entry *models.AuditEntry) error
	AppendAudit(ctx context.Context, entry *models.AuditEntry) error
	ListAudit(ctx context.Context, sessionID uint, studentID *uint) ([]models.AuditEntry, error)
	FindOpenConflicts(ctx context.Context, studentID, excludeSessionID uint) ([]ConflictCandidate, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository instantiates a GORM-backed repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) InitRoster(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&records).Error
}

func (r *attendanceRepository) GetRecord(ctx context.Context, sessionID, studentID uint) (models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND student_id = ?", sessionID, studentID).
		First(&record).Error
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	return record, nil
}

func (r *attendanceRepository) ListBySession(ctx context.Context, sessionID uint) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("student_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// ApplyChange saves the record and appends the audit entry atomically. If the
// audit append fails the roster mutation rolls back with it.
func (r *attendanceRepository) ApplyChange(ctx context.Context, record *models.AttendanceRecord, entry *models.AuditEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(record).Error; err != nil {
			return fmt.Errorf("save attendance record: %w", err)
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("append audit entry: %w", err)
		}
		return nil
	})
}

func (r *attendanceRepository) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (r *attendanceRepository) ListAudit(ctx context.Context, sessionID uint, studentID *uint) ([]models.AuditEntry, error) {
	query := r.db.WithContext(ctx).Where("session_id = ?", sessionID)
	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}

	var entries []models.AuditEntry
	if err := query.Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

// FindOpenConflicts returns the student's present/late records in other
// sessions that are still open. The caller decides whether the time ranges
// actually overlap.
func (r *attendanceRepository) FindOpenConflicts(ctx context.Context, studentID, excludeSessionID uint) ([]ConflictCandidate, error) {
	var records []models.AttendanceRecord
	err := r.db.WithContext(ctx).
		Joins("JOIN class_sessions ON class_sessions.id = attendance_records.session_id").
		Where("attendance_records.student_id = ?", studentID).
		Where("attendance_records.session_id <> ?", excludeSessionID).
		Where("attendance_records.status IN ?", []models.AttendanceStatus{models.StatusPresent, models.StatusLate}).
		Where("class_sessions.state IN ?", []models.SessionState{models.SessionActive, models.SessionGraceExpired}).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]ConflictCandidate, 0, len(records))
	for _, record := range records {
		var session models.ClassSession
		if err := r.db.WithContext(ctx).First(&session, record.SessionID).Error; err != nil {
			return nil, err
		}
		candidates = append(candidates, ConflictCandidate{Record: record, Session: session})
	}

	return candidates, nil
}
