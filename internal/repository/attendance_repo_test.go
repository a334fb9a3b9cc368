package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campusface/attendance-api/internal/models"
)

func setupAttendanceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Enrollment{},
		&models.ClassSession{},
		&models.AttendanceRecord{},
		&models.AuditEntry{},
	))
	return db
}

func createSession(t *testing.T, db *gorm.DB, state models.SessionState, start, end time.Time) models.ClassSession {
	t.Helper()
	session := models.ClassSession{
		Subject:            "Operating Systems",
		Room:               "D-301",
		StartTime:          start,
		EndTime:            end,
		GraceWindowMinutes: 15,
		State:              state,
	}
	require.NoError(t, db.Create(&session).Error)
	return session
}

func TestAttendanceRepositoryRosterUniqueness(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	session := createSession(t, db, models.SessionActive, start, start.Add(time.Hour))

	records := []models.AttendanceRecord{
		{SessionID: session.ID, StudentID: 1, Status: models.StatusAbsent, Source: models.SourceAuto},
		{SessionID: session.ID, StudentID: 2, Status: models.StatusAbsent, Source: models.SourceAuto},
	}
	require.NoError(t, repo.InitRoster(ctx, records))

	// A second record for the same (session, student) pair must be rejected.
	err := db.Create(&models.AttendanceRecord{
		SessionID: session.ID,
		StudentID: 1,
		Status:    models.StatusPresent,
		Source:    models.SourceAuto,
	}).Error
	require.Error(t, err)

	record, err := repo.GetRecord(ctx, session.ID, 2)
	require.NoError(t, err)
	require.Equal(t, models.StatusAbsent, record.Status)
}

func TestAttendanceRepositoryApplyChangeWritesBoth(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	session := createSession(t, db, models.SessionActive, start, start.Add(time.Hour))
	require.NoError(t, repo.InitRoster(ctx, []models.AttendanceRecord{
		{SessionID: session.ID, StudentID: 1, Status: models.StatusAbsent, Source: models.SourceAuto},
	}))

	record, err := repo.GetRecord(ctx, session.ID, 1)
	require.NoError(t, err)

	record.Status = models.StatusPresent
	studentID := uint(1)
	entry := models.AuditEntry{
		SessionID:  session.ID,
		StudentID:  &studentID,
		PrevStatus: models.StatusAbsent,
		NewStatus:  models.StatusPresent,
		Actor:      models.ActorSystem,
		Action:     models.AuditActionAutoMark,
		Reason:     "automatic classification",
	}
	require.NoError(t, repo.ApplyChange(ctx, &record, &entry))

	stored, err := repo.GetRecord(ctx, session.ID, 1)
	require.NoError(t, err)
	require.Equal(t, models.StatusPresent, stored.Status)

	trail, err := repo.ListAudit(ctx, session.ID, &studentID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	require.NotZero(t, trail[0].ID)
	require.Equal(t, models.AuditActionAutoMark, trail[0].Action)
}

func TestAttendanceRepositoryListAuditFiltersByStudent(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	session := createSession(t, db, models.SessionActive, start, start.Add(time.Hour))

	one, two := uint(1), uint(2)
	for _, studentID := range []*uint{&one, &two, &one, nil} {
		entry := models.AuditEntry{
			SessionID: session.ID,
			StudentID: studentID,
			Actor:     models.ActorSystem,
			Action:    models.AuditActionUnmatched,
		}
		require.NoError(t, repo.AppendAudit(ctx, &entry))
	}

	all, err := repo.ListAudit(ctx, session.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.True(t, all[0].ID < all[1].ID, "insertion order preserved")

	scoped, err := repo.ListAudit(ctx, session.ID, &one)
	require.NoError(t, err)
	require.Len(t, scoped, 2)
}

func TestAttendanceRepositoryFindOpenConflicts(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	current := createSession(t, db, models.SessionActive, start, start.Add(time.Hour))
	openOverlap := createSession(t, db, models.SessionGraceExpired, start.Add(30*time.Minute), start.Add(90*time.Minute))
	closed := createSession(t, db, models.SessionClosed, start, start.Add(time.Hour))

	seed := []models.AttendanceRecord{
		{SessionID: current.ID, StudentID: 1, Status: models.StatusPresent, Source: models.SourceAuto},
		{SessionID: openOverlap.ID, StudentID: 1, Status: models.StatusLate, Source: models.SourceAuto},
		{SessionID: closed.ID, StudentID: 1, Status: models.StatusPresent, Source: models.SourceAuto},
	}
	require.NoError(t, repo.InitRoster(ctx, seed))

	candidates, err := repo.FindOpenConflicts(ctx, 1, current.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1, "closed sessions and the current session are excluded")
	require.Equal(t, openOverlap.ID, candidates[0].Session.ID)
	require.Equal(t, models.StatusLate, candidates[0].Record.Status)

	// Absent records are not conflicts.
	require.NoError(t, db.Model(&models.AttendanceRecord{}).
		Where("session_id = ?", openOverlap.ID).
		Update("status", models.StatusAbsent).Error)

	candidates, err = repo.FindOpenConflicts(ctx, 1, current.ID)
	require.NoError(t, err)
	require.Empty(t, candidates)
}
