package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campusface/attendance-api/internal/dto"
	"github.com/campusface/attendance-api/internal/models"
)

func TestExportClosedSessions(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	fx := newEngineFixture(t, start)
	ctx := context.Background()

	students := fx.seedStudents(t, "CS2102", "CS2101", "CS2103")
	session := fx.schedule(t, start, start.Add(time.Hour), 15, studentIDs(students))
	_, err := fx.svc.Start(ctx, session.ID)
	require.NoError(t, err)

	_, err = fx.svc.Ingest(ctx, recognition(session.ID, &students[0].ID, start.Add(time.Minute), 94.0))
	require.NoError(t, err)
	_, err = fx.svc.Override(ctx, session.ID, dto.OverrideRequest{
		StudentID: students[1].ID,
		NewStatus: "present",
		Reason:    "signed paper roster",
	}, "instructor:42")
	require.NoError(t, err)

	fx.clock.Set(start.Add(time.Hour))
	_, err = fx.svc.Close(ctx, session.ID)
	require.NoError(t, err)

	// A session that never closed must not show up.
	openStudents := studentIDs(students[:1])
	openSession := fx.schedule(t, start.Add(3*time.Hour), start.Add(4*time.Hour), 15, openStudents)
	_, err = fx.svc.Start(ctx, openSession.ID)
	require.NoError(t, err)

	svc := NewExportService(fx.sessions, fx.students, fx.attendance, zerolog.Nop())

	exports, err := svc.ClosedSessions(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), exports.Pagination.TotalItems)
	require.Len(t, exports.Items, 1)

	export := exports.Items[0]
	require.Equal(t, session.ID, export.Session.ID)
	require.Equal(t, string(models.SessionClosed), export.Session.State)
	require.Equal(t, dto.RosterSummary{Enrolled: 3, Present: 2, Absent: 1}, export.Summary)

	// Roster rows come out in roll number order regardless of mark order.
	require.Len(t, export.Roster, 3)
	require.Equal(t, "CS2101", export.Roster[0].RollNumber)
	require.Equal(t, "CS2102", export.Roster[1].RollNumber)
	require.Equal(t, "CS2103", export.Roster[2].RollNumber)

	// Audit trail ships with the export, in insertion order.
	require.Len(t, export.Audit, 3)
	require.Equal(t, models.AuditActionRosterInit, export.Audit[0].Action)
	require.Equal(t, models.AuditActionAutoMark, export.Audit[1].Action)
	require.Equal(t, models.AuditActionOverride, export.Audit[2].Action)

	// Repeating the export yields the same bytes' worth of rows.
	again, err := svc.ClosedSessions(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, exports, again)
}

func TestExportPagination(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	fx := newEngineFixture(t, start)
	ctx := context.Background()

	students := fx.seedStudents(t, "CS2101")
	for day := 0; day < 3; day++ {
		seedClosedSession(t, fx, "Algorithms", start.Add(time.Duration(day)*24*time.Hour), map[uint]models.AttendanceStatus{
			students[0].ID: models.StatusPresent,
		})
	}

	svc := NewExportService(fx.sessions, fx.students, fx.attendance, zerolog.Nop())

	page, err := svc.ClosedSessions(ctx, 2, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.Page)
	require.Len(t, page.Items, 1)
}
