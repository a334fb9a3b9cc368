package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campusface/attendance-api/internal/models"
)

func TestProxyDetectorBelowFloor(t *testing.T) {
	proxy := NewProxyDetector(nil, 85.0, zerolog.Nop())

	require.True(t, proxy.BelowFloor(60.0))
	require.True(t, proxy.BelowFloor(84.9))
	require.False(t, proxy.BelowFloor(85.0))
	require.False(t, proxy.BelowFloor(99.0))
}

func TestProxyDetectorCheck(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	fx := newEngineFixture(t, start)
	ctx := context.Background()

	students := fx.seedStudents(t, "CS2101")
	studentID := students[0].ID

	overlapping := models.ClassSession{
		Subject:            "Databases",
		Room:               "C-110",
		StartTime:          start.Add(30 * time.Minute),
		EndTime:            start.Add(90 * time.Minute),
		GraceWindowMinutes: 15,
		State:              models.SessionActive,
	}
	require.NoError(t, fx.sessions.Create(ctx, &overlapping))
	require.NoError(t, fx.db.Create(&models.AttendanceRecord{
		SessionID: overlapping.ID,
		StudentID: studentID,
		Status:    models.StatusPresent,
		Source:    models.SourceAuto,
	}).Error)

	proxy := NewProxyDetector(fx.attendance, 85.0, zerolog.Nop())
	current := models.ClassSession{
		ID:        overlapping.ID + 1,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		State:     models.SessionActive,
	}

	verdict, err := proxy.Check(ctx, current, recognition(current.ID, &studentID, start.Add(5*time.Minute), 92.0))
	require.NoError(t, err)
	require.True(t, verdict.Flagged)
	require.Len(t, verdict.Conflicts, 1)
	require.Equal(t, overlapping.ID, verdict.Conflicts[0].Session.ID)

	// A session that ends before the other one starts cannot conflict.
	disjoint := models.ClassSession{
		ID:        current.ID,
		StartTime: start.Add(-2 * time.Hour),
		EndTime:   start.Add(-time.Hour),
		State:     models.SessionActive,
	}
	verdict, err = proxy.Check(ctx, disjoint, recognition(disjoint.ID, &studentID, start.Add(-90*time.Minute), 92.0))
	require.NoError(t, err)
	require.False(t, verdict.Flagged)

	// Unmatched events carry no identity to check.
	verdict, err = proxy.Check(ctx, current, recognition(current.ID, nil, start, 50.0))
	require.NoError(t, err)
	require.False(t, verdict.Flagged)
}
