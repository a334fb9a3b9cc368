package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusface/attendance-api/internal/models"
)

func TestClassifyAgainstGraceWindow(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	session := models.ClassSession{
		StartTime:          start,
		EndTime:            start.Add(time.Hour),
		GraceWindowMinutes: 15,
	}

	cases := []struct {
		name       string
		capturedAt time.Time
		want       models.AttendanceStatus
	}{
		{"well before start", start.Add(-10 * time.Minute), models.StatusPresent},
		{"exactly at start", start, models.StatusPresent},
		{"one second after start", start.Add(time.Second), models.StatusLate},
		{"inside grace window", start.Add(10 * time.Minute), models.StatusLate},
		{"exactly at grace deadline", start.Add(15 * time.Minute), models.StatusLate},
		{"one second past deadline", start.Add(15*time.Minute + time.Second), models.StatusAbsent},
		{"long after deadline", start.Add(40 * time.Minute), models.StatusAbsent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(session, tc.capturedAt))
		})
	}
}

func TestClassifyZeroGraceWindow(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	session := models.ClassSession{
		StartTime:          start,
		EndTime:            start.Add(time.Hour),
		GraceWindowMinutes: 0,
	}

	require.Equal(t, models.StatusPresent, Classify(session, start))
	require.Equal(t, models.StatusAbsent, Classify(session, start.Add(time.Second)))
}
