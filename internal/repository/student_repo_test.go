package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusface/attendance-api/internal/models"
)

func TestStudentRepositoryEnrollment(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	students := []models.Student{
		{RollNumber: "CS2102", Name: "Beth", Email: "beth@campus.test"},
		{RollNumber: "CS2101", Name: "Alan", Email: "alan@campus.test"},
		{RollNumber: "CS2103", Name: "Cory", Email: "cory@campus.test"},
	}
	for i := range students {
		require.NoError(t, repo.Create(ctx, &students[i]))
	}

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	session := createSession(t, db, models.SessionScheduled, start, start.Add(time.Hour))

	require.NoError(t, repo.Enroll(ctx, session.ID, []uint{students[0].ID, students[1].ID}))

	enrolled, err := repo.ListEnrolled(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, enrolled, 2)
	require.Equal(t, "CS2101", enrolled[0].RollNumber, "roll number ascending")
	require.Equal(t, "CS2102", enrolled[1].RollNumber)

	ok, err := repo.IsEnrolled(ctx, session.ID, students[0].ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.IsEnrolled(ctx, session.ID, students[2].ID)
	require.NoError(t, err)
	require.False(t, ok)

	// Duplicate enrollment violates the composite unique index.
	require.Error(t, repo.Enroll(ctx, session.ID, []uint{students[0].ID}))
}

func TestStudentRepositorySearchAndPaging(t *testing.T) {
	db := setupAttendanceTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	seed := []models.Student{
		{RollNumber: "CS2101", Name: "Alan Kay"},
		{RollNumber: "CS2102", Name: "Barbara Liskov"},
		{RollNumber: "EE1101", Name: "Claude Shannon"},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	matched, total, err := repo.List(ctx, StudentFilter{Search: "cs21"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, matched, 2)

	byName, total, err := repo.List(ctx, StudentFilter{Search: "liskov"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "CS2102", byName[0].RollNumber)

	paged, total, err := repo.List(ctx, StudentFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, paged, 1)
	require.Equal(t, "EE1101", paged[0].RollNumber)

	byRoll, err := repo.GetByRollNumber(ctx, "EE1101")
	require.NoError(t, err)
	require.Equal(t, "Claude Shannon", byRoll.Name)
}
