package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campusface/attendance-api/internal/dto"
	"github.com/campusface/attendance-api/internal/repository"
)

func TestStudentRegisterNormalizesRollNumber(t *testing.T) {
	fx := newEngineFixture(t, time.Now())
	svc := NewStudentService(fx.students, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	ctx := context.Background()

	created, err := svc.Register(ctx, dto.StudentCreateRequest{
		RollNumber: " cs2101 ",
		Name:       "  Ada Wong ",
		Email:      "ada@campus.test",
	})
	require.NoError(t, err)
	require.Equal(t, "CS2101", created.RollNumber)
	require.Equal(t, "Ada Wong", created.Name)

	_, err = svc.Register(ctx, dto.StudentCreateRequest{
		RollNumber: "CS2101",
		Name:       "Someone Else",
	})
	require.ErrorIs(t, err, ErrDuplicateRollNumber)
}

func TestStudentListAndGet(t *testing.T) {
	fx := newEngineFixture(t, time.Now())
	svc := NewStudentService(fx.students, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	ctx := context.Background()

	fx.seedStudents(t, "CS2103", "CS2101", "CS2102")

	listed, total, err := svc.List(ctx, repository.StudentFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Equal(t, "CS2101", listed[0].RollNumber)
	require.Equal(t, "CS2103", listed[2].RollNumber)

	filtered, total, err := svc.List(ctx, repository.StudentFilter{Search: "cs2102"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, filtered, 1)

	got, err := svc.Get(ctx, listed[0].ID)
	require.NoError(t, err)
	require.Equal(t, listed[0].RollNumber, got.RollNumber)

	_, err = svc.Get(ctx, 9999)
	require.ErrorIs(t, err, ErrStudentNotFound)
}
