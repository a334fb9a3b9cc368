package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campusface/attendance-api/internal/dto"
	"github.com/campusface/attendance-api/internal/models"
	"github.com/campusface/attendance-api/internal/repository"
)

// StudentService manages the student registry consumed by the engine.
type StudentService interface {
	Register(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	List(ctx context.Context, filter repository.StudentFilter) ([]dto.StudentResponse, int64, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
}

type studentService struct {
	repo      repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService builds the registry service.
func NewStudentService(repo repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Register(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	rollNumber := strings.ToUpper(strings.TrimSpace(payload.RollNumber))

	if _, err := s.repo.GetByRollNumber(ctx, rollNumber); err == nil {
		return dto.StudentResponse{}, ErrDuplicateRollNumber
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		RollNumber: rollNumber,
		Name:       strings.TrimSpace(payload.Name),
		Email:      strings.TrimSpace(payload.Email),
	}

	if err := s.repo.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Str("roll_number", student.RollNumber).Msg("student registered")

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, filter repository.StudentFilter) ([]dto.StudentResponse, int64, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return dto.NewStudentResponseSlice(students), total, nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}
