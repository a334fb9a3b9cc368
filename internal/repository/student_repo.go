package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/campusface/attendance-api/internal/models"
)

// StudentFilter describes pagination & search options for the registry.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}

// StudentRepository defines persistence operations for the student registry.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByRollNumber(ctx context.Context, rollNumber string) (models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error)
	Enroll(ctx context.Context, sessionID uint, studentIDs []uint) error
	ListEnrolled(ctx context.Context, sessionID uint) ([]models.Student, error)
	IsEnrolled(ctx context.Context, sessionID, studentID uint) (bool, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository instantiates a GORM-backed repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) GetByRollNumber(ctx context.Context, rollNumber string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("roll_number = ?", rollNumber).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(roll_number) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var students []models.Student
	if err := query.Order("roll_number ASC").Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *studentRepository) Enroll(ctx context.Context, sessionID uint, studentIDs []uint) error {
	enrollments := make([]models.Enrollment, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		enrollments = append(enrollments, models.Enrollment{SessionID: sessionID, StudentID: studentID})
	}

	return r.db.WithContext(ctx).Create(&enrollments).Error
}

func (r *studentRepository) ListEnrolled(ctx context.Context, sessionID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.student_id = students.id").
		Where("enrollments.session_id = ?", sessionID).
		Order("students.roll_number ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) IsEnrolled(ctx context.Context, sessionID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("session_id = ? AND student_id = ?", sessionID, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
