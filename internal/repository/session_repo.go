package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campusface/attendance-api/internal/models"
)

// SessionRepository defines persistence operations for class sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.ClassSession) error
	GetByID(ctx context.Context, id uint) (models.ClassSession, error)
	Update(ctx context.Context, session *models.ClassSession) error
	ListClosed(ctx context.Context, page, pageSize int) ([]models.ClassSession, int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository instantiates a GORM-backed repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.ClassSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByID(ctx context.Context, id uint) (models.ClassSession, error) {
	var session models.ClassSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.ClassSession{}, err
	}

	return session, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.ClassSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepository) ListClosed(ctx context.Context, page, pageSize int) ([]models.ClassSession, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ClassSession{}).Where("state = ?", models.SessionClosed)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var sessions []models.ClassSession
	if err := query.Order("closed_at ASC, id ASC").Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}
