package dto

import (
	"time"

	"github.com/campusface/attendance-api/internal/models"
)

// StudentCreateRequest describes the payload for registering a student.
type StudentCreateRequest struct {
	RollNumber string `json:"roll_number" validate:"required,min=3,max=32"`
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"omitempty,email"`
}

// StudentResponse is the serialized representation returned to API clients.
type StudentResponse struct {
	ID         uint      `json:"id"`
	RollNumber string    `json:"roll_number"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewStudentResponse converts a model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{
		ID:         model.ID,
		RollNumber: model.RollNumber,
		Name:       model.Name,
		Email:      model.Email,
		CreatedAt:  model.CreatedAt,
	}
}

// NewStudentResponseSlice converts a slice of models into DTOs.
func NewStudentResponseSlice(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}

	return responses
}
