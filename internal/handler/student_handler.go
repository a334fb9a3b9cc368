package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campusface/attendance-api/internal/dto"
	"github.com/campusface/attendance-api/internal/repository"
	"github.com/campusface/attendance-api/internal/service"
	"github.com/campusface/attendance-api/internal/utils"
)

// StudentHandler wires the student registry routes.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches registry endpoints to the router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	students, total, err := h.service.List(c.Context(), repository.StudentFilter{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "students retrieved", fiber.Map{
		"items": students,
		"total": total,
	})
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	student, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "malformed student payload")
	}

	student, err := h.service.Register(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateRollNumber):
			return utils.SendError(c, fiber.StatusConflict, "roll number already registered")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student registered", student)
}

func (h *StudentHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
