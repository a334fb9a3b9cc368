package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusface/attendance-api/internal/dto"
	"github.com/campusface/attendance-api/internal/service"
	"github.com/campusface/attendance-api/internal/utils"
)

// EventHandler receives recognition events from the camera/QR collaborator.
type EventHandler struct {
	service   service.SessionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEventHandler constructs the handler.
func NewEventHandler(service service.SessionService, validator *validator.Validate, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register attaches the ingestion endpoint to the router group.
func (h *EventHandler) Register(router fiber.Router) {
	router.Post("", h.ingest)
}

func (h *EventHandler) ingest(c *fiber.Ctx) error {
	var payload dto.RecognitionEventRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "malformed event payload")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	event, err := payload.ToEvent(uuid.NewString())
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid capture timestamp")
	}

	result, err := h.service.Ingest(c.Context(), event)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "session not found")
		case errors.Is(err, service.ErrStudentNotEnrolled):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "student not enrolled in session")
		case errors.Is(err, service.ErrSessionNotOpen):
			return utils.SendError(c, fiber.StatusConflict, "session does not accept events")
		default:
			h.logger.Error().Err(err).Msg("event ingestion failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	return utils.SendSuccess(c, "event processed", result)
}
