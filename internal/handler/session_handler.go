package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/campusface/attendance-api/internal/dto"
	"github.com/campusface/attendance-api/internal/middleware"
	"github.com/campusface/attendance-api/internal/service"
	"github.com/campusface/attendance-api/internal/utils"
)

// SessionHandler wires the session lifecycle, roster, override, and audit routes.
type SessionHandler struct {
	service   service.SessionService
	feed      *service.RosterFeed
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSessionHandler constructs the handler. feed may be nil to disable the
// live roster stream.
func NewSessionHandler(service service.SessionService, feed *service.RosterFeed, validator *validator.Validate, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service:   service,
		feed:      feed,
		validator: validator,
		logger:    logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register attaches session endpoints to the router group. lifecycle routes
// require the provided auth middleware; roster reads and the live stream do
// not.
func (h *SessionHandler) Register(router fiber.Router, auth fiber.Handler) {
	router.Post("", auth, h.create)
	router.Post("/:id/start", auth, h.start)
	router.Post("/:id/close", auth, h.close)
	router.Post("/:id/override", auth, h.override)
	router.Get("/:id/roster", h.roster)
	router.Get("/:id/audit", h.audit)

	if h.feed != nil {
		router.Use("/:id/live", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		router.Get("/:id/live", websocket.New(h.live))
	}
}

func (h *SessionHandler) create(c *fiber.Ctx) error {
	var payload dto.SessionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "malformed session payload")
	}

	session, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session scheduled", session)
}

func (h *SessionHandler) start(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := h.service.Start(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session started", session)
}

func (h *SessionHandler) close(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := h.service.Close(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session closed", session)
}

func (h *SessionHandler) override(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := middleware.ActorID(c)
	if actor == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "actor identity missing")
	}

	var payload dto.OverrideRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "malformed override payload")
	}

	record, err := h.service.Override(c.Context(), id, payload, actor)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "override applied", record)
}

func (h *SessionHandler) roster(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	snapshot, err := h.service.Snapshot(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "roster retrieved", snapshot)
}

func (h *SessionHandler) audit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id")
	}

	entries, err := h.service.Audit(c.Context(), id, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "audit trail retrieved", entries)
}

func (h *SessionHandler) live(conn *websocket.Conn) {
	id, err := parseWebsocketSessionID(conn)
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusBadRequest, "invalid session id"))
		_ = conn.Close()
		return
	}

	h.logger.Info().Uint("session_id", id).Msg("live roster stream connected")
	h.feed.ServeConnection(conn, id)
	h.logger.Info().Uint("session_id", id).Msg("live roster stream disconnected")
}

func (h *SessionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrStudentNotEnrolled):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "student not enrolled in session")
	case errors.Is(err, service.ErrSessionNotScheduled),
		errors.Is(err, service.ErrSessionNotOpen),
		errors.Is(err, service.ErrSessionAlreadyClosed):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrCorrectionExpired):
		return utils.SendError(c, fiber.StatusConflict, "correction window has expired")
	case errors.Is(err, service.ErrEmptyOverrideReason),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTimeRange),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func parseWebsocketSessionID(conn *websocket.Conn) (uint, error) {
	value := conn.Params("id")
	parsed, err := parseUintString(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
