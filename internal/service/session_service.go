package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campusface/attendance-api/internal/dto"
	"github.com/campusface/attendance-api/internal/models"
	"github.com/campusface/attendance-api/internal/observability"
	"github.com/campusface/attendance-api/internal/repository"
)

// SessionConfig tunes the session engine.
type SessionConfig struct {
	DefaultGraceWindow time.Duration
	CorrectionWindow   time.Duration
}

// SessionService owns the session lifecycle, the roster, and the ingest
// pipeline. All roster mutations for one session are serialized behind a
// per-session lock held only for classify-and-update, never across slow
// collaborators.
type SessionService interface {
	Create(ctx context.Context, payload dto.SessionCreateRequest) (dto.SessionResponse, error)
	Start(ctx context.Context, sessionID uint) (dto.SessionResponse, error)
	Ingest(ctx context.Context, event models.RecognitionEvent) (dto.IngestResult, error)
	Override(ctx context.Context, sessionID uint, payload dto.OverrideRequest, actor string) (dto.RosterEntry, error)
	Close(ctx context.Context, sessionID uint) (dto.SessionResponse, error)
	Snapshot(ctx context.Context, sessionID uint) (dto.RosterResponse, error)
	Audit(ctx context.Context, sessionID uint, studentID *uint) ([]dto.AuditEntryResponse, error)
	Shutdown()
}

type sessionService struct {
	sessions   repository.SessionRepository
	students   repository.StudentRepository
	attendance repository.AttendanceRepository
	dedup      *Deduplicator
	proxy      *ProxyDetector
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	notifier   RosterNotifier
	logger     zerolog.Logger
	tracer     trace.Tracer
	clock      Clock
	cfg        SessionConfig

	mu     sync.Mutex
	locks  map[uint]*sync.Mutex
	timers map[uint]*time.Timer
}

// NewSessionService builds the session engine. notifier may be nil.
func NewSessionService(
	sessions repository.SessionRepository,
	students repository.StudentRepository,
	attendance repository.AttendanceRepository,
	dedup *Deduplicator,
	proxy *ProxyDetector,
	validate *validator.Validate,
	notifier RosterNotifier,
	clock Clock,
	cfg SessionConfig,
	logger zerolog.Logger,
) SessionService {
	return &sessionService{
		sessions:   sessions,
		students:   students,
		attendance: attendance,
		dedup:      dedup,
		proxy:      proxy,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		notifier:   notifier,
		logger:     logger.With().Str("component", "session_service").Logger(),
		tracer:     otel.Tracer("github.com/campusface/attendance-api/internal/service/session"),
		clock:      clock,
		cfg:        cfg,
		locks:      make(map[uint]*sync.Mutex),
		timers:     make(map[uint]*time.Timer),
	}
}

// sessionLock returns the mutex serializing mutations for one session.
func (s *sessionService) sessionLock(sessionID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

func (s *sessionService) Create(ctx context.Context, payload dto.SessionCreateRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	startTime, err := time.Parse(time.RFC3339, payload.StartTime)
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("invalid start time: %w", err)
	}

	endTime, err := time.Parse(time.RFC3339, payload.EndTime)
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("invalid end time: %w", err)
	}

	if !endTime.After(startTime) {
		return dto.SessionResponse{}, ErrInvalidTimeRange
	}

	graceMinutes := payload.GraceWindowMinutes
	if graceMinutes <= 0 {
		graceMinutes = int(s.cfg.DefaultGraceWindow.Minutes())
	}

	for _, studentID := range payload.StudentIDs {
		if _, err := s.students.GetByID(ctx, studentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SessionResponse{}, fmt.Errorf("%w: id %d", ErrStudentNotFound, studentID)
			}
			return dto.SessionResponse{}, err
		}
	}

	session := models.ClassSession{
		Subject:            payload.Subject,
		Room:               payload.Room,
		StartTime:          startTime,
		EndTime:            endTime,
		GraceWindowMinutes: graceMinutes,
		State:              models.SessionScheduled,
	}

	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}

	if err := s.students.Enroll(ctx, session.ID, payload.StudentIDs); err != nil {
		return dto.SessionResponse{}, err
	}

	s.logger.Info().
		Uint("session_id", session.ID).
		Str("subject", session.Subject).
		Int("enrolled", len(payload.StudentIDs)).
		Msg("session scheduled")

	return dto.NewSessionResponse(session), nil
}

// Start transitions a scheduled session to active, pre-populates the roster
// with every enrolled student as absent, and arms the grace-expiry timer.
func (s *sessionService) Start(ctx context.Context, sessionID uint) (dto.SessionResponse, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	if session.State != models.SessionScheduled {
		return dto.SessionResponse{}, ErrSessionNotScheduled
	}

	enrolled, err := s.students.ListEnrolled(ctx, sessionID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	records := make([]models.AttendanceRecord, 0, len(enrolled))
	for _, student := range enrolled {
		records = append(records, models.AttendanceRecord{
			SessionID: sessionID,
			StudentID: student.ID,
			Status:    models.StatusAbsent,
			Source:    models.SourceAuto,
		})
	}

	if err := s.attendance.InitRoster(ctx, records); err != nil {
		return dto.SessionResponse{}, err
	}

	now := s.clock.Now()
	session.State = models.SessionActive
	session.StartedAt = &now

	if err := s.sessions.Update(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}

	entry := models.AuditEntry{
		SessionID: sessionID,
		Actor:     models.ActorSystem,
		Action:    models.AuditActionRosterInit,
		NewStatus: models.StatusAbsent,
		Reason:    fmt.Sprintf("roster initialized with %d enrolled students", len(records)),
	}
	if err := s.attendance.AppendAudit(ctx, &entry); err != nil {
		return dto.SessionResponse{}, err
	}

	s.armGraceTimer(session)

	s.logger.Info().
		Uint("session_id", sessionID).
		Int("roster_size", len(records)).
		Time("grace_deadline", session.GraceDeadline()).
		Msg("session started")

	return dto.NewSessionResponse(session), nil
}

func (s *sessionService) armGraceTimer(session models.ClassSession) {
	delay := session.GraceDeadline().Sub(s.clock.Now())
	if delay <= 0 {
		go s.expireGrace(session.ID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[session.ID] = time.AfterFunc(delay, func() { s.expireGrace(session.ID) })
}

// expireGrace moves an active session to grace_expired. Firing after close is
// a no-op: classification depends on timestamps, not on this transition.
func (s *sessionService) expireGrace(sessionID uint) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Uint("session_id", sessionID).Msg("grace expiry lookup failed")
		return
	}

	if session.State != models.SessionActive {
		return
	}

	session.State = models.SessionGraceExpired
	if err := s.sessions.Update(ctx, &session); err != nil {
		s.logger.Error().Err(err).Uint("session_id", sessionID).Msg("grace expiry update failed")
		return
	}

	s.logger.Info().Uint("session_id", sessionID).Msg("grace window expired")
}

// Ingest runs one recognition event through dedup, proxy detection, and
// classification, then applies the result under the session's lock. The
// roster mutation and its audit entry commit together or not at all.
func (s *sessionService) Ingest(ctx context.Context, event models.RecognitionEvent) (dto.IngestResult, error) {
	attrs := []attribute.KeyValue{
		attribute.Int64("session.id", int64(event.SessionID)),
		attribute.String("event.source", string(event.Source)),
	}
	ctx, span := s.tracer.Start(ctx, "attendance.ingest", trace.WithAttributes(attrs...))
	defer span.End()

	lock := s.sessionLock(event.SessionID)
	lock.Lock()

	result, record, conflicts, err := s.ingestLocked(ctx, event)
	lock.Unlock()

	if err != nil {
		observability.IngestEvents().WithLabelValues("error", string(event.Source)).Inc()
		return dto.IngestResult{}, err
	}

	observability.IngestEvents().WithLabelValues(result.Outcome, string(event.Source)).Inc()

	// Conflicting sessions are flagged after this session's lock is
	// released; each takes its own lock.
	if len(conflicts) > 0 {
		observability.ProxyFlags().Inc()
		s.flagConflicts(ctx, event.SessionID, event.ID, conflicts)
	}

	if record != nil {
		entryDTO := s.rosterEntryForRecord(ctx, *record)
		result.Record = &entryDTO
		s.notifyChange(event.SessionID, *record)
	}

	return result, nil
}

// ingestLocked holds the per-session lock; it must stay free of slow
// collaborator calls.
func (s *sessionService) ingestLocked(ctx context.Context, event models.RecognitionEvent) (dto.IngestResult, *models.AttendanceRecord, []repository.ConflictCandidate, error) {
	result := dto.IngestResult{EventID: event.ID}

	session, err := s.loadSession(ctx, event.SessionID)
	if err != nil {
		return result, nil, nil, err
	}

	if !session.AcceptsEvents() {
		s.logger.Warn().
			Uint("session_id", session.ID).
			Str("state", string(session.State)).
			Str("event_id", event.ID).
			Msg("event rejected: session not open")
		return result, nil, nil, ErrSessionNotOpen
	}

	if event.StudentID == nil {
		if err := s.recordUnmatched(ctx, session, event, "no roll number matched"); err != nil {
			return result, nil, nil, err
		}
		result.Outcome = dto.IngestUnmatched
		return result, nil, nil, nil
	}

	// Burst suppression runs before the cheaper checks so a low-confidence
	// camera burst does not write one audit entry per frame.
	if s.dedup.IsDuplicate(event) {
		result.Outcome = dto.IngestDuplicate
		return result, nil, nil, nil
	}

	enrolled, err := s.students.IsEnrolled(ctx, session.ID, *event.StudentID)
	if err != nil {
		return result, nil, nil, err
	}
	if !enrolled {
		return result, nil, nil, ErrStudentNotEnrolled
	}

	if s.proxy.BelowFloor(event.Confidence) {
		if err := s.recordUnmatched(ctx, session, event, "confidence below floor"); err != nil {
			return result, nil, nil, err
		}
		s.dedup.Accept(event)
		result.Outcome = dto.IngestBelowFloor
		return result, nil, nil, nil
	}

	record, err := s.attendance.GetRecord(ctx, session.ID, *event.StudentID)
	if err != nil {
		return result, nil, nil, err
	}

	if record.ManuallySet() {
		s.logger.Info().
			Uint("session_id", session.ID).
			Uint("student_id", record.StudentID).
			Msg("automatic event ignored: manual override present")
		result.Outcome = dto.IngestManualPrecd
		return result, nil, nil, nil
	}

	if record.Status == models.StatusDisputed {
		s.logger.Info().
			Uint("session_id", session.ID).
			Uint("student_id", record.StudentID).
			Msg("automatic event ignored: record awaits dispute resolution")
		result.Outcome = dto.IngestDisputedPrecd
		return result, nil, nil, nil
	}

	if record.RecognizedAt != nil {
		// Only the first high-confidence detection counts towards the
		// classification; later sightings are informational.
		result.Outcome = dto.IngestAlreadyMarked
		return result, nil, nil, nil
	}

	status := Classify(session, event.CapturedAt)
	if status == models.StatusAbsent {
		// Outside the grace window; the record stays as it is.
		result.Outcome = dto.IngestOutsideWindow
		return result, nil, nil, nil
	}

	verdict, err := s.proxy.Check(ctx, session, event)
	if err != nil {
		return result, nil, nil, err
	}

	prev := record.Status
	capturedAt := event.CapturedAt
	record.RecognizedAt = &capturedAt
	confidence := event.Confidence
	record.Confidence = &confidence
	record.CameraID = event.CameraID
	record.Source = event.RecordSource()

	if verdict.Flagged {
		record.Status = models.StatusDisputed

		entry := s.newAuditEntry(session.ID, record.StudentID, prev, record.Status, models.ActorSystem, models.AuditActionDisputed, verdict.Reason, event, conflictMetadata(verdict.Conflicts))
		if err := s.attendance.ApplyChange(ctx, &record, &entry); err != nil {
			return result, nil, nil, err
		}
		s.dedup.Accept(event)

		result.Outcome = dto.IngestDisputedFlagged
		return result, &record, verdict.Conflicts, nil
	}

	record.Status = status

	entry := s.newAuditEntry(session.ID, record.StudentID, prev, status, models.ActorSystem, models.AuditActionAutoMark, "automatic classification", event, nil)
	if err := s.attendance.ApplyChange(ctx, &record, &entry); err != nil {
		return result, nil, nil, err
	}
	s.dedup.Accept(event)

	result.Outcome = dto.IngestApplied
	return result, &record, nil, nil
}

func (s *sessionService) recordUnmatched(ctx context.Context, session models.ClassSession, event models.RecognitionEvent, reason string) error {
	entry := models.AuditEntry{
		SessionID: session.ID,
		StudentID: event.StudentID,
		Actor:     models.ActorSystem,
		Action:    models.AuditActionUnmatched,
		Reason:    reason,
		Metadata: datatypes.JSONMap{
			"event_id":   event.ID,
			"camera_id":  event.CameraID,
			"confidence": event.Confidence,
			"source":     string(event.Source),
		},
	}

	return s.attendance.AppendAudit(ctx, &entry)
}

func (s *sessionService) newAuditEntry(sessionID, studentID uint, prev, next models.AttendanceStatus, actor, action, reason string, event models.RecognitionEvent, extra datatypes.JSONMap) models.AuditEntry {
	metadata := datatypes.JSONMap{
		"event_id":   event.ID,
		"camera_id":  event.CameraID,
		"confidence": event.Confidence,
		"source":     string(event.Source),
	}
	for key, value := range extra {
		metadata[key] = value
	}

	return models.AuditEntry{
		SessionID:  sessionID,
		StudentID:  &studentID,
		PrevStatus: prev,
		NewStatus:  next,
		Actor:      actor,
		Action:     action,
		Reason:     reason,
		Metadata:   metadata,
	}
}

func conflictMetadata(conflicts []repository.ConflictCandidate) datatypes.JSONMap {
	ids := make([]interface{}, 0, len(conflicts))
	for _, conflict := range conflicts {
		ids = append(ids, conflict.Session.ID)
	}
	return datatypes.JSONMap{"conflicting_session_ids": ids}
}

// flagConflicts marks the overlapping records disputed, each under its own
// session lock. Manually overridden records are left alone.
func (s *sessionService) flagConflicts(ctx context.Context, originSessionID uint, eventID string, conflicts []repository.ConflictCandidate) {
	for _, conflict := range conflicts {
		lock := s.sessionLock(conflict.Session.ID)
		lock.Lock()

		record, err := s.attendance.GetRecord(ctx, conflict.Session.ID, conflict.Record.StudentID)
		if err != nil {
			lock.Unlock()
			s.logger.Error().Err(err).Uint("session_id", conflict.Session.ID).Msg("conflict record lookup failed")
			continue
		}

		if record.ManuallySet() || record.Status == models.StatusDisputed {
			lock.Unlock()
			continue
		}

		prev := record.Status
		record.Status = models.StatusDisputed

		entry := models.AuditEntry{
			SessionID:  conflict.Session.ID,
			StudentID:  &record.StudentID,
			PrevStatus: prev,
			NewStatus:  models.StatusDisputed,
			Actor:      models.ActorSystem,
			Action:     models.AuditActionDisputed,
			Reason:     "student recognized in overlapping sessions",
			Metadata: datatypes.JSONMap{
				"event_id":                eventID,
				"conflicting_session_ids": []interface{}{originSessionID},
			},
		}

		if err := s.attendance.ApplyChange(ctx, &record, &entry); err != nil {
			lock.Unlock()
			s.logger.Error().Err(err).Uint("session_id", conflict.Session.ID).Msg("conflict flag failed")
			continue
		}

		lock.Unlock()
		s.notifyChange(conflict.Session.ID, record)
	}
}

// Override applies an instructor correction. Manual status always wins over
// automatic classification, and a later override wins over an earlier one.
func (s *sessionService) Override(ctx context.Context, sessionID uint, payload dto.OverrideRequest, actor string) (dto.RosterEntry, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RosterEntry{}, err
	}

	reason := strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason))
	if reason == "" {
		return dto.RosterEntry{}, ErrEmptyOverrideReason
	}

	newStatus := models.AttendanceStatus(payload.NewStatus)
	if !newStatus.Valid() {
		return dto.RosterEntry{}, ErrInvalidStatus
	}

	attrs := []attribute.KeyValue{
		attribute.Int64("session.id", int64(sessionID)),
		attribute.String("override.status", payload.NewStatus),
	}
	ctx, span := s.tracer.Start(ctx, "attendance.override", trace.WithAttributes(attrs...))
	defer span.End()

	lock := s.sessionLock(sessionID)
	lock.Lock()

	record, err := s.overrideLocked(ctx, sessionID, payload.StudentID, newStatus, actor, reason)
	lock.Unlock()

	if err != nil {
		return dto.RosterEntry{}, err
	}

	observability.Overrides().WithLabelValues(string(newStatus)).Inc()
	s.notifyChange(sessionID, record)

	return s.rosterEntryForRecord(ctx, record), nil
}

func (s *sessionService) overrideLocked(ctx context.Context, sessionID, studentID uint, newStatus models.AttendanceStatus, actor, reason string) (models.AttendanceRecord, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	if session.State == models.SessionScheduled {
		return models.AttendanceRecord{}, ErrSessionNotOpen
	}

	if session.State == models.SessionClosed && session.ClosedAt != nil {
		if s.clock.Now().After(session.ClosedAt.Add(s.cfg.CorrectionWindow)) {
			return models.AttendanceRecord{}, ErrCorrectionExpired
		}
	}

	enrolled, err := s.students.IsEnrolled(ctx, sessionID, studentID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if !enrolled {
		return models.AttendanceRecord{}, ErrStudentNotEnrolled
	}

	record, err := s.attendance.GetRecord(ctx, sessionID, studentID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	prev := record.Status
	record.Status = newStatus
	record.Source = models.SourceManualOverride
	record.OverrideReason = &reason

	entry := models.AuditEntry{
		SessionID:  sessionID,
		StudentID:  &studentID,
		PrevStatus: prev,
		NewStatus:  newStatus,
		Actor:      actor,
		Action:     models.AuditActionOverride,
		Reason:     reason,
	}

	if err := s.attendance.ApplyChange(ctx, &record, &entry); err != nil {
		return models.AttendanceRecord{}, err
	}

	s.logger.Info().
		Uint("session_id", sessionID).
		Uint("student_id", studentID).
		Str("actor", actor).
		Str("from", string(prev)).
		Str("to", string(newStatus)).
		Msg("manual override applied")

	return record, nil
}

// Close stops a session. Absent entries stay absent; after closing only
// overrides within the correction window may mutate the roster.
func (s *sessionService) Close(ctx context.Context, sessionID uint) (dto.SessionResponse, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	switch session.State {
	case models.SessionClosed:
		return dto.SessionResponse{}, ErrSessionAlreadyClosed
	case models.SessionScheduled:
		return dto.SessionResponse{}, ErrSessionNotOpen
	}

	now := s.clock.Now()
	session.State = models.SessionClosed
	session.ClosedAt = &now

	if err := s.sessions.Update(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}

	s.cancelGraceTimer(sessionID)
	s.dedup.Forget(sessionID)

	s.logger.Info().Uint("session_id", sessionID).Msg("session closed")

	return dto.NewSessionResponse(session), nil
}

func (s *sessionService) cancelGraceTimer(sessionID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[sessionID]; ok {
		timer.Stop()
		delete(s.timers, sessionID)
	}
}

// Snapshot returns an immutable copy of the roster plus summary counts.
func (s *sessionService) Snapshot(ctx context.Context, sessionID uint) (dto.RosterResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return dto.RosterResponse{}, err
	}

	records, err := s.attendance.ListBySession(ctx, sessionID)
	if err != nil {
		return dto.RosterResponse{}, err
	}

	enrolled, err := s.students.ListEnrolled(ctx, sessionID)
	if err != nil {
		return dto.RosterResponse{}, err
	}

	byID := make(map[uint]models.Student, len(enrolled))
	for _, student := range enrolled {
		byID[student.ID] = student
	}

	entries := make([]dto.RosterEntry, 0, len(records))
	summary := dto.RosterSummary{Enrolled: len(enrolled)}
	for _, record := range records {
		entries = append(entries, dto.NewRosterEntry(record, byID[record.StudentID]))
		countStatus(&summary, record.Status)
	}

	return dto.RosterResponse{
		Session: dto.NewSessionResponse(session),
		Summary: summary,
		Entries: entries,
	}, nil
}

// Audit returns the audit trail for a session, optionally scoped to one
// student, in insertion order.
func (s *sessionService) Audit(ctx context.Context, sessionID uint, studentID *uint) ([]dto.AuditEntryResponse, error) {
	if _, err := s.loadSession(ctx, sessionID); err != nil {
		return nil, err
	}

	entries, err := s.attendance.ListAudit(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewAuditEntryResponseSlice(entries), nil
}

// Shutdown cancels all pending grace timers.
func (s *sessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *sessionService) loadSession(ctx context.Context, sessionID uint) (models.ClassSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ClassSession{}, ErrSessionNotFound
		}
		return models.ClassSession{}, err
	}
	return session, nil
}

func (s *sessionService) rosterEntryForRecord(ctx context.Context, record models.AttendanceRecord) dto.RosterEntry {
	student, err := s.students.GetByID(ctx, record.StudentID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("student_id", record.StudentID).Msg("student lookup failed for roster entry")
	}
	return dto.NewRosterEntry(record, student)
}

// notifyChange publishes the mutation to live consumers. It runs detached
// from the request: notification is best-effort and never rolls back state.
func (s *sessionService) notifyChange(sessionID uint, record models.AttendanceRecord) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		student, err := s.students.GetByID(ctx, record.StudentID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("student_id", record.StudentID).Msg("notify: student lookup failed")
			return
		}

		records, err := s.attendance.ListBySession(ctx, sessionID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("session_id", sessionID).Msg("notify: roster lookup failed")
			return
		}

		summary := dto.RosterSummary{Enrolled: len(records)}
		for _, item := range records {
			countStatus(&summary, item.Status)
		}

		s.notifier.RosterChanged(ctx, dto.RosterUpdate{
			SessionID: sessionID,
			Entry:     dto.NewRosterEntry(record, student),
			Summary:   summary,
			ChangedAt: s.clock.Now(),
		})
	}()
}

func countStatus(summary *dto.RosterSummary, status models.AttendanceStatus) {
	switch status {
	case models.StatusPresent:
		summary.Present++
	case models.StatusLate:
		summary.Late++
	case models.StatusAbsent:
		summary.Absent++
	case models.StatusDisputed:
		summary.Disputed++
	}
}
