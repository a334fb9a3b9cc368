package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campusface/attendance-api/internal/dto"
	"github.com/campusface/attendance-api/internal/models"
	"github.com/campusface/attendance-api/internal/repository"
)

const defaultExportPageSize = 20

// ExportService exposes closed sessions' final rosters and audit trails in a
// stable order for downstream CSV/PDF generation. The engine itself never
// formats files.
type ExportService interface {
	ClosedSessions(ctx context.Context, page, pageSize int) (dto.ExportListResponse, error)
}

type exportService struct {
	sessions   repository.SessionRepository
	students   repository.StudentRepository
	attendance repository.AttendanceRepository
	logger     zerolog.Logger
}

// NewExportService builds the export reader.
func NewExportService(sessions repository.SessionRepository, students repository.StudentRepository, attendance repository.AttendanceRepository, logger zerolog.Logger) ExportService {
	return &exportService{
		sessions:   sessions,
		students:   students,
		attendance: attendance,
		logger:     logger.With().Str("component", "export_service").Logger(),
	}
}

func (s *exportService) ClosedSessions(ctx context.Context, page, pageSize int) (dto.ExportListResponse, error) {
	if pageSize <= 0 {
		pageSize = defaultExportPageSize
	}
	if page <= 0 {
		page = 1
	}

	sessions, total, err := s.sessions.ListClosed(ctx, page, pageSize)
	if err != nil {
		return dto.ExportListResponse{}, err
	}

	items := make([]dto.SessionExport, 0, len(sessions))
	for _, session := range sessions {
		export, err := s.buildExport(ctx, session)
		if err != nil {
			return dto.ExportListResponse{}, err
		}
		items = append(items, export)
	}

	return dto.ExportListResponse{
		Items: items,
		Pagination: dto.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
		},
	}, nil
}

func (s *exportService) buildExport(ctx context.Context, session models.ClassSession) (dto.SessionExport, error) {
	records, err := s.attendance.ListBySession(ctx, session.ID)
	if err != nil {
		return dto.SessionExport{}, err
	}

	enrolled, err := s.students.ListEnrolled(ctx, session.ID)
	if err != nil {
		return dto.SessionExport{}, err
	}

	byID := make(map[uint]models.Student, len(enrolled))
	for _, student := range enrolled {
		byID[student.ID] = student
	}

	// Roster rows follow the enrolled ordering (roll number ascending) so
	// repeated exports are byte-stable.
	byStudent := make(map[uint]models.AttendanceRecord, len(records))
	for _, record := range records {
		byStudent[record.StudentID] = record
	}

	roster := make([]dto.RosterEntry, 0, len(enrolled))
	summary := dto.RosterSummary{Enrolled: len(enrolled)}
	for _, student := range enrolled {
		record, ok := byStudent[student.ID]
		if !ok {
			continue
		}
		roster = append(roster, dto.NewRosterEntry(record, student))
		countStatus(&summary, record.Status)
	}

	audit, err := s.attendance.ListAudit(ctx, session.ID, nil)
	if err != nil {
		return dto.SessionExport{}, err
	}

	return dto.SessionExport{
		Session: dto.NewSessionResponse(session),
		Summary: summary,
		Roster:  roster,
		Audit:   dto.NewAuditEntryResponseSlice(audit),
	}, nil
}
