package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusface/attendance-api/internal/dto"
	"github.com/campusface/attendance-api/internal/models"
	"github.com/campusface/attendance-api/internal/repository"
)

// AnalyticsService aggregates persisted attendance into the figures the
// dashboards show: overall ratios, per-subject rates, and students whose
// attendance fell under the threshold.
type AnalyticsService interface {
	Summary(ctx context.Context) (dto.AttendanceSummaryResponse, error)
	SubjectRates(ctx context.Context) ([]dto.SubjectRate, error)
	LowAttendance(ctx context.Context) (dto.LowAttendanceResponse, error)
}

type analyticsService struct {
	repo      repository.AnalyticsRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	threshold float64
	logger    zerolog.Logger
}

// NewAnalyticsService builds the analytics aggregator. cache may be nil.
func NewAnalyticsService(repo repository.AnalyticsRepository, cache *redis.Client, ttl time.Duration, threshold float64, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		repo:      repo,
		cache:     cache,
		cacheTTL:  ttl,
		threshold: threshold,
		logger:    logger.With().Str("component", "analytics_service").Logger(),
	}
}

func (s *analyticsService) Summary(ctx context.Context) (dto.AttendanceSummaryResponse, error) {
	const cacheKey = "analytics:summary"

	var cached dto.AttendanceSummaryResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	sessions, err := s.repo.CountClosedSessions(ctx)
	if err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}

	response := dto.AttendanceSummaryResponse{Sessions: sessions}
	var marked int64
	for _, count := range counts {
		marked += count.Count
		switch count.Status {
		case models.StatusPresent:
			response.Present = count.Count
		case models.StatusLate:
			response.Late = count.Count
		case models.StatusAbsent:
			response.Absent = count.Count
		case models.StatusDisputed:
			response.Disputed = count.Count
		}
	}

	if marked > 0 {
		response.PresentRate = roundRate(float64(response.Present+response.Late) / float64(marked) * 100)
	}

	s.cacheSet(ctx, cacheKey, response)

	return response, nil
}

func (s *analyticsService) SubjectRates(ctx context.Context) ([]dto.SubjectRate, error) {
	const cacheKey = "analytics:subjects"

	var cached []dto.SubjectRate
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	aggregates, err := s.repo.SubjectAggregates(ctx)
	if err != nil {
		return nil, err
	}

	rates := make([]dto.SubjectRate, 0, len(aggregates))
	for _, aggregate := range aggregates {
		rate := dto.SubjectRate{
			Subject:  aggregate.Subject,
			Sessions: aggregate.Sessions,
			Marked:   aggregate.Marked,
			Attended: aggregate.Attended,
		}
		if aggregate.Marked > 0 {
			rate.Rate = roundRate(float64(aggregate.Attended) / float64(aggregate.Marked) * 100)
		}
		rates = append(rates, rate)
	}

	s.cacheSet(ctx, cacheKey, rates)

	return rates, nil
}

func (s *analyticsService) LowAttendance(ctx context.Context) (dto.LowAttendanceResponse, error) {
	aggregates, err := s.repo.StudentAggregates(ctx)
	if err != nil {
		return dto.LowAttendanceResponse{}, err
	}

	students := make([]dto.LowAttendanceStudent, 0)
	for _, aggregate := range aggregates {
		if aggregate.Sessions == 0 {
			continue
		}
		rate := roundRate(float64(aggregate.Attended) / float64(aggregate.Sessions) * 100)
		if rate >= s.threshold {
			continue
		}
		students = append(students, dto.LowAttendanceStudent{
			StudentID:  aggregate.StudentID,
			RollNumber: aggregate.RollNumber,
			Name:       aggregate.Name,
			Sessions:   aggregate.Sessions,
			Attended:   aggregate.Attended,
			Rate:       rate,
		})
	}

	return dto.LowAttendanceResponse{Threshold: s.threshold, Students: students}, nil
}

func (s *analyticsService) cacheGet(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read analytics cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		return false
	}

	s.logger.Debug().Str("key", key).Msg("analytics cache hit")
	return true
}

func (s *analyticsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store analytics cache")
	}
}

func roundRate(rate float64) float64 {
	return math.Round(rate*10) / 10
}
