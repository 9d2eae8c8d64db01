package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-review-api/internal/dto"
	"github.com/noah-isme/gema-review-api/internal/models"
	"github.com/noah-isme/gema-review-api/internal/repository"
)

// Leaderboard sort keys and orders.
const (
	LeaderboardSortScore = "score"
	LeaderboardSortName  = "name"
	LeaderboardOrderAsc  = "asc"
	LeaderboardOrderDesc = "desc"
)

const (
	dashboardCacheKey    = "review:dashboard:summary"
	leaderboardSheetName = "Leaderboard"
)

// LeaderboardService exposes the leaderboard and the teacher dashboard.
type LeaderboardService interface {
	List(ctx context.Context, query dto.LeaderboardQuery) (dto.LeaderboardResponse, error)
	Dashboard(ctx context.Context) (dto.DashboardResponse, error)
	ExportXLSX(ctx context.Context) ([]byte, error)
}

type leaderboardService struct {
	repo      repository.LeaderboardRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewLeaderboardService constructs the leaderboard service. cache may be nil.
func NewLeaderboardService(repo repository.LeaderboardRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) LeaderboardService {
	if validate == nil {
		validate = validator.New()
	}
	return &leaderboardService{
		repo:      repo,
		cache:     cache,
		cacheTTL:  ttl,
		validator: validate,
		logger:    logger.With().Str("component", "leaderboard_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-review-api/internal/service/leaderboard"),
		now:       time.Now,
	}
}

func (s *leaderboardService) List(ctx context.Context, query dto.LeaderboardQuery) (dto.LeaderboardResponse, error) {
	query.Sort = strings.ToLower(strings.TrimSpace(query.Sort))
	query.Order = strings.ToLower(strings.TrimSpace(query.Order))
	if err := s.validator.Struct(query); err != nil {
		return dto.LeaderboardResponse{}, err
	}
	if query.Sort == "" {
		query.Sort = LeaderboardSortScore
	}
	if query.Order == "" {
		if query.Sort == LeaderboardSortName {
			query.Order = LeaderboardOrderAsc
		} else {
			query.Order = LeaderboardOrderDesc
		}
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}
	sortEntries(entries, query.Sort, query.Order)

	response := dto.LeaderboardResponse{
		Sort:    query.Sort,
		Order:   query.Order,
		Entries: make([]dto.LeaderboardEntryResponse, 0, len(entries)),
	}
	for i, entry := range entries {
		response.Entries = append(response.Entries, dto.LeaderboardEntryResponse{
			Rank:  i + 1,
			Name:  entry.Name,
			Score: entry.Score,
		})
	}
	return response, nil
}

func sortEntries(entries []models.LeaderboardEntry, key, order string) {
	less := func(a, b models.LeaderboardEntry) bool {
		if key == LeaderboardSortName {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
		return a.Score < b.Score
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if order == LeaderboardOrderDesc {
			return less(entries[j], entries[i])
		}
		return less(entries[i], entries[j])
	})
}

func (s *leaderboardService) Dashboard(ctx context.Context) (dto.DashboardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.aggregate")
	span.SetAttributes(attribute.String("dashboard.cache_key", dashboardCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_leaderboard_failed")
		return dto.DashboardResponse{}, err
	}

	summary := s.buildSummary(entries)
	span.SetAttributes(attribute.Int("dashboard.submission_count", summary.TotalSubmissions))

	if s.cache != nil && s.cacheTTL > 0 {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

func (s *leaderboardService) buildSummary(entries []models.LeaderboardEntry) dto.DashboardResponse {
	summary := dto.DashboardResponse{
		TotalSubmissions: len(entries),
		GeneratedAt:      s.now(),
	}
	if len(entries) == 0 {
		return summary
	}

	total := 0
	participants := make(map[string]struct{})
	summary.HighestScore = entries[0].Score
	for _, entry := range entries {
		total += entry.Score
		if entry.Score > summary.HighestScore {
			summary.HighestScore = entry.Score
		}
		participants[entry.Name] = struct{}{}
	}
	summary.AverageScore = math.Round(float64(total)/float64(len(entries))*100) / 100
	summary.Participants = len(participants)
	return summary
}

func (s *leaderboardService) ExportXLSX(ctx context.Context) ([]byte, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sortEntries(entries, LeaderboardSortScore, LeaderboardOrderDesc)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leaderboardSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(leaderboardSheetName, "A1", &[]interface{}{"rank", "name", "score"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(leaderboardSheetName, cell, &[]interface{}{i + 1, entry.Name, entry.Score}); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	s.logger.Debug().Int("rows", len(entries)).Msg("leaderboard exported")
	return buf.Bytes(), nil
}
