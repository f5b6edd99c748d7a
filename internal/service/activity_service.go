package service

import (
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/clock"
	"go-retail-pos/pkg/logger"

	"github.com/google/uuid"
)

// ActivityStats is the admin audit-trail overview.
type ActivityStats struct {
	TodayCount   int64                    `json:"today_count"`
	ActionCounts []repository.ActionCount `json:"action_counts"`
}

type ActivityService interface {
	// Record writes one audit entry. Best-effort: failures are logged,
	// never propagated, so a broken audit trail cannot block checkout.
	Record(entry *model.ActivityLog)
	List(filter repository.ActivityLogFilter) ([]model.ActivityLog, int64, error)
	MyActivity(userID uuid.UUID, limit int) ([]model.ActivityLog, error)
	Stats() (*ActivityStats, error)
}

type activityService struct {
	repo  repository.ActivityLogRepository
	clock clock.Clock
	log   *logger.Logger
}

func NewActivityService(repo repository.ActivityLogRepository, clk clock.Clock, log *logger.Logger) ActivityService {
	return &activityService{repo: repo, clock: clk, log: log}
}

func (s *activityService) Record(entry *model.ActivityLog) {
	if err := s.repo.Create(entry); err != nil {
		s.log.Warn().Err(err).
			Str("action", string(entry.Action)).
			Str("user_id", entry.UserID.String()).
			Msg("failed to write activity log")
	}
}

func (s *activityService) List(filter repository.ActivityLogFilter) ([]model.ActivityLog, int64, error) {
	return s.repo.Find(filter)
}

func (s *activityService) MyActivity(userID uuid.UUID, limit int) ([]model.ActivityLog, error) {
	return s.repo.FindByUser(userID, limit)
}

func (s *activityService) Stats() (*ActivityStats, error) {
	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	todayCount, err := s.repo.CountSince(today)
	if err != nil {
		return nil, err
	}
	weekAgo := today.AddDate(0, 0, -7)
	actionCounts, err := s.repo.CountByAction(weekAgo)
	if err != nil {
		return nil, err
	}

	return &ActivityStats{
		TodayCount:   todayCount,
		ActionCounts: actionCounts,
	}, nil
}
