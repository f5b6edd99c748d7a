package repository

import (
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLogFilter narrows the audit-trail listing.
type ActivityLogFilter struct {
	Start  *time.Time
	End    *time.Time
	Action string
	UserID *uuid.UUID
	Limit  int
}

// ActionCount is the number of audit entries per action.
type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

type ActivityLogRepository interface {
	Create(entry *model.ActivityLog) error
	Find(filter ActivityLogFilter) ([]model.ActivityLog, int64, error)
	FindByUser(userID uuid.UUID, limit int) ([]model.ActivityLog, error)
	CountSince(t time.Time) (int64, error)
	CountByAction(since time.Time) ([]ActionCount, error)
}

type activityLogRepo struct {
	db *gorm.DB
}

func NewActivityLogRepo(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepo{db}
}

func (r *activityLogRepo) Create(entry *model.ActivityLog) error {
	return r.db.Create(entry).Error
}

func (r *activityLogRepo) Find(filter ActivityLogFilter) ([]model.ActivityLog, int64, error) {
	q := r.db.Model(&model.ActivityLog{})
	if filter.Start != nil {
		q = q.Where("created_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("created_at <= ?", *filter.End)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var logs []model.ActivityLog
	err := q.Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, total, err
}

func (r *activityLogRepo) FindByUser(userID uuid.UUID, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []model.ActivityLog
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *activityLogRepo) CountSince(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.ActivityLog{}).Where("created_at >= ?", t).Count(&count).Error
	return count, err
}

func (r *activityLogRepo) CountByAction(since time.Time) ([]ActionCount, error) {
	var results []ActionCount
	err := r.db.Model(&model.ActivityLog{}).
		Select("action, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("action").
		Order("count DESC").
		Scan(&results).Error
	return results, err
}
