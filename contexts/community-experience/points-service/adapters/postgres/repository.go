package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "agon/contexts/community-experience/points-service/domain/errors"
	"agon/contexts/community-experience/points-service/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

type userPointsModel struct {
	AuthorID    string    `gorm:"column:author_id;primaryKey"`
	TotalPoints int       `gorm:"column:total_points"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (userPointsModel) TableName() string { return "user_points" }

type pointsLogModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	AuthorID  string    `gorm:"column:author_id;index"`
	Points    int       `gorm:"column:points"`
	Reference string    `gorm:"column:reference"`
	Reason    string    `gorm:"column:reason"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (pointsLogModel) TableName() string { return "points_logs" }

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload;type:jsonb"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string { return "points_idempotency" }

func (r *Repository) AppendPointsLog(ctx context.Context, log ports.PointsLog) error {
	row := pointsLogModel{
		ID:        strings.TrimSpace(log.LogID),
		AuthorID:  strings.TrimSpace(log.AuthorID),
		Points:    log.Points,
		Reference: strings.TrimSpace(log.Reference),
		Reason:    strings.TrimSpace(log.Reason),
		CreatedAt: log.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("points_repo_append_log_failed", err,
			"author_id", row.AuthorID,
			"reference", row.Reference,
		)
	}
	return nil
}

func (r *Repository) IncrementPoints(ctx context.Context, authorID string, delta int, updatedAt time.Time) (ports.UserPoints, error) {
	authorID = strings.TrimSpace(authorID)
	row := userPointsModel{AuthorID: authorID, TotalPoints: delta, UpdatedAt: updatedAt}
	upsert := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "author_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_points": gorm.Expr("user_points.total_points + ?", delta),
			"updated_at":   updatedAt,
		}),
	}).Create(&row)
	if upsert.Error != nil {
		return ports.UserPoints{}, r.logError("points_repo_increment_failed", upsert.Error,
			"author_id", authorID,
		)
	}
	return r.GetPoints(ctx, authorID)
}

func (r *Repository) GetPoints(ctx context.Context, authorID string) (ports.UserPoints, error) {
	var row userPointsModel
	err := r.db.WithContext(ctx).
		Where("author_id = ?", strings.TrimSpace(authorID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.UserPoints{}, domainerrors.ErrPointsNotFound
		}
		return ports.UserPoints{}, r.logError("points_repo_get_failed", err,
			"author_id", strings.TrimSpace(authorID),
		)
	}
	return ports.UserPoints{
		AuthorID:    row.AuthorID,
		TotalPoints: row.TotalPoints,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func (r *Repository) ListLeaderboard(ctx context.Context, limit int, offset int) ([]ports.LeaderboardEntry, error) {
	var rows []userPointsModel
	err := r.db.WithContext(ctx).
		Order("total_points DESC, author_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("points_repo_leaderboard_failed", err)
	}
	entries := make([]ports.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, ports.LeaderboardEntry{
			AuthorID:    row.AuthorID,
			TotalPoints: row.TotalPoints,
			Rank:        offset + i + 1,
		})
	}
	return entries, nil
}

func (r *Repository) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", strings.TrimSpace(key), now).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("points_repo_idempotency_get_failed", err)
	}
	return ports.IdempotencyRecord{
		Key:             row.Key,
		RequestHash:     row.RequestHash,
		ResponsePayload: row.ResponsePayload,
		ExpiresAt:       row.ExpiresAt,
	}, true, nil
}

func (r *Repository) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:             strings.TrimSpace(record.Key),
		RequestHash:     record.RequestHash,
		ResponsePayload: record.ResponsePayload,
		ExpiresAt:       record.ExpiresAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"request_hash":     row.RequestHash,
			"response_payload": row.ResponsePayload,
			"expires_at":       row.ExpiresAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("points_repo_idempotency_put_failed", err)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "community-experience/points-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("points repository operation failed", fields...)
	return err
}
