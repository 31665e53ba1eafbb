package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agon/contexts/debate-arena/contest-service/domain/entities"
	domainerrors "agon/contexts/debate-arena/contest-service/domain/errors"
	"agon/contexts/debate-arena/contest-service/ports"
	"agon/internal/shared/events"
	"agon/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *Repository) SaveContest(ctx context.Context, contest entities.Contest) error {
	row := contestModelFromEntity(contest)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":            row.Title,
			"description":      row.Description,
			"category":         row.Category,
			"support_points":   row.SupportPoints,
			"oppose_points":    row.OpposePoints,
			"status":           row.Status,
			"start_at":         row.StartAt,
			"end_at":           row.EndAt,
			"duration_hours":   row.DurationHours,
			"max_participants": row.MaxParticipants,
			"ledger_ref":       row.LedgerRef,
			"insight":          row.Insight,
			"updated_at":       row.UpdatedAt,
			"completed_at":     row.CompletedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("contest_repo_save_contest_failed", create.Error,
			"contest_id", strings.TrimSpace(contest.ContestID),
		)
	}
	return nil
}

func (r *Repository) GetContest(ctx context.Context, contestID string) (entities.Contest, error) {
	var row contestModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(contestID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Contest{}, domainerrors.ErrContestNotFound
		}
		return entities.Contest{}, r.logError("contest_repo_get_contest_failed", err,
			"contest_id", strings.TrimSpace(contestID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetActiveContest(ctx context.Context) (entities.Contest, bool, error) {
	var row contestModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.ContestStatusActive)).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Contest{}, false, nil
		}
		return entities.Contest{}, false, r.logError("contest_repo_get_active_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListExpiredUnfinished(ctx context.Context, now time.Time, limit int) ([]entities.Contest, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []contestModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{
			string(entities.ContestStatusActive),
			string(entities.ContestStatusCompleting),
		}).
		Where("end_at <= ?", now.UTC()).
		Order("end_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("contest_repo_list_expired_failed", err)
	}
	return toContestEntities(rows), nil
}

func (r *Repository) ClaimForCompletion(ctx context.Context, contestID string) error {
	update := r.db.WithContext(ctx).Model(&contestModel{}).
		Where("id = ?", strings.TrimSpace(contestID)).
		Where("status = ?", string(entities.ContestStatusActive)).
		Update("status", string(entities.ContestStatusCompleting))
	if update.Error != nil {
		return r.logError("contest_repo_claim_failed", update.Error,
			"contest_id", strings.TrimSpace(contestID),
		)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrContestNotClaimable
	}
	return nil
}

func (r *Repository) ListRecentCompleted(ctx context.Context, limit int) ([]entities.Contest, error) {
	if limit <= 0 {
		limit = 2
	}
	var rows []contestModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.ContestStatusCompleted)).
		Order("completed_at DESC NULLS LAST").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("contest_repo_list_recent_completed_failed", err)
	}
	return toContestEntities(rows), nil
}

func (r *Repository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&contestModel{}).
		Where("created_at >= ?", since.UTC()).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("contest_repo_count_created_failed", err)
	}
	return int(count), nil
}

func (r *Repository) SaveSubmission(ctx context.Context, submission entities.Submission) error {
	row := submissionModelFromEntity(submission)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"reactions": row.Reactions,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("contest_repo_save_submission_failed", create.Error,
			"submission_id", strings.TrimSpace(submission.SubmissionID),
		)
	}
	return nil
}

func (r *Repository) ListSubmissionsByContest(ctx context.Context, contestID string) ([]entities.Submission, error) {
	var rows []submissionModel
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", strings.TrimSpace(contestID)).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("contest_repo_list_submissions_failed", err,
			"contest_id", strings.TrimSpace(contestID),
		)
	}
	items := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveWinnerRecord(ctx context.Context, record entities.WinnerRecord) error {
	row, err := winnerModelFromEntity(record)
	if err != nil {
		return err
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "contest_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"submission_id": row.SubmissionID,
			"author_id":     row.AuthorID,
			"winning_side":  row.WinningSide,
			"final_score":   row.FinalScore,
			"method":        row.Method,
			"reasoning":     row.Reasoning,
			"candidates":    row.Candidates,
			"insight":       row.Insight,
			"decided_at":    row.DecidedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("contest_repo_save_winner_failed", create.Error,
			"contest_id", strings.TrimSpace(record.ContestID),
		)
	}
	return nil
}

func (r *Repository) GetWinnerRecord(ctx context.Context, contestID string) (entities.WinnerRecord, bool, error) {
	var row winnerModel
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", strings.TrimSpace(contestID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WinnerRecord{}, false, nil
		}
		return entities.WinnerRecord{}, false, r.logError("contest_repo_get_winner_failed", err,
			"contest_id", strings.TrimSpace(contestID),
		)
	}
	record, err := row.toEntity()
	if err != nil {
		return entities.WinnerRecord{}, false, err
	}
	return record, true, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		ID:        uuid.NewString(),
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
		CreatedAt: envelope.OccurredAtUTC.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("contest_repo_append_outbox_failed", err,
			"event_type", envelope.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("contest_repo_list_outbox_failed", err)
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:    row.ID,
			EventType:   row.EventType,
			Payload:     row.Payload,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
			PublishedAt: row.PublishedAt,
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	update := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("contest_repo_mark_outbox_failed", update.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "debate-arena/contest-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("contest repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type contestModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	Title           string     `gorm:"column:title"`
	Description     string     `gorm:"column:description"`
	Category        string     `gorm:"column:category"`
	SupportPoints   []string   `gorm:"column:support_points;type:text[]"`
	OpposePoints    []string   `gorm:"column:oppose_points;type:text[]"`
	Status          string     `gorm:"column:status"`
	StartAt         time.Time  `gorm:"column:start_at"`
	EndAt           time.Time  `gorm:"column:end_at"`
	DurationHours   float64    `gorm:"column:duration_hours"`
	MaxParticipants int        `gorm:"column:max_participants"`
	LedgerRef       string     `gorm:"column:ledger_ref"`
	Insight         *string    `gorm:"column:insight"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
	CompletedAt     *time.Time `gorm:"column:completed_at"`
}

func (contestModel) TableName() string {
	return "contests"
}

func contestModelFromEntity(item entities.Contest) contestModel {
	return contestModel{
		ID:              strings.TrimSpace(item.ContestID),
		Title:           strings.TrimSpace(item.Title),
		Description:     strings.TrimSpace(item.Description),
		Category:        string(item.Category),
		SupportPoints:   copyOrEmpty(item.SupportPoints),
		OpposePoints:    copyOrEmpty(item.OpposePoints),
		Status:          string(item.Status),
		StartAt:         item.StartAt.UTC(),
		EndAt:           item.EndAt.UTC(),
		DurationHours:   item.DurationHours,
		MaxParticipants: item.MaxParticipants,
		LedgerRef:       strings.TrimSpace(item.LedgerRef),
		Insight:         item.Insight,
		CreatedAt:       item.CreatedAt.UTC(),
		UpdatedAt:       item.UpdatedAt.UTC(),
		CompletedAt:     item.CompletedAt,
	}
}

func (m contestModel) toEntity() entities.Contest {
	return entities.Contest{
		ContestID:       m.ID,
		Title:           m.Title,
		Description:     m.Description,
		Category:        entities.ContestCategory(m.Category),
		SupportPoints:   copyOrEmpty(m.SupportPoints),
		OpposePoints:    copyOrEmpty(m.OpposePoints),
		Status:          entities.ContestStatus(m.Status),
		StartAt:         m.StartAt,
		EndAt:           m.EndAt,
		DurationHours:   m.DurationHours,
		MaxParticipants: m.MaxParticipants,
		LedgerRef:       m.LedgerRef,
		Insight:         m.Insight,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		CompletedAt:     m.CompletedAt,
	}
}

func toContestEntities(rows []contestModel) []entities.Contest {
	items := make([]entities.Contest, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type submissionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	ContestID string    `gorm:"column:contest_id"`
	AuthorID  string    `gorm:"column:author_id"`
	Side      string    `gorm:"column:side"`
	Content   string    `gorm:"column:content"`
	Reactions int       `gorm:"column:reactions"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (submissionModel) TableName() string {
	return "submissions"
}

func submissionModelFromEntity(item entities.Submission) submissionModel {
	return submissionModel{
		ID:        strings.TrimSpace(item.SubmissionID),
		ContestID: strings.TrimSpace(item.ContestID),
		AuthorID:  strings.TrimSpace(item.AuthorID),
		Side:      string(item.Side),
		Content:   item.Content,
		Reactions: item.Reactions,
		CreatedAt: item.CreatedAt.UTC(),
	}
}

func (m submissionModel) toEntity() entities.Submission {
	return entities.Submission{
		SubmissionID: m.ID,
		ContestID:    m.ContestID,
		AuthorID:     m.AuthorID,
		Side:         entities.Side(m.Side),
		Content:      m.Content,
		Reactions:    m.Reactions,
		CreatedAt:    m.CreatedAt,
	}
}

type winnerModel struct {
	ContestID    string    `gorm:"column:contest_id;primaryKey"`
	SubmissionID string    `gorm:"column:submission_id"`
	AuthorID     string    `gorm:"column:author_id"`
	WinningSide  string    `gorm:"column:winning_side"`
	FinalScore   float64   `gorm:"column:final_score"`
	Method       string    `gorm:"column:method"`
	Reasoning    string    `gorm:"column:reasoning"`
	Candidates   []byte    `gorm:"column:candidates;type:jsonb"`
	Insight      *string   `gorm:"column:insight"`
	DecidedAt    time.Time `gorm:"column:decided_at"`
}

func (winnerModel) TableName() string {
	return "winner_records"
}

func winnerModelFromEntity(item entities.WinnerRecord) (winnerModel, error) {
	candidates, err := json.Marshal(item.Candidates)
	if err != nil {
		return winnerModel{}, err
	}
	return winnerModel{
		ContestID:    strings.TrimSpace(item.ContestID),
		SubmissionID: strings.TrimSpace(item.SubmissionID),
		AuthorID:     strings.TrimSpace(item.AuthorID),
		WinningSide:  string(item.WinningSide),
		FinalScore:   item.FinalScore,
		Method:       item.Method,
		Reasoning:    item.Reasoning,
		Candidates:   candidates,
		Insight:      item.Insight,
		DecidedAt:    item.DecidedAt.UTC(),
	}, nil
}

func (m winnerModel) toEntity() (entities.WinnerRecord, error) {
	var candidates []entities.CandidateScore
	if len(m.Candidates) > 0 {
		if err := json.Unmarshal(m.Candidates, &candidates); err != nil {
			return entities.WinnerRecord{}, err
		}
	}
	return entities.WinnerRecord{
		ContestID:    m.ContestID,
		SubmissionID: m.SubmissionID,
		AuthorID:     m.AuthorID,
		WinningSide:  entities.Side(m.WinningSide),
		FinalScore:   m.FinalScore,
		Method:       m.Method,
		Reasoning:    m.Reasoning,
		Candidates:   candidates,
		Insight:      m.Insight,
		DecidedAt:    m.DecidedAt,
	}, nil
}

type outboxModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload;type:jsonb"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "contest_outbox"
}

func copyOrEmpty(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
