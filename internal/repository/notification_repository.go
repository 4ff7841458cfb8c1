package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/wma-backend/internal/model"
)

// NotificationRepository handles student notification data access.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// ListByStudent returns a student's notifications, newest first.
func (r *NotificationRepository) ListByStudent(ctx context.Context, studentID int, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT id, student_id, kind, level, title, message, is_read, created_at
		FROM notifications WHERE student_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Notification, error) {
		var n model.Notification
		err := row.Scan(&n.ID, &n.StudentID, &n.Kind, &n.Level, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
		return n, err
	})
}

// InsertUnlessUnread stores the notifications, skipping any whose kind
// already has an unread notification for the same student. Returns the
// number inserted.
func (r *NotificationRepository) InsertUnlessUnread(ctx context.Context, items []model.Notification) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, n := range items {
		batch.Queue(
			`INSERT INTO notifications (student_id, kind, level, title, message)
			 SELECT $1, $2, $3, $4, $5
			 WHERE NOT EXISTS (
			   SELECT 1 FROM notifications WHERE student_id = $1 AND kind = $2 AND NOT is_read
			 )`,
			n.StudentID, n.Kind, n.Level, n.Title, n.Message)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range items {
		tag, err := br.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// MarkRead marks one of the student's notifications as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, studentID, id int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
