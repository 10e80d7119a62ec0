package repository

import (
	"context"
	"database/sql"

	"github.com/fleetsync/server/internal/models"
)

// NotificationRepository implements NotificationRepo for PostgreSQL/SQLite
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Add(ctx context.Context, notification *models.Notification) error {
	query := `INSERT INTO notifications (id, title, message, type, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		notification.ID, notification.Title, notification.Message,
		notification.Type, notification.CreatedAt,
	)
	return err
}

func (r *NotificationRepository) GetRecent(ctx context.Context, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, title, message, type, created_at FROM notifications
			  ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Type, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) GetCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&count)
	return count, err
}
