package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/wma-backend/internal/grading"
	"github.com/stemsi/wma-backend/internal/model"
	"github.com/stemsi/wma-backend/internal/repository"
)

// ErrNotificationNotFound is returned when the notification does not belong to the student.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService stores alerts raised for students.
type NotificationService struct {
	notifRepo *repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

// List returns a student's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, studentID int, unreadOnly bool) ([]model.Notification, error) {
	return s.notifRepo.ListByStudent(ctx, studentID, unreadOnly)
}

// MarkRead marks one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, studentID, id int) error {
	err := s.notifRepo.MarkRead(ctx, studentID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotificationNotFound
	}
	return err
}

// Store saves alerts as notifications, skipping any kind the student has not
// read yet.
func (s *NotificationService) Store(ctx context.Context, studentID int, alerts []grading.Alert) (int, error) {
	return s.notifRepo.InsertUnlessUnread(ctx, AlertNotifications(studentID, alerts))
}

// AlertNotifications converts engine alerts into notification rows.
func AlertNotifications(studentID int, alerts []grading.Alert) []model.Notification {
	out := make([]model.Notification, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, model.Notification{
			StudentID: studentID,
			Kind:      string(a.Kind),
			Level:     string(a.Level),
			Title:     a.Title,
			Message:   a.Message,
		})
	}
	return out
}
