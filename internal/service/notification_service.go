package service

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	notificationListLimit = 50
	emailTimeout          = 10 * time.Second
)

// Mailer delivers a plain-text email. Implemented by the SendGrid client.
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, body string) error
}

// NotificationList is the latest notifications plus the unread total.
type NotificationList struct {
	Notifications []domain.Notification
	UnreadCount   int
}

type NotificationService interface {
	// Notify and NotifyMany are best-effort: failures are logged, never returned.
	Notify(ctx context.Context, n domain.Notification)
	NotifyMany(ctx context.Context, ns []domain.Notification)

	List(ctx context.Context, userID primitive.ObjectID) (*NotificationList, error)
	MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
	Delete(ctx context.Context, userID, notificationID primitive.ObjectID) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	mailer           Mailer // nil disables email
}

// NewNotificationService creates a notification service. mailer may be nil.
func NewNotificationService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository, mailer Mailer) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		mailer:           mailer,
	}
}

func (s *notificationService) Notify(ctx context.Context, n domain.Notification) {
	if _, err := s.notificationRepo.Create(ctx, &n); err != nil {
		slog.WarnContext(ctx, "failed to create notification", "type", n.Type, "userId", n.UserID.Hex(), "error", err)
		return
	}
	s.email(ctx, []domain.Notification{n})
}

func (s *notificationService) NotifyMany(ctx context.Context, ns []domain.Notification) {
	if len(ns) == 0 {
		return
	}
	if err := s.notificationRepo.CreateMany(ctx, ns); err != nil {
		slog.WarnContext(ctx, "failed to create notifications", "count", len(ns), "type", ns[0].Type, "error", err)
		return
	}
	s.email(ctx, ns)
}

// email sends each notification to its recipient in the background. The
// request context is detached so delivery survives the response.
func (s *notificationService) email(ctx context.Context, ns []domain.Notification) {
	if s.mailer == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, emailTimeout)
		defer cancel()

		ids := make([]primitive.ObjectID, len(ns))
		for i, n := range ns {
			ids[i] = n.UserID
		}
		users, err := s.userRepo.GetByIDs(ctx, ids)
		if err != nil {
			slog.WarnContext(ctx, "failed to load notification recipients", "error", err)
			return
		}
		byID := make(map[primitive.ObjectID]domain.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}

		for _, n := range ns {
			u, ok := byID[n.UserID]
			if !ok || u.Email == "" {
				continue
			}
			if err := s.mailer.Send(ctx, u.Name, u.Email, n.Title, n.Message); err != nil {
				slog.WarnContext(ctx, "failed to email notification", "type", n.Type, "userId", n.UserID.Hex(), "error", err)
			}
		}
	}()
}

func (s *notificationService) List(ctx context.Context, userID primitive.ObjectID) (*NotificationList, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, internalError(err)
	}
	unread, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	return &NotificationList{Notifications: notifications, UnreadCount: unread}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	return notificationResult(s.notificationRepo.MarkRead(ctx, notificationID, userID))
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return internalError(err)
	}
	return nil
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	return notificationResult(s.notificationRepo.Delete(ctx, notificationID, userID))
}

func notificationResult(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotificationNotFound
	default:
		return internalError(err)
	}
}
