package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/alumni-connect/internal/apperrors"
	"github.com/iliyamo/alumni-connect/internal/logger"
	"github.com/iliyamo/alumni-connect/internal/metrics"
	"github.com/iliyamo/alumni-connect/internal/model"
	"github.com/iliyamo/alumni-connect/internal/queue"
)

// NotificationInput describes a notification to create.
type NotificationInput struct {
	RecipientID uint64
	Type        string
	Title       string
	Message     string
	RelatedID   uint64
}

// NotificationList is the response of the list endpoint.
type NotificationList struct {
	Notifications []*model.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

// NotificationService stores notifications and announces them on the broker.
type NotificationService struct {
	store     NotificationStore
	users     UserStore
	publisher EventPublisher
	log       *zap.Logger
}

// NewNotificationService wires the store.  publisher may be nil, in which
// case notifications are only stored.
func NewNotificationService(store NotificationStore, users UserStore, publisher EventPublisher) *NotificationService {
	return &NotificationService{store: store, users: users, publisher: publisher, log: logger.WithModule("notifications")}
}

// Notify writes the notification row and then publishes an event for email
// delivery.  Publishing is best-effort: the stored row is the source of
// truth and a broker outage never fails the caller.
func (s *NotificationService) Notify(ctx context.Context, in NotificationInput) error {
	n := &model.Notification{
		RecipientID: in.RecipientID,
		Type:        in.Type,
		Title:       in.Title,
		Message:     in.Message,
		RelatedID:   in.RelatedID,
	}
	if err := s.store.Create(ctx, n); err != nil {
		return apperrors.Internal(err)
	}
	metrics.NotificationsCreated.WithLabelValues(n.Type).Inc()

	if s.publisher == nil {
		return nil
	}
	ev := queue.NotificationCreatedEvent{
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		RelatedID:      n.RelatedID,
		CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339),
	}
	if u, err := s.users.GetByID(ctx, n.RecipientID); err == nil {
		ev.RecipientName = u.Name
		ev.RecipientEmail = u.Email
	}
	if err := s.publisher.PublishNotification(ctx, ev); err != nil {
		metrics.NotificationPublishFailures.Inc()
		s.log.Warn("publish notification event", zap.Uint64("notification_id", n.ID), zap.Error(err))
	}
	return nil
}

// List returns the caller's notifications, newest first, with the unread count.
func (s *NotificationService) List(ctx context.Context, a Actor) (*NotificationList, error) {
	if a.ID == 0 {
		return nil, apperrors.ErrUnauthenticated
	}
	items, err := s.store.ListByRecipient(ctx, a.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	out := &NotificationList{Notifications: items}
	for _, n := range items {
		if !n.Read {
			out.UnreadCount++
		}
	}
	return out, nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, a Actor, id uint64) error {
	if a.ID == 0 {
		return apperrors.ErrUnauthenticated
	}
	if id == 0 {
		return apperrors.ErrInvalidID
	}
	return notFound(s.store.MarkRead(ctx, id, a.ID), "Notification")
}

// MarkAllRead flags every unread notification of the caller and returns how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, a Actor) (int64, error) {
	if a.ID == 0 {
		return 0, apperrors.ErrUnauthenticated
	}
	n, err := s.store.MarkAllRead(ctx, a.ID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}

// notify is the shared side-effect call.  A failure is logged and swallowed:
// the state change that triggered it has already been committed.
func notify(ctx context.Context, n Notifier, in NotificationInput) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, in); err != nil {
		logger.WithModule("notifications").Error("create notification",
			zap.Uint64("recipient_id", in.RecipientID), zap.String("type", in.Type), zap.Error(err))
	}
}
