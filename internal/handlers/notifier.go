package handlers

import (
	"context"

	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/repositories"
	"github.com/lynk-app/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notifier creates notification records as side effects of other actions.
// Creation is fire-and-forget: failures are logged and never propagated to
// the triggering operation.
type Notifier struct {
	repo repositories.NotificationRepository
}

func NewNotifier(repo repositories.NotificationRepository) *Notifier {
	return &Notifier{repo: repo}
}

// Notify inserts a notification unless it would be a self-notification or
// is missing required fields
func (n *Notifier) Notify(ctx context.Context, notification *models.Notification) {
	if notification.Type == "" || notification.Receiver.IsZero() || notification.Sender.IsZero() {
		return
	}
	if notification.Sender == notification.Receiver {
		return
	}
	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		logger.L().Error("notification creation failed",
			zap.String("type", notification.Type),
			zap.String("receiver", notification.Receiver.Hex()),
			zap.Error(err))
	}
}

// NotifyFollow records a follow event
func (n *Notifier) NotifyFollow(ctx context.Context, sender, receiver primitive.ObjectID) {
	n.Notify(ctx, &models.Notification{
		Type:     models.NotificationFollow,
		Sender:   sender,
		Receiver: receiver,
	})
}

// NotifyPost records a like or comment event against a post
func (n *Notifier) NotifyPost(ctx context.Context, notifType string, sender, receiver, postID primitive.ObjectID) {
	n.Notify(ctx, &models.Notification{
		Type:     notifType,
		Sender:   sender,
		Receiver: receiver,
		PostID:   postID,
	})
}

// NotifySupportReply records an admin reply, carrying the reply text
func (n *Notifier) NotifySupportReply(ctx context.Context, sender, receiver primitive.ObjectID, text string) {
	n.Notify(ctx, &models.Notification{
		Type:     models.NotificationSupportReply,
		Sender:   sender,
		Receiver: receiver,
		Text:     text,
	})
}
