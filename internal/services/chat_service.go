package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/models"
	"github.com/okaz-app/okaz-backend/internal/push"
	"gorm.io/gorm"
)

// Broadcaster fans a chat event out to a user's live connections. The
// websocket hub satisfies it; a nil-safe noop is used in tests.
type Broadcaster interface {
	Publish(userID uint, event string, payload any)
}

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(uint, string, any) {}

// ChatService persists private messages and notifies the receiver over
// websocket and push.
type ChatService struct {
	db       *gorm.DB
	notifier push.Notifier
	hub      Broadcaster
}

func NewChatService(db *gorm.DB, notifier push.Notifier, hub Broadcaster) *ChatService {
	if hub == nil {
		hub = noopBroadcaster{}
	}
	if notifier == nil {
		notifier = push.Noop{}
	}
	return &ChatService{db: db, notifier: notifier, hub: hub}
}

// Send stores the message, pushes a "new_message" event to the receiver's
// live connections and fires an FCM notification if they registered a device
// token. Delivery of both is best effort.
func (s *ChatService) Send(ctx context.Context, sender *models.User, req *dto.SendMessageRequest) (*models.Message, error) {
	var receiver models.User
	if err := s.db.First(&receiver, "id = ?", req.ReceiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if req.AnnouncementID != nil {
		var announcement models.Announcement
		if err := s.db.First(&announcement, "id = ?", *req.AnnouncementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAnnouncementNotFound
			}
			return nil, err
		}
	}

	message := models.Message{
		Content:        req.Content,
		Status:         models.MessageSent,
		SenderID:       sender.ID,
		ReceiverID:     req.ReceiverID,
		AnnouncementID: req.AnnouncementID,
	}
	for _, url := range req.Attachments {
		message.Attachments = append(message.Attachments, models.Attachment{URL: url})
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}

	stored, err := s.Find(message.ID)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(receiver.ID, "new_message", stored)
	if receiver.FCMToken != nil && *receiver.FCMToken != "" {
		s.notifier.Send(ctx, *receiver.FCMToken, sender.FullName, req.Content, map[string]string{
			"type":       "new_message",
			"message_id": strconv.FormatUint(uint64(message.ID), 10),
			"sender_id":  strconv.FormatUint(uint64(sender.ID), 10),
		})
	}
	return stored, nil
}

func (s *ChatService) Find(id uint) (*models.Message, error) {
	var message models.Message
	err := s.db.
		Preload("Sender").
		Preload("Receiver").
		Preload("Attachments").
		First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// Conversation pages through the messages exchanged between two users,
// newest first.
func (s *ChatService) Conversation(userID, otherID uint, page, limit int) (dto.Page[models.Message], error) {
	page, limit = normalizePaging(page, limit)
	query := s.db.Model(&models.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return dto.Page[models.Message]{}, err
	}
	var messages []models.Message
	err := query.
		Preload("Sender").
		Preload("Receiver").
		Preload("Attachments").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return dto.Page[models.Message]{}, err
	}
	return dto.NewPage(messages, total, page, limit), nil
}

// MarkRead flips every message the other user sent to READ and tells them
// over websocket.
func (s *ChatService) MarkRead(userID, otherID uint) error {
	result := s.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND status <> ?", otherID, userID, models.MessageRead).
		Update("status", models.MessageRead)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		s.hub.Publish(otherID, "messages_read", map[string]uint{"reader_id": userID})
	}
	return nil
}

// MarkDelivered acknowledges receipt of a single message.
func (s *ChatService) MarkDelivered(userID, messageID uint) (*models.Message, error) {
	message, err := s.Find(messageID)
	if err != nil {
		return nil, err
	}
	if message.ReceiverID != userID {
		return nil, ErrMessageNotFound
	}
	if message.Status == models.MessageSent {
		if err := s.db.Model(message).Update("status", models.MessageDelivered).Error; err != nil {
			return nil, err
		}
		message.Status = models.MessageDelivered
		s.hub.Publish(message.SenderID, "message_delivered", map[string]uint{"message_id": message.ID})
	}
	return message, nil
}
