package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	userID  uint
	event   string
	payload any
}

type recordingBroadcaster struct {
	events []publishedEvent
}

func (b *recordingBroadcaster) Publish(userID uint, event string, payload any) {
	b.events = append(b.events, publishedEvent{userID: userID, event: event, payload: payload})
}

type pushedNotification struct {
	token string
	title string
	body  string
	data  map[string]string
}

type recordingNotifier struct {
	sent []pushedNotification
}

func (n *recordingNotifier) Send(_ context.Context, token, title, body string, data map[string]string) {
	n.sent = append(n.sent, pushedNotification{token: token, title: title, body: body, data: data})
}

func TestSendMessagePersistsAndNotifies(t *testing.T) {
	db := newTestDB(t)
	hub := &recordingBroadcaster{}
	notifier := &recordingNotifier{}
	svc := NewChatService(db, notifier, hub)
	sender := seedUser(t, db, "sender@example.com", "password123")
	receiver := seedUser(t, db, "receiver@example.com", "password123")
	token := "device-token-1"
	require.NoError(t, db.Model(receiver).Update("fcm_token", token).Error)
	receiver.FCMToken = &token

	message, err := svc.Send(context.Background(), sender, &dto.SendMessageRequest{
		Content:     "still available?",
		ReceiverID:  receiver.ID,
		Attachments: []string{"https://cdn.example.com/photo.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.MessageSent, message.Status)
	require.Len(t, message.Attachments, 1)
	assert.Equal(t, "https://cdn.example.com/photo.jpg", message.Attachments[0].URL)

	require.Len(t, hub.events, 1)
	assert.Equal(t, receiver.ID, hub.events[0].userID)
	assert.Equal(t, "new_message", hub.events[0].event)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, token, notifier.sent[0].token)
	assert.Equal(t, "still available?", notifier.sent[0].body)
	assert.Equal(t, "new_message", notifier.sent[0].data["type"])
	assert.Equal(t, fmt.Sprint(message.ID), notifier.sent[0].data["message_id"])
	assert.Equal(t, fmt.Sprint(sender.ID), notifier.sent[0].data["sender_id"])
}

func TestSendMessageSkipsPushWithoutDeviceToken(t *testing.T) {
	db := newTestDB(t)
	hub := &recordingBroadcaster{}
	notifier := &recordingNotifier{}
	svc := NewChatService(db, notifier, hub)
	sender := seedUser(t, db, "sender@example.com", "password123")
	receiver := seedUser(t, db, "receiver@example.com", "password123")

	_, err := svc.Send(context.Background(), sender, &dto.SendMessageRequest{
		Content:    "hello",
		ReceiverID: receiver.ID,
	})
	require.NoError(t, err)
	assert.Len(t, hub.events, 1)
	assert.Empty(t, notifier.sent)
}

func TestSendMessageValidatesReferences(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, nil, nil)
	sender := seedUser(t, db, "sender@example.com", "password123")
	receiver := seedUser(t, db, "receiver@example.com", "password123")

	_, err := svc.Send(context.Background(), sender, &dto.SendMessageRequest{
		Content:    "hello",
		ReceiverID: 9999,
	})
	assert.ErrorIs(t, err, ErrUserNotFound)

	missing := uint(9999)
	_, err = svc.Send(context.Background(), sender, &dto.SendMessageRequest{
		Content:        "hello",
		ReceiverID:     receiver.ID,
		AnnouncementID: &missing,
	})
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)
}

func TestConversationIsBidirectional(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, nil, nil)
	alice := seedUser(t, db, "alice@example.com", "password123")
	bob := seedUser(t, db, "bob@example.com", "password123")
	carol := seedUser(t, db, "carol@example.com", "password123")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Send(ctx, alice, &dto.SendMessageRequest{Content: fmt.Sprintf("a%d", i), ReceiverID: bob.ID})
		require.NoError(t, err)
	}
	_, err := svc.Send(ctx, bob, &dto.SendMessageRequest{Content: "reply", ReceiverID: alice.ID})
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice, &dto.SendMessageRequest{Content: "other thread", ReceiverID: carol.ID})
	require.NoError(t, err)

	page, err := svc.Conversation(alice.ID, bob.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Meta.TotalItems)

	// Same thread seen from the other side.
	mirrored, err := svc.Conversation(bob.ID, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 4, mirrored.Meta.TotalItems)

	short, err := svc.Conversation(alice.ID, bob.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, short.Items, 2)
	assert.Equal(t, 2, short.Meta.TotalPages)
}

func TestMarkReadFlipsIncomingMessages(t *testing.T) {
	db := newTestDB(t)
	hub := &recordingBroadcaster{}
	svc := NewChatService(db, nil, hub)
	alice := seedUser(t, db, "alice@example.com", "password123")
	bob := seedUser(t, db, "bob@example.com", "password123")
	ctx := context.Background()

	incoming, err := svc.Send(ctx, bob, &dto.SendMessageRequest{Content: "hi", ReceiverID: alice.ID})
	require.NoError(t, err)
	outgoing, err := svc.Send(ctx, alice, &dto.SendMessageRequest{Content: "hey", ReceiverID: bob.ID})
	require.NoError(t, err)
	hub.events = nil

	require.NoError(t, svc.MarkRead(alice.ID, bob.ID))

	read, err := svc.Find(incoming.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageRead, read.Status)

	// Alice's own messages are untouched.
	own, err := svc.Find(outgoing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageSent, own.Status)

	require.Len(t, hub.events, 1)
	assert.Equal(t, bob.ID, hub.events[0].userID)
	assert.Equal(t, "messages_read", hub.events[0].event)

	// Nothing left to flip: no event this time.
	hub.events = nil
	require.NoError(t, svc.MarkRead(alice.ID, bob.ID))
	assert.Empty(t, hub.events)
}

func TestMarkDeliveredReceiverOnly(t *testing.T) {
	db := newTestDB(t)
	hub := &recordingBroadcaster{}
	svc := NewChatService(db, nil, hub)
	alice := seedUser(t, db, "alice@example.com", "password123")
	bob := seedUser(t, db, "bob@example.com", "password123")
	ctx := context.Background()

	message, err := svc.Send(ctx, alice, &dto.SendMessageRequest{Content: "hi", ReceiverID: bob.ID})
	require.NoError(t, err)
	hub.events = nil

	// The sender cannot acknowledge their own message.
	_, err = svc.MarkDelivered(alice.ID, message.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)

	delivered, err := svc.MarkDelivered(bob.ID, message.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageDelivered, delivered.Status)
	require.Len(t, hub.events, 1)
	assert.Equal(t, alice.ID, hub.events[0].userID)
	assert.Equal(t, "message_delivered", hub.events[0].event)

	// Acknowledging twice is a no-op.
	hub.events = nil
	again, err := svc.MarkDelivered(bob.ID, message.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageDelivered, again.Status)
	assert.Empty(t, hub.events)
}
