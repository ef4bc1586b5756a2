package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/lynk-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestFlattenMessages(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	chat := &models.Chat{
		ID:           primitive.NewObjectID(),
		Participants: []primitive.ObjectID{alice, bob},
		Messages: []models.ChatMessage{
			{ID: primitive.NewObjectID(), Sender: alice, Text: "hey"},
			{ID: primitive.NewObjectID(), Sender: bob, Text: "hi", Read: true},
		},
	}

	flat := flattenMessages(chat)
	assert.Len(t, flat, 2)
	assert.Equal(t, bob, flat[0].Receiver)
	assert.Equal(t, alice, flat[1].Receiver)
	assert.True(t, flat[1].Read)
}

func TestDeriveChatEntries(t *testing.T) {
	me := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	carol := primitive.NewObjectID()
	now := time.Now()

	chats := []models.Chat{
		{
			// newest activity first, as the store returns them
			Participants: []primitive.ObjectID{me, bob},
			Messages: []models.ChatMessage{
				{Sender: bob, Text: "old", CreatedAt: now.Add(-time.Hour)},
				{Sender: me, Text: "latest to bob", CreatedAt: now},
			},
		},
		{
			Participants: []primitive.ObjectID{carol, me},
			Messages: []models.ChatMessage{
				{Sender: carol, Text: "from carol", CreatedAt: now.Add(-2 * time.Hour)},
			},
		},
		{
			// empty room produces no entry
			Participants: []primitive.ObjectID{me, primitive.NewObjectID()},
		},
	}

	entries := deriveChatEntries(chats, me)
	assert.Len(t, entries, 2)
	assert.Equal(t, bob, entries[0].Other)
	assert.Equal(t, "latest to bob", entries[0].LastMessage)
	assert.Equal(t, carol, entries[1].Other)
	assert.Equal(t, "from carol", entries[1].LastMessage)
}

func TestDeriveChatEntriesDedupsCounterpart(t *testing.T) {
	me := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	chats := []models.Chat{
		{
			Participants: []primitive.ObjectID{me, bob},
			Messages:     []models.ChatMessage{{Sender: bob, Text: "newest"}},
		},
		{
			Participants: []primitive.ObjectID{bob, me},
			Messages:     []models.ChatMessage{{Sender: me, Text: "stale duplicate"}},
		},
	}

	entries := deriveChatEntries(chats, me)
	assert.Len(t, entries, 1)
	assert.Equal(t, "newest", entries[0].LastMessage)
}

func TestSendMessageCreatesRoomOnFirstContact(t *testing.T) {
	e := newTestEcho()
	chatRepo := new(MockChatRepository)
	handler := NewMessageHandler(chatRepo, new(MockUserRepository))

	sender := primitive.NewObjectID()
	receiver := primitive.NewObjectID()
	chat := &models.Chat{ID: primitive.NewObjectID(), Participants: []primitive.ObjectID{sender, receiver}}

	chatRepo.On("FindByParticipants", mock.Anything, sender, receiver).Return(nil, mongo.ErrNoDocuments)
	chatRepo.On("CreateChat", mock.Anything, sender, receiver).Return(chat, nil)
	chatRepo.On("AppendMessage", mock.Anything, chat.ID, mock.MatchedBy(func(m models.ChatMessage) bool {
		return m.Sender == sender && m.Text == "first contact"
	})).Return(chat, nil)

	body := `{"sender":"` + sender.Hex() + `","receiver":"` + receiver.Hex() + `","text":"first contact"}`
	c, rec := newTestContext(e, http.MethodPost, "/api/messages", body, sender)

	assert.NoError(t, handler.SendMessage(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestGetMessagesNoRoomIsEmptyList(t *testing.T) {
	e := newTestEcho()
	chatRepo := new(MockChatRepository)
	handler := NewMessageHandler(chatRepo, new(MockUserRepository))

	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	chatRepo.On("FindByParticipants", mock.Anything, a, b).Return(nil, mongo.ErrNoDocuments)

	c, rec := newTestContext(e, http.MethodGet, "/api/messages/"+a.Hex()+"/"+b.Hex(), "", a)
	c.SetParamNames("userId1", "userId2")
	c.SetParamValues(a.Hex(), b.Hex())

	assert.NoError(t, handler.GetMessages(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestMarkAsReadOnlyFlipsSenderDirection(t *testing.T) {
	e := newTestEcho()
	chatRepo := new(MockChatRepository)
	handler := NewMessageHandler(chatRepo, new(MockUserRepository))

	sender := primitive.NewObjectID()
	receiver := primitive.NewObjectID()
	chat := &models.Chat{ID: primitive.NewObjectID(), Participants: []primitive.ObjectID{sender, receiver}}

	chatRepo.On("FindByParticipants", mock.Anything, sender, receiver).Return(chat, nil)
	chatRepo.On("MarkReadFromSender", mock.Anything, chat.ID, sender).Return(nil)

	c, rec := newTestContext(e, http.MethodPut, "/api/messages/read/"+sender.Hex()+"/"+receiver.Hex(), "", receiver)
	c.SetParamNames("sender", "receiver")
	c.SetParamValues(sender.Hex(), receiver.Hex())

	assert.NoError(t, handler.MarkAsRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestMarkAsReadNoRoomIsNoOp(t *testing.T) {
	e := newTestEcho()
	chatRepo := new(MockChatRepository)
	handler := NewMessageHandler(chatRepo, new(MockUserRepository))

	sender := primitive.NewObjectID()
	receiver := primitive.NewObjectID()
	chatRepo.On("FindByParticipants", mock.Anything, sender, receiver).Return(nil, mongo.ErrNoDocuments)

	c, rec := newTestContext(e, http.MethodPut, "/api/messages/read/"+sender.Hex()+"/"+receiver.Hex(), "", receiver)
	c.SetParamNames("sender", "receiver")
	c.SetParamValues(sender.Hex(), receiver.Hex())

	assert.NoError(t, handler.MarkAsRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	chatRepo.AssertNotCalled(t, "MarkReadFromSender", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetChatsForUserResolvesCounterparts(t *testing.T) {
	e := newTestEcho()
	chatRepo := new(MockChatRepository)
	userRepo := new(MockUserRepository)
	handler := NewMessageHandler(chatRepo, userRepo)

	me := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	chats := []models.Chat{
		{
			Participants: []primitive.ObjectID{me, bob},
			Messages:     []models.ChatMessage{{Sender: bob, Text: "yo", CreatedAt: time.Now()}},
		},
	}
	chatRepo.On("GetChatsForUser", mock.Anything, me).Return(chats, nil)
	userRepo.On("GetCompacts", mock.Anything, []primitive.ObjectID{bob}).Return(
		[]models.UserCompact{{ID: bob, Username: "bob"}}, nil)

	c, rec := newTestContext(e, http.MethodGet, "/api/messages/chats/"+me.Hex(), "", me)
	c.SetParamNames("userId")
	c.SetParamValues(me.Hex())

	assert.NoError(t, handler.GetChatsForUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bob"`)
	assert.Contains(t, rec.Body.String(), `"yo"`)
}
