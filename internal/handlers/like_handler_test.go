package handlers

import (
	"net/http"
	"testing"

	"github.com/lynk-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToggleLikeRoundTrip(t *testing.T) {
	e := newTestEcho()
	postRepo := new(MockPostRepository)
	notifRepo := new(MockNotificationRepository)
	handler := NewLikeHandler(postRepo, NewNotifier(notifRepo))

	me := primitive.NewObjectID()
	author := primitive.NewObjectID()
	postID := primitive.NewObjectID()

	unliked := &models.Post{ID: postID, Author: author, Likes: []primitive.ObjectID{}}
	liked := &models.Post{ID: postID, Author: author, Likes: []primitive.ObjectID{me}}

	// first call likes and notifies the author
	postRepo.On("GetPostByID", mock.Anything, postID).Return(unliked, nil).Once()
	postRepo.On("AddLike", mock.Anything, postID, me).Return(nil).Once()
	postRepo.On("GetPostByID", mock.Anything, postID).Return(liked, nil).Once()
	notifRepo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Type == models.NotificationLike && n.Receiver == author && n.Sender == me
	})).Return(nil).Once()

	c, rec := newTestContext(e, http.MethodPost, "/api/posts/"+postID.Hex()+"/like", "", me)
	c.SetParamNames("postId")
	c.SetParamValues(postID.Hex())
	assert.NoError(t, handler.ToggleLike(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), me.Hex())

	// second call unlikes without notifying
	postRepo.On("GetPostByID", mock.Anything, postID).Return(liked, nil).Once()
	postRepo.On("RemoveLike", mock.Anything, postID, me).Return(nil).Once()
	postRepo.On("GetPostByID", mock.Anything, postID).Return(unliked, nil).Once()

	c2, rec2 := newTestContext(e, http.MethodPost, "/api/posts/"+postID.Hex()+"/like", "", me)
	c2.SetParamNames("postId")
	c2.SetParamValues(postID.Hex())
	assert.NoError(t, handler.ToggleLike(c2))
	assert.Equal(t, http.StatusOK, rec2.Code)

	postRepo.AssertExpectations(t)
	notifRepo.AssertExpectations(t)
	notifRepo.AssertNumberOfCalls(t, "CreateNotification", 1)
}

func TestToggleLikeOwnPostDoesNotNotify(t *testing.T) {
	e := newTestEcho()
	postRepo := new(MockPostRepository)
	notifRepo := new(MockNotificationRepository)
	handler := NewLikeHandler(postRepo, NewNotifier(notifRepo))

	me := primitive.NewObjectID()
	postID := primitive.NewObjectID()
	post := &models.Post{ID: postID, Author: me, Likes: []primitive.ObjectID{}}
	likedByMe := &models.Post{ID: postID, Author: me, Likes: []primitive.ObjectID{me}}

	postRepo.On("GetPostByID", mock.Anything, postID).Return(post, nil).Once()
	postRepo.On("AddLike", mock.Anything, postID, me).Return(nil)
	postRepo.On("GetPostByID", mock.Anything, postID).Return(likedByMe, nil).Once()

	c, rec := newTestContext(e, http.MethodPost, "/api/posts/"+postID.Hex()+"/like", "", me)
	c.SetParamNames("postId")
	c.SetParamValues(postID.Hex())

	assert.NoError(t, handler.ToggleLike(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	notifRepo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
}
