package handlers

import (
	"net/http"

	"github.com/snapgrove/backend/internal/database"
	"github.com/snapgrove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) TestFavoritePhoto() {
	photo := suite.createTestPhoto(suite.alice, "likeable")

	w := suite.doJSON("POST", "/api/v1/photos/"+photo.ID+"/favorite", nil, suite.bob)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var reloaded models.Photo
	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", photo.ID).Error)
	assert.Equal(suite.T(), 1, reloaded.FavoriteCount)

	// Owner gets a notification
	var notification models.Notification
	require.NoError(suite.T(), database.DB.
		Where("user_id = ? AND type = ?", suite.alice.ID, models.NotificationFavorite).
		First(&notification).Error)
	assert.Equal(suite.T(), suite.bob.ID, notification.ActorID)
}

func (suite *HandlersTestSuite) TestFavoritePhotoTwiceConflicts() {
	photo := suite.createTestPhoto(suite.alice, "once")

	w := suite.doJSON("POST", "/api/v1/photos/"+photo.ID+"/favorite", nil, suite.bob)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.doJSON("POST", "/api/v1/photos/"+photo.ID+"/favorite", nil, suite.bob)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var reloaded models.Photo
	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", photo.ID).Error)
	assert.Equal(suite.T(), 1, reloaded.FavoriteCount)
}

func (suite *HandlersTestSuite) TestFavoriteOwnPhotoNoNotification() {
	photo := suite.createTestPhoto(suite.alice, "selfie")

	w := suite.doJSON("POST", "/api/v1/photos/"+photo.ID+"/favorite", nil, suite.alice)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	var count int64
	database.DB.Model(&models.Notification{}).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *HandlersTestSuite) TestUnfavoritePhoto() {
	photo := suite.createTestPhoto(suite.alice, "fleeting")

	w := suite.doJSON("POST", "/api/v1/photos/"+photo.ID+"/favorite", nil, suite.bob)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.doJSON("DELETE", "/api/v1/photos/"+photo.ID+"/favorite", nil, suite.bob)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Photo
	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", photo.ID).Error)
	assert.Equal(suite.T(), 0, reloaded.FavoriteCount)

	// Unfavoriting again is a 404
	w = suite.doJSON("DELETE", "/api/v1/photos/"+photo.ID+"/favorite", nil, suite.bob)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestListFavorites() {
	first := suite.createTestPhoto(suite.alice, "one")
	second := suite.createTestPhoto(suite.alice, "two")

	suite.doJSON("POST", "/api/v1/photos/"+first.ID+"/favorite", nil, suite.bob)
	suite.doJSON("POST", "/api/v1/photos/"+second.ID+"/favorite", nil, suite.bob)

	w := suite.doJSON("GET", "/api/v1/favorites", nil, suite.bob)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	body := decodeJSON(suite.T(), w)
	assert.Len(suite.T(), body["photos"], 2)
}

func (suite *HandlersTestSuite) TestFollowUser() {
	w := suite.doJSON("POST", "/api/v1/users/"+suite.bob.ID+"/follow", nil, suite.alice)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var alice, bob models.User
	require.NoError(suite.T(), database.DB.First(&alice, "id = ?", suite.alice.ID).Error)
	require.NoError(suite.T(), database.DB.First(&bob, "id = ?", suite.bob.ID).Error)
	assert.Equal(suite.T(), 1, alice.FollowingCount)
	assert.Equal(suite.T(), 1, bob.FollowerCount)

	var notification models.Notification
	require.NoError(suite.T(), database.DB.
		Where("user_id = ? AND type = ?", suite.bob.ID, models.NotificationFollow).
		First(&notification).Error)
	assert.Equal(suite.T(), suite.alice.ID, notification.ActorID)
}

func (suite *HandlersTestSuite) TestFollowSelfRejected() {
	w := suite.doJSON("POST", "/api/v1/users/"+suite.alice.ID+"/follow", nil, suite.alice)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestFollowTwiceConflicts() {
	w := suite.doJSON("POST", "/api/v1/users/"+suite.bob.ID+"/follow", nil, suite.alice)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w = suite.doJSON("POST", "/api/v1/users/"+suite.bob.ID+"/follow", nil, suite.alice)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestUnfollowUser() {
	suite.doJSON("POST", "/api/v1/users/"+suite.bob.ID+"/follow", nil, suite.alice)

	w := suite.doJSON("DELETE", "/api/v1/users/"+suite.bob.ID+"/follow", nil, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var bob models.User
	require.NoError(suite.T(), database.DB.First(&bob, "id = ?", suite.bob.ID).Error)
	assert.Equal(suite.T(), 0, bob.FollowerCount)
}

func (suite *HandlersTestSuite) TestFollowersAndFollowing() {
	suite.doJSON("POST", "/api/v1/users/"+suite.bob.ID+"/follow", nil, suite.alice)
	suite.doJSON("POST", "/api/v1/users/"+suite.bob.ID+"/follow", nil, suite.admin)

	w := suite.doJSON("GET", "/api/v1/users/"+suite.bob.ID+"/followers", nil, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	body := decodeJSON(suite.T(), w)
	assert.Len(suite.T(), body["users"], 2)

	w = suite.doJSON("GET", "/api/v1/users/"+suite.alice.ID+"/following", nil, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	body = decodeJSON(suite.T(), w)
	assert.Len(suite.T(), body["users"], 1)
}

func (suite *HandlersTestSuite) TestFeedShowsFollowedUsersOnly() {
	suite.createTestPhoto(suite.bob, "from-bob")
	suite.createTestPhoto(suite.admin, "from-admin")

	suite.doJSON("POST", "/api/v1/users/"+suite.bob.ID+"/follow", nil, suite.alice)

	w := suite.doJSON("GET", "/api/v1/feed", nil, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	body := decodeJSON(suite.T(), w)
	photos := body["photos"].([]interface{})
	require.Len(suite.T(), photos, 1)
	first := photos[0].(map[string]interface{})
	assert.Equal(suite.T(), "from-bob", first["title"])
}

func (suite *HandlersTestSuite) TestGetUserProfile() {
	w := suite.doJSON("GET", "/api/v1/users/"+suite.alice.ID, nil, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	body := decodeJSON(suite.T(), w)
	assert.Equal(suite.T(), "alice", body["username"])
	_, hasHash := body["password_hash"]
	assert.False(suite.T(), hasHash, "password hash must never be serialized")
}
