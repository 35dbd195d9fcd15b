package handlers

import (
	"net/http"

	"github.com/snapgrove/backend/internal/database"
	"github.com/snapgrove/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) createTestCollection(owner *models.User, title string) *models.Collection {
	w := suite.doJSON("POST", "/api/v1/collections", map[string]interface{}{
		"title": title,
	}, owner)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	body := decodeJSON(suite.T(), w)
	var collection models.Collection
	require.NoError(suite.T(), database.DB.First(&collection, "id = ?", body["id"]).Error)
	return &collection
}

func (suite *HandlersTestSuite) TestCreateCollection() {
	collection := suite.createTestCollection(suite.alice, "Best of 2026")
	assert.Equal(suite.T(), suite.alice.ID, collection.UserID)
	assert.True(suite.T(), collection.IsPublic)
}

func (suite *HandlersTestSuite) TestCreateCollectionValidation() {
	w := suite.doJSON("POST", "/api/v1/collections", map[string]interface{}{}, suite.alice)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestAddAndRemovePhoto() {
	collection := suite.createTestCollection(suite.alice, "Landscapes")
	photo := suite.createTestPhoto(suite.bob, "mountain")

	w := suite.doJSON("POST", "/api/v1/collections/"+collection.ID+"/photos", map[string]interface{}{
		"photo_id": photo.ID,
	}, suite.alice)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var reloaded models.Collection
	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", collection.ID).Error)
	assert.Equal(suite.T(), 1, reloaded.PhotoCount)
	require.NotNil(suite.T(), reloaded.CoverPhotoID)
	assert.Equal(suite.T(), photo.ID, *reloaded.CoverPhotoID)

	// Adding the same photo again conflicts
	w = suite.doJSON("POST", "/api/v1/collections/"+collection.ID+"/photos", map[string]interface{}{
		"photo_id": photo.ID,
	}, suite.alice)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	w = suite.doJSON("DELETE", "/api/v1/collections/"+collection.ID+"/photos/"+photo.ID, nil, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", collection.ID).Error)
	assert.Equal(suite.T(), 0, reloaded.PhotoCount)
	assert.Nil(suite.T(), reloaded.CoverPhotoID)
}

func (suite *HandlersTestSuite) TestAddPhotoNotOwner() {
	collection := suite.createTestCollection(suite.alice, "Private curation")
	photo := suite.createTestPhoto(suite.bob, "theirs")

	w := suite.doJSON("POST", "/api/v1/collections/"+collection.ID+"/photos", map[string]interface{}{
		"photo_id": photo.ID,
	}, suite.bob)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestGetCollectionWithPhotos() {
	collection := suite.createTestCollection(suite.alice, "Walkabout")
	first := suite.createTestPhoto(suite.alice, "start")
	second := suite.createTestPhoto(suite.alice, "finish")

	suite.doJSON("POST", "/api/v1/collections/"+collection.ID+"/photos",
		map[string]interface{}{"photo_id": first.ID}, suite.alice)
	suite.doJSON("POST", "/api/v1/collections/"+collection.ID+"/photos",
		map[string]interface{}{"photo_id": second.ID}, suite.alice)

	w := suite.doJSON("GET", "/api/v1/collections/"+collection.ID, nil, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	body := decodeJSON(suite.T(), w)
	photos := body["photos"].([]interface{})
	require.Len(suite.T(), photos, 2)
	assert.Equal(suite.T(), "start", photos[0].(map[string]interface{})["title"])
}

func (suite *HandlersTestSuite) TestGetCollectionHidesRemovedPhotos() {
	collection := suite.createTestCollection(suite.alice, "Curated")
	photo := suite.createTestPhoto(suite.alice, "flagged")
	suite.doJSON("POST", "/api/v1/collections/"+collection.ID+"/photos",
		map[string]interface{}{"photo_id": photo.ID}, suite.alice)

	require.NoError(suite.T(), database.DB.Model(photo).
		Update("moderation_status", models.PhotoStatusRemoved).Error)

	w := suite.doJSON("GET", "/api/v1/collections/"+collection.ID, nil, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	body := decodeJSON(suite.T(), w)
	assert.Len(suite.T(), body["photos"], 0)
}

func (suite *HandlersTestSuite) TestPrivateCollectionHiddenFromOthers() {
	collection := suite.createTestCollection(suite.alice, "Secret")
	require.NoError(suite.T(), database.DB.Model(collection).Update("is_public", false).Error)

	w := suite.doJSON("GET", "/api/v1/collections/"+collection.ID, nil, suite.bob)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.doJSON("GET", "/api/v1/collections/"+collection.ID, nil, suite.alice)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestUpdateCollection() {
	collection := suite.createTestCollection(suite.alice, "Draft")

	w := suite.doJSON("PATCH", "/api/v1/collections/"+collection.ID, map[string]interface{}{
		"title":     "Final",
		"is_public": false,
	}, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Collection
	require.NoError(suite.T(), database.DB.First(&reloaded, "id = ?", collection.ID).Error)
	assert.Equal(suite.T(), "Final", reloaded.Title)
	assert.False(suite.T(), reloaded.IsPublic)
}

func (suite *HandlersTestSuite) TestDeleteCollection() {
	collection := suite.createTestCollection(suite.alice, "Temporary")
	photo := suite.createTestPhoto(suite.alice, "kept")
	suite.doJSON("POST", "/api/v1/collections/"+collection.ID+"/photos",
		map[string]interface{}{"photo_id": photo.ID}, suite.alice)

	w := suite.doJSON("DELETE", "/api/v1/collections/"+collection.ID, nil, suite.alice)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	database.DB.Model(&models.Collection{}).Where("id = ?", collection.ID).Count(&count)
	assert.Zero(suite.T(), count)

	// Links are gone but the photo itself survives
	database.DB.Model(&models.CollectionPhoto{}).Where("collection_id = ?", collection.ID).Count(&count)
	assert.Zero(suite.T(), count)
	database.DB.Model(&models.Photo{}).Where("id = ?", photo.ID).Count(&count)
	assert.EqualValues(suite.T(), 1, count)
}
